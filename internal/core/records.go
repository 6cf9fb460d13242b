package core

// Raw record shapes as they come out of the shop system's document store.
// Dates travel as strings because the store never enforced a single format;
// the normalizer owns parsing and the fallback chain.

// PaymentEntry is one row of a Sale's or Service's payments array.
type PaymentEntry struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"`
}

// SaleRecord is a point-of-sale receipt.
type SaleRecord struct {
	ID            string         `json:"id"`
	SaleDate      string         `json:"saleDate"`
	Status        string         `json:"status"`
	TotalAmount   float64        `json:"totalAmount"`
	Payments      []PaymentEntry `json:"payments,omitempty"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	CustomerName  string         `json:"customerName"`
}

// ServiceRecord is a workshop service order. Only delivered services
// (Status == Entregado) contribute monetary events.
type ServiceRecord struct {
	ID                 string         `json:"id"`
	ServiceDate        string         `json:"serviceDate"`
	DeliveryDateTime   string         `json:"deliveryDateTime,omitempty"`
	Status             string         `json:"status"`
	TotalCost          float64        `json:"totalCost"`
	Payments           []PaymentEntry `json:"payments,omitempty"`
	PaymentMethod      string         `json:"paymentMethod,omitempty"`
	CustomerName       string         `json:"customerName"`
	ServiceAdvisorName string         `json:"serviceAdvisorName,omitempty"`
}

// LedgerRecord is a cash-drawer transaction entered by staff, or mirrored
// by the system from another record (see RelatedType).
type LedgerRecord struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Type          string  `json:"type"` // in/Entrada or out/Salida
	Amount        float64 `json:"amount"`
	Concept       string  `json:"concept"`
	UserName      string  `json:"userName"`
	RelatedType   string  `json:"relatedType,omitempty"`
	RelatedID     string  `json:"relatedId,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}

// InitialCashBalance is the physical cash counted at the start of a period.
type InitialCashBalance struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	UserID   string  `json:"userId"`
	UserName string  `json:"userName"`
}

// ExpenseRecord is an opaque amount-bearing row: a monthly fixed expense
// or a staff salary. The rollup only sums them.
type ExpenseRecord struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}
