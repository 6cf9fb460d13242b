package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caja/internal/core"
)

func event(id string, src core.Source, related string, cents int64) core.MonetaryEvent {
	return core.MonetaryEvent{
		ID:            id,
		Timestamp:     time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		Direction:     core.In,
		Source:        src,
		RelatedType:   related,
		PaymentMethod: core.MethodEfectivo,
		Amount:        core.Money{Cents: cents},
	}
}

func TestMergeExcludesMirroredLedgerEntries(t *testing.T) {
	events := []core.MonetaryEvent{
		event("svc:V1#0", core.SourceService, "", 30000),
		event("mov:M1#0", core.SourceManual, core.RelatedService, 30000), // system mirror of V1
		event("mov:M2#0", core.SourceManual, "", 10000),                  // free-standing
		event("mov:M3#0", core.SourceManual, core.RelatedManual, 2000),
		event("mov:M4#0", core.SourceManual, core.RelatedPurchase, 5000),
	}

	merged := Merge(events)
	require.Len(t, merged, 3)

	total := Aggregate(merged)
	// The 300.00 service payment counts once, never twice.
	assert.Equal(t, int64(30000+10000+2000), total.TotalIn.Cents)

	ids := []string{merged[0].ID, merged[1].ID, merged[2].ID}
	assert.Equal(t, []string{"svc:V1#0", "mov:M2#0", "mov:M3#0"}, ids)
}

func TestMergeKeepsNonManualSources(t *testing.T) {
	events := []core.MonetaryEvent{
		event("sale:S1#0", core.SourceSale, "", 100),
		event("svc:V1#0", core.SourceService, "", 200),
	}
	assert.Len(t, Merge(events), 2)
}

func TestManualOnly(t *testing.T) {
	events := []core.MonetaryEvent{
		event("sale:S1#0", core.SourceSale, "", 100),
		event("mov:M1#0", core.SourceManual, core.RelatedSale, 100),
		event("mov:M2#0", core.SourceManual, "", 50),
	}
	manual := ManualOnly(events)
	require.Len(t, manual, 1)
	assert.Equal(t, "mov:M2#0", manual[0].ID)
}
