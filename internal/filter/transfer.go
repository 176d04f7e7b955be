package filter

import (
	"fmt"
	"time"

	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// TransferFilter removes the duplicate leg of a transfer between two tracked
// accounts. A transfer arrives as two independent statements, outflow in the
// source account and inflow in the destination; the budgeting service models
// it as one linked pair, so exactly one of the two must be dropped.
//
// One instance is shared across the whole multi-account batch: pairing
// depends on statement arrival order end to end, not per account.
type TransferFilter struct {
	pending []string
	dropped int
}

// NewTransferFilter returns a filter with no pending legs.
func NewTransferFilter() *TransferFilter { return &TransferFilter{} }

// The key carries the calendar day so that transfers sharing an account pair
// and amount on different days are never paired against each other.
func transferKey(day time.Time, src, dst string, amount int64) string {
	return fmt.Sprintf("%s_%s_%s_%d", day.Format("2006-01-02"), src, dst, amount)
}

// Keep reports whether t stays in the stream. The first leg of a pair is
// kept tentatively; when its reverse leg arrives, the reverse leg is
// dropped. A first leg whose counterpart never arrives (other fetch window,
// unmapped account) simply stays pending, which is the expected outcome.
//
// Statements without a resolved transfer account and split parents pass
// through untouched: a split parent's amount is not atomic, so it can never
// be a transfer leg.
func (f *TransferFilter) Keep(t *model.CategorizedTransaction) bool {
	if t.TransferAccount == nil || t.IsSplit() {
		return true
	}
	reverse := transferKey(t.Time, t.TransferAccount.Name, t.Account.Name, -t.Amount)
	for i, k := range f.pending {
		if k == reverse {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			f.dropped++
			return false
		}
	}
	f.pending = append(f.pending, transferKey(t.Time, t.Account.Name, t.TransferAccount.Name, t.Amount))
	return true
}

// Dropped returns the number of second legs removed so far.
func (f *TransferFilter) Dropped() int { return f.dropped }

// Pending returns the number of first legs still waiting for a counterpart.
func (f *TransferFilter) Pending() int { return len(f.pending) }
