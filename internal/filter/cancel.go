package filter

import (
	"strings"

	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// CancelPrefix marks a statement that reverses an earlier charge.
const CancelPrefix = "Скасування. "

// CancelFilter drops matched pairs of cancel and original statements within
// one account's fetch window. A cancel statement whose original falls
// outside the window stays in the stream so the mismatch is visible to the
// operator instead of being dropped silently.
type CancelFilter struct {
	skip map[string]struct{}
}

type cancelKey struct {
	description string
	amount      int64
}

// NewCancelFilter pairs cancel statements against the rest of the batch.
// The whole batch must be supplied: a cancel may precede or follow its
// original in time.
func NewCancelFilter(batch []model.Transaction) *CancelFilter {
	var cancels []model.Transaction
	originals := make(map[cancelKey][]model.Transaction)
	for _, t := range batch {
		if strings.HasPrefix(t.Description, CancelPrefix) {
			cancels = append(cancels, t)
			continue
		}
		k := cancelKey{description: t.Description, amount: t.Amount}
		originals[k] = append(originals[k], t)
	}

	f := &CancelFilter{skip: make(map[string]struct{})}
	for _, c := range cancels {
		k := cancelKey{
			description: strings.TrimPrefix(c.Description, CancelPrefix),
			amount:      -c.Amount,
		}
		stack := originals[k]
		if len(stack) == 0 {
			continue
		}
		// A cancellation reverses the most recent matching charge: pop the
		// last-seen original, not the first.
		orig := stack[len(stack)-1]
		originals[k] = stack[:len(stack)-1]
		f.skip[c.ID] = struct{}{}
		f.skip[orig.ID] = struct{}{}
	}
	return f
}

// Keep reports whether t survived pairing.
func (f *CancelFilter) Keep(t model.Transaction) bool {
	_, skipped := f.skip[t.ID]
	return !skipped
}

// Apply returns batch without the paired statements.
func (f *CancelFilter) Apply(batch []model.Transaction) []model.Transaction {
	if len(f.skip) == 0 {
		return batch
	}
	kept := make([]model.Transaction, 0, len(batch))
	for _, t := range batch {
		if f.Keep(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Skipped returns the number of statements removed by pairing. Every matched
// pair contributes two.
func (f *CancelFilter) Skipped() int { return len(f.skip) }
