package importer

import (
	"regexp"
	"strconv"

	"github.com/budgetsync-dev/budgetsync/internal/mapping"
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// splitMemoRe recognizes the comment convention for splitting one purchase
// across categories: "Split (1/2) groceries", "Split (2/2) household".
var splitMemoRe = regexp.MustCompile(`^Split \((\d+)/(\d+)\) (.*)`)

// Assemble resolves mapped fields for every statement and groups
// split-annotated statements into one transaction with parts. Statement
// order is preserved; a split group is emitted at the position of its
// first part.
func Assemble(txns []model.Transaction, mappings *mapping.Mappings) []model.CategorizedTransaction {
	out := make([]model.CategorizedTransaction, 0, len(txns))

	var pending *model.CategorizedTransaction
	var pendingWant int
	flush := func() {
		if pending != nil {
			out = append(out, *pending)
			pending = nil
			pendingWant = 0
		}
	}

	for _, t := range txns {
		index, total, rest, ok := splitMarker(t.Comment)
		if !ok {
			flush()
			out = append(out, categorize(t, mappings))
			continue
		}

		part := t
		part.Comment = rest
		ct := categorize(part, mappings)

		if index == 1 || pending == nil {
			flush()
			parent := ct
			parent.Comment = ""
			parent.Category = nil
			parent.TransferAccount = nil
			parent.Parts = []model.CategorizedTransaction{ct}
			pending = &parent
			pendingWant = total
			continue
		}

		pending.Amount += ct.Amount
		pending.Parts = append(pending.Parts, ct)
		if len(pending.Parts) >= pendingWant {
			flush()
		}
	}
	flush()
	return out
}

func categorize(t model.Transaction, mappings *mapping.Mappings) model.CategorizedTransaction {
	fields := mappings.Resolve(t)
	return model.CategorizedTransaction{
		Transaction:     t,
		Payee:           fields.Payee,
		TransferAccount: fields.TransferAccount,
		Category:        fields.Category,
	}
}

func splitMarker(comment string) (index, total int, rest string, ok bool) {
	m := splitMemoRe.FindStringSubmatch(comment)
	if m == nil {
		return 0, 0, "", false
	}
	index, _ = strconv.Atoi(m[1])
	total, _ = strconv.Atoi(m[2])
	return index, total, m[3], true
}
