package mapping

import (
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// Mappings holds the statement field lookup tables. All four tables are
// built once at startup from configuration and are read-only afterwards.
type Mappings struct {
	// AccountByTransferPayee resolves a transfer counterparty from the
	// statement description.
	AccountByTransferPayee *RegexList[*model.Account]
	// CategoryByPayee resolves a category from the statement description.
	// It takes precedence over CategoryByMCC.
	CategoryByPayee *RegexList[model.Category]
	// CategoryByMCC is the coarse merchant-category-code fallback.
	CategoryByMCC map[int]model.Category
	// PayeeAlias resolves a display alias from the statement description.
	PayeeAlias *RegexList[string]
}

// Fields is the result of resolving one statement against the mappings.
type Fields struct {
	Payee           string
	TransferAccount *model.Account
	Category        *model.Category
}

// Resolve maps a transaction's description and mcc into a payee alias, an
// optional transfer counterparty and an optional category:
//   - payee: alias lookup on the description, the description itself when
//     nothing matches;
//   - transfer account: transfer-payee lookup, excluding the statement's own
//     account so an account never matches its own transfer-out pattern;
//   - category: payee-pattern lookup first, mcc table second. A specific
//     merchant regex always wins over the mcc default.
func (m *Mappings) Resolve(t model.Transaction) Fields {
	f := Fields{
		Payee: m.PayeeAlias.Get(t.Description, t.Description),
	}
	f.TransferAccount, _ = m.AccountByTransferPayee.Lookup(t.Description, func(a *model.Account) bool {
		return !a.Is(t.Account)
	})
	if c, ok := m.CategoryByPayee.Lookup(t.Description, nil); ok {
		f.Category = &c
	} else if c, ok := m.CategoryByMCC[t.MCC]; ok {
		f.Category = &c
	}
	return f
}
