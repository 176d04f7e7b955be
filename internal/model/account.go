package model

// Account describes one configured source bank account. Loaded once from
// configuration and treated as immutable for the lifetime of a run.
type Account struct {
	Enabled bool
	// Name is the display name of the matching account in the budgeting
	// service.
	Name string
	// IBAN identifies the account at the source bank. For file-based sources
	// it doubles as the statement directory key.
	IBAN string
	// TransferPayees holds regex patterns whose match on a statement
	// description marks a transfer into this account.
	TransferPayees []string
}

// Is reports whether two descriptors refer to the same account. Descriptors
// are identity-keyed by display name and IBAN.
func (a *Account) Is(b *Account) bool {
	return b != nil && a.Name == b.Name && a.IBAN == b.IBAN
}
