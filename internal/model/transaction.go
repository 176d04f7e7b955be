package model

import "time"

// Category is a group+name pair in the budgeting service's taxonomy.
type Category struct {
	Group string
	Name  string
}

// Transaction is one canonical statement record. A parsing engine creates
// exactly one per raw statement; it is never mutated afterwards.
//
// Amount is in minor currency units (kopiykas, cents): positive = inflow,
// negative = outflow. Engines are responsible for converting whatever unit
// the source reports into this convention.
type Transaction struct {
	Account     *Account
	Time        time.Time
	Amount      int64
	Description string
	Comment     string
	MCC         int
	ID          string
}

// CategorizedTransaction extends a Transaction with the statement field
// mapping results. Derived once, never mutated.
//
// A non-empty Parts list marks a split transaction: the parent's Amount is
// the sum of the parts' amounts and each part carries its own category.
type CategorizedTransaction struct {
	Transaction
	Payee           string
	TransferAccount *Account
	Category        *Category
	Parts           []CategorizedTransaction
}

// IsSplit reports whether the transaction is a split parent.
func (t *CategorizedTransaction) IsSplit() bool { return len(t.Parts) > 0 }
