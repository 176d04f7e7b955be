// Package engine converts bank-specific statement exports into canonical
// transactions. Each supported bank has its own parsing engine; engines for
// offline exports (PDF and CSV statement files) run behind a shared
// filesystem driver, while the monobank engine wraps the live API.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// Bank identifies one supported statement source format. The set is closed:
// the factory rejects anything else at startup.
type Bank string

const (
	BankMono       Bank = "mono"
	BankPUMB       Bank = "pumb"
	BankSense      Bank = "sensebank"
	BankABank      Bank = "abank"
	BankPrivat     Bank = "privatbank"
	BankMillennium Bank = "millennium"
)

// Source fetches canonical transactions for one account and time window.
// Implementations return an empty result when the account has no statements
// (or no statement documents) for the window.
type Source interface {
	FetchStatements(ctx context.Context, iban string, start, end time.Time) ([]model.Transaction, error)
}

// UnknownAccountError reports an account key the source does not recognize.
// Fatal for that account only; the run continues with the remaining
// accounts.
type UnknownAccountError struct {
	Bank Bank
	IBAN string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%s: unknown account %s", e.Bank, e.IBAN)
}

// ParseError reports a malformed row in a statement document that was
// otherwise located and readable. Fatal for the whole account batch.
type ParseError struct {
	Bank Bank
	File string
	Row  int
	Err  error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s row %d: %v", e.Bank, e.File, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: row %d: %v", e.Bank, e.Row, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TableExtractor produces tabular rows from a statement document. PDF table
// extraction itself is an external concern; engines only ever see the rows.
// Cells may contain newlines where the source cell wrapped lines.
type TableExtractor interface {
	ExtractTable(path string) ([][]string, error)
}
