package id

import (
	"fmt"
	"time"
)

// ImportPrefix namespaces idempotency keys sent to the budgeting service.
// Bump it while debugging to force the service to accept a batch again.
const ImportPrefix = "1_"

// ImportID returns the idempotency key for a statement, like "1_a3kF9".
// The service deduplicates resubmitted statements on this key.
func ImportID(statementID string) string {
	return ImportPrefix + statementID
}

// StatementRef builds a stable identifier for statements whose source format
// carries none (scraped table rows), like "pumb_20240105T131500_-12550_3".
// The sequence disambiguates same-second, same-amount rows in one batch.
func StatementRef(source string, at time.Time, amount int64, seq int) string {
	return fmt.Sprintf("%s_%s_%d_%d", source, at.Format("20060102T150405"), amount, seq)
}

