package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// pumbEngine parses ПУМБ card statement PDFs. The export is one lattice
// table per document with a four-row totals block at the bottom.
type pumbEngine struct {
	extract TableExtractor
	loc     *time.Location
}

const (
	pumbNumCols     = 8
	pumbSummaryRows = 4
	pumbColDate     = 0
	pumbColAmount   = 3 // amount in account currency
	pumbColDesc     = 6
	pumbColKind     = 7
	pumbDateFormat  = "2006-01-02\n15:04:05"
	pumbInflowKind  = "Надходження"
)

var pumbAmountRe = regexp.MustCompile(`(-?\d+\.\d{2})(?: UAH)`)

func newPUMBEngine(extract TableExtractor, loc *time.Location) *pumbEngine {
	return &pumbEngine{extract: extract, loc: loc}
}

func (e *pumbEngine) glob() string { return "*.pdf" }

func (e *pumbEngine) parseDocument(path string) ([]row, error) {
	table, err := e.extract.ExtractTable(path)
	if err != nil {
		return nil, err
	}
	if len(table) <= 1 {
		return nil, nil
	}
	recs := table[1:] // header row
	if len(recs) <= pumbSummaryRows {
		return nil, nil
	}
	recs = recs[:len(recs)-pumbSummaryRows]

	// A page break can split one logical row across two physical rows; only
	// one of them carries the amount cell. Fold amount-less fragments into
	// the preceding logical row.
	var rows []row
	for _, rec := range recs {
		if len(rec) < pumbNumCols {
			return nil, fmt.Errorf("expected %d columns, got %d", pumbNumCols, len(rec))
		}
		r := row{
			date:        rec[pumbColDate],
			amount:      rec[pumbColAmount],
			description: rec[pumbColDesc],
			kind:        rec[pumbColKind],
		}
		if r.amount == "" && len(rows) > 0 {
			last := &rows[len(rows)-1]
			last.date = joinFragments(last.date, r.date)
			last.description = joinFragments(last.description, r.description)
			last.kind = joinFragments(last.kind, r.kind)
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// postProcess drops logical duplicates across overlapping monthly exports,
// keeping the last-seen occurrence of each (date, amount) pair.
func (e *pumbEngine) postProcess(rows []row) ([]row, error) {
	type key struct{ date, amount string }
	last := make(map[key]int, len(rows))
	for i, r := range rows {
		last[key{r.date, r.amount}] = i
	}
	kept := rows[:0]
	for i, r := range rows {
		if last[key{r.date, r.amount}] == i {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func (e *pumbEngine) parseRow(r row) (fields, error) {
	at, err := time.ParseInLocation(pumbDateFormat, r.date, e.loc)
	if err != nil {
		return fields{}, fmt.Errorf("parsing date %q: %w", r.date, err)
	}

	m := pumbAmountRe.FindStringSubmatch(r.amount)
	if m == nil {
		return fields{}, fmt.Errorf("parsing amount %q: no UAH value", r.amount)
	}
	amount, err := parseDisplayAmount(m[1])
	if err != nil {
		return fields{}, fmt.Errorf("parsing amount %q: %w", r.amount, err)
	}
	if r.kind != pumbInflowKind {
		amount = -amount
	}

	return fields{
		time:        at,
		amount:      amount,
		description: strings.Join(strings.Fields(r.description), " "),
	}, nil
}

// joinFragments concatenates non-empty cell fragments the way the source
// table joins wrapped lines.
func joinFragments(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
