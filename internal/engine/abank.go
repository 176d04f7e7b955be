package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// abankEngine parses А-Банк card statement PDFs. The lattice table repeats
// its header on every page.
type abankEngine struct {
	extract TableExtractor
	loc     *time.Location
}

const (
	abankDateFormat = "02.01.2006\n15:04"

	abankColDate   = "Дата і час операції"
	abankColDesc   = "Деталі операції"
	abankColMCC    = "МСС" // cyrillic in the export
	abankColAmount = "Сума у валюті карти (UAH)"

	// monoDisplayName is how А-Банк labels inbound/outbound monobank
	// transfers in the description column.
	monoDisplayName = "Монобанк"
)

func newABankEngine(extract TableExtractor, loc *time.Location) *abankEngine {
	return &abankEngine{extract: extract, loc: loc}
}

func (e *abankEngine) glob() string { return "*.pdf" }

func (e *abankEngine) parseDocument(path string) ([]row, error) {
	table, err := e.extract.ExtractTable(path)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, nil
	}

	header := table[0]
	cols := map[string]int{}
	for i, name := range header {
		cols[headerKey(name)] = i
	}
	for _, name := range []string{abankColDate, abankColDesc, abankColMCC, abankColAmount} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []row
	for _, rec := range table[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("expected %d columns, got %d", len(header), len(rec))
		}
		if headerKey(rec[cols[abankColDate]]) == abankColDate {
			// Header repeated on a page boundary.
			continue
		}
		rows = append(rows, row{
			date:        rec[cols[abankColDate]],
			description: rec[cols[abankColDesc]],
			mcc:         rec[cols[abankColMCC]],
			amount:      rec[cols[abankColAmount]],
		})
	}
	return rows, nil
}

func (e *abankEngine) parseRow(r row) (fields, error) {
	at, err := time.ParseInLocation(abankDateFormat, r.date, e.loc)
	if err != nil {
		return fields{}, fmt.Errorf("parsing date %q: %w", r.date, err)
	}
	amount, err := parseDisplayAmount(r.amount)
	if err != nil {
		return fields{}, fmt.Errorf("parsing amount %q: %w", r.amount, err)
	}
	mcc, err := strconv.Atoi(strings.TrimSpace(r.mcc))
	if err != nil {
		return fields{}, fmt.Errorf("parsing mcc %q: %w", r.mcc, err)
	}

	// The bank reports inter-bank transfers as plain statements named after
	// the partner bank. Relabel them so downstream transfer matching can
	// pick them up.
	description := r.description
	if (mcc == 6010 || mcc == 4829) && description == monoDisplayName {
		description = "Transfer: " + description
	}

	return fields{
		time:        at,
		amount:      amount,
		description: description,
		mcc:         mcc,
	}, nil
}

// headerKey normalizes a header cell: wrapped lines joined with spaces.
func headerKey(cell string) string {
	return strings.Join(strings.Fields(cell), " ")
}
