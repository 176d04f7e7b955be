package engine

import (
	"fmt"
	"time"
)

// privatEngine parses ПриватБанк card statement PDFs. Same page-repeated
// lattice layout as А-Банк but without an mcc column.
type privatEngine struct {
	extract TableExtractor
	loc     *time.Location
}

const (
	privatDateFormat = "02.01.2006\n15:04"

	privatColDate   = "Дата операції"
	privatColDesc   = "Деталі операції"
	privatColAmount = "Сума у валюті картки"
)

func newPrivatEngine(extract TableExtractor, loc *time.Location) *privatEngine {
	return &privatEngine{extract: extract, loc: loc}
}

func (e *privatEngine) glob() string { return "*.pdf" }

func (e *privatEngine) parseDocument(path string) ([]row, error) {
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
	for _, name := range []string{privatColDate, privatColDesc, privatColAmount} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []row
	for _, rec := range table[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("expected %d columns, got %d", len(header), len(rec))
		}
		if headerKey(rec[cols[privatColDate]]) == privatColDate {
			continue
		}
		rows = append(rows, row{
			date:        rec[cols[privatColDate]],
			description: rec[cols[privatColDesc]],
			amount:      rec[cols[privatColAmount]],
		})
	}
	return rows, nil
}

func (e *privatEngine) parseRow(r row) (fields, error) {
	at, err := time.ParseInLocation(privatDateFormat, r.date, e.loc)
	if err != nil {
		return fields{}, fmt.Errorf("parsing date %q: %w", r.date, err)
	}
	amount, err := parseDisplayAmount(r.amount)
	if err != nil {
		return fields{}, fmt.Errorf("parsing amount %q: %w", r.amount, err)
	}
	return fields{
		time:        at,
		amount:      amount,
		description: r.description,
	}, nil
}
