package engine

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// rateSource provides daily exchange rates for converting foreign-currency
// statements into the budget currency.
type rateSource interface {
	Load(from, to time.Time) error
	Rate(day time.Time) (float64, bool)
}

// millenniumEngine parses Extrato Combinado monthly reports by Millennium
// bcp. The extraction is positional (no table grid), so rows arrive with a
// fixed six-column layout. Amounts are in EUR and converted into the budget
// currency through a rate source; the original EUR value is kept as the
// transaction comment.
type millenniumEngine struct {
	extract TableExtractor
	loc     *time.Location
	rates   rateSource
}

const (
	millNumCols    = 6
	millColDate    = 0
	millColDesc    = 2
	millColDebit   = 3
	millColCredit  = 4
	millDateFormat = "01.02.2006"

	// Sentinel rows delimiting the data and the page breaks.
	millFirstRow      = "SALDO INICIAL"
	millLastRow       = "SALDO FINAL"
	millPageBreakFrom = "A TRANSPORTAR"
	millPageBreakTo   = "TRANSPORTE"
)

var millFileRe = regexp.MustCompile(`^Extrato Combinado (\d{4})\d{3}\.pdf$`)

func newMillenniumEngine(extract TableExtractor, loc *time.Location, rates rateSource) *millenniumEngine {
	return &millenniumEngine{extract: extract, loc: loc, rates: rates}
}

func (e *millenniumEngine) glob() string { return "Extrato Combinado 20*.pdf" }

func (e *millenniumEngine) parseDocument(path string) ([]row, error) {
	m := millFileRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return nil, fmt.Errorf("unexpected report file name %q", filepath.Base(path))
	}
	year := m[1] // column dates carry no year; the file name does

	table, err := e.extract.ExtractTable(path)
	if err != nil {
		return nil, err
	}

	var (
		rows      []row
		inData    bool
		pageBreak bool
	)
	for _, rec := range table {
		if len(rec) < millNumCols {
			continue
		}
		switch rec[millColDesc] {
		case millFirstRow:
			inData = true
			continue
		case millLastRow:
			inData = false
			continue
		case millPageBreakFrom:
			pageBreak = true
			continue
		case millPageBreakTo:
			pageBreak = false
			continue
		}
		if !inData || pageBreak {
			continue
		}
		rows = append(rows, row{
			date:        rec[millColDate] + "." + year,
			description: rec[millColDesc],
			debit:       strings.ReplaceAll(rec[millColDebit], " ", ""),
			credit:      strings.ReplaceAll(rec[millColCredit], " ", ""),
		})
	}
	return rows, nil
}

// postProcess fetches the exchange rates covering the report's date span so
// parseRow can convert each amount.
func (e *millenniumEngine) postProcess(rows []row) ([]row, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	var from, to time.Time
	for _, r := range rows {
		day, err := time.ParseInLocation(millDateFormat, r.date, e.loc)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", r.date, err)
		}
		if from.IsZero() || day.Before(from) {
			from = day
		}
		if to.IsZero() || day.After(to) {
			to = day
		}
	}
	if err := e.rates.Load(from, to); err != nil {
		return nil, fmt.Errorf("loading exchange rates: %w", err)
	}
	return rows, nil
}

func (e *millenniumEngine) parseRow(r row) (fields, error) {
	at, err := time.ParseInLocation(millDateFormat, r.date, e.loc)
	if err != nil {
		return fields{}, fmt.Errorf("parsing date %q: %w", r.date, err)
	}

	eur, err := millAmount(r.credit, r.debit)
	if err != nil {
		return fields{}, err
	}
	rate, ok := e.rates.Rate(at)
	if !ok {
		return fields{}, fmt.Errorf("no exchange rate for %s", at.Format("2006-01-02"))
	}

	converted := eur.Mul(decimal.NewFromFloat(rate))
	return fields{
		time:        at,
		amount:      converted.Shift(2).IntPart(),
		description: r.description,
		comment:     "€" + eur.Abs().StringFixed(2),
	}, nil
}

// millAmount returns the signed EUR amount from the debit/credit pair;
// exactly one of the two cells is filled per row.
func millAmount(credit, debit string) (decimal.Decimal, error) {
	if credit != "" {
		d, err := decimal.NewFromString(credit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing credit %q: %w", credit, err)
		}
		return d, nil
	}
	d, err := decimal.NewFromString(debit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing debit %q: %w", debit, err)
	}
	return d.Neg(), nil
}
