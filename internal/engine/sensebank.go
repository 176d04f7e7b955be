package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// senseEngine parses Sense Bank card statement CSV exports: cp1251 encoded,
// semicolon separated, five preamble lines, one totals line at the bottom,
// and the header block repeated in front of every card section.
type senseEngine struct {
	loc *time.Location
}

const (
	senseHeaderLines = 5
	senseDateFormat  = "02.01.06 15:04"

	// Header cell names as exported. The "C" in the amount columns is a
	// latin C in the source files.
	senseColDate   = "Дата і час"
	senseColDesc   = "Деталі"
	senseColMCC    = "MCC"
	senseColDebit  = "Cума списання"
	senseColCredit = "Cума зарахування"
)

var senseSectionRe = regexp.MustCompile(`^(Операції за карткою:|Деталізація операцій за карткою:) .+`)

func newSenseEngine(loc *time.Location) *senseEngine {
	return &senseEngine{loc: loc}
}

func (e *senseEngine) glob() string { return "*.csv" }

func (e *senseEngine) parseDocument(path string) ([]row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding cp1251: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(decoded), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	// Five preamble lines on top, one totals line at the bottom.
	if len(lines) <= senseHeaderLines+1 {
		return nil, nil
	}
	lines = lines[senseHeaderLines : len(lines)-1]

	cr := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	required := 0
	for _, name := range []string{senseColDate, senseColDesc, senseColDebit, senseColCredit} {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		if i >= required {
			required = i + 1
		}
	}

	var rows []row
	for n, rec := range records[1:] {
		if isSenseHeader(rec, header) {
			continue
		}
		// The reader allows ragged records because of the repeated section
		// lines; data rows still need every required cell.
		if len(rec) < required {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", n+1, required, len(rec))
		}
		r := row{
			date:        rec[cols[senseColDate]],
			description: rec[cols[senseColDesc]],
			debit:       rec[cols[senseColDebit]],
			credit:      rec[cols[senseColCredit]],
		}
		if i, ok := cols[senseColMCC]; ok && i < len(rec) {
			r.mcc = rec[i]
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// isSenseHeader reports whether a record is one of the header/section lines
// the export repeats in front of every card block.
func isSenseHeader(rec, header []string) bool {
	if len(rec) == 0 {
		return true
	}
	if senseSectionRe.MatchString(rec[0]) {
		return true
	}
	if len(rec) != len(header) {
		return false
	}
	for i := range rec {
		if rec[i] != header[i] {
			return false
		}
	}
	return true
}

func (e *senseEngine) parseRow(r row) (fields, error) {
	at, err := time.ParseInLocation(senseDateFormat, r.date, e.loc)
	if err != nil {
		return fields{}, fmt.Errorf("parsing date %q: %w", r.date, err)
	}

	// The export splits the signed amount across two columns; exactly one is
	// filled per row.
	cell := r.credit
	if strings.TrimSpace(cell) == "" {
		cell = r.debit
	}
	amount, err := parseDisplayAmount(cell)
	if err != nil {
		return fields{}, fmt.Errorf("parsing amount %q: %w", cell, err)
	}

	f := fields{
		time:        at,
		amount:      amount,
		description: r.description,
	}
	if s := strings.TrimSpace(r.mcc); s != "" {
		mcc, err := strconv.Atoi(s)
		if err != nil {
			return fields{}, fmt.Errorf("parsing mcc %q: %w", r.mcc, err)
		}
		f.mcc = mcc
	}
	return f, nil
}
