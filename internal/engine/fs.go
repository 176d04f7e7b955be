package engine

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/budgetsync-dev/budgetsync/internal/id"
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// row is the normalized intermediate record produced by document parsing.
// Engines fill only the columns their format carries; parseRow validates
// the ones it needs.
type row struct {
	date        string
	amount      string
	debit       string
	credit      string
	description string
	mcc         string
	kind        string // inflow/outflow marker where the format has one
	comment     string
}

// fields is the canonical per-row parse result.
type fields struct {
	time        time.Time
	amount      int64
	description string
	mcc         int
	comment     string
}

// tableEngine is the per-bank capability set the filesystem driver runs:
// locate documents, turn each into rows, parse each row.
type tableEngine interface {
	glob() string
	parseDocument(path string) ([]row, error)
	parseRow(r row) (fields, error)
}

// postProcessor optionally rewrites the combined row set before per-row
// parsing (deduplication, currency conversion).
type postProcessor interface {
	postProcess(rows []row) ([]row, error)
}

// FileSource reads offline statement exports from <root>/<iban>/ and runs
// them through a bank-specific table engine.
type FileSource struct {
	bank     Bank
	root     string
	accounts map[string]*model.Account
	eng      tableEngine
}

func newFileSource(bank Bank, root string, accounts []*model.Account, eng tableEngine) *FileSource {
	s := &FileSource{
		bank:     bank,
		root:     root,
		accounts: make(map[string]*model.Account),
		eng:      eng,
	}
	for _, a := range accounts {
		if a.IBAN != "" {
			s.accounts[a.IBAN] = a
		}
	}
	return s
}

// FetchStatements parses every export found for the account and returns the
// transactions falling inside [start, end]. A missing document directory or
// an empty glob means no statements for the window, not an error.
func (s *FileSource) FetchStatements(ctx context.Context, iban string, start, end time.Time) ([]model.Transaction, error) {
	account, ok := s.accounts[iban]
	if !ok {
		return nil, &UnknownAccountError{Bank: s.bank, IBAN: iban}
	}

	matches, err := filepath.Glob(filepath.Join(s.root, iban, s.eng.glob()))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Strings(matches)

	var rows []row
	for _, f := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := s.eng.parseDocument(f)
		if err != nil {
			return nil, &ParseError{Bank: s.bank, File: filepath.Base(f), Err: err}
		}
		rows = append(rows, parsed...)
	}

	if pp, ok := s.eng.(postProcessor); ok {
		if rows, err = pp.postProcess(rows); err != nil {
			return nil, err
		}
	}

	var out []model.Transaction
	for i, r := range rows {
		f, err := s.eng.parseRow(r)
		if err != nil {
			return nil, &ParseError{Bank: s.bank, Row: i, Err: err}
		}
		if f.time.Before(start) || f.time.After(end) {
			continue
		}
		out = append(out, model.Transaction{
			Account:     account,
			Time:        f.time,
			Amount:      f.amount,
			Description: f.description,
			Comment:     f.comment,
			MCC:         f.mcc,
			ID:          id.StatementRef(string(s.bank), f.time, f.amount, i),
		})
	}
	return out, nil
}
