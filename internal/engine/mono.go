package engine

import (
	"context"
	"time"

	"github.com/budgetsync-dev/budgetsync/internal/model"
	"github.com/budgetsync-dev/budgetsync/internal/mono"
)

// monoAPI is the slice of the monobank client the source needs.
type monoAPI interface {
	ClientInfo(ctx context.Context) (*mono.ClientInfo, error)
	Statements(ctx context.Context, accountID string, from, to time.Time) ([]mono.Statement, error)
}

// monoSource adapts the live monobank API to the Source interface. The API
// already reports amounts in minor units and assigns stable statement ids,
// so parsing reduces to field mapping.
type monoSource struct {
	api      monoAPI
	accounts map[string]*model.Account
	loc      *time.Location

	ids map[string]string // iban -> API account id, filled on first use
}

func newMonoSource(api monoAPI, accounts []*model.Account, loc *time.Location) *monoSource {
	s := &monoSource{
		api:      api,
		accounts: make(map[string]*model.Account),
		loc:      loc,
	}
	for _, a := range accounts {
		if a.IBAN != "" {
			s.accounts[a.IBAN] = a
		}
	}
	return s
}

func (s *monoSource) FetchStatements(ctx context.Context, iban string, start, end time.Time) ([]model.Transaction, error) {
	account, ok := s.accounts[iban]
	if !ok {
		return nil, &UnknownAccountError{Bank: BankMono, IBAN: iban}
	}

	if s.ids == nil {
		info, err := s.api.ClientInfo(ctx)
		if err != nil {
			return nil, err
		}
		s.ids = make(map[string]string, len(info.Accounts))
		for _, a := range info.Accounts {
			s.ids[a.IBAN] = a.ID
		}
	}
	accountID, ok := s.ids[iban]
	if !ok {
		// Configured but not owned by the token.
		return nil, &UnknownAccountError{Bank: BankMono, IBAN: iban}
	}

	stmts, err := s.api.Statements(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]model.Transaction, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, model.Transaction{
			Account:     account,
			Time:        time.Unix(st.Time, 0).In(s.loc),
			Amount:      st.Amount,
			Description: st.Description,
			MCC:         st.MCC,
			ID:          st.ID,
		})
	}
	return out, nil
}
