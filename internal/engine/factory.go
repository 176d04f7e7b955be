package engine

import (
	"fmt"
	"time"

	"github.com/budgetsync-dev/budgetsync/internal/model"
	"github.com/budgetsync-dev/budgetsync/internal/mono"
	"github.com/budgetsync-dev/budgetsync/internal/rates"
)

// Options carries the per-source configuration the factory needs.
type Options struct {
	// Token is the API token for live sources and the statement export
	// directory for file-based sources.
	Token    string
	Retries  int
	Accounts []*model.Account
	// Extractor overrides the default pdftotext extraction, mainly in tests.
	Extractor TableExtractor
	// RatesCachePath overrides where the millennium engine persists its
	// exchange-rate cache.
	RatesCachePath string
}

// Source banks keep statements in their local civil time; the budget is
// maintained against Ukrainian accounts.
const (
	uaTimezone     = "Europe/Kyiv"
	lisbonTimezone = "Europe/Lisbon"
)

const defaultRatesCachePath = "rates_cache.json"

// New builds the Source for one configured bank. The bank set is closed;
// anything unrecognized is a configuration error.
func New(bank Bank, opts Options) (Source, error) {
	extract := opts.Extractor
	if extract == nil {
		extract = PDFTextExtractor{}
	}

	switch bank {
	case BankMono:
		loc, err := time.LoadLocation(uaTimezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone: %w", err)
		}
		return newMonoSource(mono.New(opts.Token, opts.Retries), opts.Accounts, loc), nil

	case BankPUMB, BankSense, BankABank, BankPrivat:
		loc, err := time.LoadLocation(uaTimezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone: %w", err)
		}
		var eng tableEngine
		switch bank {
		case BankPUMB:
			eng = newPUMBEngine(extract, loc)
		case BankSense:
			eng = newSenseEngine(loc)
		case BankABank:
			eng = newABankEngine(extract, loc)
		case BankPrivat:
			eng = newPrivatEngine(extract, loc)
		}
		return newFileSource(bank, opts.Token, opts.Accounts, eng), nil

	case BankMillennium:
		loc, err := time.LoadLocation(lisbonTimezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone: %w", err)
		}
		cachePath := opts.RatesCachePath
		if cachePath == "" {
			cachePath = defaultRatesCachePath
		}
		eng := newMillenniumEngine(extract, loc, rates.New(cachePath, rates.EUR))
		return newFileSource(bank, opts.Token, opts.Accounts, eng), nil

	default:
		return nil, fmt.Errorf("unknown bank %q", bank)
	}
}
