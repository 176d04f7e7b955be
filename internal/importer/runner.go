// Package importer runs the import pipeline: fetch statements from every
// enabled account, drop cancellation pairs, resolve mapped fields, collapse
// inter-account transfers and bulk-upload the result.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgetsync-dev/budgetsync/internal/budget"
	"github.com/budgetsync-dev/budgetsync/internal/config"
	"github.com/budgetsync-dev/budgetsync/internal/engine"
	"github.com/budgetsync-dev/budgetsync/internal/filter"
	"github.com/budgetsync-dev/budgetsync/internal/mapping"
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// submitChunkSize caps one bulk upload request.
const submitChunkSize = 1000

// BudgetClient is the upload side of the pipeline.
type BudgetClient interface {
	SubmitTransactions(ctx context.Context, txns []model.CategorizedTransaction) (*budget.SubmitResult, error)
}

// SourceSet pairs one statement source with its configured accounts.
type SourceSet struct {
	Source   engine.Source
	Accounts []*model.Account
}

// Report summarizes one pipeline run.
type Report struct {
	Fetched          int
	Cancelled        int
	TransfersDropped int
	Imported         int
	Duplicates       int
}

// Runner executes the import pipeline for a set of sources.
type Runner struct {
	settings config.ImportSettings
	sources  []SourceSet
	mappings *mapping.Mappings
	budget   BudgetClient
	log      zerolog.Logger

	// injected for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// NewRunner wires a pipeline run. The runner itself is stateless between
// runs except for the optional last-import timestamp file.
func NewRunner(settings config.ImportSettings, sources []SourceSet, mappings *mapping.Mappings, budgetClient BudgetClient, log zerolog.Logger) *Runner {
	return &Runner{
		settings: settings,
		sources:  sources,
		mappings: mappings,
		budget:   budgetClient,
		log:      log,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Run executes one import. A fetch failure for one account is logged and
// the run continues with the remaining accounts; a rejected upload aborts
// the run so the operator can inspect the batch.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start, end, err := r.window()
	if err != nil {
		return nil, err
	}
	r.log.Info().Time("start", start).Time("end", end).Msg("importing statements")

	report := &Report{}
	var all []model.Transaction
	first := true
	for _, set := range r.sources {
		for _, account := range set.Accounts {
			if !account.Enabled {
				r.log.Debug().Str("account", account.Name).Msg("account disabled, skipping")
				continue
			}
			if !first && r.settings.DelaySeconds > 0 {
				r.sleep(time.Duration(r.settings.DelaySeconds) * time.Second)
			}
			first = false

			batch, err := set.Source.FetchStatements(ctx, account.IBAN, start, end)
			if err != nil {
				r.log.Error().Err(err).Str("account", account.Name).Msg("fetching statements failed")
				continue
			}
			report.Fetched += len(batch)

			if r.settings.RemoveCancelled {
				cancels := filter.NewCancelFilter(batch)
				batch = cancels.Apply(batch)
				report.Cancelled += cancels.Skipped()
			}
			r.log.Info().Str("account", account.Name).Int("statements", len(batch)).Msg("fetched")
			all = append(all, batch...)
		}
	}

	assembled := Assemble(all, r.mappings)

	if r.settings.MergeTransfers {
		transfers := filter.NewTransferFilter()
		kept := assembled[:0]
		for i := range assembled {
			if transfers.Keep(&assembled[i]) {
				kept = append(kept, assembled[i])
			}
		}
		assembled = kept
		report.TransfersDropped = transfers.Dropped()
		if n := transfers.Pending(); n > 0 {
			r.log.Warn().Int("count", n).Msg("transfer legs without a counterpart in this window")
		}
	}

	for len(assembled) > 0 {
		chunk := assembled
		if len(chunk) > submitChunkSize {
			chunk = chunk[:submitChunkSize]
		}
		assembled = assembled[len(chunk):]

		res, err := r.budget.SubmitTransactions(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("submitting transactions: %w", err)
		}
		report.Imported += res.Imported
		report.Duplicates += res.Duplicates
	}

	if r.settings.RememberLast {
		if err := SaveLastRun(r.stateFile(), end); err != nil {
			return nil, err
		}
	}

	r.log.Info().
		Int("fetched", report.Fetched).
		Int("cancelled", report.Cancelled).
		Int("transfers_dropped", report.TransfersDropped).
		Int("imported", report.Imported).
		Int("duplicates", report.Duplicates).
		Msg("import finished")
	return report, nil
}

// window determines the import range. An explicitly configured window wins;
// otherwise the run resumes from the recorded last import and ends now.
func (r *Runner) window() (start, end time.Time, err error) {
	start = r.settings.Start
	end = r.settings.End
	if end.IsZero() {
		end = r.now()
	}

	if r.settings.RememberLast {
		last, err := LoadLastRun(r.stateFile())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if last.After(start) {
			start = last
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("empty import window: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return start, end, nil
}

func (r *Runner) stateFile() string {
	if r.settings.StateFile != "" {
		return r.settings.StateFile
	}
	return "last_import"
}
