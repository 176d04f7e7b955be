package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/budgetsync-dev/budgetsync/internal/budget"
	"github.com/budgetsync-dev/budgetsync/internal/config"
	"github.com/budgetsync-dev/budgetsync/internal/engine"
	"github.com/budgetsync-dev/budgetsync/internal/importer"
	"github.com/budgetsync-dev/budgetsync/internal/logger"
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

func newImportCommand() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch statements from every configured source and upload them",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Tokens in the config reference environment variables; a local
			// .env file is the usual place to keep them.
			_ = godotenv.Load()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.New(verbose)

			var sources []importer.SourceSet
			var allAccounts []*model.Account
			for _, sc := range cfg.Sources {
				accounts := sc.AccountList()
				src, err := engine.New(engine.Bank(sc.Bank), engine.Options{
					Token:    sc.Token,
					Retries:  sc.Retries,
					Accounts: accounts,
				})
				if err != nil {
					return fmt.Errorf("configuring source %q: %w", sc.Bank, err)
				}
				sources = append(sources, importer.SourceSet{Source: src, Accounts: accounts})
				allAccounts = append(allAccounts, accounts...)
			}

			mappings, err := cfg.Mappings(allAccounts)
			if err != nil {
				return err
			}

			client, err := budget.NewClient(cfg.Budget.Token, cfg.Budget.BudgetName)
			if err != nil {
				return err
			}
			defer client.Close()

			runner := importer.NewRunner(cfg.Import, sources, mappings, client, log)
			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Fetched %d statements (%d cancelled, %d transfer legs merged)\nImported %d, %d already known\n",
				report.Fetched, report.Cancelled, report.TransfersDropped,
				report.Imported, report.Duplicates)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "budgetsync.yaml", "path to the configuration file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}
