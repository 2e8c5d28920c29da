package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/budgetkit/budget/internal/buildinfo"
	"github.com/budgetkit/budget/internal/categories"
	"github.com/budgetkit/budget/internal/config"
	"github.com/budgetkit/budget/internal/ledger"
	"github.com/budgetkit/budget/internal/logger"
)

// app carries what every subcommand needs, populated before RunE.
type app struct {
	configPath string
	dataPath   string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:     "budget",
		Short:   "Personal income and expense tracker",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&a.dataPath, "data", "", "ledger CSV file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAddCommand(a),
		newListCommand(a),
		newRemoveCommand(a),
		newClearCommand(a),
		newSummaryCommand(a),
		newMonthlyCommand(a),
		newStatsCommand(a),
		newCategoriesCommand(a),
		newImportCommand(a),
	)

	return rootCmd
}

// setup loads .env, the config file and flag overrides, then builds the
// logger. Flags beat environment, environment beats the file.
func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if a.dataPath != "" {
		cfg.Data.Path = a.dataPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cmd.ErrOrStderr(), logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log.With().Str("command", cmd.Name()).Logger()
	cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
	return nil
}

// openStore opens the configured ledger, creating it on first use.
func (a *app) openStore() (*ledger.Store, error) {
	path := a.cfg.DataPath()
	s, err := ledger.Open(path, ledger.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return s, nil
}

func (a *app) categories() *categories.Service {
	return categories.NewService(a.cfg.CategorySet())
}
