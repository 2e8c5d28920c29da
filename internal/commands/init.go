package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgetkit/budget/internal/config"
	"github.com/budgetkit/budget/internal/ledger"
)

func newInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a budget.yaml and an empty ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return a.runInit(cmd, absDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing budget.yaml")

	return cmd
}

func (a *app) runInit(cmd *cobra.Command, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default()
	if a.cfg != nil {
		cfg.Log = a.cfg.Log
	}
	if a.dataPath != "" {
		cfg.Data.Path = a.dataPath
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	loaded, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	store, err := ledger.Open(loaded.DataPath(), ledger.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	a.log.Info().Str("config", cfgPath).Str("ledger", store.Path()).Msg("initialized")
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized budget at %s (ledger: %s)\n", dir, store.Path())
	return nil
}
