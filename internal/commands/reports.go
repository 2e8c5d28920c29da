package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetkit/budget/internal/analytics"
	"github.com/budgetkit/budget/internal/model"
	"github.com/budgetkit/budget/internal/report"
)

func (a *app) engine() (*analytics.Engine, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return analytics.NewEngine(store), nil
}

func newSummaryCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals, balance and per-category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			s, err := engine.Summary()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return report.Summary(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newMonthlyCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Income and expenses per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			m, err := engine.MonthlySummary()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), m)
			}
			return report.Monthly(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Quick statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			s, err := engine.Stats()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return report.Stats(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newCategoriesCommand(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the recommended categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.categories()
			types := model.Types
			if typ != "" {
				t, ok := model.ParseType(typ)
				if !ok {
					return fmt.Errorf("unknown type %q: must be Income or Expense", typ)
				}
				types = []model.TransactionType{t}
			}
			for _, t := range types {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t, strings.Join(svc.ByType(t), ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only Income or Expense")
	return cmd
}
