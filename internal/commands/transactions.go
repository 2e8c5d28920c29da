package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetkit/budget/internal/id"
	"github.com/budgetkit/budget/internal/ledger"
	"github.com/budgetkit/budget/internal/logger"
	"github.com/budgetkit/budget/internal/report"
	"github.com/budgetkit/budget/internal/validate"
)

func newAddCommand(a *app) *cobra.Command {
	var in validate.Input
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Example: `  budget add --type Income --category Salary --amount 5000 --date 2024-12-01
  budget add --type Expense --category Food --amount 45.99 --description "Dinner"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())

			limits, err := a.cfg.ValidationLimits()
			if err != nil {
				return err
			}
			txn, err := validate.Transaction(in, limits)
			if err != nil {
				return err
			}

			if canon, ok := a.categories().Lookup(txn.Type, txn.Category); ok {
				txn.Category = canon
			} else {
				log.Warn().
					Str("type", string(txn.Type)).
					Str("category", txn.Category).
					Msg("category is not in the recommended set")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			stored, err := store.Append(txn)
			if err != nil {
				return fmt.Errorf("adding transaction: %w", err)
			}
			log.Info().Str("id", stored.ID).Msg("transaction added")

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stored)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s on %s (id %s)\n",
				stored.Type, stored.Category, report.Money(stored.Amount), stored.Date, stored.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Type, "type", "", "Income or Expense (required)")
	cmd.Flags().StringVar(&in.Category, "category", "", "category (required)")
	cmd.Flags().StringVar(&in.Amount, "amount", "", "positive amount, e.g. 45.99 (required)")
	cmd.Flags().StringVar(&in.Date, "date", "", "YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&in.Description, "description", "", "optional note")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored transaction as JSON")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var typ, category, date string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := validate.Filter(typ, category, date)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			txns, err := store.List(filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), txns)
			}
			return report.Transactions(cmd.OutOrStdout(), txns)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only Income or Expense")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&date, "date", "", "only this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction by id or unique id prefix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			txnID, err := resolveID(store, args[0])
			if err != nil {
				return err
			}

			removed := false
			if txnID != "" {
				removed, err = store.Remove(txnID)
				if err != nil {
					return fmt.Errorf("removing transaction: %w", err)
				}
			}
			if !removed {
				a.log.Warn().Str("id", args[0]).Msg("transaction not found")
				fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s not found\n", args[0])
				return nil
			}

			a.log.Info().Str("id", txnID).Msg("transaction removed")
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", txnID)
			return nil
		},
	}
}

func resolveID(store *ledger.Store, arg string) (string, error) {
	txns, err := store.List(ledger.Filter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(txns))
	for i, txn := range txns {
		ids[i] = txn.ID
	}
	resolved, err := id.Resolve(arg, ids)
	if err != nil {
		return "", fmt.Errorf("resolving id: %w", err)
	}
	return resolved, nil
}

func newClearCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction, keeping the ledger file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the ledger without --yes")
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := store.Clear()
			if err != nil {
				return fmt.Errorf("clearing ledger: %w", err)
			}
			a.log.Info().Int("removed", n).Msg("ledger cleared")
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transaction(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every transaction")
	return cmd
}
