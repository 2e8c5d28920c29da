package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetkit/budget/internal/importer"
)

func newImportCommand(a *app) *cobra.Command {
	var format string

	registry := importer.Builtin()

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a CSV export",
		Long: `Import transactions from a CSV file into the ledger.

Rows whose id is already in the ledger are skipped, so importing a
backup twice adds nothing the second time.`,
		Example: `  budget import backup.csv
  budget import --format chase ~/Downloads/Chase1234_Activity.CSV`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := registry.Lookup(format)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			txns, err := parser.Parse(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			res, err := importer.Import(store, txns)
			if err != nil {
				return err
			}

			a.log.Info().
				Str("file", args[0]).
				Str("format", parser.Format()).
				Int("added", res.Added).
				Int("skipped", res.Skipped).
				Msg("import finished")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transaction(s), skipped %d already present\n",
				res.Added, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "ledger", "input format: "+strings.Join(registry.Formats(), ", "))
	return cmd
}
