package importer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/budgetkit/budget/internal/ledger"
	"github.com/budgetkit/budget/internal/model"
)

// Parser converts an exported CSV file into ledger transactions. Parsers
// that know stable IDs set them; others leave ID empty for the ledger to
// assign.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry maps --format names to parsers.
type Registry struct {
	byFormat map[string]Parser
}

// NewRegistry returns a registry holding parsers.
func NewRegistry(parsers ...Parser) (*Registry, error) {
	r := &Registry{byFormat: make(map[string]Parser, len(parsers))}
	for _, p := range parsers {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Builtin returns a registry with the ledger and Chase parsers.
func Builtin() *Registry {
	r, err := NewRegistry(&LedgerParser{}, &ChaseParser{})
	if err != nil {
		panic(err)
	}
	return r
}

// Add makes p available under its format name, case-insensitively.
func (r *Registry) Add(p Parser) error {
	name := strings.ToLower(p.Format())
	if _, taken := r.byFormat[name]; taken {
		return fmt.Errorf("format %q registered twice", name)
	}
	r.byFormat[name] = p
	return nil
}

// Lookup returns the parser for format. An unknown format is an error that
// lists the ones available.
func (r *Registry) Lookup(format string) (Parser, error) {
	if p, ok := r.byFormat[strings.ToLower(strings.TrimSpace(format))]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(r.Formats(), ", "))
}

// Formats lists the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.byFormat))
	for name := range r.byFormat {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LedgerParser reads another transactions.csv, such as a backup or a file
// written by an older version of the tracker.
type LedgerParser struct{}

// Format returns the parser name.
func (p *LedgerParser) Format() string { return "ledger" }

// Parse reads a transactions.csv.
func (p *LedgerParser) Parse(r io.Reader) ([]model.Transaction, error) {
	return ledger.ReadTransactions(r)
}

// Appender is the write side of the ledger.
type Appender interface {
	List(f ledger.Filter) ([]model.Transaction, error)
	Append(txn model.Transaction) (model.Transaction, error)
}

// Result counts what Import did.
type Result struct {
	Added   int
	Skipped int // IDs already in the ledger
}

// Import appends txns to dst, skipping any whose ID is already present, so
// re-importing the same file is harmless. Rows are appended one at a time;
// a failure part way leaves the earlier rows in place.
func Import(dst Appender, txns []model.Transaction) (Result, error) {
	existing, err := dst.List(ledger.Filter{})
	if err != nil {
		return Result{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, txn := range existing {
		seen[txn.ID] = true
	}

	var res Result
	for i, txn := range txns {
		if txn.ID != "" && seen[txn.ID] {
			res.Skipped++
			continue
		}
		stored, err := dst.Append(txn)
		if err != nil {
			return res, fmt.Errorf("importing row %d: %w", i+1, err)
		}
		seen[stored.ID] = true
		res.Added++
	}
	return res, nil
}
