package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/budgetkit/budget/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports. Negative amounts
// become expenses, positive ones income.
type ChaseParser struct {
	// Categories assigned to imported rows. Empty means "Other Income" and
	// "Other Expense".
	IncomeCategory  string
	ExpenseCategory string
}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Zero-amount rows are dropped.
func (p *ChaseParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, ok, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if ok {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (p *ChaseParser) parseRow(rec []string) (model.Transaction, bool, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}
	if amount.IsZero() {
		return model.Transaction{}, false, nil
	}

	txn := model.Transaction{
		Date:        civil.DateOf(date),
		Amount:      amount.Abs(),
		Description: strings.Join(strings.Fields(rec[chaseColDesc]), " "),
	}
	if amount.IsNegative() {
		txn.Type = model.TypeExpense
		txn.Category = orDefault(p.ExpenseCategory, "Other Expense")
	} else {
		txn.Type = model.TypeIncome
		txn.Category = orDefault(p.IncomeCategory, "Other Income")
	}
	return txn, true, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
