// Package analytics derives totals and breakdowns from the ledger. Every
// call re-reads the ledger and recomputes, so results never lag behind a
// write. Amounts keep full decimal precision; rounding belongs to whoever
// displays them.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/budgetkit/budget/internal/ledger"
	"github.com/budgetkit/budget/internal/model"
)

// Source is the read side of the ledger.
type Source interface {
	List(f ledger.Filter) ([]model.Transaction, error)
}

// MonthTotals holds the income and expense sums for one calendar month.
type MonthTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Balance is income minus expense for the month.
func (m MonthTotals) Balance() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}

// Monthly maps "YYYY-MM" to that month's totals. Only months with at least
// one transaction are present.
type Monthly map[string]MonthTotals

// Months returns the keys in ascending chronological order.
func (m Monthly) Months() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CategoryAmount is one entry of a ranked category breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Ranked orders a category breakdown by amount, largest first, breaking
// ties by name.
func Ranked(byCategory map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(byCategory))
	for cat, amt := range byCategory {
		out = append(out, CategoryAmount{Category: cat, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Stats is a quick snapshot of the ledger.
type Stats struct {
	TransactionCount int             `json:"transaction_count"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	AverageExpense   decimal.Decimal `json:"average_expense"`
	CategoriesCount  int             `json:"categories_count"`
}

// Summary is every aggregate, computed from a single snapshot.
type Summary struct {
	TotalIncome        decimal.Decimal            `json:"total_income"`
	TotalExpense       decimal.Decimal            `json:"total_expense"`
	Balance            decimal.Decimal            `json:"balance"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
	IncomeByCategory   map[string]decimal.Decimal `json:"income_by_category"`
	Monthly            Monthly                    `json:"monthly_summary"`
	Stats              Stats                      `json:"stats"`
}

// Compute aggregates txns in one pass.
func Compute(txns []model.Transaction) Summary {
	s := Summary{
		TotalIncome:        decimal.Zero,
		TotalExpense:       decimal.Zero,
		ExpensesByCategory: make(map[string]decimal.Decimal),
		IncomeByCategory:   make(map[string]decimal.Decimal),
		Monthly:            make(Monthly),
	}

	categories := make(map[string]struct{})
	expenseCount := 0
	for _, txn := range txns {
		month := s.Monthly[txn.Month()]
		switch txn.Type {
		case model.TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(txn.Amount)
			s.IncomeByCategory[txn.Category] = s.IncomeByCategory[txn.Category].Add(txn.Amount)
			month.Income = month.Income.Add(txn.Amount)
		case model.TypeExpense:
			s.TotalExpense = s.TotalExpense.Add(txn.Amount)
			s.ExpensesByCategory[txn.Category] = s.ExpensesByCategory[txn.Category].Add(txn.Amount)
			month.Expense = month.Expense.Add(txn.Amount)
			expenseCount++
		default:
			// The store never persists other types.
			continue
		}
		s.Monthly[txn.Month()] = month
		categories[txn.Category] = struct{}{}
	}

	s.Balance = s.TotalIncome.Sub(s.TotalExpense)

	avg := decimal.Zero
	if expenseCount > 0 {
		avg = s.TotalExpense.Div(decimal.NewFromInt(int64(expenseCount)))
	}
	s.Stats = Stats{
		TransactionCount: len(txns),
		TotalIncome:      s.TotalIncome,
		TotalExpense:     s.TotalExpense,
		Balance:          s.Balance,
		AverageExpense:   avg,
		CategoriesCount:  len(categories),
	}
	return s
}

// Engine answers aggregate queries against a Source. It keeps no state and
// is safe for concurrent use.
type Engine struct {
	src Source
}

// NewEngine creates an Engine reading from src.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// TotalIncome sums every income amount.
func (e *Engine) TotalIncome() (decimal.Decimal, error) {
	return e.sumOf(model.TypeIncome)
}

// TotalExpense sums every expense amount.
func (e *Engine) TotalExpense() (decimal.Decimal, error) {
	return e.sumOf(model.TypeExpense)
}

// Balance is total income minus total expense. It may be negative.
func (e *Engine) Balance() (decimal.Decimal, error) {
	s, err := e.Summary()
	if err != nil {
		return decimal.Zero, err
	}
	return s.Balance, nil
}

// ExpensesByCategory sums expenses per category.
func (e *Engine) ExpensesByCategory() (map[string]decimal.Decimal, error) {
	return e.byCategory(model.TypeExpense)
}

// IncomeByCategory sums income per category.
func (e *Engine) IncomeByCategory() (map[string]decimal.Decimal, error) {
	return e.byCategory(model.TypeIncome)
}

// MonthlySummary buckets income and expense by "YYYY-MM".
func (e *Engine) MonthlySummary() (Monthly, error) {
	s, err := e.Summary()
	if err != nil {
		return nil, err
	}
	return s.Monthly, nil
}

// Stats returns counts, totals and the average expense.
func (e *Engine) Stats() (Stats, error) {
	s, err := e.Summary()
	if err != nil {
		return Stats{}, err
	}
	return s.Stats, nil
}

// Summary computes every aggregate from one read of the ledger.
func (e *Engine) Summary() (Summary, error) {
	txns, err := e.src.List(ledger.Filter{})
	if err != nil {
		return Summary{}, err
	}
	return Compute(txns), nil
}

func (e *Engine) sumOf(t model.TransactionType) (decimal.Decimal, error) {
	txns, err := e.src.List(ledger.Filter{Type: t})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total, nil
}

func (e *Engine) byCategory(t model.TransactionType) (map[string]decimal.Decimal, error) {
	txns, err := e.src.List(ledger.Filter{Type: t})
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		out[txn.Category] = out[txn.Category].Add(txn.Amount)
	}
	return out, nil
}
