// Package report renders analytics results as plain text. All rounding to
// cents happens here.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/budgetkit/budget/internal/analytics"
	"github.com/budgetkit/budget/internal/id"
	"github.com/budgetkit/budget/internal/model"
)

const width = 50

var hundred = decimal.NewFromInt(100)

// Money formats d as dollars and cents.
// 4954.005 -> "$4954.01", -15.25 -> "-$15.25"
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Share returns part as a percentage of total with one decimal, or "0.0"
// when total is zero.
func Share(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0"
	}
	return part.Div(total).Mul(hundred).StringFixed(1)
}

// Summary writes totals and both category breakdowns.
func Summary(w io.Writer, s analytics.Summary) error {
	var b strings.Builder
	rule(&b, "=")
	b.WriteString("BUDGET SUMMARY REPORT\n")
	rule(&b, "=")
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-20s%12s\n", "Total Income:", Money(s.TotalIncome))
	fmt.Fprintf(&b, "%-20s%12s\n", "Total Expenses:", Money(s.TotalExpense))
	fmt.Fprintf(&b, "%-20s%12s\n", "Balance:", Money(s.Balance))

	breakdown(&b, "EXPENSES BY CATEGORY", s.ExpensesByCategory, s.TotalExpense, "No expenses recorded.")
	breakdown(&b, "INCOME BY CATEGORY", s.IncomeByCategory, s.TotalIncome, "No income recorded.")

	b.WriteString("\n")
	rule(&b, "=")
	_, err := io.WriteString(w, b.String())
	return err
}

// Monthly writes income, expense and balance per month, oldest first.
func Monthly(w io.Writer, m analytics.Monthly) error {
	var b strings.Builder
	rule(&b, "=")
	b.WriteString("MONTHLY BREAKDOWN\n")
	rule(&b, "=")
	b.WriteString("\n")

	months := m.Months()
	if len(months) == 0 {
		b.WriteString("No transactions recorded.\n\n")
	}
	for _, key := range months {
		totals := m[key]
		fmt.Fprintf(&b, "%s:\n", key)
		fmt.Fprintf(&b, "  %-10s%12s\n", "Income:", Money(totals.Income))
		fmt.Fprintf(&b, "  %-10s%12s\n", "Expenses:", Money(totals.Expense))
		fmt.Fprintf(&b, "  %-10s%12s\n", "Balance:", Money(totals.Balance()))
		b.WriteString("\n")
	}
	rule(&b, "=")
	_, err := io.WriteString(w, b.String())
	return err
}

// Stats writes the quick statistics snapshot.
func Stats(w io.Writer, s analytics.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Transactions:\t%d\n", s.TransactionCount)
	fmt.Fprintf(tw, "Total income:\t%s\n", Money(s.TotalIncome))
	fmt.Fprintf(tw, "Total expenses:\t%s\n", Money(s.TotalExpense))
	fmt.Fprintf(tw, "Balance:\t%s\n", Money(s.Balance))
	fmt.Fprintf(tw, "Average expense:\t%s\n", Money(s.AverageExpense))
	fmt.Fprintf(tw, "Categories:\t%d\n", s.CategoriesCount)
	return tw.Flush()
}

// Transactions writes a table of txns with signed amounts.
func Transactions(w io.Writer, txns []model.Transaction) error {
	if len(txns) == 0 {
		_, err := io.WriteString(w, "No transactions found.\n")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, txn := range txns {
		sign := "+"
		if txn.Type == model.TypeExpense {
			sign = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%s\t%s\n",
			id.Short(txn.ID), txn.Date, txn.Type, txn.Category, sign, Money(txn.Amount), truncate(txn.Description, 30))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d transaction(s)\n", len(txns))
	return err
}

func breakdown(b *strings.Builder, title string, byCategory map[string]decimal.Decimal, total decimal.Decimal, empty string) {
	b.WriteString("\n")
	rule(b, "-")
	b.WriteString(title + "\n")
	rule(b, "-")
	if len(byCategory) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, ca := range analytics.Ranked(byCategory) {
		fmt.Fprintf(b, "%-25s%12s (%5s%%)\n", ca.Category, Money(ca.Amount), Share(ca.Amount, total))
	}
}

func rule(b *strings.Builder, ch string) {
	b.WriteString(strings.Repeat(ch, width) + "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
