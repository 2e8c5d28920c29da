package report

import (
	"bytes"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetkit/budget/internal/analytics"
	"github.com/budgetkit/budget/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sample() []model.Transaction {
	return []model.Transaction{
		{ID: "7c1e4a52-5d0b-4f7e-9a51-0b6f3c2d9e01", Date: civil.Date{Year: 2024, Month: 11, Day: 28}, Type: model.TypeIncome, Category: "Salary", Amount: dec("5000")},
		{ID: "2b9f6d10-8e3a-4c1d-b7f2-6a4e5c3b2d02", Date: civil.Date{Year: 2024, Month: 12, Day: 1}, Type: model.TypeExpense, Category: "Food", Amount: dec("45.99"), Description: "Dinner"},
		{ID: "c4d8e2f1-1a7b-4e9c-8d3f-5b2a6c7d8e03", Date: civil.Date{Year: 2024, Month: 12, Day: 2}, Type: model.TypeExpense, Category: "Bills", Amount: dec("154.01")},
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4954.01", "$4954.01"},
		{"4954.005", "$4954.01"},
		{"0", "$0.00"},
		{"-15.25", "-$15.25"},
		{"85.5", "$85.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(dec(tt.input)), "input %s", tt.input)
	}
}

func TestShare(t *testing.T) {
	assert.Equal(t, "25.0", Share(dec("50"), dec("200")))
	assert.Equal(t, "33.3", Share(dec("1"), dec("3")))
	assert.Equal(t, "0.0", Share(dec("5"), decimal.Zero))
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, analytics.Compute(sample())))
	out := buf.String()

	assert.Contains(t, out, "BUDGET SUMMARY REPORT")
	assert.Contains(t, out, "$5000.00")
	assert.Contains(t, out, "$200.00")
	assert.Contains(t, out, "$4800.00")

	// Bills (154.01) ranks above Food (45.99).
	bills := strings.Index(out, "Bills")
	food := strings.Index(out, "Food")
	require.True(t, bills > 0 && food > 0)
	assert.Less(t, bills, food)
	assert.Contains(t, out, "( 77.0%)")
	assert.Contains(t, out, "(100.0%)")
}

func TestSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, analytics.Compute(nil)))
	assert.Contains(t, buf.String(), "No expenses recorded.")
	assert.Contains(t, buf.String(), "No income recorded.")
	assert.Contains(t, buf.String(), "$0.00")
}

func TestMonthly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Monthly(&buf, analytics.Compute(sample()).Monthly))
	out := buf.String()

	nov := strings.Index(out, "2024-11:")
	december := strings.Index(out, "2024-12:")
	require.True(t, nov > 0 && december > 0)
	assert.Less(t, nov, december, "months print oldest first")
	assert.Contains(t, out, "-$200.00", "December balance is negative")
}

func TestMonthly_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Monthly(&buf, analytics.Monthly{}))
	assert.Contains(t, buf.String(), "No transactions recorded.")
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, analytics.Compute(sample()).Stats))
	out := buf.String()
	assert.Contains(t, out, "Transactions:")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "$100.00", "average of 45.99 and 154.01")
}

func TestTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transactions(&buf, sample()))
	out := buf.String()

	assert.Contains(t, out, "7c1e4a52")
	assert.NotContains(t, out, "7c1e4a52-5d0b")
	assert.Contains(t, out, "+$5000.00")
	assert.Contains(t, out, "-$45.99")
	assert.Contains(t, out, "2024-12-01")
	assert.Contains(t, out, "Total: 3 transaction(s)")
}

func TestTransactions_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transactions(&buf, nil))
	assert.Equal(t, "No transactions found.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
