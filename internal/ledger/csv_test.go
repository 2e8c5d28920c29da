package ledger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetkit/budget/internal/model"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:          "7c1e4a52-5d0b-4f7e-9a51-0b6f3c2d9e01",
			Date:        date(2024, 12, 1),
			Type:        model.TypeIncome,
			Category:    "Salary",
			Amount:      dec("5000.00"),
			Description: "December salary",
		},
		{
			ID:       "2b9f6d10-8e3a-4c1d-b7f2-6a4e5c3b2d02",
			Date:     date(2024, 12, 15),
			Type:     model.TypeExpense,
			Category: "Food",
			Amount:   dec("45.99"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range txns {
		assert.Equal(t, txns[i].ID, got[i].ID)
		assert.Equal(t, txns[i].Date, got[i].Date)
		assert.Equal(t, txns[i].Type, got[i].Type)
		assert.Equal(t, txns[i].Category, got[i].Category)
		assert.True(t, txns[i].Amount.Equal(got[i].Amount), "amount mismatch row %d", i)
		assert.Equal(t, txns[i].Description, got[i].Description)
	}
}

func TestMarshalTransaction(t *testing.T) {
	row := MarshalTransaction(model.Transaction{
		ID:       "abc",
		Date:     date(2024, 3, 9),
		Type:     model.TypeExpense,
		Category: "Health",
		Amount:   dec("127.5"),
	})
	assert.Equal(t, []string{"abc", "2024-03-09", "Expense", "Health", "127.50", ""}, row)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4", "4.00"},
		{"127.5", "127.50"},
		{"3500", "3500.00"},
		{"0.10", "0.10"},
		{"45.99", "45.99"},
		{"0.125", "0.125"},
		{"1000000", "1000000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(dec(tt.input)), "input %q", tt.input)
	}
}

func TestSpecialCharactersInFields(t *testing.T) {
	txn := model.Transaction{
		ID:          "a7b1c5d4-4d0e-4b2f-9a6c-8e5d9f0a1b06",
		Date:        date(2024, 12, 15),
		Type:        model.TypeExpense,
		Category:    "Food, Drink",
		Amount:      dec("45.99"),
		Description: "Dinner at \"Luigi's\", table 4\nsplit with Sam",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, []model.Transaction{txn}))
	assert.Contains(t, buf.String(), `"Food, Drink"`)

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, txn.Category, got[0].Category)
	assert.Equal(t, txn.Description, got[0].Description)
}

func TestEncodeRow(t *testing.T) {
	row, err := DefaultLayout().EncodeRow(model.Transaction{
		ID:          "abc",
		Date:        date(2024, 12, 1),
		Type:        model.TypeIncome,
		Category:    "Salary",
		Amount:      dec("5000"),
		Description: "a,b",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc,2024-12-01,Income,Salary,5000.00,\"a,b\"\n", string(row))
}

func TestLayout_FollowsFileHeader(t *testing.T) {
	layout, err := ParseLayout([]string{"\ufeffDate", "ID", "Note", "Type", "Category", "Amount", "Description"})
	require.NoError(t, err)

	row, err := layout.EncodeRow(model.Transaction{
		ID:       "abc",
		Date:     date(2024, 12, 1),
		Type:     model.TypeExpense,
		Category: "Food",
		Amount:   dec("9.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01,abc,,Expense,Food,9.50,\n", string(row))
	assert.Equal(t, "\ufeffDate", layout.Header()[0])
}

func TestParseLayout_MissingColumn(t *testing.T) {
	_, err := ParseLayout([]string{"id", "date", "type", "category", "description"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestReadTransactions_Empty(t *testing.T) {
	txns, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestReadTransactions_HeaderOnly(t *testing.T) {
	txns, err := ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestReadTransactions_HeaderVariants(t *testing.T) {
	// Reordered, capitalized, with a trailing column a newer writer added.
	input := "\ufeffDate,ID,TYPE,Category,Amount,Description,Tags\n" +
		"2024-12-01,abc,Income,Salary,5000,pay,monthly\n"

	txns, err := ReadTransactions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "abc", txns[0].ID)
	assert.Equal(t, date(2024, 12, 1), txns[0].Date)
	assert.Equal(t, "pay", txns[0].Description)
}

func TestReadTransactions_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRow int
		field   string
	}{
		{"missing column", "id,date,type,amount,description\n", 1, ""},
		{"bad amount", Header + "\nabc,2024-12-01,Income,Salary,lots,\n", 2, "amount"},
		{"bad date", Header + "\nabc,2024-13-01,Income,Salary,10,\n", 2, "date"},
		{"bad type", Header + "\nabc,2024-12-01,Transfer,Salary,10,\n", 2, "type"},
		{"negative amount", Header + "\nabc,2024-12-01,Expense,Food,-10,\n", 2, "amount"},
		{"zero amount", Header + "\nabc,2024-12-01,Expense,Food,0,\n", 2, "amount"},
		{"empty category", Header + "\nabc,2024-12-01,Expense,,10,\n", 2, "category"},
		{"empty id", Header + "\n,2024-12-01,Expense,Food,10,\n", 2, "id"},
		{"wrong field count", Header + "\nabc,2024-12-01,Expense,Food,10,x\ndef,2024-12-02,Expense\n", 3, ""},
		{"duplicate id", Header + "\nabc,2024-12-01,Expense,Food,10,\nabc,2024-12-02,Expense,Food,5,\n", 3, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(tt.input))
			require.Error(t, err)

			var rerr *rowError
			require.True(t, errors.As(err, &rerr), "want rowError, got %T: %v", err, err)
			assert.Equal(t, tt.wantRow, rerr.row)

			if tt.field != "" {
				var ierr *InvalidRecordError
				require.True(t, errors.As(err, &ierr), "want InvalidRecordError, got %v", err)
				assert.Equal(t, tt.field, ierr.Field)
			}
		})
	}
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/transactions.csv")
	require.NoError(t, err)
	defer f.Close()

	txns, err := ReadTransactions(f)
	require.NoError(t, err)
	require.Len(t, txns, 7)

	assert.Equal(t, model.TypeIncome, txns[0].Type)
	assert.True(t, txns[0].Amount.Equal(dec("5000")))
	assert.Equal(t, "Dinner, Luigi's", txns[5].Description)

	for i, txn := range txns {
		assert.NotEmpty(t, txn.ID, "row %d missing id", i)
		assert.True(t, txn.Date.IsValid(), "row %d bad date", i)
		assert.True(t, txn.Amount.IsPositive(), "row %d non-positive amount", i)
	}
}

func TestDecimalPrecision(t *testing.T) {
	// 0.1 + 0.2 must survive a write/read exactly.
	txn := model.Transaction{
		ID:       "p",
		Date:     date(2025, 1, 11),
		Type:     model.TypeExpense,
		Category: "Food",
		Amount:   dec("0.1").Add(dec("0.2")),
	}
	got, err := UnmarshalTransaction(MarshalTransaction(txn))
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(dec("0.30")), "got %s", got.Amount)
}
