// Package validate checks raw user input before it reaches the ledger.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/budgetkit/budget/internal/ledger"
	"github.com/budgetkit/budget/internal/model"
)

// Limits bounds what a caller may record.
type Limits struct {
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	DescriptionMaxLength int
}

// DefaultLimits allows amounts from 0.01 to 1,000,000 and 500-character
// descriptions.
func DefaultLimits() Limits {
	return Limits{
		MinAmount:            decimal.New(1, -2),
		MaxAmount:            decimal.NewFromInt(1_000_000),
		DescriptionMaxLength: 500,
	}
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects every problem found in one input.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Input is an unparsed transaction as typed by a user.
type Input struct {
	Type        string
	Category    string
	Amount      string
	Date        string // YYYY-MM-DD, empty for today
	Description string
}

// Transaction parses and checks in. On failure the error is an Errors value
// listing every bad field. The returned transaction has no ID; an empty
// Date is left zero for the ledger to fill in.
func Transaction(in Input, limits Limits) (model.Transaction, error) {
	var errs Errors
	var txn model.Transaction

	if strings.TrimSpace(in.Type) == "" {
		errs = append(errs, FieldError{"type", "is required"})
	} else if t, ok := model.ParseType(in.Type); ok {
		txn.Type = t
	} else {
		errs = append(errs, FieldError{"type", fmt.Sprintf("%q must be one of: Income, Expense", in.Type)})
	}

	txn.Category = strings.TrimSpace(in.Category)
	if txn.Category == "" {
		errs = append(errs, FieldError{"category", "must be a non-empty string"})
	}

	if strings.TrimSpace(in.Amount) == "" {
		errs = append(errs, FieldError{"amount", "is required"})
	} else if amt, err := decimal.NewFromString(strings.TrimSpace(in.Amount)); err != nil {
		errs = append(errs, FieldError{"amount", fmt.Sprintf("%q must be a valid number", in.Amount)})
	} else if amt.LessThan(limits.MinAmount) {
		errs = append(errs, FieldError{"amount", fmt.Sprintf("must be at least %s", limits.MinAmount)})
	} else if amt.GreaterThan(limits.MaxAmount) {
		errs = append(errs, FieldError{"amount", fmt.Sprintf("cannot exceed %s", limits.MaxAmount)})
	} else {
		txn.Amount = amt
	}

	if s := strings.TrimSpace(in.Date); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			errs = append(errs, FieldError{"date", fmt.Sprintf("%q must be in format YYYY-MM-DD", in.Date)})
		} else {
			txn.Date = d
		}
	}

	txn.Description = Sanitize(in.Description)
	if n := utf8.RuneCountInString(txn.Description); limits.DescriptionMaxLength > 0 && n > limits.DescriptionMaxLength {
		errs = append(errs, FieldError{"description", fmt.Sprintf("cannot exceed %d characters (got %d)", limits.DescriptionMaxLength, n)})
	}

	if len(errs) > 0 {
		return model.Transaction{}, errs
	}
	return txn, nil
}

// Filter builds a ledger filter from optional type, category and date
// strings.
func Filter(typ, category, date string) (ledger.Filter, error) {
	var f ledger.Filter
	var errs Errors

	if strings.TrimSpace(typ) != "" {
		t, ok := model.ParseType(typ)
		if !ok {
			errs = append(errs, FieldError{"type", fmt.Sprintf("%q must be one of: Income, Expense", typ)})
		}
		f.Type = t
	}
	f.Category = strings.TrimSpace(category)
	if strings.TrimSpace(date) != "" {
		d, err := civil.ParseDate(strings.TrimSpace(date))
		if err != nil {
			errs = append(errs, FieldError{"date", fmt.Sprintf("%q must be in format YYYY-MM-DD", date)})
		}
		f.Date = d
	}

	if len(errs) > 0 {
		return ledger.Filter{}, errs
	}
	return f, nil
}

// Sanitize collapses runs of whitespace, including newlines, to single
// spaces and trims the ends.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
