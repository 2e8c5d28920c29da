package categories

import "github.com/budgetkit/budget/internal/model"

// Default returns the recommended categories for each transaction type.
func Default() map[model.TransactionType][]string {
	return map[model.TransactionType][]string{
		model.TypeIncome:  {"Salary", "Bonus", "Investment", "Other Income"},
		model.TypeExpense: {"Food", "Transport", "Entertainment", "Bills", "Shopping", "Health", "Other Expense"},
	}
}
