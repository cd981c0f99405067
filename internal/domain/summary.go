package domain

import "github.com/shopspring/decimal"

// Summary is the full derived view consumed by the rendering layer.
// Every field is recomputed from the current budget snapshot after each
// commit; nothing here is independently mutable.
type Summary struct {
	Incomes                []Category                     `json:"incomes"`
	Expenses               []Category                     `json:"expenses"`
	IncomeMonthlyTotals    [MonthsPerYear]decimal.Decimal `json:"incomeMonthlyTotals"`
	ExpenseMonthlyTotals   [MonthsPerYear]decimal.Decimal `json:"expenseMonthlyTotals"`
	MonthlyProfitsOrLosses [MonthsPerYear]decimal.Decimal `json:"monthlyProfitsOrLosses"`
	MonthlyOpenBalances    [MonthsPerYear]decimal.Decimal `json:"monthlyOpenBalances"`
	MonthlyCloseBalances   [MonthsPerYear]decimal.Decimal `json:"monthlyCloseBalances"`
	MonthRange             MonthRange                     `json:"monthRange"`
}
