package service

import (
	"github.com/shopspring/decimal"

	"github.com/dlfarrant/budgetgrid/internal/domain"
)

// SummaryService derives the aggregate view of the budget. All values are
// recomputed in full from the current snapshot; there is no incremental
// bookkeeping to get out of sync.
type SummaryService struct {
	budgetRepo domain.BudgetRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(budgetRepo domain.BudgetRepository) *SummaryService {
	return &SummaryService{budgetRepo: budgetRepo}
}

// Summarize computes the full derived view of the current snapshot
func (s *SummaryService) Summarize() domain.Summary {
	budget := s.budgetRepo.Snapshot()

	incomeTotals := MonthlyTotals(budget.Incomes)
	expenseTotals := MonthlyTotals(budget.Expenses)

	var profitsOrLosses [domain.MonthsPerYear]decimal.Decimal
	for m := range profitsOrLosses {
		profitsOrLosses[m] = incomeTotals[m].Sub(expenseTotals[m])
	}

	// The year opens at zero; each month opens with the previous month's
	// profit or loss and closes with its own added on top.
	var openBalances, closeBalances [domain.MonthsPerYear]decimal.Decimal
	for m := range openBalances {
		if m > 0 {
			openBalances[m] = profitsOrLosses[m-1]
		}
		closeBalances[m] = openBalances[m].Add(profitsOrLosses[m])
	}

	return domain.Summary{
		Incomes:                budget.Incomes,
		Expenses:               budget.Expenses,
		IncomeMonthlyTotals:    incomeTotals,
		ExpenseMonthlyTotals:   expenseTotals,
		MonthlyProfitsOrLosses: profitsOrLosses,
		MonthlyOpenBalances:    openBalances,
		MonthlyCloseBalances:   closeBalances,
		MonthRange:             s.budgetRepo.MonthRange(),
	}
}

// MonthlyTotals sums the categories' cached totals element-wise
func MonthlyTotals(categories []domain.Category) [domain.MonthsPerYear]decimal.Decimal {
	var totals [domain.MonthsPerYear]decimal.Decimal
	for _, category := range categories {
		for m, v := range category.Totals {
			totals[m] = totals[m].Add(v)
		}
	}
	return totals
}
