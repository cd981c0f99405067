package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryKind distinguishes the two category collections. Income and
// expense categories are structurally identical.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// Default labels applied when a new row is created without one
const (
	DefaultCategoryLabel    = "New parent category"
	DefaultTransactionLabel = "New category"
)

// Transaction is a single line item holding one value per calendar month.
// MonthlyValues always has all 12 slots regardless of the active month range.
type Transaction struct {
	ID            uuid.UUID                      `json:"id"`
	Label         string                         `json:"label"`
	MonthlyValues [MonthsPerYear]decimal.Decimal `json:"monthlyValues"`
}

// Category is a named grouping owning an ordered list of transactions.
// Totals is a derived cache, recomputed in full whenever the transaction
// set or any transaction's values change.
type Category struct {
	ID           uuid.UUID                      `json:"id"`
	Label        string                         `json:"label"`
	Transactions []Transaction                  `json:"transactions"`
	Totals       [MonthsPerYear]decimal.Decimal `json:"totals"`
}

// CategoryTotals sums the transactions' monthly values element-wise
func CategoryTotals(transactions []Transaction) [MonthsPerYear]decimal.Decimal {
	var totals [MonthsPerYear]decimal.Decimal
	for _, tx := range transactions {
		for m, v := range tx.MonthlyValues {
			totals[m] = totals[m].Add(v)
		}
	}
	return totals
}

// Budget is the top-level snapshot of both category collections
type Budget struct {
	Incomes  []Category `json:"incomes"`
	Expenses []Category `json:"expenses"`
}

// Categories returns the collection for the given kind
func (b Budget) Categories(kind CategoryKind) []Category {
	if kind == CategoryKindExpense {
		return b.Expenses
	}
	return b.Incomes
}

// BudgetRepository is the mutable store behind the editor. Every mutation
// produces a fresh snapshot; readers never observe in-place changes.
// Lookup failures return sentinel errors so callers can treat them as
// expected UI races rather than faults.
type BudgetRepository interface {
	Snapshot() Budget
	MonthRange() MonthRange
	SetMonthRange(r MonthRange) error
	AddCategory(kind CategoryKind, label string) Category
	AddTransaction(kind CategoryKind, categoryID uuid.UUID, label string) (Transaction, error)
	RenameCategory(kind CategoryKind, id uuid.UUID, label string) error
	RenameTransaction(kind CategoryKind, id uuid.UUID, label string) error
	SetTransactionValue(kind CategoryKind, id uuid.UUID, monthIndex int, value decimal.Decimal) error
	SetAllMonthsToValue(kind CategoryKind, id uuid.UUID, sourceMonth int) error
	DeleteTransaction(kind CategoryKind, id uuid.UUID) error
}
