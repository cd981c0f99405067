package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlfarrant/budgetgrid/internal/domain"
)

func TestStore_AddCategory_Defaults(t *testing.T) {
	s := New()

	category := s.AddCategory(domain.CategoryKindIncome, "")

	assert.Equal(t, domain.DefaultCategoryLabel, category.Label)
	assert.Empty(t, category.Transactions)
	for _, v := range category.Totals {
		assert.True(t, v.IsZero())
	}

	snapshot := s.Snapshot()
	require.Len(t, snapshot.Incomes, 1)
	assert.Equal(t, category.ID, snapshot.Incomes[0].ID)
	assert.Empty(t, snapshot.Expenses)
}

func TestStore_AddCategory_DistinctIDs(t *testing.T) {
	s := New()

	first := s.AddCategory(domain.CategoryKindExpense, "Housing")
	second := s.AddCategory(domain.CategoryKindExpense, "Housing")

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, s.Snapshot().Expenses, 2)
}

func TestStore_AddTransaction_ZeroFilled(t *testing.T) {
	s := New()
	category := s.AddCategory(domain.CategoryKindIncome, "Salary")

	tx, err := s.AddTransaction(domain.CategoryKindIncome, category.ID, "")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTransactionLabel, tx.Label)
	for _, v := range tx.MonthlyValues {
		assert.True(t, v.IsZero())
	}

	snapshot := s.Snapshot()
	require.Len(t, snapshot.Incomes[0].Transactions, 1)
}

func TestStore_AddTransaction_UnknownCategory(t *testing.T) {
	s := New()
	s.AddCategory(domain.CategoryKindIncome, "Salary")

	_, err := s.AddTransaction(domain.CategoryKindIncome, uuid.New(), "Bonus")

	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Empty(t, s.Snapshot().Incomes[0].Transactions)
}

func TestStore_SetTransactionValue_RecomputesTotals(t *testing.T) {
	s := New()
	category := s.AddCategory(domain.CategoryKindIncome, "Salary")
	tx, err := s.AddTransaction(domain.CategoryKindIncome, category.ID, "Paycheck")
	require.NoError(t, err)

	require.NoError(t, s.SetTransactionValue(domain.CategoryKindIncome, tx.ID, 0, decimal.NewFromInt(1000)))
	require.NoError(t, s.SetTransactionValue(domain.CategoryKindIncome, tx.ID, 0, decimal.NewFromInt(1500)))
	require.NoError(t, s.SetTransactionValue(domain.CategoryKindIncome, tx.ID, 5, decimal.NewFromInt(200)))

	got := s.Snapshot().Incomes[0]
	assert.True(t, got.Totals[0].Equal(decimal.NewFromInt(1500)), "edits overwrite, not accumulate")
	assert.True(t, got.Totals[5].Equal(decimal.NewFromInt(200)))
	assert.True(t, got.Totals[1].IsZero())
}

func TestStore_TotalsInvariant_UnderMutationSequence(t *testing.T) {
	s := New()
	category := s.AddCategory(domain.CategoryKindExpense, "Household")

	first, err := s.AddTransaction(domain.CategoryKindExpense, category.ID, "Rent")
	require.NoError(t, err)
	second, err := s.AddTransaction(domain.CategoryKindExpense, category.ID, "Power")
	require.NoError(t, err)

	require.NoError(t, s.SetTransactionValue(domain.CategoryKindExpense, first.ID, 0, decimal.NewFromInt(900)))
	require.NoError(t, s.SetTransactionValue(domain.CategoryKindExpense, second.ID, 0, decimal.NewFromInt(80)))
	require.NoError(t, s.SetTransactionValue(domain.CategoryKindExpense, second.ID, 3, decimal.NewFromInt(120)))
	require.NoError(t, s.DeleteTransaction(domain.CategoryKindExpense, first.ID))

	// totals[m] must equal the element-wise sum of the remaining transactions
	got := s.Snapshot().Expenses[0]
	require.Len(t, got.Transactions, 1)
	for m := range got.Totals {
		want := decimal.Decimal{}
		for _, tx := range got.Transactions {
			want = want.Add(tx.MonthlyValues[m])
		}
		assert.True(t, got.Totals[m].Equal(want), "month %d: totals %s != sum %s", m, got.Totals[m], want)
	}
	assert.True(t, got.Totals[0].Equal(decimal.NewFromInt(80)))
	assert.True(t, got.Totals[3].Equal(decimal.NewFromInt(120)))
}

func TestStore_SetAllMonthsToValue(t *testing.T) {
	s := New()
	category := s.AddCategory(domain.CategoryKindIncome, "Salary")
	tx, err := s.AddTransaction(domain.CategoryKindIncome, category.ID, "Paycheck")
	require.NoError(t, err)

	require.NoError(t, s.SetTransactionValue(domain.CategoryKindIncome, tx.ID, 2, decimal.NewFromInt(2500)))
	require.NoError(t, s.SetAllMonthsToValue(domain.CategoryKindIncome, tx.ID, 2))

	got := s.Snapshot().Incomes[0].Transactions[0]
	for m, v := range got.MonthlyValues {
		assert.True(t, v.Equal(decimal.NewFromInt(2500)), "month %d: got %s", m, v)
	}
}

func TestStore_RenameOps(t *testing.T) {
	s := New()
	category := s.AddCategory(domain.CategoryKindExpense, "Misc")
	tx, err := s.AddTransaction(domain.CategoryKindExpense, category.ID, "Stuff")
	require.NoError(t, err)

	require.NoError(t, s.RenameCategory(domain.CategoryKindExpense, category.ID, "Household"))
	require.NoError(t, s.RenameTransaction(domain.CategoryKindExpense, tx.ID, "Groceries"))

	snapshot := s.Snapshot()
	assert.Equal(t, "Household", snapshot.Expenses[0].Label)
	assert.Equal(t, "Groceries", snapshot.Expenses[0].Transactions[0].Label)

	assert.ErrorIs(t, s.RenameCategory(domain.CategoryKindExpense, uuid.New(), "x"), domain.ErrCategoryNotFound)
	assert.ErrorIs(t, s.RenameTransaction(domain.CategoryKindExpense, uuid.New(), "x"), domain.ErrTransactionNotFound)
}

func TestStore_DeleteTransaction_NotFound(t *testing.T) {
	s := New()
	s.AddCategory(domain.CategoryKindIncome, "Salary")

	err := s.DeleteTransaction(domain.CategoryKindIncome, uuid.New())

	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestStore_Snapshot_Immutable(t *testing.T) {
	s := New()
	category := s.AddCategory(domain.CategoryKindIncome, "Salary")
	tx, err := s.AddTransaction(domain.CategoryKindIncome, category.ID, "Paycheck")
	require.NoError(t, err)

	before := s.Snapshot()
	require.NoError(t, s.SetTransactionValue(domain.CategoryKindIncome, tx.ID, 0, decimal.NewFromInt(999)))
	after := s.Snapshot()

	// The earlier snapshot must not observe the later write
	assert.True(t, before.Incomes[0].Transactions[0].MonthlyValues[0].IsZero())
	assert.True(t, after.Incomes[0].Transactions[0].MonthlyValues[0].Equal(decimal.NewFromInt(999)))
}

func TestStore_MonthRange(t *testing.T) {
	s := New()

	// Defaults to the full year
	r := s.MonthRange()
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, 1, *r.From)
	assert.Equal(t, 12, *r.To)

	require.NoError(t, s.SetMonthRange(domain.NewMonthRange(3, 8)))
	assert.Equal(t, 3, *s.MonthRange().From)

	// An inverted range is rejected and the previous one kept
	err := s.SetMonthRange(domain.NewMonthRange(10, 2))
	assert.ErrorIs(t, err, domain.ErrInvalidMonthRange)
	assert.Equal(t, 3, *s.MonthRange().From)
	assert.Equal(t, 8, *s.MonthRange().To)
}
