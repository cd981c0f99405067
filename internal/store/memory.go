// Package store provides the in-memory budget store. All state is
// transient and rebuilt each session; there is no persistence layer.
package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dlfarrant/budgetgrid/internal/domain"
)

// Store holds the category collections and the active month range.
// Mutations are copy-on-write: every write replaces the affected slices so
// snapshots handed to readers are never modified afterwards.
// It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	budget     domain.Budget
	monthRange domain.MonthRange
}

// New creates an empty store with the full-year month range active
func New() *Store {
	return &Store{
		monthRange: domain.NewMonthRange(1, domain.MonthsPerYear),
	}
}

var _ domain.BudgetRepository = (*Store)(nil)

// Snapshot returns the current budget. The returned slices are immutable;
// later mutations build fresh ones.
func (s *Store) Snapshot() domain.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget
}

// MonthRange returns the active display range
func (s *Store) MonthRange() domain.MonthRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthRange
}

// SetMonthRange replaces the active range. An inverted range is rejected
// with ErrInvalidMonthRange and leaves the previous range in place.
func (s *Store) SetMonthRange(r domain.MonthRange) error {
	if !r.Valid() {
		return domain.ErrInvalidMonthRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monthRange = r
	return nil
}

// AddCategory appends a new empty category to the given collection
func (s *Store) AddCategory(kind domain.CategoryKind, label string) domain.Category {
	label = strings.TrimSpace(label)
	if label == "" {
		label = domain.DefaultCategoryLabel
	}

	category := domain.Category{
		ID:    uuid.New(),
		Label: label,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	categories := s.budget.Categories(kind)
	next := make([]domain.Category, len(categories), len(categories)+1)
	copy(next, categories)
	s.replace(kind, append(next, category))

	log.Debug().
		Str("kind", string(kind)).
		Str("category_id", category.ID.String()).
		Str("label", category.Label).
		Msg("Category added")

	return category
}

// AddTransaction appends a zero-valued transaction to the category with the
// given ID and recomputes the parent's totals
func (s *Store) AddTransaction(kind domain.CategoryKind, categoryID uuid.UUID, label string) (domain.Transaction, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = domain.DefaultTransactionLabel
	}

	tx := domain.Transaction{
		ID:    uuid.New(),
		Label: label,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.budget.Categories(kind)
	idx := indexOfCategory(categories, categoryID)
	if idx < 0 {
		return domain.Transaction{}, domain.ErrCategoryNotFound
	}

	parent := categories[idx]
	transactions := make([]domain.Transaction, len(parent.Transactions), len(parent.Transactions)+1)
	copy(transactions, parent.Transactions)
	parent.Transactions = append(transactions, tx)
	parent.Totals = domain.CategoryTotals(parent.Transactions)

	s.replace(kind, spliceCategory(categories, idx, parent))
	return tx, nil
}

// RenameCategory updates a category's label
func (s *Store) RenameCategory(kind domain.CategoryKind, id uuid.UUID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.budget.Categories(kind)
	idx := indexOfCategory(categories, id)
	if idx < 0 {
		return domain.ErrCategoryNotFound
	}

	category := categories[idx]
	category.Label = label
	s.replace(kind, spliceCategory(categories, idx, category))
	return nil
}

// RenameTransaction updates a transaction's label, searching every
// category of the given kind
func (s *Store) RenameTransaction(kind domain.CategoryKind, id uuid.UUID, label string) error {
	return s.updateTransaction(kind, id, func(tx *domain.Transaction) {
		tx.Label = label
	})
}

// SetTransactionValue writes one monthly slot and recomputes the owning
// category's totals. monthIndex outside 0..11 is a contract violation and
// panics; the caller owns the fixed 12-slot model.
func (s *Store) SetTransactionValue(kind domain.CategoryKind, id uuid.UUID, monthIndex int, value decimal.Decimal) error {
	return s.updateTransaction(kind, id, func(tx *domain.Transaction) {
		tx.MonthlyValues[monthIndex] = value
	})
}

// SetAllMonthsToValue overwrites all 12 slots with the value currently held
// at sourceMonth
func (s *Store) SetAllMonthsToValue(kind domain.CategoryKind, id uuid.UUID, sourceMonth int) error {
	return s.updateTransaction(kind, id, func(tx *domain.Transaction) {
		value := tx.MonthlyValues[sourceMonth]
		for m := range tx.MonthlyValues {
			tx.MonthlyValues[m] = value
		}
	})
}

// DeleteTransaction removes the transaction and recomputes the parent's
// totals. Confirmation is the caller's responsibility.
func (s *Store) DeleteTransaction(kind domain.CategoryKind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.budget.Categories(kind)
	for ci, category := range categories {
		ti := indexOfTransaction(category.Transactions, id)
		if ti < 0 {
			continue
		}

		transactions := make([]domain.Transaction, 0, len(category.Transactions)-1)
		transactions = append(transactions, category.Transactions[:ti]...)
		transactions = append(transactions, category.Transactions[ti+1:]...)

		category.Transactions = transactions
		category.Totals = domain.CategoryTotals(transactions)
		s.replace(kind, spliceCategory(categories, ci, category))

		log.Debug().
			Str("kind", string(kind)).
			Str("transaction_id", id.String()).
			Msg("Transaction deleted")
		return nil
	}
	return domain.ErrTransactionNotFound
}

// updateTransaction clones the owning category, applies fn to a copy of the
// transaction and recomputes totals
func (s *Store) updateTransaction(kind domain.CategoryKind, id uuid.UUID, fn func(*domain.Transaction)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.budget.Categories(kind)
	for ci, category := range categories {
		ti := indexOfTransaction(category.Transactions, id)
		if ti < 0 {
			continue
		}

		transactions := make([]domain.Transaction, len(category.Transactions))
		copy(transactions, category.Transactions)
		fn(&transactions[ti])

		category.Transactions = transactions
		category.Totals = domain.CategoryTotals(transactions)
		s.replace(kind, spliceCategory(categories, ci, category))
		return nil
	}
	return domain.ErrTransactionNotFound
}

// replace swaps in a new collection for the given kind.
// Caller must hold the write lock.
func (s *Store) replace(kind domain.CategoryKind, categories []domain.Category) {
	if kind == domain.CategoryKindExpense {
		s.budget.Expenses = categories
		return
	}
	s.budget.Incomes = categories
}

func indexOfCategory(categories []domain.Category, id uuid.UUID) int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func indexOfTransaction(transactions []domain.Transaction, id uuid.UUID) int {
	for i, tx := range transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func spliceCategory(categories []domain.Category, idx int, category domain.Category) []domain.Category {
	next := make([]domain.Category, len(categories))
	copy(next, categories)
	next[idx] = category
	return next
}
