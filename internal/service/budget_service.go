package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dlfarrant/budgetgrid/internal/domain"
	"github.com/dlfarrant/budgetgrid/internal/websocket"
)

// BudgetService is the single mutation entry point for the budget. Every
// commit goes through here, after which the derived summary is recomputed
// and published to connected clients.
//
// Not-found conditions are swallowed: an edit referencing a row that was
// deleted moments earlier is an expected UI race, not a fault.
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	summaries      *SummaryService
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, summaries *SummaryService) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
		summaries:  summaries,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// Summary returns the current derived view
func (s *BudgetService) Summary() domain.Summary {
	return s.summaries.Summarize()
}

// SetMonthRange replaces the active display range. An inverted range is a
// user-facing validation error, not a race.
func (s *BudgetService) SetMonthRange(r domain.MonthRange) error {
	if err := s.budgetRepo.SetMonthRange(r); err != nil {
		return err
	}
	s.publishSummary()
	return nil
}

// AddCategory appends a new empty category of the given kind
func (s *BudgetService) AddCategory(kind domain.CategoryKind, label string) domain.Category {
	category := s.budgetRepo.AddCategory(kind, label)
	log.Info().
		Str("kind", string(kind)).
		Str("category_id", category.ID.String()).
		Str("label", category.Label).
		Msg("Category created")
	s.publishSummary()
	return category
}

// AddTransaction appends a zero-valued transaction to a category. Returns
// false when the category no longer exists.
func (s *BudgetService) AddTransaction(kind domain.CategoryKind, categoryID uuid.UUID, label string) (domain.Transaction, bool) {
	tx, err := s.budgetRepo.AddTransaction(kind, categoryID, label)
	if err != nil {
		s.logMiss(err, "add transaction", categoryID)
		return domain.Transaction{}, false
	}
	s.publishSummary()
	return tx, true
}

// RenameCategory updates a category's label
func (s *BudgetService) RenameCategory(kind domain.CategoryKind, id uuid.UUID, label string) {
	if err := s.budgetRepo.RenameCategory(kind, id, label); err != nil {
		s.logMiss(err, "rename category", id)
		return
	}
	s.publishSummary()
}

// RenameTransaction updates a transaction's label
func (s *BudgetService) RenameTransaction(kind domain.CategoryKind, id uuid.UUID, label string) {
	if err := s.budgetRepo.RenameTransaction(kind, id, label); err != nil {
		s.logMiss(err, "rename transaction", id)
		return
	}
	s.publishSummary()
}

// SetTransactionValue writes one monthly slot of a transaction
func (s *BudgetService) SetTransactionValue(kind domain.CategoryKind, id uuid.UUID, monthIndex int, value decimal.Decimal) {
	if err := s.budgetRepo.SetTransactionValue(kind, id, monthIndex, value); err != nil {
		s.logMiss(err, "set transaction value", id)
		return
	}
	s.publishSummary()
}

// ApplyValueToAllMonths copies the source month's value into all 12 slots
func (s *BudgetService) ApplyValueToAllMonths(kind domain.CategoryKind, id uuid.UUID, sourceMonth int) {
	if err := s.budgetRepo.SetAllMonthsToValue(kind, id, sourceMonth); err != nil {
		s.logMiss(err, "apply value to all months", id)
		return
	}
	s.publishSummary()
}

// DeleteTransaction removes a transaction after the confirmer answers yes.
// Returns true only when the row was actually removed.
func (s *BudgetService) DeleteTransaction(kind domain.CategoryKind, id uuid.UUID, confirmer domain.Confirmer) bool {
	prompt := fmt.Sprintf("Are you sure you want to delete this transaction? (%s)", id)
	if confirmer == nil || !confirmer.Confirm(prompt) {
		log.Debug().
			Str("transaction_id", id.String()).
			Msg("Transaction delete declined")
		return false
	}

	if err := s.budgetRepo.DeleteTransaction(kind, id); err != nil {
		s.logMiss(err, "delete transaction", id)
		return false
	}
	s.publishSummary()
	return true
}

// logMiss records an expected lookup race at debug level and swallows it
func (s *BudgetService) logMiss(err error, op string, id uuid.UUID) {
	if errors.Is(err, domain.ErrCategoryNotFound) || errors.Is(err, domain.ErrTransactionNotFound) {
		log.Debug().
			Str("op", op).
			Str("id", id.String()).
			Msg("Edit raced a deleted row, ignoring")
		return
	}
	log.Error().Err(err).Str("op", op).Str("id", id.String()).Msg("Budget mutation failed")
}

// publishSummary broadcasts the recomputed view if a publisher is configured
func (s *BudgetService) publishSummary() {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.BudgetUpdated(s.summaries.Summarize()))
	}
}
