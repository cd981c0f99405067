package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dlfarrant/budgetgrid/internal/domain"
	"github.com/dlfarrant/budgetgrid/internal/service"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// UpdateMonthRangeRequest represents the month-range update body
type UpdateMonthRangeRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// ApplyAllMonthsRequest represents the apply-to-all-months request body
type ApplyAllMonthsRequest struct {
	Kind        string `json:"kind"`
	SourceMonth int    `json:"sourceMonth"`
}

// DeleteTransactionResponse reports whether the delete was carried out
type DeleteTransactionResponse struct {
	Deleted bool `json:"deleted"`
}

// GetBudget handles GET /api/v1/budget
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	return c.JSON(http.StatusOK, h.budgetService.Summary())
}

// UpdateMonthRange handles PUT /api/v1/month-range
func (h *BudgetHandler) UpdateMonthRange(c echo.Context) error {
	var req UpdateMonthRangeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	for _, bound := range []*int{req.From, req.To} {
		if bound != nil && (*bound < 1 || *bound > domain.MonthsPerYear) {
			return NewValidationError(c, "Month bounds must be between 1 and 12", nil)
		}
	}

	if err := h.budgetService.SetMonthRange(domain.MonthRange{From: req.From, To: req.To}); err != nil {
		if errors.Is(err, domain.ErrInvalidMonthRange) {
			return NewValidationError(c, "Range start must not be after range end", []ValidationError{
				{Field: "from", Message: "Must be less than or equal to 'to'"},
			})
		}
		log.Error().Err(err).Msg("Failed to update month range")
		return NewInternalError(c, "Failed to update month range")
	}

	return c.JSON(http.StatusOK, h.budgetService.Summary().MonthRange)
}

// CreateCategory handles POST /api/v1/categories
func (h *BudgetHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	kind, ok := parseKind(req.Kind)
	if !ok {
		return NewValidationError(c, "Kind must be 'income' or 'expense'", []ValidationError{
			{Field: "kind", Message: "Unknown category kind"},
		})
	}

	category := h.budgetService.AddCategory(kind, req.Label)
	return c.JSON(http.StatusCreated, category)
}

// CreateTransaction handles POST /api/v1/categories/:id/transactions
func (h *BudgetHandler) CreateTransaction(c echo.Context) error {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	kind, ok := parseKind(req.Kind)
	if !ok {
		return NewValidationError(c, "Kind must be 'income' or 'expense'", []ValidationError{
			{Field: "kind", Message: "Unknown category kind"},
		})
	}

	// A vanished category is an expected race with a concurrent delete,
	// not an error surfaced to the user
	tx, created := h.budgetService.AddTransaction(kind, categoryID, req.Label)
	if !created {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, tx)
}

// ApplyAllMonths handles POST /api/v1/transactions/:id/apply-all
func (h *BudgetHandler) ApplyAllMonths(c echo.Context) error {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req ApplyAllMonthsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	kind, ok := parseKind(req.Kind)
	if !ok {
		return NewValidationError(c, "Kind must be 'income' or 'expense'", []ValidationError{
			{Field: "kind", Message: "Unknown category kind"},
		})
	}

	if req.SourceMonth < 0 || req.SourceMonth >= domain.MonthsPerYear {
		return NewValidationError(c, "Source month must be between 0 and 11", []ValidationError{
			{Field: "sourceMonth", Message: "Out of range"},
		})
	}

	h.budgetService.ApplyValueToAllMonths(kind, txID, req.SourceMonth)
	return c.NoContent(http.StatusNoContent)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
// The client passes its confirmation dialog's answer as ?confirm=true;
// anything else leaves the budget untouched.
func (h *BudgetHandler) DeleteTransaction(c echo.Context) error {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	kind, ok := parseKind(c.QueryParam("kind"))
	if !ok {
		return NewValidationError(c, "Kind must be 'income' or 'expense'", []ValidationError{
			{Field: "kind", Message: "Unknown category kind"},
		})
	}

	confirmed := c.QueryParam("confirm") == "true"
	confirmer := domain.ConfirmerFunc(func(string) bool { return confirmed })

	deleted := h.budgetService.DeleteTransaction(kind, txID, confirmer)
	return c.JSON(http.StatusOK, DeleteTransactionResponse{Deleted: deleted})
}

func parseKind(raw string) (domain.CategoryKind, bool) {
	switch domain.CategoryKind(raw) {
	case domain.CategoryKindIncome:
		return domain.CategoryKindIncome, true
	case domain.CategoryKindExpense:
		return domain.CategoryKindExpense, true
	}
	return "", false
}
