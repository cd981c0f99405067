package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, budgetHandler *BudgetHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	api.GET("/budget", budgetHandler.GetBudget)
	api.PUT("/month-range", budgetHandler.UpdateMonthRange)

	api.POST("/categories", budgetHandler.CreateCategory)
	api.POST("/categories/:id/transactions", budgetHandler.CreateTransaction)

	api.POST("/transactions/:id/apply-all", budgetHandler.ApplyAllMonths)
	api.DELETE("/transactions/:id", budgetHandler.DeleteTransaction)

	// WebSocket endpoint for live edits and state updates
	e.GET("/ws", wsHandler.HandleWS)
}
