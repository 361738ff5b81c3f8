package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartcompare/backend/internal/domain"
)

// SearchService is the orchestrator surface the handler depends on.
type SearchService interface {
	Search(ctx context.Context, items []domain.ShoppingListItem) (*domain.ComparisonResponse, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	search SearchService
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(search SearchService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{search: search, logger: logger}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cartcompare-backend",
	})
}

type searchRequest struct {
	Items []domain.ShoppingListItem `json:"items" binding:"required"`
}

// Search prices a shopping list across all stores.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items must be a non-empty array"})
		return
	}

	for i := range req.Items {
		if req.Items[i].ID == "" {
			req.Items[i].ID = uuid.NewString()
		}
	}

	response, err := h.search.Search(c.Request.Context(), req.Items)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("search failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, response)
}
