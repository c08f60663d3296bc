package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ketsolab/ketoan/internal/apperrors"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/dto"
	"github.com/ketsolab/ketoan/internal/middleware"
)

// inventoryHandler exposes weighted-average positions and the stock card.
type inventoryHandler struct {
	costingService portssvc.CostingSvcFacade
}

func newInventoryHandler(cs portssvc.CostingSvcFacade) *inventoryHandler {
	return &inventoryHandler{costingService: cs}
}

// registerInventoryRoutes registers the inventory read routes. Positions only
// change through posted warehouse vouchers.
func registerInventoryRoutes(rg *gin.RouterGroup, costingService portssvc.CostingSvcFacade) {
	h := newInventoryHandler(costingService)

	inventory := rg.Group("/inventory")
	{
		inventory.GET("/positions", h.listPositions)
		inventory.GET("/positions/:productID", h.getPosition)
		inventory.GET("/positions/:productID/stock-card", h.getStockCard)
	}
}

func (h *inventoryHandler) listPositions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	positions, err := h.costingService.Positions(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list positions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list positions"})
		return
	}
	c.JSON(http.StatusOK, dto.PositionsResponse{Positions: positions})
}

func (h *inventoryHandler) getPosition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	productID := c.Param("productID")

	pos, err := h.costingService.Position(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			logger.Error("Failed to get position", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve position"})
		}
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (h *inventoryHandler) getStockCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	productID := c.Param("productID")

	entries, err := h.costingService.StockCard(c.Request.Context(), productID)
	if err != nil {
		logger.Error("Failed to get stock card", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock card"})
		return
	}
	c.JSON(http.StatusOK, dto.StockCardResponse{ProductID: productID, Entries: entries})
}
