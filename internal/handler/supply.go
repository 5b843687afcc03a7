package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/middleware"
	"github.com/rexrel213/music-store-finally/internal/service"
)

type SupplyHandler struct {
	supplyService *service.SupplyService
}

func NewSupplyHandler(supplyService *service.SupplyService) *SupplyHandler {
	return &SupplyHandler{supplyService: supplyService}
}

func (h *SupplyHandler) Create(c *gin.Context) {
	var req dto.CreateSupplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.supplyService.CreateSupply(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSupplier):
			c.JSON(http.StatusNotFound, gin.H{"error": "supplier profile not found"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}
