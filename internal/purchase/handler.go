package purchase

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lltsaorg/thiha-shop-app/internal/api"
	"github.com/lltsaorg/thiha-shop-app/internal/auth"
	"github.com/lltsaorg/thiha-shop-app/internal/queue"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Purchase godoc
// @Summary      Purchase items
// @Description  Debits the authenticated customer's balance by the order total and records one transaction per line. Insufficient balance is an ordinary rejection, not a server error.
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      PurchaseRequest  true  "Order lines"
// @Success      200      {object}  PurchaseResult
// @Failure      400      {object}  gin.H
// @Failure      429      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	accountID, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	result, err := h.svc.Purchase(c.Request.Context(), accountID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid items"})
		case errors.Is(err, ErrUnknownAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account"})
		case errors.Is(err, ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, queue.ErrCapacityExceeded):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "processing, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMine godoc
// @Summary      My purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {object}  gin.H
// @Failure      500     {object}  gin.H
// @Router       /me/purchases [get]
func (h *Handler) ListMine(c *gin.Context) {
	accountID, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.svc.ListMine(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": txs})
}
