package topup

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

// Create godoc
// @Summary      Request a top-up
// @Description  Creates a pending top-up request for the authenticated customer and notifies admins.
// @Tags         topups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Requested amount"
// @Success      201      {object}  TopUpRequest
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /topup-requests [post]
func (h *Handler) Create(c *gin.Context) {
	accountID, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create top-up request"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListMine godoc
// @Summary      My top-up requests
// @Tags         topups
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   TopUpRequest
// @Failure      500     {object}  gin.H
// @Router       /me/topup-requests [get]
func (h *Handler) ListMine(c *gin.Context) {
	accountID, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reqs, err := h.svc.ListMine(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top-up requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": reqs})
}

// List godoc
// @Summary      List top-up requests
// @Description  Returns top-up requests filtered by status. Admin only.
// @Tags         topups
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "pending, approved or all"
// @Success      200     {object}  gin.H
// @Failure      500     {object}  gin.H
// @Router       /admin/topup-requests [get]
func (h *Handler) List(c *gin.Context) {
	status := c.DefaultQuery("status", StatusAll)

	reqs, err := h.svc.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top-up requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": reqs})
}

// Approve godoc
// @Summary      Approve a top-up request
// @Description  Credits the requested amount exactly once. Admin only. A capacity rejection means the account's queue is full; retry after a short backoff.
// @Tags         topups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ApproveRequest  true  "Request id"
// @Success      200      {object}  ApproveResult
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      429      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/topup-requests/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	result, err := h.svc.Approve(c.Request.Context(), req.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, queue.ErrCapacityExceeded):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "processing, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
