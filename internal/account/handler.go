package account

import (
	"errors"
	"net/http"

	"github.com/lltsaorg/thiha-shop-app/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc               Service
	jwtSecret         string
	adminPasswordHash string
}

func NewHandler(svc Service, jwtSecret, adminPasswordHash string) *Handler {
	return &Handler{
		svc:               svc,
		jwtSecret:         jwtSecret,
		adminPasswordHash: adminPasswordHash,
	}
}

// Register godoc
// @Summary      Register new customer
// @Description  Creates an account for the phone number with a zero balance and returns tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Phone number"
// @Success      201      {object}  AuthResponse
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, accessToken, refreshToken, err := h.svc.Register(c.Request.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, ErrPhoneExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Phone already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      *a,
	})
}

// Login godoc
// @Summary      Login customer
// @Description  Issues tokens for a registered phone number.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Phone number"
// @Success      200      {object}  AuthResponse
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, accessToken, refreshToken, err := h.svc.Login(c.Request.Context(), req.Phone)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Phone not registered"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      *a,
	})
}

// AdminLogin godoc
// @Summary      Admin console login
// @Description  Issues an admin token for the shared console password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      AdminLoginRequest  true  "Admin password"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Router       /admin/login [post]
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.adminPasswordHash == "" || !auth.CheckPassword(h.adminPasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(0, "", auth.RoleAdmin, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// GetMe godoc
// @Summary      Current account
// @Description  Returns the authenticated customer's account.
// @Tags         account
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Account
// @Failure      401  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	accountID, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	a, err := h.svc.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, a)
}

// GetBalance godoc
// @Summary      Current balance
// @Description  Returns the cached balance snapshot for the authenticated customer.
// @Tags         account
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  BalanceSnapshot
// @Failure      401  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /me/balance [get]
func (h *Handler) GetBalance(c *gin.Context) {
	accountID, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	snap, err := h.svc.Balance(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read balance"})
		return
	}

	c.JSON(http.StatusOK, snap)
}
