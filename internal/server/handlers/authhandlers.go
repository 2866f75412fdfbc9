package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskundan-01/Finance-News-API/internal/server/middleware"
	"github.com/itskundan-01/Finance-News-API/internal/types"
)

// RegisterUser creates a human account.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.users.CreateUser(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

// LoginUser verifies credentials and returns a bearer token.
func (h *Handler) LoginUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), req.Email)
	if err != nil || !h.users.VerifyPassword(user, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := middleware.CreateToken(h.jwtSecret, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// GetMe returns the logged-in user's account details.
func (h *Handler) GetMe(c *gin.Context) {
	email := c.GetString(middleware.ContextUserEmail)

	user, err := h.users.GetUser(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":      user.Email,
		"name":       user.Name,
		"created_at": user.CreatedAt,
	})
}

// GetMyKeys lists the logged-in user's API keys.
func (h *Handler) GetMyKeys(c *gin.Context) {
	email := c.GetString(middleware.ContextUserEmail)

	records, err := h.keys.ListByOwner(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list API keys"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email": email,
		"keys":  keySummaries(records),
	})
}

// RegenerateMyKey replaces the user's keys with a fresh free-tier key.
func (h *Handler) RegenerateMyKey(c *gin.Context) {
	email := c.GetString(middleware.ContextUserEmail)

	key, err := h.keys.Regenerate(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to regenerate API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":     key.Key,
		"message": "API key regenerated successfully",
	})
}

// RevokeMyKey deactivates one of the user's own keys.
func (h *Handler) RevokeMyKey(c *gin.Context) {
	email := c.GetString(middleware.ContextUserEmail)

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.keys.Revoke(c.Request.Context(), req.Key, email, false)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
		case errors.Is(err, types.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only revoke your own API keys"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke API key"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked successfully"})
}
