package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskundan-01/Finance-News-API/internal/types"
)

// RegisterKey is the public self-service registration endpoint: one free
// API key per email. Registering again with the same email returns the
// existing active key instead of minting another.
func (h *Handler) RegisterKey(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, created, err := h.keys.Issue(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create API key"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"key":     key.Key,
			"message": fmt.Sprintf("API key already exists for %s.", req.Email),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":     key.Key,
		"message": fmt.Sprintf("API key created successfully for %s. Tier: %s", req.Name, key.Tier),
	})
}

// CreateKey provisions a key at any tier. Admin only.
func (h *Handler) CreateKey(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name" binding:"required"`
		Tier  string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := h.keys.IssueTier(c.Request.Context(), req.Email, req.Name, req.Tier)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":     key.Key,
		"message": fmt.Sprintf("API key created successfully for %s. Tier: %s", req.Name, key.Tier),
	})
}

// GetKeysByEmail lists a user's keys, revoked ones included. Admin only.
func (h *Handler) GetKeysByEmail(c *gin.Context) {
	email := c.Param("email")

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

// RevokeKey deactivates any key. Admin only.
func (h *Handler) RevokeKey(c *gin.Context) {
	err := h.keys.Revoke(c.Request.Context(), c.Param("key"), "", true)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked successfully"})
}

func keySummaries(records []*types.APIKey) []gin.H {
	summaries := make([]gin.H, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, gin.H{
			"key":            record.Key,
			"tier":           record.Tier,
			"is_active":      record.IsActive,
			"created_at":     record.CreatedAt,
			"last_used_at":   record.LastUsedAt,
			"total_requests": record.TotalRequests,
		})
	}
	return summaries
}
