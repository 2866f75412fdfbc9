package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itskundan-01/Finance-News-API/internal/keys"
	"github.com/itskundan-01/Finance-News-API/internal/server/middleware"
	"github.com/itskundan-01/Finance-News-API/internal/types"
	"github.com/patrickmn/go-cache"
)

// ArticleStore is the article half of the database the handlers read.
type ArticleStore interface {
	ListArticles(ctx context.Context, limit, offset int) ([]types.Article, error)
	ListArticlesByCategory(ctx context.Context, category string, limit, offset int) ([]types.Article, error)
	ListArticlesBySource(ctx context.Context, source string, limit, offset int) ([]types.Article, error)
	SearchArticles(ctx context.Context, search string, limit, offset int) ([]types.Article, error)
}

// UserStore is the account half of the database the handlers use.
type UserStore interface {
	CreateUser(ctx context.Context, email, name, password string) (*types.User, error)
	GetUser(ctx context.Context, email string) (*types.User, error)
	VerifyPassword(user *types.User, password string) bool
}

// Handler serves the HTTP endpoints.
type Handler struct {
	articles  ArticleStore
	users     UserStore
	keys      *keys.Service
	newsCache *cache.Cache
	jwtSecret []byte
}

// New builds the handler set.
func New(articles ArticleStore, users UserStore, keySvc *keys.Service, newsCache *cache.Cache, jwtSecret []byte) *Handler {
	return &Handler{
		articles:  articles,
		users:     users,
		keys:      keySvc,
		newsCache: newsCache,
		jwtSecret: jwtSecret,
	}
}

// Health responds with a simple service heartbeat.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Finance News API is running",
	})
}

type paginationParams struct {
	Limit int
	Skip  int
}

const defaultLimit = 20

// parsePagination reads limit/skip query params and clamps limit to the
// caller's tier cap placed in the context by the admission middleware.
func parsePagination(c *gin.Context) (paginationParams, error) {
	limit := defaultLimit
	if value := strings.TrimSpace(c.Query("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return paginationParams{}, fmt.Errorf("limit parameter must be a positive integer")
		}
		limit = parsed
	}

	if maxResults := c.GetInt(middleware.ContextMaxResults); maxResults > 0 && limit > maxResults {
		limit = maxResults
	}

	skip := 0
	if value := strings.TrimSpace(c.Query("skip")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return paginationParams{}, fmt.Errorf("skip parameter must be a non-negative integer")
		}
		skip = parsed
	}

	return paginationParams{Limit: limit, Skip: skip}, nil
}
