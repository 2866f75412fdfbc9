package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskundan-01/Finance-News-API/internal/types"
	"github.com/patrickmn/go-cache"
)

// GetNews returns paginated news, newest first.
func (h *Handler) GetNews(c *gin.Context) {
	params, ok := paginationOrRespond(c)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("news:all:%d:%d", params.Limit, params.Skip)
	if cached, found := h.newsCache.Get(cacheKey); found {
		respondArticles(c, cached.([]types.Article))
		return
	}

	articles, err := h.articles.ListArticles(c.Request.Context(), params.Limit, params.Skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}

	h.newsCache.Set(cacheKey, articles, cache.DefaultExpiration)
	respondArticles(c, articles)
}

// GetLatestNews returns the most recent articles.
func (h *Handler) GetLatestNews(c *gin.Context) {
	params, ok := paginationOrRespond(c)
	if !ok {
		return
	}

	articles, err := h.articles.ListArticles(c.Request.Context(), params.Limit, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}
	respondArticles(c, articles)
}

// GetNewsByCategory returns news tagged with a category.
func (h *Handler) GetNewsByCategory(c *gin.Context) {
	params, ok := paginationOrRespond(c)
	if !ok {
		return
	}

	articles, err := h.articles.ListArticlesByCategory(c.Request.Context(), c.Param("category"), params.Limit, params.Skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}
	respondArticles(c, articles)
}

// GetNewsBySource returns news from a named source.
func (h *Handler) GetNewsBySource(c *gin.Context) {
	params, ok := paginationOrRespond(c)
	if !ok {
		return
	}

	articles, err := h.articles.ListArticlesBySource(c.Request.Context(), c.Param("source"), params.Limit, params.Skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}
	respondArticles(c, articles)
}

// SearchNews matches news against a free-text query.
func (h *Handler) SearchNews(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}

	params, ok := paginationOrRespond(c)
	if !ok {
		return
	}

	articles, err := h.articles.SearchArticles(c.Request.Context(), query, params.Limit, params.Skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search news"})
		return
	}
	respondArticles(c, articles)
}

func paginationOrRespond(c *gin.Context) (paginationParams, bool) {
	params, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return paginationParams{}, false
	}
	return params, true
}

func respondArticles(c *gin.Context, articles []types.Article) {
	if articles == nil {
		articles = []types.Article{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(articles),
		"data":  articles,
	})
}
