package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itskundan-01/Finance-News-API/internal/quota"
)

// Context keys set by the middlewares for downstream handlers.
const (
	ContextAPIKey     = "api_key"
	ContextMaxResults = "max_results"
	ContextUserEmail  = "user_email"
)

// Manager wires all HTTP middlewares with shared dependencies.
type Manager struct {
	gate      *quota.Gate
	jwtSecret []byte
}

// NewManager builds a middleware manager for the HTTP server.
func NewManager(gate *quota.Gate, jwtSecret []byte) *Manager {
	return &Manager{
		gate:      gate,
		jwtSecret: jwtSecret,
	}
}

// RequestID assigns a unique ID to each request, honoring a client-sent
// X-Request-ID, and echoes it on the response.
func (m *Manager) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Admission gates a request on its API key: validity, daily quota, then
// the per-minute window. Admitted requests get the tier's result cap in
// the context; rejected ones are answered here with the retry-after hint.
func (m *Manager) Admission() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")

		outcome := m.gate.Admit(c.Request.Context(), key, time.Now())
		if outcome.Allowed {
			c.Set(ContextAPIKey, outcome.Credential)
			c.Set(ContextMaxResults, outcome.MaxResults)
			c.Next()
			return
		}

		switch outcome.Reason {
		case quota.ReasonMissingKey:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "API key required. Add X-API-Key header to your request.",
			})
		case quota.ReasonInvalidKey:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid or inactive API key",
			})
		case quota.ReasonDailyQuotaExceeded:
			c.Header("Retry-After", retryAfterSeconds(outcome.RetryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("daily rate limit exceeded, maximum %d requests per day", outcome.Policy.RequestsPerDay),
			})
		case quota.ReasonMinuteQuotaExceeded:
			c.Header("Retry-After", retryAfterSeconds(outcome.RetryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded, maximum %d requests per minute", outcome.Policy.RequestsPerMinute),
			})
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "service temporarily unavailable",
			})
		}
	}
}

// UserAuth authenticates a human account via JWT bearer token and puts the
// user's email in the context. Bearer sessions carry no quota semantics.
func (m *Manager) UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		email, err := ParseToken(m.jwtSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserEmail, email)
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%d", secs)
}
