package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentops/internal/app/policies"
	"rentops/internal/infra/security"
)

// AuthMiddleware resolves the bearer token and stores the principal in the
// request context, where the application authorizer reads it.
type AuthMiddleware struct {
	Tokens *security.TokenRegistry
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return
	}
	p, err := m.Tokens.Resolve(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Request = c.Request.WithContext(policies.ContextWithPrincipal(c.Request.Context(), p))
	c.Next()
}

func currentPrincipal(c *gin.Context) (policies.Principal, bool) {
	return policies.PrincipalFromContext(c.Request.Context())
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
