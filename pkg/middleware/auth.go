package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/service"
)

// Context keys set by the authorization gate
const (
	CtxSubjectID = "subject_id"
	CtxTeamID    = "team_id"
	CtxRole      = "role"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireRole is the authorization gate: it verifies the bearer token and
// rejects callers whose role does not satisfy the required one. Every
// protected operation goes through this before touching storage; a valid
// token with the wrong role is 403, never an implicit pass.
func RequireRole(tokens *service.TokenService, required domain.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			logger.Warn("Invalid or expired token",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Session Expired or Unauthorized Access.",
			})
			return
		}

		if !identity.Role.Satisfies(required) {
			logger.Warn("Forbidden role",
				zap.String("ip", c.ClientIP()),
				zap.String("subject_id", identity.SubjectID),
				zap.String("role", string(identity.Role)),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Forbidden",
			})
			return
		}

		c.Set(CtxSubjectID, identity.SubjectID)
		c.Set(CtxTeamID, identity.TeamID)
		c.Set(CtxRole, string(identity.Role))

		c.Next()
	}
}

// OptionalAuth resolves a bearer token when present but never rejects the
// request. Used by the public leaderboard to annotate the caller's rank.
func OptionalAuth(tokens *service.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			logger.Warn("Invalid token on optional-auth endpoint",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.FullPath()),
			)
			c.Next()
			return
		}

		c.Set(CtxSubjectID, identity.SubjectID)
		c.Set(CtxTeamID, identity.TeamID)
		c.Set(CtxRole, string(identity.Role))

		c.Next()
	}
}

// Logger returns a gin middleware for request logging
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
		)
	}
}
