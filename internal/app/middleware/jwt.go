package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// Context keys set by Authenticate.
const (
	ContextUserID = "userID"
	ContextClaims = "claims"
	ContextUser   = "user"
)

// SessionCookie is read when no Authorization header is sent.
const SessionCookie = "session_token"

// ExtractToken returns the bearer token of the request, falling back to the session cookie.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			return strings.TrimSpace(authHeader[7:])
		}
		return strings.TrimSpace(authHeader)
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Authenticate rejects requests without a valid session and loads the caller into the context.
func Authenticate(jwtService services.InterfaceJWTService, users services.InterfaceUserService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c)
		if tokenString == "" {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header is required", nil)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, services.ErrUserNotFound) {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Session user no longer exists", nil)
			c.Abort()
			return
		}
		if err != nil {
			logger.Error("failed to load session user", zap.Uint("user_id", claims.UserID), zap.Error(err))
			response.ServerError(c)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the caller loaded by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(ContextUser); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID returns the caller's id, or 0 on unauthenticated routes.
func CurrentUserID(c *gin.Context) uint {
	if v, exists := c.Get(ContextUserID); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
