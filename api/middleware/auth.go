package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gaigenticai/regulens-autoscaler/internal/auth"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	// AuthCookieName matches the cookie the login handler sets.
	AuthCookieName = "auth_token"

	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// JWTAuth accepts the token from the Authorization header or, for
// browser clients whose websocket upgrade cannot carry custom headers,
// from the login cookie.
func JWTAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": message,
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthorizationHeader)
	if header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", errors.New("invalid authorization header format")
		}
		return strings.TrimPrefix(header, BearerPrefix), nil
	}

	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	return "", errors.New("missing credentials")
}

func GetUserID(c *gin.Context) int {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0
	}
	return userID.(int)
}

func GetUsername(c *gin.Context) string {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return ""
	}
	return username.(string)
}
