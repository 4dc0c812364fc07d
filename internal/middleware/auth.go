package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// AuthMiddleware validates a Bearer JWT (HS256) and puts the caller's
// identity and role into the request context. Token issuance lives outside
// this service.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Bearer token required",
				},
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Token is invalid or expired",
				},
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("user_id", sub)
		}
		if email, _ := claims["email"].(string); email != "" {
			c.Set("user_email", email)
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = RoleOperator
		}
		c.Set("user_role", role)

		c.Next()
	}
}

// DevelopmentAuthMiddleware is a simple auth middleware for local development
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001"
		}
		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = RoleAdmin
		}

		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireRole gates a route on the caller's role claim.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != role {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": fmt.Sprintf("Requires %s role", role),
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the caller id from gin context
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
