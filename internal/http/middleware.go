package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/store"
)

func AuthMiddleware(cfg *config.Config, users *store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_missing"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_invalid"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token_claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token_claims"})
			return
		}

		user, err := users.ByUUID(c.Request.Context(), sub)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token_user_not_found"})
			return
		}

		// Every handler reads the owner from here; there is no default user.
		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("userUUID", user.UUID)

		c.Next()
	}
}
