package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/ivanmitkovski/chisto-mk/utils"
)

func extractJwtClaims(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")

	if authHeader == "" {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Authorization header missing")
		c.Abort()
		return nil, false
	}

	authHeader = strings.Trim(authHeader, "\"' ")

	if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		authHeader = "Bearer " + authHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid authorization format, expected: Bearer <token>")
		c.Abort()
		return nil, false
	}

	tokenString := strings.Trim(parts[1], "\"' ")

	claims, err := utils.DecodeJWT(tokenString)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired token: "+err.Error())
		c.Abort()
		return nil, false
	}

	return claims, true
}

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractJwtClaims(c)
		if !ok {
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("role", claims["role"])
		c.Next()
	}
}

func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractJwtClaims(c)
		if !ok {
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("role", claims["role"])

		role, exists := claims["role"]
		if !exists {
			utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Role not found in token")
			c.Abort()
			return
		}

		if role != "ADMIN" {
			utils.SendError(c, http.StatusForbidden, utils.CodeForbidden, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
