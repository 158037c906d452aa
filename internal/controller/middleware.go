package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/centrovital/agenda-api/internal/model"
)

const viewerKey = "viewer"

// AuthViewer is the authenticated caller extracted from the bearer token.
type AuthViewer struct {
	ID   uuid.UUID
	Name string
	Role model.Role
}

// AuthMiddleware validates a Bearer JWT signed with HMAC and puts the
// caller into the gin context. Claims: sub (user id), role, name.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		}, jwt.WithLeeway(5*time.Second))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sub, _ := claims["sub"].(string)
		id, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
			return
		}
		roleStr, _ := claims["role"].(string)
		role := model.Role(roleStr)
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid role"})
			return
		}
		name, _ := claims["name"].(string)

		c.Set(viewerKey, AuthViewer{ID: id, Name: name, Role: role})
		c.Next()
	}
}

func viewerFrom(c *gin.Context) AuthViewer {
	v, _ := c.Get(viewerKey)
	viewer, _ := v.(AuthViewer)
	return viewer
}

// RequireRole guards a route group to one role.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewerFrom(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
