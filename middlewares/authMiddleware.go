package middlewares

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/models"
	"github.com/wafirapp/wafir-backend/utils"
)

// retrieve user from redis or db
func getUser(ctx context.Context, userId int) (*models.User, error) {
	var user models.User
	cacheKey := "User:" + strconv.Itoa(userId)
	exists, err := config.GetRedisObject(cacheKey, &user)
	if err == nil && exists {
		return &user, nil
	}

	fetched, err := models.GetUserByID(ctx, userId)
	if err != nil {
		return nil, err
	}

	tokenLifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		tokenLifespan = 24
	}
	_ = config.SetRedisObject(cacheKey, fetched, time.Duration(tokenLifespan)*time.Hour)

	return fetched, nil
}

// AuthMiddleware validates the caller's JWT and attaches the user's id,
// username and role to the request context. Accepts the token from either
// the "token" header or a bearer Authorization header.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("token")
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		parsed, err := utils.JwtValidate(token)
		if err != nil || !parsed.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claims, ok := parsed.Claims.(*utils.JwtCustomClaim)
		if !ok || claims.ID <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		// A logged-out or revoked token fails even while its JWT is still
		// within its expiry. Only enforceable while Redis is reachable.
		if config.GetRedisDB() != nil {
			if _, found, err := config.GetRedisValue("Token:" + token); err == nil && !found {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				c.Abort()
				return
			}
		}

		user, err := getUser(c.Request.Context(), claims.ID)
		if err != nil {
			// A deleted user may still hold a syntactically valid token.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if user.IsActive != nil && !*user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user is disabled"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetRoleInContext(ctx, string(user.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole guards routes reserved for specific roles. Must run after
// AuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetRoleFromContext(c.Request.Context())
		if ok {
			for _, allowed := range roles {
				if role == string(allowed) {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}
