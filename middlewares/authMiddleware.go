package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates a Bearer token if one is present and stashes
// the tenant identity in the request context. Requests without a token
// pass through; RequireAuth gates the protected groups.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if models.IsTokenRevoked(auth) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok || customClaim.ID <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), auth)
		ctx = utils.SetUserIdInContext(ctx, customClaim.ID)
		ctx = utils.SetUsernameInContext(ctx, customClaim.Username)

		// user record is redis-cached; a miss falls through to the db
		user, cached := utils.RetrieveItemFromRedis[models.User](customClaim.ID, customClaim.ID)
		if !cached {
			user, err = models.GetUser(ctx, customClaim.ID)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				c.Abort()
				return
			}
			_ = utils.StoreItemToRedis(customClaim.ID, customClaim.ID, user)
		}
		if user.IsAdmin != nil && *user.IsAdmin {
			ctx = utils.SetIsAdminInContext(ctx, true)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests that did not present a valid token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok || userId <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
