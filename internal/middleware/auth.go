package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Proof-social/proof-social-instagram-auth/internal/identity"
)

// collision-proof gin context key
const userIDKey = "__auth_user_id"

// UserID extracts the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// RequireAuth verifies the Authorization header against the identity
// verifier and stores the resulting user id in the request context.
// Requests without a valid bearer credential stop here with a 401.
func RequireAuth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {

		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authorization token not provided",
			})
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), authorization)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
