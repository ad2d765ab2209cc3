package middleware

import (
	"errors"
	"net/http"

	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const currentUserKey = "current_user"

// LoadCurrentUser resolves the token's user_id to a stored, active user.
// With required=false a request without a usable user continues anonymously.
func LoadCurrentUser(repo repository.UserRepository, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := c.Get(UserIDKey)
		if !ok {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			c.Next()
			return
		}

		user, err := repo.FindByID(c.Request.Context(), id.(uint))
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
			if !required {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by LoadCurrentUser, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *users.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*users.User)
	return u
}
