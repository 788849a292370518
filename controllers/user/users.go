package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var ErrUserNotFound = apperr.NotFoundf("User not found")

// GET /admin/users/:id
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			_ = c.Error(ErrUserNotFound)
			return
		}

		user, err := models.FindUserByID(db.WithContext(c.Request.Context()), id)
		if err != nil {
			if models.IsNotFound(err) {
				_ = c.Error(ErrUserNotFound)
				return
			}
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch user", err))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := []models.User{}
		if err := db.WithContext(c.Request.Context()).Order("created_at ASC").Find(&users).Error; err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch users", err))
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
