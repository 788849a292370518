package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// GET /admin/dashboard
func GetDashboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := models.CountDashboard(db.WithContext(c.Request.Context()))
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to load dashboard", err))
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}

// GET /admin/admins
func GetAllAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admins := []models.Admin{}
		if err := db.WithContext(c.Request.Context()).Order("created_at ASC").Find(&admins).Error; err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch admins", err))
			return
		}
		c.JSON(http.StatusOK, admins)
	}
}

// POST /admin/first-admin is kept for old clients and always refuses.
func CreateFirstAdmin(c *gin.Context) {
	_ = c.Error(apperr.Invalidf("Use /auth/admin/register for admin registration"))
}
