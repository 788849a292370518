package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

// SetupAuthRoutes registers all “/auth/*” endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterUserHandler(d.Accounts))
		authGroup.POST("/verifyOTP", auth.VerifyOTPHandler(d.Accounts))
		authGroup.POST("/admin/register", auth.RegisterAdminHandler(d.Accounts))
		authGroup.POST("/login", auth.LoginHandler(d.Accounts))

		// Any signed-in account
		session := authGroup.Group("", middleware.ValidateToken(d.Gate))
		{
			session.POST("/logout", auth.LogoutHandler)
			session.GET("/profile", auth.ProfileHandler)
			session.PUT("/update-password", auth.UpdatePasswordHandler(d.Accounts))
		}
	}
}
