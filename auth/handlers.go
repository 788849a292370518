package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyOTPInput struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type updatePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// setTokenCookie mirrors the bearer token into an httpOnly cookie.
func setTokenCookie(c *gin.Context, accounts *Accounts, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, int(accounts.Issuer().TTL().Seconds()), "/", "", false, true)
}

// POST /auth/register
func RegisterUserHandler(accounts *Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input credentialsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		if err := accounts.RegisterUser(c.Request.Context(), input.Name, input.Email, input.Password); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully. OTP sent to email.",
			"otpSent": true,
		})
	}
}

// POST /auth/verifyOTP
func VerifyOTPHandler(accounts *Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input verifyOTPInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		session, err := accounts.VerifyOTP(c.Request.Context(), input.Email, input.OTP)
		if err != nil {
			_ = c.Error(err)
			return
		}
		setTokenCookie(c, accounts, session.Token)
		c.JSON(http.StatusOK, gin.H{
			"id":      session.Principal.ID,
			"name":    session.Principal.Name,
			"email":   session.Principal.Email,
			"message": "OTP verified successfully",
			"token":   session.Token,
		})
	}
}

// POST /auth/admin/register
func RegisterAdminHandler(accounts *Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input credentialsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		session, err := accounts.RegisterAdmin(c.Request.Context(), input.Name, input.Email, input.Password)
		if err != nil {
			_ = c.Error(err)
			return
		}
		setTokenCookie(c, accounts, session.Token)
		c.JSON(http.StatusCreated, gin.H{
			"id":    session.Principal.ID,
			"name":  session.Principal.Name,
			"email": session.Principal.Email,
			"token": session.Token,
		})
	}
}

// POST /auth/login
func LoginHandler(accounts *Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		session, err := accounts.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			_ = c.Error(err)
			return
		}
		setTokenCookie(c, accounts, session.Token)
		resp := gin.H{
			"id":    session.Principal.ID,
			"name":  session.Principal.Name,
			"email": session.Principal.Email,
			"token": session.Token,
		}
		if session.Principal.IsAdmin() {
			resp["isAdmin"] = true
		}
		c.JSON(http.StatusOK, resp)
	}
}

// POST /auth/logout. Tokens are stateless; only the cookie is cleared.
func LogoutHandler(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GET /auth/profile
func ProfileHandler(c *gin.Context) {
	p, err := CurrentPrincipal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p.Profile())
}

// PUT /auth/update-password
func UpdatePasswordHandler(accounts *Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input updatePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		if err := accounts.UpdatePassword(c.Request.Context(), p, input.CurrentPassword, input.NewPassword); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}
