package auth

import (
	"time"

	"github.com/ayushmanmishra18/storefront-api/models"
)

// Role tags which account store a Principal was resolved from.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the acting account of a request, either a user or an admin.
type Principal struct {
	Role       Role      `json:"-"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanActOn reports whether p may manage a resource owned by ownerID.
func (p Principal) CanActOn(ownerID string) bool {
	return p.IsAdmin() || (ownerID != "" && p.ID == ownerID)
}

func UserPrincipal(u *models.User) Principal {
	return Principal{
		Role:       RoleUser,
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func AdminPrincipal(a *models.Admin) Principal {
	return Principal{
		Role:       RoleAdmin,
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		IsVerified: true,
		CreatedAt:  a.CreatedAt,
	}
}

// Profile is the public view of a Principal.
type Profile struct {
	Principal
	IsAdmin bool `json:"isAdmin"`
}

func (p Principal) Profile() Profile {
	return Profile{Principal: p, IsAdmin: p.IsAdmin()}
}
