package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var (
	ErrNoToken        = apperr.Unauthenticatedf("Not authorized, no valid token provided")
	ErrTokenInvalid   = apperr.Unauthenticatedf("Not authorized, token failed")
	ErrUnknownSubject = apperr.Unauthenticatedf("Not authorized, user not found")
	ErrAdminOnly      = apperr.Forbiddenf("Not authorized as an admin")
	ErrUserOnly       = apperr.Forbiddenf("Only customer accounts can use this resource")
)

// Gate turns bearer tokens into Principals.
type Gate struct {
	db     *gorm.DB
	issuer *Issuer
}

func NewGate(db *gorm.DB, issuer *Issuer) *Gate {
	return &Gate{db: db, issuer: issuer}
}

// Resolve verifies the token, then looks the subject up in the user store and,
// failing that, the admin store. It never refreshes the token.
func (g *Gate) Resolve(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrNoToken
	}
	claims, err := g.issuer.Parse(token)
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.Unauthenticated, ErrTokenInvalid.Message, err)
	}

	db := g.db.WithContext(ctx)

	user, err := models.FindUserByID(db, claims.ID)
	if err == nil {
		return UserPrincipal(user), nil
	}
	if !models.IsNotFound(err) {
		return Principal{}, apperr.Wrap(apperr.Internal, "Failed to resolve account", err)
	}

	admin, err := models.FindAdminByID(db, claims.ID)
	if err == nil {
		return AdminPrincipal(admin), nil
	}
	if !models.IsNotFound(err) {
		return Principal{}, apperr.Wrap(apperr.Internal, "Failed to resolve account", err)
	}
	return Principal{}, ErrUnknownSubject
}

// RequireAdmin fails with Forbidden unless p is an admin.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// RequireUser fails with Forbidden unless p is a customer account.
func RequireUser(p Principal) error {
	if p.Role != RoleUser {
		return ErrUserOnly
	}
	return nil
}
