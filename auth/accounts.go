package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var (
	ErrEmailTaken         = apperr.Conflictf("Email already registered")
	ErrInvalidOTP         = apperr.Invalidf("Invalid or expired OTP")
	ErrOTPExpired         = apperr.Invalidf("OTP has expired")
	ErrUserNotFound       = apperr.NotFoundf("User not found")
	ErrBadCredentials     = apperr.Unauthenticatedf("Invalid email or password")
	ErrNotVerified        = apperr.Unauthenticatedf("Please verify your email before logging in")
	ErrWrongPassword      = apperr.Invalidf("Current password is incorrect")
	ErrMissingAccountData = apperr.Invalidf("Name, email and password are required")
	ErrInvalidEmail       = apperr.Invalidf("email must be a valid email")
	ErrOTPDelivery        = apperr.New(apperr.Internal, "Failed to send OTP")
)

var inputValidator = validator.New()

// Session is what a successful login-like operation hands back.
type Session struct {
	Principal Principal
	Token     string
}

// Accounts owns registration, verification and credentials for both stores.
type Accounts struct {
	db     *gorm.DB
	issuer *Issuer
	otps   OTPStore
	mailer Mailer
	otpTTL time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type AccountsOption func(*Accounts)

// WithClock replaces time.Now, for OTP expiry.
func WithClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) { a.now = now }
}

func WithLogger(logger *slog.Logger) AccountsOption {
	return func(a *Accounts) { a.logger = logger }
}

func WithOTPTTL(ttl time.Duration) AccountsOption {
	return func(a *Accounts) {
		if ttl > 0 {
			a.otpTTL = ttl
		}
	}
}

func NewAccounts(db *gorm.DB, issuer *Issuer, otps OTPStore, mailer Mailer, opts ...AccountsOption) *Accounts {
	a := &Accounts{
		db:     db,
		issuer: issuer,
		otps:   otps,
		mailer: mailer,
		otpTTL: DefaultOTPTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Accounts) Issuer() *Issuer { return a.issuer }

func checkAccountInput(name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingAccountData
	}
	if err := inputValidator.Var(strings.TrimSpace(email), "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func (a *Accounts) ensureEmailFree(db *gorm.DB, email string) error {
	taken, err := models.EmailTaken(db, email)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to check email", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func createErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return apperr.Wrap(apperr.Internal, "Failed to create account", err)
}

// RegisterUser stores an unverified user and mails an OTP. A failed mail
// leaves the user in place; a later registration attempt reports a conflict.
func (a *Accounts) RegisterUser(ctx context.Context, name, email, password string) error {
	if err := checkAccountInput(name, email, password); err != nil {
		return err
	}
	db := a.db.WithContext(ctx)
	if err := a.ensureEmailFree(db, email); err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to hash password", err)
	}
	user := models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		return createErr(err)
	}

	return a.IssueOTP(ctx, user.Email)
}

// IssueOTP replaces any pending code for email and mails the new one.
func (a *Accounts) IssueOTP(ctx context.Context, email string) error {
	code, err := GenerateOTP()
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to generate OTP", err)
	}
	entry := OTPEntry{Code: code, ExpiresAt: a.now().Add(a.otpTTL)}
	if err := a.otps.Save(ctx, email, entry); err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to update OTP for user", err)
	}
	if err := a.mailer.SendOTP(ctx, email, code, a.otpTTL); err != nil {
		a.logger.Error("otp mail failed", "email", email, "error", err)
		return apperr.Wrap(apperr.Internal, ErrOTPDelivery.Message, err)
	}
	return nil
}

// VerifyOTP marks the user verified when code matches an unexpired OTP.
func (a *Accounts) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	db := a.db.WithContext(ctx)
	user, err := models.FindUserByEmail(db, email)
	if err != nil {
		if models.IsNotFound(err) {
			return Session{}, ErrUserNotFound
		}
		return Session{}, apperr.Wrap(apperr.Internal, "Failed to load user", err)
	}

	entry, found, err := a.otps.Load(ctx, user.Email)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "Failed to load OTP", err)
	}
	if !found || subtle.ConstantTimeCompare([]byte(entry.Code), []byte(strings.TrimSpace(code))) != 1 {
		return Session{}, ErrInvalidOTP
	}
	if entry.Expired(a.now()) {
		return Session{}, ErrOTPExpired
	}

	if err := db.Model(user).Update("is_verified", true).Error; err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "Failed to verify user", err)
	}
	if err := a.otps.Delete(ctx, user.Email); err != nil {
		a.logger.Warn("otp cleanup failed", "email", user.Email, "error", err)
	}
	user.IsVerified = true

	return a.session(UserPrincipal(user))
}

// RegisterAdmin creates a verified admin and signs it in.
func (a *Accounts) RegisterAdmin(ctx context.Context, name, email, password string) (Session, error) {
	if err := checkAccountInput(name, email, password); err != nil {
		return Session{}, err
	}
	db := a.db.WithContext(ctx)
	if err := a.ensureEmailFree(db, email); err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "Failed to hash password", err)
	}
	admin := models.Admin{Name: strings.TrimSpace(name), Email: email, PasswordHash: hash}
	if err := db.Create(&admin).Error; err != nil {
		return Session{}, createErr(err)
	}
	return a.session(AdminPrincipal(&admin))
}

// Login checks the user store first, then the admin store.
func (a *Accounts) Login(ctx context.Context, email, password string) (Session, error) {
	db := a.db.WithContext(ctx)

	user, err := models.FindUserByEmail(db, email)
	switch {
	case err == nil && CheckPassword(user.PasswordHash, password):
		if !user.IsVerified {
			return Session{}, ErrNotVerified
		}
		return a.session(UserPrincipal(user))
	case err != nil && !models.IsNotFound(err):
		return Session{}, apperr.Wrap(apperr.Internal, "Failed to load account", err)
	}

	admin, err := models.FindAdminByEmail(db, email)
	switch {
	case err == nil && CheckPassword(admin.PasswordHash, password):
		return a.session(AdminPrincipal(admin))
	case err != nil && !models.IsNotFound(err):
		return Session{}, apperr.Wrap(apperr.Internal, "Failed to load account", err)
	}

	return Session{}, ErrBadCredentials
}

// UpdatePassword changes the password in whichever store holds p.
func (a *Accounts) UpdatePassword(ctx context.Context, p Principal, current, next string) error {
	if next == "" {
		return apperr.Invalidf("New password is required")
	}
	db := a.db.WithContext(ctx)

	var (
		hash  string
		model interface{}
	)
	switch p.Role {
	case RoleAdmin:
		admin, err := models.FindAdminByID(db, p.ID)
		if err != nil {
			return accountLookupErr(err)
		}
		hash, model = admin.PasswordHash, admin
	default:
		user, err := models.FindUserByID(db, p.ID)
		if err != nil {
			return accountLookupErr(err)
		}
		hash, model = user.PasswordHash, user
	}

	if !CheckPassword(hash, current) {
		return ErrWrongPassword
	}
	newHash, err := HashPassword(next)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to hash password", err)
	}
	if err := db.Model(model).Update("password_hash", newHash).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to update password", err)
	}
	return nil
}

func accountLookupErr(err error) error {
	if models.IsNotFound(err) {
		return ErrUserNotFound
	}
	return apperr.Wrap(apperr.Internal, "Failed to load account", err)
}

func (a *Accounts) session(p Principal) (Session, error) {
	token, err := a.issuer.Issue(p.ID, p.Role)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "Token generation failed", err)
	}
	return Session{Principal: p, Token: token}, nil
}
