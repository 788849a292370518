package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/models"
)

// DefaultOTPTTL is how long a registration code stays usable.
const DefaultOTPTTL = 15 * time.Minute

// OTPEntry is a pending one-time code for an email address.
type OTPEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e OTPEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// OTPStore keeps at most one pending code per email.
type OTPStore interface {
	Save(ctx context.Context, email string, entry OTPEntry) error
	// Load returns found=false when no code is pending.
	Load(ctx context.Context, email string) (entry OTPEntry, found bool, err error)
	Delete(ctx context.Context, email string) error
}

// GenerateOTP returns a random six digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// DBOTPStore keeps the code on the user row.
type DBOTPStore struct {
	db *gorm.DB
}

func NewDBOTPStore(db *gorm.DB) *DBOTPStore {
	return &DBOTPStore{db: db}
}

func (s *DBOTPStore) Save(ctx context.Context, email string, entry OTPEntry) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Updates(map[string]interface{}{"otp": entry.Code, "otp_expires_at": entry.ExpiresAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store otp: no user with email %q", email)
	}
	return nil
}

func (s *DBOTPStore) Load(ctx context.Context, email string) (OTPEntry, bool, error) {
	user, err := models.FindUserByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		if models.IsNotFound(err) {
			return OTPEntry{}, false, nil
		}
		return OTPEntry{}, false, err
	}
	if user.OTP == "" || user.OTPExpiresAt == nil {
		return OTPEntry{}, false, nil
	}
	return OTPEntry{Code: user.OTP, ExpiresAt: *user.OTPExpiresAt}, true, nil
}

func (s *DBOTPStore) Delete(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Updates(map[string]interface{}{"otp": "", "otp_expires_at": nil}).Error
}
