package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ayushmanmishra18/storefront-api/models"
)

const otpKeyPrefix = "otp:"

// otpExpiredGrace keeps a key alive past ExpiresAt so an expired code is
// still found and reported as expired rather than unknown.
const otpExpiredGrace = time.Hour

// RedisOTPStore keeps codes in Redis; the key TTL drops them one
// otpExpiredGrace after they expire.
type RedisOTPStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client, now: time.Now}
}

func otpKey(email string) string {
	return otpKeyPrefix + models.NormalizeEmail(email)
}

func (s *RedisOTPStore) Save(ctx context.Context, email string, entry OTPEntry) error {
	remaining := entry.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return errors.New("store otp: entry already expired")
	}
	ttl := remaining + otpExpiredGrace
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, otpKey(email), data, ttl).Err()
}

func (s *RedisOTPStore) Load(ctx context.Context, email string) (OTPEntry, bool, error) {
	data, err := s.client.Get(ctx, otpKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return OTPEntry{}, false, nil
	}
	if err != nil {
		return OTPEntry{}, false, err
	}
	var entry OTPEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return OTPEntry{}, false, err
	}
	return entry, true, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, otpKey(email)).Err()
}
