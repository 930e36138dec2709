package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps one-time codes in redis. Each issued code lives under its
// own `otp:<email>:<code>` key with a TTL, so expiry is enforced by the store
// itself and several codes may be valid for the same email at once (issuing
// again does not invalidate an earlier code). GETDEL makes consumption
// atomic: a code verifies at most once.
type OTPStore struct {
	RDB *redis.Client
}

func NewOTPStore(rdb *redis.Client) *OTPStore { return &OTPStore{RDB: rdb} }

func otpKey(email, code string) string {
	return fmt.Sprintf("otp:%s:%s", email, code)
}

// Save stores the code for email with the given time-to-live.
func (s *OTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.RDB.Set(ctx, otpKey(email, code), "1", ttl).Err()
}

// Consume atomically removes the {email, code} pair and reports whether it
// existed. Expired, already-used and never-issued codes are all plain misses.
func (s *OTPStore) Consume(ctx context.Context, email, code string) (bool, error) {
	err := s.RDB.GetDel(ctx, otpKey(email, code)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
