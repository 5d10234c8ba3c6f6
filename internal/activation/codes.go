// Package activation manages one-time account activation codes. Codes are
// short-lived and keyed by username, so they live in Redis rather than the
// relational store; entry TTLs double as garbage collection for codes that
// were never used.
package activation

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// CodeLength matches what activation emails have always carried.
const CodeLength = 32

var ErrNotFound = errors.New("activation code not found")

type Code struct {
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the logical validity window has passed. Entries
// outlive their window in the store for a grace period so callers can tell
// "expired" apart from "never existed".
func (c Code) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func NewCode(username string, validity time.Duration) (Code, error) {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return Code{}, err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	now := time.Now().UTC()
	return Code{
		Username:  username,
		Code:      string(buf),
		CreatedAt: now,
		ExpiresAt: now.Add(validity),
	}, nil
}

// Store persists at most one outstanding code per username.
type Store interface {
	Put(ctx context.Context, code Code) error
	Get(ctx context.Context, username string) (Code, error)
	Delete(ctx context.Context, username string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codeKey(username string) string {
	return "activation_code:" + username
}

func (s *RedisStore) Put(ctx context.Context, code Code) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	// Keep the entry around for twice the validity window: between expiry
	// and eviction a verify attempt still reports "expired" rather than
	// "invalid".
	ttl := 2 * time.Until(code.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.client.Set(ctx, codeKey(code.Username), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, username string) (Code, error) {
	data, err := s.client.Get(ctx, codeKey(username)).Bytes()
	if err == redis.Nil {
		return Code{}, ErrNotFound
	}
	if err != nil {
		return Code{}, err
	}
	var code Code
	if err := json.Unmarshal(data, &code); err != nil {
		return Code{}, err
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, username string) error {
	return s.client.Del(ctx, codeKey(username)).Err()
}
