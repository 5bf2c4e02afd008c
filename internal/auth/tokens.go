package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bizdir/bizdir/internal/shared"
)

// TokenStore keeps opaque bearer tokens in Redis, each mapped to a user id
// and expiring after the configured TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

type tokenPayload struct {
	UserID   int64     `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Issue creates and stores a new token for the user.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	data, err := json.Marshal(tokenPayload{UserID: userID, IssuedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, redisKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Lookup returns the user id bound to token, or shared.ErrTokenInvalid.
func (s *TokenStore) Lookup(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, shared.ErrTokenInvalid
	}
	raw, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.ErrTokenInvalid
		}
		return 0, fmt.Errorf("auth: lookup token: %w", err)
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.UserID <= 0 {
		return 0, shared.ErrTokenInvalid
	}
	return payload.UserID, nil
}

// Revoke deletes the token; unknown tokens are ignored.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

func redisKey(token string) string {
	return "token:" + token
}

// generateToken joins a random UUID with 16 extra random bytes.
func generateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	extra := make([]byte, 16)
	if _, err := rand.Read(extra); err != nil {
		return "", err
	}
	raw := append(id[:], extra...)
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
