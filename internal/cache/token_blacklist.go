package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked token ids until the tokens would have
// expired anyway.
type TokenBlacklist struct {
	client *redisv9.Client
	prefix string
}

func NewTokenBlacklist(client *redisv9.Client) *TokenBlacklist {
	return &TokenBlacklist{
		client: client,
		prefix: "auth:revoked:",
	}
}

// Revoke marks tokenID as revoked for ttl. A non-positive ttl means the token
// is already expired and nothing is stored.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token failed: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revoked token failed: %w", err)
	}
	return exists > 0, nil
}

func (b *TokenBlacklist) key(tokenID string) string {
	return b.prefix + tokenID
}
