package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedFallbackTTL bounds revocation markers when the original
// token key has already expired.
const revokedFallbackTTL = 24 * time.Hour

// RedisTokenRegistry tracks issued bearer tokens in Redis. Expiration
// is handled by TTLs; revocation leaves a marker checked on every
// authenticated request.
type RedisTokenRegistry struct {
	client *redis.Client
}

func NewRedisTokenRegistry(client *redis.Client) *RedisTokenRegistry {
	return &RedisTokenRegistry{client: client}
}

// getTokenKey generates the Redis key for an issued token
func getTokenKey(tokenID string) string {
	return fmt.Sprintf("auth_token:%s", tokenID)
}

// getRevokedKey generates the Redis key for a revoked token marker
func getRevokedKey(tokenID string) string {
	return fmt.Sprintf("auth_token:revoked:%s", tokenID)
}

// getUserTokensKey generates the Redis key for a user's token set
func getUserTokensKey(userID int64) string {
	return fmt.Sprintf("user_tokens:%d", userID)
}

// Register records an issued token ID with the token's TTL
func (r *RedisTokenRegistry) Register(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}

	tokenKey := getTokenKey(tokenID)
	userTokensKey := getUserTokensKey(userID)

	// Create a pipeline for atomic operations
	pipe := r.client.Pipeline()

	pipe.HSet(ctx, tokenKey, map[string]interface{}{
		"user_id":   userID,
		"issued_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, tokenKey, ttl)

	// Add token ID to user's set of tokens (also with TTL)
	pipe.SAdd(ctx, userTokensKey, tokenID)
	pipe.Expire(ctx, userTokensKey, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}

	return nil
}

// IsRevoked reports whether a token ID carries a revocation marker
func (r *RedisTokenRegistry) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := r.client.Exists(ctx, getRevokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked > 0, nil
}

// RevokeUserTokens marks every outstanding token of a user as revoked
func (r *RedisTokenRegistry) RevokeUserTokens(ctx context.Context, userID int64) error {
	userTokensKey := getUserTokensKey(userID)

	tokenIDs, err := r.client.SMembers(ctx, userTokensKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}

	if len(tokenIDs) == 0 {
		return nil // No tokens to revoke
	}

	pipe := r.client.Pipeline()
	for _, tokenID := range tokenIDs {
		tokenKey := getTokenKey(tokenID)
		revokedKey := getRevokedKey(tokenID)

		// Match the marker's lifetime to the token's remaining TTL
		ttl, _ := r.client.TTL(ctx, tokenKey).Result()
		if ttl > 0 {
			pipe.Set(ctx, revokedKey, "1", ttl)
		} else {
			pipe.Set(ctx, revokedKey, "1", revokedFallbackTTL)
		}
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}
