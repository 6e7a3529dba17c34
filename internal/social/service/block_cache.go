package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/internal/social/repository"
	"github.com/redis/go-redis/v9"
)

type dbBlockChecker struct {
	repo repository.FriendshipRepository
}

func NewBlockChecker(repo repository.FriendshipRepository) BlockChecker {
	return &dbBlockChecker{repo: repo}
}

func (c *dbBlockChecker) IsBlockedPair(ctx context.Context, a, b int64) (bool, error) {
	return c.repo.ExistsBlockBetween(ctx, a, b)
}

func (c *dbBlockChecker) Invalidate(ctx context.Context, a, b int64) {}

// cachedBlockChecker fronts the database check with Redis. Entries are
// invalidated on block/unblock and expire anyway, so a stale hit only lasts
// until the TTL.
type cachedBlockChecker struct {
	next        BlockChecker
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewCachedBlockChecker(next BlockChecker, redisClient *redis.Client) BlockChecker {
	return &cachedBlockChecker{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    time.Minute * 10,
	}
}

func pairKey(a, b int64) string {
	u1, u2 := domain.CanonicalPair(a, b)
	return fmt.Sprintf("blockpair:%d:%d", u1, u2)
}

func (c *cachedBlockChecker) IsBlockedPair(ctx context.Context, a, b int64) (bool, error) {
	key := pairKey(a, b)

	val, err := c.redisClient.Get(ctx, key).Result()
	if err == nil {
		return val == "1", nil
	}

	blocked, err := c.next.IsBlockedPair(ctx, a, b)
	if err != nil {
		return false, err
	}

	cached := "0"
	if blocked {
		cached = "1"
	}
	c.redisClient.Set(ctx, key, cached, c.cacheTTL)

	return blocked, nil
}

func (c *cachedBlockChecker) Invalidate(ctx context.Context, a, b int64) {
	c.redisClient.Del(ctx, pairKey(a, b))
	c.next.Invalidate(ctx, a, b)
}
