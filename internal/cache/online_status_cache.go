package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineStatusTTL = 24 * time.Hour

// OnlineStatusCache mirrors each user's online flag and last-seen time into
// redis so the REST user listing can answer without hitting postgres. The
// presence registry itself stays in process memory; this cache is advisory
// and expires on its own.
type OnlineStatusCache struct {
	redis *redis.Client
	ctx   context.Context
}

func NewOnlineStatusCache(redis *redis.Client, ctx context.Context) *OnlineStatusCache {
	return &OnlineStatusCache{
		redis: redis,
		ctx:   ctx,
	}
}

func (osc *OnlineStatusCache) SetOnline(userId uint, online bool, lastSeen time.Time) error {
	statusKey := fmt.Sprintf("user_online_status_%d", userId)
	if err := osc.redis.Set(osc.ctx, statusKey, strconv.FormatBool(online), onlineStatusTTL).Err(); err != nil {
		return err
	}

	lastSeenKey := fmt.Sprintf("user_last_seen_%d", userId)
	return osc.redis.Set(osc.ctx, lastSeenKey, lastSeen.Format(time.RFC3339), onlineStatusTTL).Err()
}

func (osc *OnlineStatusCache) GetOnline(userId uint) (bool, *time.Time, error) {
	statusKey := fmt.Sprintf("user_online_status_%d", userId)
	statusStr, err := osc.redis.Get(osc.ctx, statusKey).Result()
	if err != nil {
		return false, nil, err
	}
	online, err := strconv.ParseBool(statusStr)
	if err != nil {
		return false, nil, err
	}

	lastSeenKey := fmt.Sprintf("user_last_seen_%d", userId)
	lastSeenStr, err := osc.redis.Get(osc.ctx, lastSeenKey).Result()
	if err != nil {
		return online, nil, err
	}
	lastSeen, err := time.Parse(time.RFC3339, lastSeenStr)
	if err != nil {
		return online, nil, err
	}

	return online, &lastSeen, nil
}
