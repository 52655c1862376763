package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/juampibolanio/trofi-chat-service/internal/config"
	"github.com/juampibolanio/trofi-chat-service/internal/models"
)

// ChatListCache is a read-through cache for per-user chat lists. Every
// mutation that changes a user's list must invalidate their key.
type ChatListCache struct {
	cli *redis.Client
	ttl time.Duration
}

func NewRedis(cfg *config.Config) (*ChatListCache, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ChatListCache{cli: r, ttl: cfg.CacheTTL}, nil
}

func (c *ChatListCache) Close() error { return c.cli.Close() }

func key(uid string) string { return "chats:" + uid }

func (c *ChatListCache) GetChats(ctx context.Context, uid string) ([]models.Chat, bool) {
	s, err := c.cli.Get(ctx, key(uid)).Result()
	if err != nil {
		return nil, false
	}
	var chats []models.Chat
	if err := json.Unmarshal([]byte(s), &chats); err != nil {
		return nil, false
	}
	return chats, true
}

func (c *ChatListCache) SetChats(ctx context.Context, uid string, chats []models.Chat) {
	b, err := json.Marshal(chats)
	if err != nil {
		return
	}
	_ = c.cli.Set(ctx, key(uid), b, c.ttl).Err()
}

func (c *ChatListCache) Invalidate(ctx context.Context, uids ...string) {
	keys := make([]string, 0, len(uids))
	for _, uid := range uids {
		keys = append(keys, key(uid))
	}
	_ = c.cli.Del(ctx, keys...).Err()
}
