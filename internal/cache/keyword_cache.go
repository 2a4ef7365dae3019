package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// KeywordCache stores keywords derived from project and work-experience text.
// Keys embed a content hash so an edit to the source row misses the old entry.
type KeywordCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewKeywordCache(client *redisv9.Client, ttl time.Duration) *KeywordCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &KeywordCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *KeywordCache) Get(ctx context.Context, kind, id, content string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, keywordKey(kind, id, content)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get keywords failed: %w", err)
	}

	var keywords []string
	if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached keywords failed: %w", err)
	}
	return keywords, true, nil
}

func (c *KeywordCache) Set(ctx context.Context, kind, id, content string, keywords []string) error {
	payload, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords failed: %w", err)
	}
	if err := c.client.Set(ctx, keywordKey(kind, id, content), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set keywords failed: %w", err)
	}
	return nil
}

func keywordKey(kind, id, content string) string {
	sum := sha1.Sum([]byte(content))
	return fmt.Sprintf("rag:keywords:%s:%s:%s", kind, id, hex.EncodeToString(sum[:8]))
}
