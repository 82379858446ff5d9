package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soladu1/Q-A-By-SOL/internal/domain/question"
)

const questionListKey = "questions:list"

// QuestionCache is a read-through cache for the full question list. Every
// cache failure falls back to the store; redis being down never surfaces to
// the caller.
type QuestionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewQuestionCache(rdb *redis.Client, ttl time.Duration) *QuestionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &QuestionCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *QuestionCache) Get(ctx context.Context) ([]question.Question, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, questionListKey).Bytes()

	if err != nil {
		return nil, false
	}

	var items []question.Question

	err = json.Unmarshal(raw, &items)

	if err != nil {
		return nil, false
	}

	return items, true
}

func (c *QuestionCache) Set(ctx context.Context, items []question.Question) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(items)

	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, questionListKey, raw, c.ttl).Err()
}

// Invalidate drops the cached list after a new question is posted so the next
// read sees it immediately instead of waiting out the TTL.
func (c *QuestionCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}

	_ = c.rdb.Del(ctx, questionListKey).Err()
}
