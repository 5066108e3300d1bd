package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

// CatalogCache caches quiz questions per (date, level) key in Redis and
// falls back to the wrapped repository on cache miss. Question lists are
// stored as a JSON blob per key:
//
//	SET quiz:{date}:{level}:questions {json}
//
// Mutations pass through to the backing repository and invalidate the key.
type CatalogCache struct {
	backing app.CatalogRepository
	client  *redis.Client
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewCatalogCache(backing app.CatalogRepository, client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		backing: backing,
		client:  client,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) key(date, level string) string {
	return "quiz:" + date + ":" + level + ":questions"
}

func (c *CatalogCache) ListByDateLevel(ctx context.Context, date, level string) ([]domain.QuizQuestion, error) {
	key := c.key(date, level)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.QuizQuestion
		if err := json.Unmarshal(raw, &questions); err == nil {
			return questions, nil
		}
		// Corrupt entry: drop it and reload from the backing store.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.QuizQuestion
			if err := json.Unmarshal(raw, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := c.backing.ListByDateLevel(ctx, date, level)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizQuestion), nil
}

func (c *CatalogCache) CountByDateLevel(ctx context.Context, date, level string) (int, error) {
	questions, err := c.ListByDateLevel(ctx, date, level)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

func (c *CatalogCache) Create(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	created, err := c.backing.Create(ctx, q)
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	_ = c.client.Del(ctx, c.key(created.Date, created.Level)).Err()
	return created, nil
}

func (c *CatalogCache) Get(ctx context.Context, id string) (domain.QuizQuestion, error) {
	return c.backing.Get(ctx, id)
}

func (c *CatalogCache) Update(ctx context.Context, q domain.QuizQuestion) (domain.QuizQuestion, error) {
	updated, err := c.backing.Update(ctx, q)
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	_ = c.client.Del(ctx, c.key(updated.Date, updated.Level)).Err()
	return updated, nil
}

func (c *CatalogCache) Delete(ctx context.Context, id string) error {
	q, err := c.backing.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.backing.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(q.Date, q.Level)).Err()
	return nil
}

// ttlWithJitter adds up to 10% jitter to spread expirations.
func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
