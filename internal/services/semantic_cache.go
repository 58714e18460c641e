package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/mentorloop-backend/internal/logger"
)

const (
	// cacheSimilarityThreshold is the cosine similarity above which a prior
	// answer is considered the same question.
	cacheSimilarityThreshold = 0.95
	cacheMaxEntriesPerUser   = 32
	cacheTTL                 = 24 * time.Hour
)

// SemanticCache short-circuits repeated questions: a lookup compares the
// incoming message embedding against recent cached entries for the same user
// and returns the stored answer on a near-duplicate.
type SemanticCache interface {
	// Lookup returns the cached answer and true on a hit. A miss, an
	// embedding failure, or a cache backend failure all return ("", false, nil)
	// unless the error is worth surfacing; callers treat any error as a miss.
	Lookup(ctx context.Context, userID uuid.UUID, message string) (string, bool, error)
	// Store records a (message, answer) pair for future lookups.
	Store(ctx context.Context, userID uuid.UUID, message, answer string) error
}

type semanticCacheEntry struct {
	Message   string    `json:"message"`
	Answer    string    `json:"answer"`
	Embedding []float32 `json:"embedding"`
	CachedAt  time.Time `json:"cached_at"`
}

type redisSemanticCache struct {
	log *logger.Logger
	rdb *redis.Client
	ai  AIClient
}

func NewRedisSemanticCache(baseLog *logger.Logger, ai AIClient) (SemanticCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisSemanticCache{
		log: baseLog.With("service", "SemanticCache"),
		rdb: rdb,
		ai:  ai,
	}, nil
}

func cacheKey(userID uuid.UUID) string {
	return "semcache:" + userID.String()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (c *redisSemanticCache) embed(ctx context.Context, message string) ([]float32, error) {
	vecs, err := c.ai.Embed(ctx, []string{message})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

func (c *redisSemanticCache) Lookup(ctx context.Context, userID uuid.UUID, message string) (string, bool, error) {
	if strings.TrimSpace(message) == "" {
		return "", false, nil
	}

	vec, err := c.embed(ctx, message)
	if err != nil {
		// Cache is an optimization; an embedding outage must not block the
		// pipeline.
		c.log.Warn("Semantic cache embed failed, treating as miss", "user_id", userID, "error", err)
		return "", false, nil
	}

	raws, err := c.rdb.LRange(ctx, cacheKey(userID), 0, cacheMaxEntriesPerUser-1).Result()
	if err != nil {
		c.log.Warn("Semantic cache read failed, treating as miss", "user_id", userID, "error", err)
		return "", false, nil
	}

	bestSim := 0.0
	bestAnswer := ""
	for _, raw := range raws {
		var entry semanticCacheEntry
		if uErr := json.Unmarshal([]byte(raw), &entry); uErr != nil {
			continue
		}
		sim := cosineSimilarity(vec, entry.Embedding)
		if sim > bestSim {
			bestSim = sim
			bestAnswer = entry.Answer
		}
	}
	if bestSim >= cacheSimilarityThreshold {
		c.log.Info("Semantic cache hit", "user_id", userID, "similarity", bestSim)
		return bestAnswer, true, nil
	}
	return "", false, nil
}

func (c *redisSemanticCache) Store(ctx context.Context, userID uuid.UUID, message, answer string) error {
	if strings.TrimSpace(message) == "" || strings.TrimSpace(answer) == "" {
		return nil
	}

	vec, err := c.embed(ctx, message)
	if err != nil {
		c.log.Warn("Semantic cache embed failed, skipping store", "user_id", userID, "error", err)
		return nil
	}

	raw, err := json.Marshal(semanticCacheEntry{
		Message:   message,
		Answer:    answer,
		Embedding: vec,
		CachedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	key := cacheKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, cacheMaxEntriesPerUser-1)
	pipe.Expire(ctx, key, cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Semantic cache write failed", "user_id", userID, "error", err)
	}
	return nil
}
