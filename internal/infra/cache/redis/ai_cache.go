package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"fitryne/internal/app/policies"
	"fitryne/internal/domain/nutrition"
)

const (
	keyPrefix  = "fitryne:ai-calories:"
	DefaultTTL = 24 * time.Hour
)

// LookupRecorder is told whether each lookup was a hit, a miss or an error.
type LookupRecorder interface {
	ObserveCacheLookup(result string)
}

// AICache remembers model answers per input and locale. Redis failures are
// logged and the call falls through to the wrapped port.
type AICache struct {
	Next    policies.AICaloriePort
	Client  goredis.UniversalClient
	TTL     time.Duration
	Logger  *slog.Logger
	Metrics LookupRecorder
}

func (c *AICache) EstimateCalories(ctx context.Context, in nutrition.BiometricInput, locale nutrition.Locale) (string, error) {
	if c.Next == nil {
		return "", policies.ErrAINotConfigured
	}
	if c.Client == nil {
		return c.Next.EstimateCalories(ctx, in, locale)
	}
	locale = locale.OrDefault()
	key := CacheKey(in, locale)

	cached, err := c.Client.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.observe("hit")
		return cached, nil
	case errors.Is(err, goredis.Nil):
		c.observe("miss")
	default:
		c.observe("error")
		c.logger().WarnContext(ctx, "ai cache read failed", "error", err)
	}

	calories, err := c.Next.EstimateCalories(ctx, in, locale)
	if err != nil {
		return "", err
	}
	if err := c.Client.Set(ctx, key, calories, c.ttl()).Err(); err != nil {
		c.logger().WarnContext(ctx, "ai cache write failed", "error", err)
	}
	return calories, nil
}

// CacheKey hashes the normalised input so equal requests share an entry.
func CacheKey(in nutrition.BiometricInput, locale nutrition.Locale) string {
	parts := []string{
		strconv.Itoa(in.Age),
		string(in.Gender),
		strconv.FormatFloat(in.WeightKg, 'f', -1, 64),
		strconv.FormatFloat(in.HeightCm, 'f', -1, 64),
		string(in.ActivityLevel),
		string(in.Goal),
		string(locale.OrDefault()),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (c *AICache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}

func (c *AICache) observe(result string) {
	if c.Metrics != nil {
		c.Metrics.ObserveCacheLookup(result)
	}
}

func (c *AICache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

var _ policies.AICaloriePort = (*AICache)(nil)
