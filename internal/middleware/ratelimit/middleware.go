package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type Config struct {
	// Name labels the limiter in metrics and log lines ("api", "submit").
	Name   string
	Max    int64
	Window time.Duration
	Store  Store
}

// Middleware enforces a fixed-window limit per client IP. Standard
// X-RateLimit headers are set on every response; requests over the limit
// get 429 with a retryAfter hint.
func Middleware(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", cfg.Name, c.IP())

		count, ttl, err := cfg.Store.Increment(c.UserContext(), key, cfg.Window)
		if err != nil {
			// Fail open: a broken counter backend should not take the API down.
			logger.Error("Rate limit store error", zap.String("limiter", cfg.Name), zap.Error(err))
			return c.Next()
		}

		remaining := cfg.Max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Max))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))

		if count > cfg.Max {
			metrics.RateLimitRejections.WithLabelValues(cfg.Name).Inc()
			logger.Warn("Rate limit exceeded",
				zap.String("limiter", cfg.Name),
				zap.String("ip", c.IP()),
				zap.Int64("count", count),
			)

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      "Too many requests",
				"retryAfter": int(ttl.Seconds()),
			})
		}

		return c.Next()
	}
}
