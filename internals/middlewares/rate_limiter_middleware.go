package middlewares

import (
	"context"
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"membership_backend/internals/metrics"
)

const rateLimitMessage = "Too many requests. Please try again later."

// Counter increments the hit count of key inside a fixed window and
// reports the count and the time left until the window resets.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

/* =========================== Redis =========================== */

type RedisCounter struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{Client: client, Prefix: "ratelimit:"}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := r.Prefix + key

	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	ttl := pttl.Val()
	if ttl < 0 {
		// first hit of the window, or a key that lost its expiry
		if err := r.Client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return incr.Val(), ttl, nil
}

/* =========================== Memory =========================== */

type bucket struct {
	start time.Time
	count int64
}

// MemoryCounter keeps windows in process. Limits hold per instance only.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: make(map[string]*bucket), now: time.Now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.now()
	b, ok := m.buckets[key]
	if !ok || t.Sub(b.start) >= window {
		b = &bucket{start: t}
		m.buckets[key] = b
	}
	b.count++

	if len(m.buckets) > 10000 {
		for k, v := range m.buckets {
			if t.Sub(v.start) >= window {
				delete(m.buckets, k)
			}
		}
	}
	return b.count, b.start.Add(window).Sub(t), nil
}

/* =========================== Middleware =========================== */

type LimitConfig struct {
	Name   string
	Max    int
	Window time.Duration
}

// FixedWindow rejects a client once it exceeds cfg.Max hits in cfg.Window.
// Counter errors let the request through.
func FixedWindow(counter Counter, cfg LimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + cfg.Name

		count, ttl, err := counter.Hit(c.UserContext(), key, cfg.Window)
		if err != nil {
			log.Printf("[WARN] rate limiter %s store error: %v", cfg.Name, err)
			return c.Next()
		}

		remaining := int64(cfg.Max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Max) {
			retry := int(math.Ceil(ttl.Seconds()))
			if retry < 1 {
				retry = 1
			}
			metrics.RateLimited.WithLabelValues(cfg.Name).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": rateLimitMessage,
			})
		}
		return c.Next()
	}
}

/* =========================== Route limits =========================== */

// RateLimits builds the per-route limiters on one shared counter.
type RateLimits struct {
	Counter Counter
}

func NewRateLimits(client *redis.Client) RateLimits {
	if client == nil {
		log.Println("[INFO] rate limiter: in-memory counters (single instance)")
		return RateLimits{Counter: NewMemoryCounter()}
	}
	log.Println("[INFO] rate limiter: redis counters")
	return RateLimits{Counter: NewRedisCounter(client)}
}

func (r RateLimits) Login() fiber.Handler {
	return FixedWindow(r.Counter, LimitConfig{Name: "login", Max: 20, Window: 15 * time.Minute})
}

func (r RateLimits) ForgotPassword() fiber.Handler {
	return FixedWindow(r.Counter, LimitConfig{Name: "forgot", Max: 10, Window: time.Hour})
}

func (r RateLimits) Registration() fiber.Handler {
	return FixedWindow(r.Counter, LimitConfig{Name: "register", Max: 10, Window: 15 * time.Minute})
}

func (r RateLimits) Webhook() fiber.Handler {
	return FixedWindow(r.Counter, LimitConfig{Name: "webhook", Max: 120, Window: time.Minute})
}

func (r RateLimits) Export(name string) fiber.Handler {
	return FixedWindow(r.Counter, LimitConfig{Name: "export_" + name, Max: 20, Window: time.Hour})
}

func (r RateLimits) Import(name string) fiber.Handler {
	return FixedWindow(r.Counter, LimitConfig{Name: "import_" + name, Max: 5, Window: time.Hour})
}
