package cache

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	once   sync.Once
	client *redis.Client
)

// counterTTL keeps daily counters around long enough for month-over-month
// comparisons before they expire on their own.
const counterTTL = 35 * 24 * time.Hour

// Client returns the process-wide Redis client, or nil when Redis is not
// configured or unreachable. Callers must tolerate a nil client; every use of
// Redis in this service is best-effort.
func Client() *redis.Client {
	once.Do(func() {
		addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
		if addr == "" {
			return
		}

		db := 0
		if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				log.Printf("cache: invalid REDIS_DB %q, using 0", raw)
			} else {
				db = parsed
			}
		}

		candidate := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := candidate.Ping(ctx).Err(); err != nil {
			log.Printf("cache: redis at %s unreachable, counters disabled: %v", addr, err)
			_ = candidate.Close()
			return
		}
		client = candidate
	})
	return client
}

// IncrementDailyCounter bumps the counter for key scoped to the current day
// and refreshes its TTL. Returns false when Redis is unavailable or the
// operation failed; failures are logged, never surfaced.
func IncrementDailyCounter(ctx context.Context, key string) bool {
	c := Client()
	if c == nil {
		return false
	}

	dated := key + ":" + time.Now().Format("2006-01-02")
	if err := c.Incr(ctx, dated).Err(); err != nil {
		log.Printf("cache: increment %s failed: %v", dated, err)
		return false
	}
	if err := c.Expire(ctx, dated, counterTTL).Err(); err != nil {
		log.Printf("cache: expire %s failed: %v", dated, err)
	}
	return true
}
