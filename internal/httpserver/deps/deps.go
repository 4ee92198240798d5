package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marksync/marks/internal/engine"
	"github.com/marksync/marks/internal/logger"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	Store           engine.Store     // durable bookmark store
	Feed            engine.Feed      // change-event source for the push endpoint
	RedisClient     *redis.Client    // for infra health reporting (nil in tests)
	AllowedCIDRS    []string         // IPs allowed to reach infra endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy
	RateLimitBurst  int              // token bucket size per client IP on write routes
	RateLimitPerMin int              // refill per client IP per minute on write routes
}
