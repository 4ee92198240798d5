package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marksync/marks/internal/httpserver/deps"
	redisstore "github.com/marksync/marks/internal/store/redis"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status        string                     `json:"status"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Owners        int64                      `json:"owners"`
	Components    map[string]componentStatus `json:"components"`
}

// Infra reports component health for operators: redis reachability,
// how many owners hold bookmarks, and what a redis loss would mean for
// connected sessions.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redisStatus := checkRedis(d)

		var owners int64
		if redisStatus.OK {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			owners, _ = d.RedisClient.SCard(ctx, redisstore.KeyOwners).Result()
			cancel()
		}

		components := map[string]componentStatus{
			"redis": redisStatus,
			"feed": {
				OK:     redisStatus.OK,
				Mode:   "pubsub",
				Impact: feedImpact(redisStatus.OK),
			},
		}

		status := "ok"
		if !redisStatus.OK {
			status = "degraded"
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:        status,
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
			Owners:        owners,
			Components:    components,
		})
	}
}

func feedImpact(redisOK bool) string {
	if redisOK {
		return "live-sync-enabled"
	}
	return "sessions-degrade-to-last-snapshot"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:    false,
			Error: "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:    false,
			Error: err.Error(),
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}
