package db

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/labms/labms/internal/platform/response"
)

// PoolStats is the connection pool snapshot reported on /health/db.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats snapshots the pool counters.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// healthEnvelope maps a ping outcome onto the API envelope. The pool snapshot
// rides along even when the database is unreachable, so an operator can tell
// an exhausted pool from a dead server.
func healthEnvelope(stats *PoolStats, pingErr error) (int, *response.Envelope) {
	if pingErr != nil {
		stats.Healthy = false
		env := response.Error([]string{pingErr.Error()}, "database unreachable")
		env.Data = stats
		return http.StatusServiceUnavailable, env
	}
	return http.StatusOK, response.Success(stats, "database healthy", nil)
}

// HealthHandler serves the database health check endpoint.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		status, env := healthEnvelope(GetPoolStats(pool), pool.Ping(ctx))
		return c.JSON(status, env)
	}
}
