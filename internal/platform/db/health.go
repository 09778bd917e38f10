package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const pingTimeout = 5 * time.Second

// DBStatus is the payload served by the database health endpoint. Pool
// counters are included so an operator can spot exhaustion before requests
// start queueing on Acquire.
type DBStatus struct {
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Pool   PoolCounts `json:"pool"`
}

// PoolCounts is a point-in-time snapshot of the pgx pool.
type PoolCounts struct {
	Total    int32 `json:"total_conns"`
	Idle     int32 `json:"idle_conns"`
	Acquired int32 `json:"acquired_conns"`
	Max      int32 `json:"max_conns"`
}

func snapshot(pool *pgxpool.Pool) PoolCounts {
	stat := pool.Stat()
	return PoolCounts{
		Total:    stat.TotalConns(),
		Idle:     stat.IdleConns(),
		Acquired: stat.AcquiredConns(),
		Max:      stat.MaxConns(),
	}
}

// healthStatus maps a ping outcome and pool snapshot to the response code
// and payload. A reachable database with zero open connections is still
// reported unhealthy: the pool has lost every connection it was given.
func healthStatus(counts PoolCounts, pingErr error) (int, DBStatus) {
	if pingErr != nil {
		return http.StatusServiceUnavailable, DBStatus{
			Status: "unhealthy",
			Error:  pingErr.Error(),
			Pool:   counts,
		}
	}
	if counts.Total == 0 {
		return http.StatusServiceUnavailable, DBStatus{
			Status: "unhealthy",
			Error:  "no open connections",
			Pool:   counts,
		}
	}
	return http.StatusOK, DBStatus{Status: "healthy", Pool: counts}
}

// HealthHandler serves the database readiness check.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		code, status := healthStatus(snapshot(pool), pool.Ping(ctx))
		return c.JSON(code, status)
	}
}
