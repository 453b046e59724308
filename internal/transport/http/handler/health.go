package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"foodgram/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check probes every configured dependency concurrently. Dependencies that
// are not configured are left out of the report.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := h.checks()
	var (
		mu       sync.Mutex
		statuses = make(map[string]dependencyStatus, len(checks))
	)

	var g errgroup.Group
	for name, check := range checks {
		name, check := name, check
		g.Go(func() error {
			status := dependencyStatus{OK: true}
			if err := check(ctx); err != nil {
				status = dependencyStatus{OK: false, Message: err.Error()}
			}
			mu.Lock()
			statuses[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	statusCode := http.StatusOK
	for _, s := range statuses {
		if !s.OK {
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(statusCode, gin.H{
		"status":         http.StatusText(statusCode),
		"uptime_seconds": int64(time.Since(h.app.StartedAt).Seconds()),
		"dependencies":   statuses,
	})
}

func (h *HealthHandler) checks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"database": h.checkDatabase,
	}
	if h.app.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return h.app.Redis.Ping(ctx).Err()
		}
	}
	if h.app.MQConn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if h.app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	if p, ok := h.app.Images.(pinger); ok {
		checks["storage"] = p.Ping
	}
	return checks
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
