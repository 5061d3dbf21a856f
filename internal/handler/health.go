package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/outisoft/ambar-pdv/internal/infra"
	"github.com/outisoft/ambar-pdv/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the alert webhook quarantine state;
// never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, notifier *infra.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		resp := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if notifier != nil && notifier.Configured() {
			resp["alert_webhook"] = notifier.EstadoBreaker().String()
		}
		if n, err := worker.ContarFallidas(ctx, rdb, worker.QueueAlertas); err == nil {
			resp["alertas_fallidas"] = n
		}

		c.JSON(status, resp)
	}
}
