package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	pool     *pgxpool.Pool
	redis    *redis.Client
	amqpConn *amqp.Connection
}

func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client, amqpConn *amqp.Connection) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redisClient, amqpConn: amqpConn}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports each dependency so the failing one shows up in probe logs.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	deps := gin.H{"postgres": "ok", "redis": "ok", "rabbitmq": "ok"}
	ready := true

	if err := h.pool.Ping(ctx); err != nil {
		deps["postgres"] = "unavailable"
		ready = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		deps["redis"] = "unavailable"
		ready = false
	}
	if h.amqpConn == nil || h.amqpConn.IsClosed() {
		deps["rabbitmq"] = "unavailable"
		ready = false
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, deps)
}
