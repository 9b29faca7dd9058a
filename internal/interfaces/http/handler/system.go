package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/expenseally/backend/internal/infrastructure/event"
	"github.com/expenseally/backend/internal/interfaces/http/dto"
)

// SystemHandler serves health checks and the recent activity feed
type SystemHandler struct {
	BaseHandler
	db    *gorm.DB
	redis *redis.Client
	feed  *event.ActivityFeed
}

// NewSystemHandler creates a new system handler. Both redis and feed may be
// nil when the corresponding subsystem is not configured.
func NewSystemHandler(db *gorm.DB, redisClient *redis.Client, feed *event.ActivityFeed) *SystemHandler {
	return &SystemHandler{db: db, redis: redisClient, feed: feed}
}

// RegisterPublicRoutes mounts the unauthenticated health route
func (h *SystemHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// RegisterRoutes mounts the authenticated system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity", h.Activity)
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
	Time     string `json:"time"`
}

// Health godoc
// @Summary      Service health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=handler.healthStatus}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{
		Status:   "ok",
		Database: "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		status.Redis = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Status = "degraded"
			status.Redis = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, dto.NewSuccessResponse(status))
}

// Activity godoc
// @Summary      Recent domain activity for the company
// @Tags         system
// @Produce      json
// @Param        limit query int false "Maximum entries to return (default 20, max 100)"
// @Success      200 {object} dto.Response{data=[]event.ActivityEntry}
// @Router       /activity [get]
func (h *SystemHandler) Activity(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if h.feed == nil {
		h.Success(c, []event.ActivityEntry{})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	h.Success(c, h.feed.Recent(companyID, limit))
}
