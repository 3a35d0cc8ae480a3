package controller

import (
	"context"
	"time"

	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{db: db, rdb: rdb}
}

// Health godoc
// @Summary Liveness and dependency health
// @Tags health
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (ctl *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if sqlDB, err := ctl.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "down"
	}

	redisStatus := "up"
	if ctl.rdb == nil || ctl.rdb.Ping(ctx).Err() != nil {
		redisStatus = "down"
	}

	util.Success(c, gin.H{
		"status": "ok",
		"db":     dbStatus,
		"redis":  redisStatus,
		"time":   time.Now().UTC(),
	})
}
