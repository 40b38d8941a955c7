package controllers

import (
	"net/http"

	"Mesa/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Endpoint just pings the server
// @Description Returns a basic message
// @Tags test
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// @Summary Reports the health of the server and its backing stores
// @Description Checks PostgreSQL and Redis connectivity
// @Tags test
// @Produce json
// @Success 200 {object} object{postgres=bool,redis=bool}
// @Router /status [get]
func Status(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		postgresOK := false
		if sqlDB, err := db.DB(); err == nil {
			postgresOK = sqlDB.Ping() == nil
		}
		redisOK := redisClient != nil && redisClient.Ping() == nil

		status := http.StatusOK
		if !postgresOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"postgres": postgresOK,
			"redis":    redisOK,
		})
	}
}
