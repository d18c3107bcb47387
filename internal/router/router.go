package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shardforge/worker/config"
	"github.com/shardforge/worker/internal/handler"
)

func Setup(cfg *config.Config, generateHandler *handler.GenerateHandler) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(requestID())

	api := r.Group("/api")
	api.Use(apiKeyAuth(cfg))
	{
		gen := api.Group("/generate")
		{
			gen.POST("/readme", generateHandler.Readme)
			gen.POST("/ideas", generateHandler.Ideas)
			gen.POST("/stack", generateHandler.Stack)
			gen.POST("/competitive", generateHandler.Competitive)
			gen.POST("/insights", generateHandler.Insights)
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// requestID tags every request so pipeline log lines can be correlated.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// apiKeyAuth rejects requests missing the worker's shared secret. Disabled
// when no key is configured (local development).
func apiKeyAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Worker.APIKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != cfg.Worker.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
