package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/haojie06/dallebot/internal/logger"
	"github.com/haojie06/dallebot/internal/model"
	"github.com/haojie06/dallebot/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsSource is satisfied by *ledger.Ledger.
type StatsSource interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

type Server struct {
	httpServer *http.Server
}

func New(host, port, apiKey string, stats StatsSource) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    host + ":" + port,
			Handler: InitRouter(apiKey, stats),
		},
	}
}

// Start blocks until the server is shut down.
func (s *Server) Start() error {
	logger.Infof("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func PermissionCheckMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestKey := c.GetHeader("API-KEY")
		if requestKey != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid API key",
			})
			return
		}
		c.Next()
	}
}

// stats may be nil when the ledger is disabled
func InitRouter(apiKey string, stats StatsSource) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.RecoveryWithZap(logger.ZapLogger, true))
	router.Use(ginzap.Ginzap(logger.ZapLogger, time.RFC3339Nano, true))
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthHTTPResponse{Status: "ok", LedgerEnabled: stats != nil})
	})

	apiGroup := router.Group("", PermissionCheckMiddleware(apiKey))
	apiGroup.GET("/stats", statsHandler(stats))
	apiGroup.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.RouteRegister(apiGroup, "debug/pprof")
	return router
}

func statsHandler(stats StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if stats == nil {
			utils.GinFailedWithMessage(c, http.StatusServiceUnavailable, "usage statistics are disabled")
			return
		}
		snapshot, err := stats.Snapshot(c.Request.Context())
		if err != nil {
			logger.Errorf("failed to load stats: %s", err)
			utils.GinFailedWithMessage(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, model.StatsHTTPResponse{
			Status: "completed",
			Stats:  &snapshot,
		})
	}
}
