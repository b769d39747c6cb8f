package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coachware/commission/internal/commission/domain"
	"github.com/coachware/commission/internal/config"
	"github.com/coachware/commission/internal/observability/logger"
	"github.com/coachware/commission/internal/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module wires the HTTP ops surface.
var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

type ServerParams struct {
	fx.In

	Engine   *gin.Engine
	Cfg      config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Svc      domain.Service
	Settings domain.RateSettingsProvider
	Sweeper  *scheduler.Sweeper
}

// Server exposes the engine's operational endpoints: manual calculation,
// ledger inspection, settings cache invalidation, and a sweep trigger.
type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	svc      domain.Service
	settings domain.RateSettingsProvider
	sweeper  *scheduler.Sweeper
}

// NewEngine builds the gin engine with recovery and request logging.
func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	return engine
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:   p.Engine,
		cfg:      p.Cfg,
		log:      p.Log.Named("server"),
		db:       p.DB,
		svc:      p.Svc,
		settings: p.Settings,
		sweeper:  p.Sweeper,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)

	v1 := s.engine.Group("/v1")
	v1.POST("/payments/:id/commissions", s.CalculatePayment)
	v1.GET("/payments/:id/commissions", s.ListPaymentCommissions)
	v1.POST("/commission-settings/invalidate", s.InvalidateSettings)
	v1.POST("/sweeps", s.RunSweep)
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
