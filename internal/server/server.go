package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
	"github.com/smallbiznis/siftbridge/internal/cart"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
	"github.com/smallbiznis/siftbridge/internal/config"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/session"
	settingsdomain "github.com/smallbiznis/siftbridge/internal/settings/domain"
	"github.com/smallbiznis/siftbridge/internal/snippet"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine with recovery, request logging and the
// session middleware every storefront route relies on.
func NewEngine(log *zap.Logger, manager *session.Manager, store session.Store, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(session.Middleware(manager, store, log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	accountSvc accountdomain.Service
	catalogSvc catalogdomain.Service
	cartSvc    *cart.Service
	settings   settingsdomain.Service
	snippet    *snippet.Renderer
	bus        *events.Bus
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	AccountSvc accountdomain.Service
	CatalogSvc catalogdomain.Service
	CartSvc    *cart.Service
	Settings   settingsdomain.Service
	Snippet    *snippet.Renderer
	Bus        *events.Bus
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		accountSvc: p.AccountSvc,
		catalogSvc: p.CatalogSvc,
		cartSvc:    p.CartSvc,
		settings:   p.Settings,
		snippet:    p.Snippet,
		bus:        p.Bus,
	}
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterStorefrontRoutes()
		s.RegisterAdminRoutes()
	}),
	fx.Invoke(RunHTTP),
)
