package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/smallbiznis/mercado/internal/analytics/domain"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	"github.com/smallbiznis/mercado/internal/config"
	escrowdomain "github.com/smallbiznis/mercado/internal/escrow/domain"
	orderdomain "github.com/smallbiznis/mercado/internal/order/domain"
	recommendationdomain "github.com/smallbiznis/mercado/internal/recommendation/domain"
	reviewdomain "github.com/smallbiznis/mercado/internal/review/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	log               *zap.Logger
	catalogSvc        catalogdomain.Service
	reviewSvc         reviewdomain.Service
	escrowSvc         escrowdomain.Service
	orderSvc          orderdomain.Service
	recommendationSvc recommendationdomain.Service
	analyticsSvc      analyticsdomain.Service
}

type ServerParams struct {
	fx.In

	Engine            *gin.Engine
	Cfg               config.Config
	Log               *zap.Logger
	CatalogSvc        catalogdomain.Service
	ReviewSvc         reviewdomain.Service
	EscrowSvc         escrowdomain.Service
	OrderSvc          orderdomain.Service
	RecommendationSvc recommendationdomain.Service
	AnalyticsSvc      analyticsdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:            p.Engine,
		cfg:               p.Cfg,
		log:               p.Log.Named("http.server"),
		catalogSvc:        p.CatalogSvc,
		reviewSvc:         p.ReviewSvc,
		escrowSvc:         p.EscrowSvc,
		orderSvc:          p.OrderSvc,
		recommendationSvc: p.RecommendationSvc,
		analyticsSvc:      p.AnalyticsSvc,
	}
}

func NewEngine(log *zap.Logger, httpMetrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/products", s.CreateProduct)
	v1.GET("/products", s.SearchProducts)
	v1.GET("/products/:id", s.GetProductByID)
	v1.POST("/products/:id/views", s.RecordProductView)
	v1.POST("/products/:id/archive", s.ArchiveProduct)
	v1.POST("/products/:id/reviews", s.SubmitReview)
	v1.GET("/products/:id/reviews", s.ListProductReviews)
	v1.GET("/products/:id/analytics", s.GetProductAnalytics)

	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders/:id", s.GetOrderByID)
	v1.GET("/orders/:id/escrow", s.GetOrderEscrow)
	v1.POST("/orders/:id/process", s.ProcessOrder)
	v1.POST("/orders/:id/complete", s.CompleteOrder)
	v1.POST("/orders/:id/refund", s.RefundOrder)

	v1.GET("/recommendations", s.GetRecommendations)
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
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
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
