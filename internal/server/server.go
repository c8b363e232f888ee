package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/quotation/internal/assignment"
	assignmentdomain "github.com/smallbiznis/quotation/internal/assignment/domain"
	"github.com/smallbiznis/quotation/internal/audit"
	auditdomain "github.com/smallbiznis/quotation/internal/audit/domain"
	"github.com/smallbiznis/quotation/internal/catalog"
	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/config"
	obsmetrics "github.com/smallbiznis/quotation/internal/observability/metrics"
	obstracing "github.com/smallbiznis/quotation/internal/observability/tracing"
	"github.com/smallbiznis/quotation/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	audit.Module,
	catalog.Module,
	assignment.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obstracing.GinMiddleware())
	r.Use(RequestLogger(log))
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if httpMetrics != nil {
		r.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	}

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
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

type Server struct {
	engine        *gin.Engine
	log           *zap.Logger
	assignmentSvc assignmentdomain.Service
	catalogSvc    catalogdomain.Service
	auditSvc      auditdomain.Service
	writeLimiter  ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Log           *zap.Logger `optional:"true"`
	AssignmentSvc assignmentdomain.Service
	CatalogSvc    catalogdomain.Service
	AuditSvc      auditdomain.Service     `optional:"true"`
	WriteLimiter  *ratelimit.WriteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		log:           p.Log,
		assignmentSvc: p.AssignmentSvc,
		catalogSvc:    p.CatalogSvc,
		auditSvc:      p.AuditSvc,
	}
	if p.WriteLimiter != nil {
		svc.writeLimiter = p.WriteLimiter
	}

	svc.RegisterRoutes()
	return svc
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")
	api.Use(RateLimitWrites(s.writeLimiter, s.log))

	api.POST("/assignments", s.AssignPackages)
	api.GET("/assignments", s.ListAssignments)
	api.GET("/assignments/:id", s.GetAssignment)
	api.PATCH("/assignments/:id/project-milestones/:milestoneId", s.SetMilestoneStatus)
	api.POST("/assignments/:id/payment-milestones/:milestoneId/payments", s.RecordPayment)
	api.POST("/assignments/:id/addons", s.AddAddOn)
	api.PATCH("/assignments/:id/notes", s.UpdateNotes)
	api.GET("/assignments/:id/audit-logs", s.ListAssignmentAuditLogs)
	api.GET("/users/:userId/assignments", s.ListUserAssignments)

	api.GET("/services", s.ListServices)
	api.POST("/services", s.CreateService)
	api.GET("/services/:id", s.GetService)
	api.GET("/addons", s.ListAddOns)
	api.POST("/addons", s.SaveAddOn)
	api.PUT("/addons/:id", s.SaveAddOn)
	api.DELETE("/addons/:id", s.DeleteAddOn)
}
