package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sellside/closedesk/internal/approval"
	approvaldomain "github.com/sellside/closedesk/internal/approval/domain"
	"github.com/sellside/closedesk/internal/audit"
	auditdomain "github.com/sellside/closedesk/internal/audit/domain"
	"github.com/sellside/closedesk/internal/call"
	calldomain "github.com/sellside/closedesk/internal/call/domain"
	"github.com/sellside/closedesk/internal/commission"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	"github.com/sellside/closedesk/internal/commissionrule"
	ruledomain "github.com/sellside/closedesk/internal/commissionrule/domain"
	"github.com/sellside/closedesk/internal/config"
	"github.com/sellside/closedesk/internal/identity"
	identitydomain "github.com/sellside/closedesk/internal/identity/domain"
	"github.com/sellside/closedesk/internal/lead"
	leaddomain "github.com/sellside/closedesk/internal/lead/domain"
	"github.com/sellside/closedesk/internal/observability"
	obsmiddleware "github.com/sellside/closedesk/internal/observability/logger"
	obsmetrics "github.com/sellside/closedesk/internal/observability/metrics"
	"github.com/sellside/closedesk/internal/product"
	productdomain "github.com/sellside/closedesk/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	identity.Module,
	lead.Module,
	product.Module,
	call.Module,
	commission.Module,
	commissionrule.Module,
	approval.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	approvalSvc   approvaldomain.Service
	auditSvc      auditdomain.Service
	callSvc       calldomain.Service
	commissionSvc commissiondomain.Service
	ruleSvc       ruledomain.Service
	identitySvc   identitydomain.Service
	leadSvc       leaddomain.Service
	productSvc    productdomain.Service
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	ApprovalSvc   approvaldomain.Service
	AuditSvc      auditdomain.Service
	CallSvc       calldomain.Service
	CommissionSvc commissiondomain.Service
	RuleSvc       ruledomain.Service
	IdentitySvc   identitydomain.Service
	LeadSvc       leaddomain.Service
	ProductSvc    productdomain.Service
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		approvalSvc:   p.ApprovalSvc,
		auditSvc:      p.AuditSvc,
		callSvc:       p.CallSvc,
		commissionSvc: p.CommissionSvc,
		ruleSvc:       p.RuleSvc,
		identitySvc:   p.IdentitySvc,
		leadSvc:       p.LeadSvc,
		productSvc:    p.ProductSvc,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Identities --------
	api.GET("/identities", s.ListIdentities)
	api.POST("/identities", s.CreateIdentity)
	api.GET("/identities/:id", s.GetIdentityByID)

	// -------- Leads --------
	api.GET("/leads", s.ListLeads)
	api.POST("/leads", s.CreateLead)
	api.GET("/leads/:id", s.GetLeadByID)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)

	// -------- Calls --------
	api.GET("/calls", s.ListCalls)
	api.POST("/calls", s.LogCall)
	api.GET("/calls/:id", s.GetCallByID)
	api.POST("/calls/:id/approve", s.ApproveCall)
	api.POST("/calls/:id/reject", s.RejectCall)

	// -------- Commissions --------
	api.GET("/commissions", s.ListCommissions)

	// -------- Commission Rules --------
	api.GET("/commission-rules", s.ListCommissionRules)
	api.POST("/commission-rules", s.CreateCommissionRule)
	api.POST("/commission-rules/:id/deactivate", s.DeactivateCommissionRule)
	api.GET("/commission-rules/defaults", s.ListCommissionRuleDefaults)

	// -------- Audit Logs --------
	api.GET("/audit-logs", s.ListAuditLogs)

	if s.cfg.Environment != "production" {
		api.POST("/test/cleanup", s.TestCleanup)
	}
}
