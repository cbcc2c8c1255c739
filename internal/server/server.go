// Package server exposes the invoice document service over HTTP. It is the
// backend the remote storage variant talks to.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/neeraj3071/InvoicePro/internal/auth"
	authdomain "github.com/neeraj3071/InvoicePro/internal/auth/domain"
	"github.com/neeraj3071/InvoicePro/internal/config"
	"github.com/neeraj3071/InvoicePro/internal/invoice/gormstore"
	"github.com/neeraj3071/InvoicePro/internal/providers/pdf"
	"github.com/neeraj3071/InvoicePro/internal/ratelimit"
)

var Module = fx.Module("http.server",
	config.Module,
	auth.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(registerSnowflake),
	fx.Provide(gormstore.New),
	fx.Invoke(migrate),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func migrate(store *gormstore.Store, db *gorm.DB) error {
	if err := store.Migrate(); err != nil {
		return err
	}
	return db.AutoMigrate(&authdomain.User{})
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.ListenAddr))
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
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	authsvc      authdomain.Service
	invoices     *gormstore.Store
	renderer     pdf.Renderer
	loginLimiter *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Authsvc      authdomain.Service
	Invoices     *gormstore.Store
	Renderer     pdf.Renderer
	LoginLimiter *ratelimit.LoginLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		authsvc:      p.Authsvc,
		invoices:     p.Invoices,
		renderer:     p.Renderer,
		loginLimiter: p.LoginLimiter,
	}

	s.registerUserRoutes()
	s.registerInvoiceRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerUserRoutes() {
	users := s.engine.Group("/users")

	users.POST("/register", s.Register)
	users.POST("/login", s.Login)
	users.GET("/me", s.AuthRequired(), s.Me)
	users.PUT("/me", s.AuthRequired(), s.UpdateMe)
	users.POST("/verify-token", s.AuthRequired(), s.VerifyToken)
}

func (s *Server) registerInvoiceRoutes() {
	invoices := s.engine.Group("/invoices", s.AuthRequired())

	invoices.GET("", s.ListInvoices)
	invoices.POST("", s.CreateInvoice)
	invoices.GET("/:invoiceId", s.GetInvoice)
	invoices.PUT("/:invoiceId", s.UpdateInvoice)
	invoices.DELETE("/:invoiceId", s.DeleteInvoice)
	invoices.PATCH("/:invoiceId/status", s.SetInvoiceStatus)
	invoices.GET("/:invoiceId/pdf", s.RenderInvoicePDF)
}
