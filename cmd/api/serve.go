package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "salesledger/api/swagger" // swagger docs
	"salesledger/internal/handler"
	"salesledger/internal/logger"
	"salesledger/internal/middleware"
	"salesledger/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.hub.Run(ctx)

	gin.SetMode(a.cfg.App.Env)
	middleware.SetupValidator()

	router := gin.New()
	router.Use(logger.GinMiddleware(a.log), logger.Recovery(a.log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = a.cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	secret := []byte(a.cfg.JWT.Secret)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(a.hub, c, secret)
	})

	handler.Mount(router, secret,
		handler.NewUserHandler(a.userSvc, a.cfg.JWT),
		handler.NewClientHandler(a.clients),
		handler.NewProductHandler(a.products),
		handler.NewSaleHandler(a.sales),
		handler.NewReceivableHandler(a.receivables),
		handler.NewPayableHandler(a.payables),
		handler.NewDashboardHandler(a.dashboard),
		handler.NewAuditHandler(a.audit),
	)

	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("env", a.cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
