package main

import (
	"fmt"
	"os"

	"salesledger/internal/config"
	"salesledger/internal/database"
	"salesledger/internal/logger"
	"salesledger/internal/repository"
	"salesledger/internal/service"
	"salesledger/internal/websocket"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "1.0.0"

// @title           Sales Ledger API
// @version         1.0
// @description     Clients, products, sales with installment receivables, and payables for small resellers.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	root := &cobra.Command{
		Use:     "salesledger",
		Short:   "Sales ledger API server",
		Version: version,
		// serve is the default so the binary can be started without arguments
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newRefreshCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything both commands need
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	users       repository.UserRepository
	hub         *websocket.Hub
	userSvc     service.UserService
	clients     service.ClientService
	products    service.ProductService
	sales       service.SaleService
	receivables service.ReceivableService
	payables    service.PayableService
	dashboard   service.DashboardService
	audit       service.AuditService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Repository -> Service
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	payableRepo := repository.NewPayableRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	hub := websocket.NewHub(log)
	tokens := service.TokenSettings{
		Secret:     []byte(cfg.JWT.Secret),
		AccessTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTTL: cfg.JWT.RefreshTokenTTL,
	}

	return &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		users:       userRepo,
		hub:         hub,
		userSvc:     service.NewUserService(userRepo, tokens, log),
		clients:     service.NewClientService(clientRepo, saleRepo, receivableRepo, auditRepo, txManager, log),
		products:    service.NewProductService(productRepo, auditRepo, txManager, log),
		sales:       service.NewSaleService(saleRepo, clientRepo, productRepo, receivableRepo, auditRepo, txManager, hub, log),
		receivables: service.NewReceivableService(receivableRepo, auditRepo, txManager, hub, log),
		payables:    service.NewPayableService(payableRepo, auditRepo, txManager, hub, log),
		dashboard:   service.NewDashboardService(dashboardRepo, saleRepo, receivableRepo, payableRepo, log),
		audit:       service.NewAuditService(auditRepo),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
