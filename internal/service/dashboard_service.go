package service

import (
	"context"
	"fmt"
	"time"

	"salesledger/internal/ledger"
	"salesledger/internal/model"
	"salesledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DashboardService interface {
	Summary(ctx context.Context, ownerID uuid.UUID) (*model.DashboardSummary, error)
}

type dashboardService struct {
	dashboardRepo  repository.DashboardRepository
	saleRepo       repository.SaleRepository
	receivableRepo repository.ReceivableRepository
	payableRepo    repository.PayableRepository
	log            *zap.Logger
	now            func() time.Time
}

func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	saleRepo repository.SaleRepository,
	receivableRepo repository.ReceivableRepository,
	payableRepo repository.PayableRepository,
	log *zap.Logger,
) DashboardService {
	return &dashboardService{
		dashboardRepo:  dashboardRepo,
		saleRepo:       saleRepo,
		receivableRepo: receivableRepo,
		payableRepo:    payableRepo,
		log:            log.Named("dashboard"),
		now:            time.Now,
	}
}

// Summary refreshes account statuses and then aggregates the home screen
// figures. Month figures cover the calendar month containing today.
func (s *dashboardService) Summary(ctx context.Context, ownerID uuid.UUID) (*model.DashboardSummary, error) {
	today := ledger.DateOf(s.now())

	if _, err := refreshReceivables(ctx, s.receivableRepo, ownerID, today); err != nil {
		return nil, err
	}
	if _, err := refreshPayables(ctx, s.payableRepo, ownerID, today); err != nil {
		return nil, err
	}

	var summary model.DashboardSummary
	var err error

	if summary.ActiveClients, err = s.dashboardRepo.CountActiveClients(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	if summary.ActiveProducts, err = s.dashboardRepo.CountActiveProducts(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	sales, err := s.saleRepo.Totals(ctx, ownerID, repository.SaleFilter{From: &monthStart, To: &monthEnd})
	if err != nil {
		return nil, fmt.Errorf("failed to sum month sales: %w", err)
	}
	summary.MonthSalesCount = sales.Count
	summary.MonthSalesValue = sales.Value

	if summary.Receivables, err = s.dashboardRepo.ReceivableTotals(ctx, ownerID, today); err != nil {
		return nil, err
	}
	if summary.Payables, err = s.dashboardRepo.PayableTotals(ctx, ownerID, today); err != nil {
		return nil, err
	}

	return &summary, nil
}
