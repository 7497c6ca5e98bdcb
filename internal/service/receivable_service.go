package service

import (
	"context"
	"fmt"
	"time"

	"salesledger/internal/ledger"
	"salesledger/internal/model"
	"salesledger/internal/repository"
	"salesledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DTOs
type AccountListQuery struct {
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
	Search   string `form:"search"`
	From     string `form:"from"`
	To       string `form:"to"`
}

type MarkPaidRequest struct {
	PaidAt string `json:"paid_at" binding:"required"`
}

type ReceivableResponse struct {
	ID         string              `json:"id"`
	SaleID     string              `json:"sale_id"`
	ClientID   string              `json:"client_id"`
	ClientName string              `json:"client_name,omitempty"`
	Amount     decimal.Decimal     `json:"amount"`
	DueDate    string              `json:"due_date"`
	PaidAt     *string             `json:"paid_at"`
	Status     model.AccountStatus `json:"status"`
	Note       string              `json:"note"`
}

type ReceivableDetailResponse struct {
	ReceivableResponse
	Sale *SaleResponse `json:"sale,omitempty"`
}

// StatusSums is the owner-wide amount per account status
type StatusSums struct {
	Pending decimal.Decimal `json:"pending"`
	Overdue decimal.Decimal `json:"overdue"`
	Paid    decimal.Decimal `json:"paid"`
}

type ReceivableListResponse struct {
	Items      []ReceivableResponse `json:"items"`
	Total      int64                `json:"total"`
	TotalValue decimal.Decimal      `json:"total_value"`
	Status     string               `json:"status"`
	Sums       StatusSums           `json:"sums"`
}

type ReceivableService interface {
	List(ctx context.Context, ownerID uuid.UUID, query AccountListQuery, page, limit int) (*ReceivableListResponse, error)
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*ReceivableDetailResponse, error)
	MarkPaid(ctx context.Context, ownerID uuid.UUID, id string, req MarkPaidRequest) (*ReceivableResponse, error)
	MarkUnpaid(ctx context.Context, ownerID uuid.UUID, id string) (*ReceivableResponse, error)
	RefreshStatuses(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type receivableService struct {
	repo      repository.ReceivableRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewReceivableService(
	repo repository.ReceivableRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *zap.Logger,
) ReceivableService {
	return &receivableService{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifier,
		log:       log.Named("receivable"),
		now:       time.Now,
	}
}

func (s *receivableService) today() time.Time {
	return ledger.DateOf(s.now())
}

// RefreshStatuses re-derives PENDING/OVERDUE for the owner's open receivables
func (s *receivableService) RefreshStatuses(ctx context.Context, ownerID uuid.UUID) (int, error) {
	n, err := refreshReceivables(ctx, s.repo, ownerID, s.today())
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.log.Debug("receivable statuses refreshed", zap.String("owner_id", ownerID.String()), zap.Int("changed", n))
	}
	return n, nil
}

func (s *receivableService) List(ctx context.Context, ownerID uuid.UUID, query AccountListQuery, page, limit int) (*ReceivableListResponse, error) {
	page, limit = normalizePage(page, limit)

	filter, err := parseAccountFilter(query)
	if err != nil {
		return nil, err
	}
	filter.Search = ""
	if _, err := s.RefreshStatuses(ctx, ownerID); err != nil {
		return nil, err
	}

	accounts, total, err := s.repo.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	totals, err := s.repo.Totals(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to sum receivables: %w", err)
	}
	sums, err := s.repo.SumsByStatus(ctx, ownerID, repository.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to sum receivables by status: %w", err)
	}

	res := &ReceivableListResponse{
		Items:      make([]ReceivableResponse, 0, len(accounts)),
		Total:      total,
		TotalValue: totals.Value,
		Status:     statusLabel(filter.Status),
		Sums:       toStatusSums(sums),
	}
	for i := range accounts {
		res.Items = append(res.Items, toReceivableResponse(&accounts[i]))
	}
	return res, nil
}

func (s *receivableService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*ReceivableDetailResponse, error) {
	accountID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if _, err := s.RefreshStatuses(ctx, ownerID); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, apperror.FromGorm(err, "receivable", "load receivable")
	}

	res := &ReceivableDetailResponse{ReceivableResponse: toReceivableResponse(account)}
	if account.Sale != nil {
		sale := toSaleResponse(account.Sale)
		res.Sale = &sale
	}
	return res, nil
}

func (s *receivableService) MarkPaid(ctx context.Context, ownerID uuid.UUID, id string, req MarkPaidRequest) (*ReceivableResponse, error) {
	paidAt, err := ledger.ParseDate("paid_at", req.PaidAt)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, ownerID, id, model.ActionPayReceivable, EventReceivablePaid, func(acc *model.ReceivableAccount) {
		ledger.MarkPaid(acc, paidAt)
	})
}

func (s *receivableService) MarkUnpaid(ctx context.Context, ownerID uuid.UUID, id string) (*ReceivableResponse, error) {
	return s.transition(ctx, ownerID, id, model.ActionUnpayReceivable, EventReceivableUnpaid, func(acc *model.ReceivableAccount) {
		ledger.MarkUnpaid(acc)
	})
}

func (s *receivableService) transition(ctx context.Context, ownerID uuid.UUID, id, action, event string, apply func(*model.ReceivableAccount)) (*ReceivableResponse, error) {
	accountID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	var account *model.ReceivableAccount
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, ownerID, accountID)
		if err != nil {
			return apperror.FromGorm(err, "receivable", "load receivable")
		}
		account = found
		apply(account)
		if err := s.repo.UpdateStatus(txCtx, account); err != nil {
			return fmt.Errorf("failed to update receivable: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, action, account.ID.String(), account.Note, map[string]interface{}{
			"amount":  account.Amount.StringFixed(2),
			"status":  account.Status,
			"paid_at": formatOptionalDate(account.PaidAt),
		})
	})
	if err != nil {
		return nil, err
	}

	notify(s.notifier, ownerID, event, map[string]interface{}{
		"id":      account.ID.String(),
		"sale_id": account.SaleID.String(),
		"status":  account.Status,
	})
	res := toReceivableResponse(account)
	return &res, nil
}

func parseAccountFilter(query AccountListQuery) (repository.AccountFilter, error) {
	filter := repository.AccountFilter{
		Status: model.ParseStatusFilter(query.Status),
		Search: query.Search,
	}
	var err error
	if filter.ClientID, err = parseOptionalID("client_id", query.ClientID); err != nil {
		return filter, err
	}
	if filter.From, err = ledger.ParseOptionalDate("from", query.From); err != nil {
		return filter, err
	}
	if filter.To, err = ledger.ParseOptionalDate("to", query.To); err != nil {
		return filter, err
	}
	return filter, nil
}

func statusLabel(status *model.AccountStatus) string {
	if status == nil {
		return "ALL"
	}
	return string(*status)
}

func toStatusSums(sums map[model.AccountStatus]decimal.Decimal) StatusSums {
	return StatusSums{
		Pending: sums[model.StatusPending],
		Overdue: sums[model.StatusOverdue],
		Paid:    sums[model.StatusPaid],
	}
}

func toReceivableResponse(acc *model.ReceivableAccount) ReceivableResponse {
	res := ReceivableResponse{
		ID:       acc.ID.String(),
		SaleID:   acc.SaleID.String(),
		ClientID: acc.ClientID.String(),
		Amount:   acc.Amount,
		DueDate:  ledger.FormatDate(acc.DueDate),
		PaidAt:   formatOptionalDate(acc.PaidAt),
		Status:   acc.Status,
		Note:     acc.Note,
	}
	if acc.Client != nil {
		res.ClientName = acc.Client.Name
	}
	return res
}
