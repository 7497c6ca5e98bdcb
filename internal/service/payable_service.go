package service

import (
	"context"
	"fmt"
	"strings"
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
type PayableRequest struct {
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	DueDate     string `json:"due_date" binding:"required"`
	Note        string `json:"note"`
}

type PayableResponse struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	DueDate     string              `json:"due_date"`
	PaidAt      *string             `json:"paid_at"`
	Status      model.AccountStatus `json:"status"`
	Note        string              `json:"note"`
	CreatedAt   string              `json:"created_at"`
}

type PayableListResponse struct {
	Items      []PayableResponse `json:"items"`
	Total      int64             `json:"total"`
	TotalValue decimal.Decimal   `json:"total_value"`
	Status     string            `json:"status"`
	Sums       StatusSums        `json:"sums"`
}

type PayableService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req PayableRequest) (*PayableResponse, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, req PayableRequest) (*PayableResponse, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) error
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*PayableResponse, error)
	List(ctx context.Context, ownerID uuid.UUID, query AccountListQuery, page, limit int) (*PayableListResponse, error)
	MarkPaid(ctx context.Context, ownerID uuid.UUID, id string, req MarkPaidRequest) (*PayableResponse, error)
	MarkUnpaid(ctx context.Context, ownerID uuid.UUID, id string) (*PayableResponse, error)
	RefreshStatuses(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type payableService struct {
	repo      repository.PayableRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewPayableService(
	repo repository.PayableRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *zap.Logger,
) PayableService {
	return &payableService{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifier,
		log:       log.Named("payable"),
		now:       time.Now,
	}
}

type payableInput struct {
	description string
	amount      decimal.Decimal
	dueDate     time.Time
	note        string
}

func parsePayable(req PayableRequest) (payableInput, error) {
	in := payableInput{
		description: strings.TrimSpace(req.Description),
		note:        strings.TrimSpace(req.Note),
	}
	if in.description == "" {
		return in, apperror.Validation("description", "is required")
	}
	var err error
	if in.amount, err = ledger.ParsePositiveAmount("amount", req.Amount); err != nil {
		return in, err
	}
	if in.dueDate, err = ledger.ParseDate("due_date", req.DueDate); err != nil {
		return in, err
	}
	return in, nil
}

func (s *payableService) RefreshStatuses(ctx context.Context, ownerID uuid.UUID) (int, error) {
	n, err := refreshPayables(ctx, s.repo, ownerID, ledger.DateOf(s.now()))
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.log.Debug("payable statuses refreshed", zap.String("owner_id", ownerID.String()), zap.Int("changed", n))
	}
	return n, nil
}

func (s *payableService) Create(ctx context.Context, ownerID uuid.UUID, req PayableRequest) (*PayableResponse, error) {
	in, err := parsePayable(req)
	if err != nil {
		return nil, err
	}

	account := &model.PayableAccount{
		OwnerID:     ownerID,
		Description: in.description,
		Amount:      in.amount,
		DueDate:     in.dueDate,
		Status:      ledger.DeriveStatus(model.StatusPending, in.dueDate, ledger.DateOf(s.now())),
		Note:        in.note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, account); err != nil {
			return fmt.Errorf("failed to create payable: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionCreatePayable, account.ID.String(), account.Description, map[string]interface{}{
			"amount":   account.Amount.StringFixed(2),
			"due_date": ledger.FormatDate(account.DueDate),
		})
	})
	if err != nil {
		return nil, err
	}

	res := toPayableResponse(account)
	return &res, nil
}

func (s *payableService) Update(ctx context.Context, ownerID uuid.UUID, id string, req PayableRequest) (*PayableResponse, error) {
	accountID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	in, err := parsePayable(req)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, apperror.FromGorm(err, "payable", "load payable")
	}

	account.Description = in.description
	account.Amount = in.amount
	account.DueDate = in.dueDate
	account.Note = in.note
	ledger.Refresh(account, ledger.DateOf(s.now()))

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update payable: %w", err)
	}
	res := toPayableResponse(account)
	return &res, nil
}

func (s *payableService) Delete(ctx context.Context, ownerID uuid.UUID, id string) error {
	accountID, err := parseID("id", id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		account, err := s.repo.FindByID(txCtx, ownerID, accountID)
		if err != nil {
			return apperror.FromGorm(err, "payable", "load payable")
		}
		if err := s.repo.Delete(txCtx, ownerID, account.ID); err != nil {
			return fmt.Errorf("failed to delete payable: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionDeletePayable, account.ID.String(), account.Description, map[string]interface{}{
			"deleted": true,
			"amount":  account.Amount.StringFixed(2),
		})
	})
}

func (s *payableService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*PayableResponse, error) {
	accountID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if _, err := s.RefreshStatuses(ctx, ownerID); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, apperror.FromGorm(err, "payable", "load payable")
	}
	res := toPayableResponse(account)
	return &res, nil
}

func (s *payableService) List(ctx context.Context, ownerID uuid.UUID, query AccountListQuery, page, limit int) (*PayableListResponse, error) {
	page, limit = normalizePage(page, limit)

	filter, err := parseAccountFilter(query)
	if err != nil {
		return nil, err
	}
	filter.ClientID = nil
	if _, err := s.RefreshStatuses(ctx, ownerID); err != nil {
		return nil, err
	}

	accounts, total, err := s.repo.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	totals, err := s.repo.Totals(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payables: %w", err)
	}
	sums, err := s.repo.SumsByStatus(ctx, ownerID, repository.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to sum payables by status: %w", err)
	}

	res := &PayableListResponse{
		Items:      make([]PayableResponse, 0, len(accounts)),
		Total:      total,
		TotalValue: totals.Value,
		Status:     statusLabel(filter.Status),
		Sums:       toStatusSums(sums),
	}
	for i := range accounts {
		res.Items = append(res.Items, toPayableResponse(&accounts[i]))
	}
	return res, nil
}

func (s *payableService) MarkPaid(ctx context.Context, ownerID uuid.UUID, id string, req MarkPaidRequest) (*PayableResponse, error) {
	paidAt, err := ledger.ParseDate("paid_at", req.PaidAt)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, ownerID, id, model.ActionPayPayable, EventPayablePaid, func(acc *model.PayableAccount) {
		ledger.MarkPaid(acc, paidAt)
	})
}

func (s *payableService) MarkUnpaid(ctx context.Context, ownerID uuid.UUID, id string) (*PayableResponse, error) {
	return s.transition(ctx, ownerID, id, model.ActionUnpayPayable, EventPayableUnpaid, func(acc *model.PayableAccount) {
		ledger.MarkUnpaid(acc)
	})
}

func (s *payableService) transition(ctx context.Context, ownerID uuid.UUID, id, action, event string, apply func(*model.PayableAccount)) (*PayableResponse, error) {
	accountID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	var account *model.PayableAccount
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, ownerID, accountID)
		if err != nil {
			return apperror.FromGorm(err, "payable", "load payable")
		}
		account = found
		apply(account)
		if err := s.repo.UpdateStatus(txCtx, account); err != nil {
			return fmt.Errorf("failed to update payable: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, action, account.ID.String(), account.Description, map[string]interface{}{
			"amount":  account.Amount.StringFixed(2),
			"status":  account.Status,
			"paid_at": formatOptionalDate(account.PaidAt),
		})
	})
	if err != nil {
		return nil, err
	}

	notify(s.notifier, ownerID, event, map[string]interface{}{
		"id":     account.ID.String(),
		"status": account.Status,
	})
	res := toPayableResponse(account)
	return &res, nil
}

func toPayableResponse(acc *model.PayableAccount) PayableResponse {
	return PayableResponse{
		ID:          acc.ID.String(),
		Description: acc.Description,
		Amount:      acc.Amount,
		DueDate:     ledger.FormatDate(acc.DueDate),
		PaidAt:      formatOptionalDate(acc.PaidAt),
		Status:      acc.Status,
		Note:        acc.Note,
		CreatedAt:   formatTimestamp(acc.CreatedAt),
	}
}
