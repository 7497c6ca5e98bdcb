package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salesledger/internal/ledger"
	"salesledger/internal/model"
	"salesledger/internal/repository"
	"salesledger/pkg/apperror"

	"github.com/google/uuid"
)

// Realtime event names pushed to the owner's websocket connections
const (
	EventSaleCreated      = "sale.created"
	EventSaleDeleted      = "sale.deleted"
	EventReceivablePaid   = "receivable.paid"
	EventReceivableUnpaid = "receivable.unpaid"
	EventPayablePaid      = "payable.paid"
	EventPayableUnpaid    = "payable.unpaid"
)

// Event is the websocket payload
type Event struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// Notifier delivers events to a single owner's live connections
type Notifier interface {
	Notify(ownerID uuid.UUID, event Event)
}

// ListResult is a page of items with the total row count
type ListResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func notify(n Notifier, ownerID uuid.UUID, name string, data map[string]interface{}) {
	if n == nil {
		return
	}
	n.Notify(ownerID, Event{Event: name, Data: data})
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation(field, "invalid id")
	}
	return id, nil
}

// parseOptionalID returns nil for an empty string
func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, ownerID uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		OwnerID:    ownerID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// accountPtr is satisfied by *model.ReceivableAccount and *model.PayableAccount
type accountPtr[T any] interface {
	*T
	ledger.Account
}

// refreshAccounts re-derives every account's status against today and saves
// the ones that changed. It returns how many rows were written.
func refreshAccounts[T any, P accountPtr[T]](accounts []T, today time.Time, save func(P) error) (int, error) {
	changed := 0
	for i := range accounts {
		acc := P(&accounts[i])
		if !ledger.Refresh(acc, today) {
			continue
		}
		if err := save(acc); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func refreshReceivables(ctx context.Context, repo repository.ReceivableRepository, ownerID uuid.UUID, today time.Time) (int, error) {
	open, err := repo.ListOpen(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load open receivables: %w", err)
	}
	n, err := refreshAccounts(open, today, func(acc *model.ReceivableAccount) error {
		return repo.UpdateStatus(ctx, acc)
	})
	if err != nil {
		return n, fmt.Errorf("failed to update receivable status: %w", err)
	}
	return n, nil
}

func refreshPayables(ctx context.Context, repo repository.PayableRepository, ownerID uuid.UUID, today time.Time) (int, error) {
	open, err := repo.ListOpen(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load open payables: %w", err)
	}
	n, err := refreshAccounts(open, today, func(acc *model.PayableAccount) error {
		return repo.UpdateStatus(ctx, acc)
	})
	if err != nil {
		return n, fmt.Errorf("failed to update payable status: %w", err)
	}
	return n, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := ledger.FormatDate(*t)
	return &s
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return page, limit
}
