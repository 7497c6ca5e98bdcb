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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = validator.New()

// DTOs
type ClientRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	TaxID    string `json:"tax_id" binding:"omitempty,max=20"`
	Address  string `json:"address"`
	City     string `json:"city" binding:"omitempty,max=100"`
	State    string `json:"state" binding:"omitempty,len=2"`
	ZipCode  string `json:"zip_code" binding:"omitempty,max=10"`
	IsActive *bool  `json:"is_active"`
}

type ClientListQuery struct {
	Status string `form:"status"` // active (default), inactive or all
	Search string `form:"search"`
}

type ClientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	TaxID     string `json:"tax_id"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type ClientDetailResponse struct {
	ClientResponse
	SalesCount  int64                `json:"sales_count"`
	SalesTotal  decimal.Decimal      `json:"sales_total"`
	Receivables []ReceivableResponse `json:"receivables"`
}

type ClientService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req ClientRequest) (*ClientResponse, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, req ClientRequest) (*ClientResponse, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) error
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*ClientDetailResponse, error)
	List(ctx context.Context, ownerID uuid.UUID, query ClientListQuery, page, limit int) ([]ClientResponse, int64, error)
}

type clientService struct {
	clientRepo     repository.ClientRepository
	saleRepo       repository.SaleRepository
	receivableRepo repository.ReceivableRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	log            *zap.Logger
	now            func() time.Time
}

func NewClientService(
	clientRepo repository.ClientRepository,
	saleRepo repository.SaleRepository,
	receivableRepo repository.ReceivableRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	log *zap.Logger,
) ClientService {
	return &clientService{
		clientRepo:     clientRepo,
		saleRepo:       saleRepo,
		receivableRepo: receivableRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		log:            log.Named("client"),
		now:            time.Now,
	}
}

// activeFilter maps the list status filter; anything unknown means active only
func activeFilter(status string) *bool {
	var active bool
	switch strings.ToLower(status) {
	case "all":
		return nil
	case "inactive":
		active = false
	default:
		active = true
	}
	return &active
}

func (s *clientService) apply(ctx context.Context, ownerID uuid.UUID, client *model.Client, req ClientRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperror.Validation("name", "is required")
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return apperror.Validation("email", "must be a valid email address")
		}
	}
	state := strings.ToUpper(strings.TrimSpace(req.State))
	if state != "" && len(state) != 2 {
		return apperror.Validation("state", "must have exactly 2 letters")
	}

	taken, err := s.clientRepo.NameTaken(ctx, ownerID, name, client.ID)
	if err != nil {
		return fmt.Errorf("failed to check client name: %w", err)
	}
	if taken {
		return apperror.Conflict("a client with this name already exists")
	}

	client.Name = name
	client.Email = email
	client.Phone = strings.TrimSpace(req.Phone)
	client.TaxID = strings.TrimSpace(req.TaxID)
	client.Address = strings.TrimSpace(req.Address)
	client.City = strings.TrimSpace(req.City)
	client.State = state
	client.ZipCode = strings.TrimSpace(req.ZipCode)
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, ownerID uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	client := &model.Client{OwnerID: ownerID, IsActive: true}
	if err := s.apply(ctx, ownerID, client, req); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	res := toClientResponse(client)
	return &res, nil
}

func (s *clientService) Update(ctx context.Context, ownerID uuid.UUID, id string, req ClientRequest) (*ClientResponse, error) {
	clientID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, apperror.FromGorm(err, "client", "load client")
	}
	if err := s.apply(ctx, ownerID, client, req); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	res := toClientResponse(client)
	return &res, nil
}

// Delete removes the client together with its sales, their items and receivables
func (s *clientService) Delete(ctx context.Context, ownerID uuid.UUID, id string) error {
	clientID, err := parseID("id", id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, ownerID, clientID)
		if err != nil {
			return apperror.FromGorm(err, "client", "load client")
		}
		sales, err := s.saleRepo.CountByClient(txCtx, ownerID, client.ID)
		if err != nil {
			return fmt.Errorf("failed to count client sales: %w", err)
		}
		if err := s.saleRepo.DeleteByClient(txCtx, ownerID, client.ID); err != nil {
			return fmt.Errorf("failed to delete client sales: %w", err)
		}
		if err := s.clientRepo.Delete(txCtx, ownerID, client.ID); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionDeleteClient, client.ID.String(), client.Name, map[string]interface{}{
			"deleted_sales": sales.Count,
		})
	})
}

func (s *clientService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*ClientDetailResponse, error) {
	clientID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, apperror.FromGorm(err, "client", "load client")
	}

	if _, err := refreshReceivables(ctx, s.receivableRepo, ownerID, ledger.DateOf(s.now())); err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.CountByClient(ctx, ownerID, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum client sales: %w", err)
	}
	accounts, err := s.receivableRepo.ListByClient(ctx, ownerID, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client receivables: %w", err)
	}

	res := &ClientDetailResponse{
		ClientResponse: toClientResponse(client),
		SalesCount:     sales.Count,
		SalesTotal:     sales.Value,
		Receivables:    make([]ReceivableResponse, 0, len(accounts)),
	}
	for i := range accounts {
		res.Receivables = append(res.Receivables, toReceivableResponse(&accounts[i]))
	}
	return res, nil
}

func (s *clientService) List(ctx context.Context, ownerID uuid.UUID, query ClientListQuery, page, limit int) ([]ClientResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	filter := repository.ClientFilter{
		Active: activeFilter(query.Status),
		Search: strings.TrimSpace(query.Search),
	}
	clients, total, err := s.clientRepo.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		res = append(res, toClientResponse(&clients[i]))
	}
	return res, total, nil
}

func toClientResponse(c *model.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		TaxID:     c.TaxID,
		Address:   c.Address,
		City:      c.City,
		State:     c.State,
		ZipCode:   c.ZipCode,
		IsActive:  c.IsActive,
		CreatedAt: formatTimestamp(c.CreatedAt),
	}
}
