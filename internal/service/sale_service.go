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
type SaleItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price"` // empty means the product's catalog price
}

type UpdateSaleItemRequest struct {
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type CreateSaleRequest struct {
	ClientID      string            `json:"client_id" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,payment_method"`
	DueDate       string            `json:"due_date" binding:"required"`
	Installments  int               `json:"installments" binding:"omitempty,min=1"`
	Note          string            `json:"note"`
	Items         []SaleItemRequest `json:"items"`
}

type SaleListQuery struct {
	ClientID      string `form:"client_id"`
	PaymentMethod string `form:"payment_method"`
	From          string `form:"from"`
	To            string `form:"to"`
}

type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string               `json:"id"`
	ClientID      string               `json:"client_id"`
	ClientName    string               `json:"client_name,omitempty"`
	SoldAt        string               `json:"sold_at"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaymentMethod string               `json:"payment_method"`
	DueDate       string               `json:"due_date"`
	Note          string               `json:"note"`
	Items         []SaleItemResponse   `json:"items,omitempty"`
	Receivables   []ReceivableResponse `json:"receivables,omitempty"`
}

type SaleListResponse struct {
	Items      []SaleResponse  `json:"items"`
	Total      int64           `json:"total"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type SaleService interface {
	CreateSale(ctx context.Context, ownerID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error)
	GetSale(ctx context.Context, ownerID uuid.UUID, id string) (*SaleResponse, error)
	ListSales(ctx context.Context, ownerID uuid.UUID, query SaleListQuery, page, limit int) (*SaleListResponse, error)
	DeleteSale(ctx context.Context, ownerID uuid.UUID, id string) error
	AddItem(ctx context.Context, ownerID uuid.UUID, saleID string, req SaleItemRequest) (*SaleResponse, error)
	UpdateItem(ctx context.Context, ownerID uuid.UUID, saleID, itemID string, req UpdateSaleItemRequest) (*SaleResponse, error)
	RemoveItem(ctx context.Context, ownerID uuid.UUID, saleID, itemID string) (*SaleResponse, error)
	RecomputeTotal(ctx context.Context, ownerID, saleID uuid.UUID) (decimal.Decimal, error)
}

type saleService struct {
	saleRepo       repository.SaleRepository
	clientRepo     repository.ClientRepository
	productRepo    repository.ProductRepository
	receivableRepo repository.ReceivableRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	notifier       Notifier
	log            *zap.Logger
	now            func() time.Time
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	receivableRepo repository.ReceivableRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *zap.Logger,
) SaleService {
	return &saleService{
		saleRepo:       saleRepo,
		clientRepo:     clientRepo,
		productRepo:    productRepo,
		receivableRepo: receivableRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		notifier:       notifier,
		log:            log.Named("sale"),
		now:            time.Now,
	}
}

// CreateSale persists a sale, its valid line items and one receivable per
// installment as a single unit. Item tuples that reference a foreign or
// missing product, or carry a bad quantity or price, are skipped; when none
// survive the whole sale is rolled back with apperror.ErrEmptySale.
func (s *saleService) CreateSale(ctx context.Context, ownerID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	dueDate, err := ledger.ParseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = model.PaymentCash
	}
	if !model.IsValidPaymentMethod(method) {
		return nil, apperror.Validation("payment_method", "unknown payment method")
	}

	count := req.Installments
	if count == 0 {
		count = 1
	}
	dates, err := ledger.InstallmentDates(dueDate, count)
	if err != nil {
		return nil, err
	}

	today := ledger.DateOf(s.now())
	var sale *model.Sale
	var skipped int

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, ownerID, clientID)
		if err != nil {
			return apperror.FromGorm(err, "client", "load client")
		}

		sale = &model.Sale{
			OwnerID:       ownerID,
			ClientID:      client.ID,
			SoldAt:        s.now().UTC(),
			TotalAmount:   decimal.Zero,
			PaymentMethod: method,
			DueDate:       dueDate,
			Note:          strings.TrimSpace(req.Note),
		}
		if err := s.saleRepo.Create(txCtx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		added := 0
		for i, itemReq := range req.Items {
			item, err := s.buildItem(txCtx, ownerID, sale.ID, itemReq.ProductID, itemReq.Quantity, itemReq.UnitPrice)
			if apperror.IsValidation(err) || apperror.IsNotFound(err) {
				skipped++
				s.log.Debug("skipping sale item", zap.Int("index", i), zap.Error(err))
				continue
			}
			if err != nil {
				return err
			}
			if err := s.saleRepo.CreateItem(txCtx, item); err != nil {
				return fmt.Errorf("failed to create sale item: %w", err)
			}
			if _, err := s.RecomputeTotal(txCtx, ownerID, sale.ID); err != nil {
				return err
			}
			added++
		}
		if added == 0 {
			return apperror.ErrEmptySale
		}

		total, err := s.RecomputeTotal(txCtx, ownerID, sale.ID)
		if err != nil {
			return err
		}
		sale.TotalAmount = total

		amount := ledger.InstallmentAmount(total, count)
		receivables := make([]model.ReceivableAccount, 0, count)
		for i, due := range dates {
			receivables = append(receivables, model.ReceivableAccount{
				OwnerID:  ownerID,
				SaleID:   sale.ID,
				ClientID: client.ID,
				Amount:   amount,
				DueDate:  due,
				Status:   ledger.DeriveStatus(model.StatusPending, due, today),
				Note:     ledger.InstallmentNote(i, count),
			})
		}
		if err := s.receivableRepo.CreateBatch(txCtx, receivables); err != nil {
			return fmt.Errorf("failed to create receivables: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionCreateSale, sale.ID.String(), client.Name, map[string]interface{}{
			"total_amount":   total.StringFixed(2),
			"payment_method": method,
			"installments":   count,
			"items":          added,
			"skipped_items":  skipped,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale created",
		zap.String("owner_id", ownerID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.Int("installments", count),
		zap.Int("skipped_items", skipped),
	)
	notify(s.notifier, ownerID, EventSaleCreated, map[string]interface{}{
		"id":           sale.ID.String(),
		"total_amount": sale.TotalAmount.StringFixed(2),
		"installments": count,
	})

	return s.loadDetails(ctx, ownerID, sale.ID)
}

// buildItem validates one line-item tuple against the owner's catalog. An
// empty unit price falls back to the product's current price.
func (s *saleService) buildItem(ctx context.Context, ownerID, saleID uuid.UUID, rawProductID, rawQuantity, rawPrice string) (*model.SaleItem, error) {
	productID, err := parseID("product_id", rawProductID)
	if err != nil {
		return nil, err
	}
	quantity, err := ledger.ParseQuantity("quantity", rawQuantity)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, ownerID, productID)
	if err != nil {
		return nil, apperror.FromGorm(err, "product", "load product")
	}

	price := product.Price
	if strings.TrimSpace(rawPrice) != "" {
		price, err = ledger.ParseNonNegativeAmount("unit_price", rawPrice)
		if err != nil {
			return nil, err
		}
	}

	item := &model.SaleItem{
		SaleID:      saleID,
		ProductID:   &product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   price,
	}
	item.ComputeSubtotal()
	if err := ledger.CheckAmountRange("subtotal", item.Subtotal); err != nil {
		return nil, err
	}
	return item, nil
}

// RecomputeTotal sums the sale's current items and stores the result as its
// total. Callers run it after every item write.
func (s *saleService) RecomputeTotal(ctx context.Context, ownerID, saleID uuid.UUID) (decimal.Decimal, error) {
	sale, err := s.saleRepo.FindByID(ctx, ownerID, saleID)
	if err != nil {
		return decimal.Zero, apperror.FromGorm(err, "sale", "load sale")
	}
	items, err := s.saleRepo.ListItems(ctx, sale.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load sale items: %w", err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	total = total.Round(ledger.AmountPlaces)
	if err := ledger.CheckAmountRange("total", total); err != nil {
		return decimal.Zero, err
	}

	if err := s.saleRepo.UpdateTotal(ctx, sale.ID, total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update sale total: %w", err)
	}
	return total, nil
}

func (s *saleService) GetSale(ctx context.Context, ownerID uuid.UUID, id string) (*SaleResponse, error) {
	saleID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if _, err := refreshReceivables(ctx, s.receivableRepo, ownerID, ledger.DateOf(s.now())); err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, ownerID, saleID)
}

func (s *saleService) loadDetails(ctx context.Context, ownerID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDWithDetails(ctx, ownerID, saleID)
	if err != nil {
		return nil, apperror.FromGorm(err, "sale", "load sale")
	}
	res := toSaleResponse(sale)
	return &res, nil
}

func (s *saleService) ListSales(ctx context.Context, ownerID uuid.UUID, query SaleListQuery, page, limit int) (*SaleListResponse, error) {
	page, limit = normalizePage(page, limit)

	filter, err := parseSaleFilter(query)
	if err != nil {
		return nil, err
	}

	sales, total, err := s.saleRepo.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	totals, err := s.saleRepo.Totals(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	res := &SaleListResponse{
		Items:      make([]SaleResponse, 0, len(sales)),
		Total:      total,
		TotalValue: totals.Value,
	}
	for i := range sales {
		res.Items = append(res.Items, toSaleResponse(&sales[i]))
	}
	return res, nil
}

func parseSaleFilter(query SaleListQuery) (repository.SaleFilter, error) {
	var filter repository.SaleFilter
	var err error

	if filter.ClientID, err = parseOptionalID("client_id", query.ClientID); err != nil {
		return filter, err
	}
	if method := strings.ToUpper(strings.TrimSpace(query.PaymentMethod)); method != "" {
		if !model.IsValidPaymentMethod(method) {
			return filter, apperror.Validation("payment_method", "unknown payment method")
		}
		filter.PaymentMethod = method
	}
	if filter.From, err = ledger.ParseOptionalDate("from", query.From); err != nil {
		return filter, err
	}
	if filter.To, err = ledger.ParseOptionalDate("to", query.To); err != nil {
		return filter, err
	}
	return filter, nil
}

func (s *saleService) DeleteSale(ctx context.Context, ownerID uuid.UUID, id string) error {
	saleID, err := parseID("id", id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByID(txCtx, ownerID, saleID)
		if err != nil {
			return apperror.FromGorm(err, "sale", "load sale")
		}
		if err := s.saleRepo.Delete(txCtx, ownerID, sale.ID); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionDeleteSale, sale.ID.String(), "", map[string]interface{}{
			"total_amount": sale.TotalAmount.StringFixed(2),
			"sold_at":      formatTimestamp(sale.SoldAt),
		})
	})
	if err != nil {
		return err
	}

	notify(s.notifier, ownerID, EventSaleDeleted, map[string]interface{}{"id": saleID.String()})
	return nil
}

func (s *saleService) AddItem(ctx context.Context, ownerID uuid.UUID, saleID string, req SaleItemRequest) (*SaleResponse, error) {
	sid, err := parseID("sale_id", saleID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByID(txCtx, ownerID, sid)
		if err != nil {
			return apperror.FromGorm(err, "sale", "load sale")
		}
		item, err := s.buildItem(txCtx, ownerID, sale.ID, req.ProductID, req.Quantity, req.UnitPrice)
		if err != nil {
			return err
		}
		if err := s.saleRepo.CreateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}
		_, err = s.RecomputeTotal(txCtx, ownerID, sale.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, ownerID, sid)
}

func (s *saleService) UpdateItem(ctx context.Context, ownerID uuid.UUID, saleID, itemID string, req UpdateSaleItemRequest) (*SaleResponse, error) {
	sid, err := parseID("sale_id", saleID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID("item_id", itemID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByID(txCtx, ownerID, sid)
		if err != nil {
			return apperror.FromGorm(err, "sale", "load sale")
		}
		item, err := s.saleRepo.FindItem(txCtx, sale.ID, iid)
		if err != nil {
			return apperror.FromGorm(err, "sale item", "load sale item")
		}

		if strings.TrimSpace(req.Quantity) != "" {
			if item.Quantity, err = ledger.ParseQuantity("quantity", req.Quantity); err != nil {
				return err
			}
		}
		if strings.TrimSpace(req.UnitPrice) != "" {
			if item.UnitPrice, err = ledger.ParseNonNegativeAmount("unit_price", req.UnitPrice); err != nil {
				return err
			}
		}
		item.ComputeSubtotal()
		if err := ledger.CheckAmountRange("subtotal", item.Subtotal); err != nil {
			return err
		}

		if err := s.saleRepo.UpdateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to update sale item: %w", err)
		}
		_, err = s.RecomputeTotal(txCtx, ownerID, sale.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, ownerID, sid)
}

func (s *saleService) RemoveItem(ctx context.Context, ownerID uuid.UUID, saleID, itemID string) (*SaleResponse, error) {
	sid, err := parseID("sale_id", saleID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID("item_id", itemID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByID(txCtx, ownerID, sid)
		if err != nil {
			return apperror.FromGorm(err, "sale", "load sale")
		}
		if _, err := s.saleRepo.FindItem(txCtx, sale.ID, iid); err != nil {
			return apperror.FromGorm(err, "sale item", "load sale item")
		}
		if err := s.saleRepo.DeleteItem(txCtx, sale.ID, iid); err != nil {
			return fmt.Errorf("failed to delete sale item: %w", err)
		}
		_, err = s.RecomputeTotal(txCtx, ownerID, sale.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, ownerID, sid)
}

func toSaleResponse(sale *model.Sale) SaleResponse {
	res := SaleResponse{
		ID:            sale.ID.String(),
		ClientID:      sale.ClientID.String(),
		SoldAt:        formatTimestamp(sale.SoldAt),
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		DueDate:       ledger.FormatDate(sale.DueDate),
		Note:          sale.Note,
	}
	if sale.Client != nil {
		res.ClientName = sale.Client.Name
	}
	for _, item := range sale.Items {
		var productID *string
		if item.ProductID != nil {
			id := item.ProductID.String()
			productID = &id
		}
		res.Items = append(res.Items, SaleItemResponse{
			ID:          item.ID.String(),
			ProductID:   productID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	for i := range sale.Receivables {
		res.Receivables = append(res.Receivables, toReceivableResponse(&sale.Receivables[i]))
	}
	return res
}
