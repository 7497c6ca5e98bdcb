package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salesledger/internal/ledger"
	"salesledger/internal/model"
	"salesledger/internal/repository"
	"salesledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DTOs
type ProductRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Stock       int    `json:"stock" binding:"min=0"`
	BrandID     string `json:"brand_id"`
	IsActive    *bool  `json:"is_active"`
}

type StockAdjustmentRequest struct {
	Operation string `json:"operation" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Reason    string `json:"reason"`
}

type ProductListQuery struct {
	Status  string `form:"status"`
	BrandID string `form:"brand_id"`
	Search  string `form:"search"`
}

type BrandResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Brand       *BrandResponse  `json:"brand"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at"`
}

type ProductService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req ProductRequest) (*ProductResponse, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, req ProductRequest) (*ProductResponse, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) error
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*ProductResponse, error)
	List(ctx context.Context, ownerID uuid.UUID, query ProductListQuery, page, limit int) ([]ProductResponse, int64, error)
	AdjustStock(ctx context.Context, ownerID uuid.UUID, id string, req StockAdjustmentRequest) (*ProductResponse, error)
	ListBrands(ctx context.Context) ([]BrandResponse, error)
}

type productService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	log         *zap.Logger
}

func NewProductService(
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	log *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		log:         log.Named("product"),
	}
}

func (s *productService) apply(ctx context.Context, ownerID uuid.UUID, product *model.Product, req ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperror.Validation("name", "is required")
	}
	price, err := ledger.ParseNonNegativeAmount("price", req.Price)
	if err != nil {
		return err
	}
	if req.Stock < 0 {
		return apperror.Validation("stock", "cannot be negative")
	}

	taken, err := s.productRepo.NameTaken(ctx, ownerID, name, product.ID)
	if err != nil {
		return fmt.Errorf("failed to check product name: %w", err)
	}
	if taken {
		return apperror.Conflict("a product with this name already exists")
	}

	product.Name = name
	product.Description = strings.TrimSpace(req.Description)
	product.Price = price
	product.Stock = req.Stock
	product.BrandID = nil
	product.Brand = nil
	if brand := s.lookupBrand(ctx, req.BrandID); brand != nil {
		product.BrandID = &brand.ID
		product.Brand = brand
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	return nil
}

// lookupBrand resolves an optional brand id; unknown or malformed ids are ignored
func (s *productService) lookupBrand(ctx context.Context, raw string) *model.Brand {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	brand, err := s.productRepo.FindBrand(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("brand lookup failed", zap.String("brand_id", raw), zap.Error(err))
		}
		return nil
	}
	return brand
}

func (s *productService) Create(ctx context.Context, ownerID uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product := &model.Product{OwnerID: ownerID, IsActive: true}
	if err := s.apply(ctx, ownerID, product, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	res := toProductResponse(product)
	return &res, nil
}

func (s *productService) Update(ctx context.Context, ownerID uuid.UUID, id string, req ProductRequest) (*ProductResponse, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, ownerID, productID)
	if err != nil {
		return nil, apperror.FromGorm(err, "product", "load product")
	}
	if err := s.apply(ctx, ownerID, product, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	res := toProductResponse(product)
	return &res, nil
}

// Delete removes the product. Sale items keep their name and price snapshot
// but lose the reference.
func (s *productService) Delete(ctx context.Context, ownerID uuid.UUID, id string) error {
	productID, err := parseID("id", id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, ownerID, productID)
		if err != nil {
			return apperror.FromGorm(err, "product", "load product")
		}
		if err := s.productRepo.Delete(txCtx, ownerID, product.ID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionDeleteProduct, product.ID.String(), product.Name, map[string]interface{}{
			"deleted": true,
		})
	})
}

func (s *productService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*ProductResponse, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, ownerID, productID)
	if err != nil {
		return nil, apperror.FromGorm(err, "product", "load product")
	}
	res := toProductResponse(product)
	return &res, nil
}

func (s *productService) List(ctx context.Context, ownerID uuid.UUID, query ProductListQuery, page, limit int) ([]ProductResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	brandID, err := parseOptionalID("brand_id", query.BrandID)
	if err != nil {
		return nil, 0, err
	}
	filter := repository.ProductFilter{
		Active:  activeFilter(query.Status),
		BrandID: brandID,
		Search:  strings.TrimSpace(query.Search),
	}

	products, total, err := s.productRepo.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res, total, nil
}

// AdjustStock adds or removes units. Removing more than is on hand is rejected.
func (s *productService) AdjustStock(ctx context.Context, ownerID uuid.UUID, id string, req StockAdjustmentRequest) (*ProductResponse, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	op := strings.ToUpper(strings.TrimSpace(req.Operation))
	if op != model.StockOpAdd && op != model.StockOpRemove {
		return nil, apperror.Validation("operation", "must be ADD or REMOVE")
	}
	if req.Quantity <= 0 {
		return nil, apperror.Validation("quantity", "must be greater than zero")
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.productRepo.FindByID(txCtx, ownerID, productID)
		if err != nil {
			return apperror.FromGorm(err, "product", "load product")
		}
		product = found

		before := product.Stock
		if op == model.StockOpAdd {
			product.Stock += req.Quantity
		} else {
			if product.Stock < req.Quantity {
				return apperror.Validation("quantity", fmt.Sprintf("insufficient stock, available: %d", product.Stock))
			}
			product.Stock -= req.Quantity
		}

		if err := s.productRepo.UpdateStock(txCtx, ownerID, product.ID, product.Stock); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, ownerID, model.ActionAdjustStock, product.ID.String(), product.Name, map[string]interface{}{
			"operation":    op,
			"quantity":     req.Quantity,
			"stock_before": before,
			"stock_after":  product.Stock,
			"reason":       strings.TrimSpace(req.Reason),
		})
	})
	if err != nil {
		return nil, err
	}

	res := toProductResponse(product)
	return &res, nil
}

func (s *productService) ListBrands(ctx context.Context) ([]BrandResponse, error) {
	brands, err := s.productRepo.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	res := make([]BrandResponse, 0, len(brands))
	for _, b := range brands {
		res = append(res, BrandResponse{ID: b.ID.String(), Name: b.Name})
	}
	return res, nil
}

func toProductResponse(p *model.Product) ProductResponse {
	res := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   formatTimestamp(p.CreatedAt),
	}
	if p.Brand != nil {
		res.Brand = &BrandResponse{ID: p.Brand.ID.String(), Name: p.Brand.Name}
	}
	return res
}
