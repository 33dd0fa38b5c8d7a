package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

type ProductService struct {
	productRepo *repository.ProductRepository
	auditLog    *AuditLogService
	logger      *zap.Logger
}

func NewProductService(
	productRepo *repository.ProductRepository,
	auditLog *AuditLogService,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		auditLog:    auditLog,
		logger:      logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		OwnerID:     userCtx.UserID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
		Unit:        req.Unit,
		IsActive:    true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionCreate, "product", &product.ID, product.Name, "")

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.Price = req.Price
	product.Discount = req.Discount
	product.Unit = req.Unit
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionUpdate, "product", &product.ID, product.Name, "")

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionDelete, "product", &product.ID, product.Name, "")
	return nil
}

func (s *ProductService) List(ctx context.Context, page, pageSize int, search string, activeOnly bool) (*domain.PaginatedResponse[domain.ProductDTO], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 20
	}

	products, total, err := s.productRepo.List(ctx, page, pageSize, search, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, mapper.ToProductDTO(&products[i]))
	}

	return &domain.PaginatedResponse[domain.ProductDTO]{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
