package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	auditLog     *AuditLogService
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	auditLog *AuditLogService,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		auditLog:     auditLog,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.checkEmailFree(ctx, userCtx.UserID, req.Email, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		OwnerID:     userCtx.UserID,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		ZipCode:     req.ZipCode,
		Notes:       req.Notes,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionCreate, "customer", &customer.ID, customer.Name, "")

	dto := mapper.ToCustomerDTO(customer, 0)
	return &dto, nil
}

// checkEmailFree enforces the per-owner uniqueness of customer emails ahead
// of the database index, so the caller gets a conflict instead of a raw
// constraint violation. Comparison is case-insensitive, matching the index.
func (s *CustomerService) checkEmailFree(ctx context.Context, ownerID, email string, selfID uuid.UUID) error {
	existing, err := s.customerRepo.GetByEmail(ctx, ownerID, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check customer email: %w", err)
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: a customer with email %q already exists", ErrConflict, email)
	}
	return nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	quoteCount, err := s.customerRepo.GetQuotesCount(ctx, customer.ID)
	if err != nil {
		s.logger.Warn("failed to count customer quotes", zap.Error(err))
	}

	dto := mapper.ToCustomerDTO(customer, quoteCount)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if !strings.EqualFold(customer.Email, req.Email) {
		if err := s.checkEmailFree(ctx, customer.OwnerID, req.Email, customer.ID); err != nil {
			return nil, err
		}
	}

	customer.Name = req.Name
	customer.CompanyName = req.CompanyName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.City = req.City
	customer.ZipCode = req.ZipCode
	customer.Notes = req.Notes

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionUpdate, "customer", &customer.ID, customer.Name, "")

	dto := mapper.ToCustomerDTO(customer, 0)
	return &dto, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.customerRepo.Delete(ctx, customer.ID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionDelete, "customer", &customer.ID, customer.Name, "")
	return nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse[domain.CustomerDTO], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 20
	}

	customers, total, err := s.customerRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, mapper.ToCustomerDTO(&customers[i], 0))
	}

	return &domain.PaginatedResponse[domain.CustomerDTO]{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
