package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

// TemplateService manages quote templates. Content is validated against the
// variable catalog at save time, so a bad placeholder can never reach a
// customer-facing render.
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	auditLog     *AuditLogService
	logger       *zap.Logger
}

func NewTemplateService(
	templateRepo *repository.TemplateRepository,
	auditLog *AuditLogService,
	logger *zap.Logger,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		auditLog:     auditLog,
		logger:       logger,
	}
}

func (s *TemplateService) Create(ctx context.Context, req *domain.CreateTemplateRequest) (*domain.QuoteTemplateDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: invalid template type %q", ErrInvalidInput, req.Type)
	}
	if err := render.ValidateContent(req.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	template := &domain.QuoteTemplate{
		OwnerID:     userCtx.UserID,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Content:     req.Content,
		IsActive:    true,
		IsDefault:   req.IsDefault,
	}

	if req.IsDefault {
		if err := s.templateRepo.ClearDefault(ctx, userCtx.UserID, req.Type); err != nil {
			return nil, fmt.Errorf("failed to clear default template: %w", err)
		}
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionCreate, "template", &template.ID, template.Name, "")

	dto := mapper.ToTemplateDTO(template)
	return &dto, nil
}

func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteTemplateDTO, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	dto := mapper.ToTemplateDTO(template)
	return &dto, nil
}

func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTemplateRequest) (*domain.QuoteTemplateDTO, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: invalid template type %q", ErrInvalidInput, req.Type)
	}
	if err := render.ValidateContent(req.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	template.Name = req.Name
	template.Type = req.Type
	template.Description = req.Description
	template.Content = req.Content
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}
	if req.IsDefault != nil {
		if *req.IsDefault && !template.IsDefault {
			if err := s.templateRepo.ClearDefault(ctx, template.OwnerID, req.Type); err != nil {
				return nil, fmt.Errorf("failed to clear default template: %w", err)
			}
		}
		template.IsDefault = *req.IsDefault
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionUpdate, "template", &template.ID, template.Name, "")

	dto := mapper.ToTemplateDTO(template)
	return &dto, nil
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}

	// Quotes snapshot template content at creation, but keeping the source
	// template around preserves the editing trail.
	count, err := s.templateRepo.CountQuotes(ctx, template.ID)
	if err != nil {
		return fmt.Errorf("failed to count template quotes: %w", err)
	}
	if count > 0 {
		return ErrTemplateInUse
	}

	if err := s.templateRepo.Delete(ctx, template.ID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionDelete, "template", &template.ID, template.Name, "")
	return nil
}

func (s *TemplateService) List(ctx context.Context, page, pageSize int, templateType domain.TemplateType, search string) (*domain.PaginatedResponse[domain.QuoteTemplateDTO], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 20
	}

	if templateType != "" && !templateType.IsValid() {
		return nil, fmt.Errorf("%w: invalid template type %q", ErrInvalidInput, templateType)
	}

	templates, total, err := s.templateRepo.List(ctx, page, pageSize, templateType, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	dtos := make([]domain.QuoteTemplateDTO, 0, len(templates))
	for i := range templates {
		dtos = append(dtos, mapper.ToTemplateDTO(&templates[i]))
	}

	return &domain.PaginatedResponse[domain.QuoteTemplateDTO]{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Variables returns the closed catalog of placeholder names, for the editor UI
func (s *TemplateService) Variables() []string {
	return render.KnownVariables()
}
