package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

// AuditLogService records and queries the audit trail. Writes never fail a
// business operation: errors are logged and swallowed.
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record writes an audit entry attributed to the authenticated caller
func (s *AuditLogService) Record(ctx context.Context, action domain.AuditAction, entityType string, entityID *uuid.UUID, entityName, detail string) {
	entry := &domain.AuditLog{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
		Detail:      detail,
		PerformedAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		entry.UserID = userCtx.UserID
		entry.UserEmail = userCtx.Email
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log entry",
			zap.String("action", string(action)),
			zap.String("entity_type", entityType),
			zap.Error(err),
		)
	}
}

// RecordPublic writes an audit entry for an unauthenticated public caller
func (s *AuditLogService) RecordPublic(ctx context.Context, action domain.AuditAction, entityID *uuid.UUID, entityName, detail, ipAddress, userAgent string) {
	entry := &domain.AuditLog{
		Action:      action,
		EntityType:  "quote",
		EntityID:    entityID,
		EntityName:  entityName,
		Detail:      detail,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		PerformedAt: time.Now(),
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write public audit log entry",
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// List returns audit entries matching the filter
func (s *AuditLogService) List(ctx context.Context, filter *repository.AuditLogFilter, page, pageSize int) (*domain.PaginatedResponse[domain.AuditLogDTO], error) {
	logs, total, err := s.auditRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, mapper.ToAuditLogDTO(&logs[i]))
	}

	return &domain.PaginatedResponse[domain.AuditLogDTO]{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ListByEntity returns the audit trail for one entity
func (s *AuditLogService) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]domain.AuditLogDTO, error) {
	logs, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, mapper.ToAuditLogDTO(&logs[i]))
	}
	return dtos, nil
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
