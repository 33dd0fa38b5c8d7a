package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, template *domain.QuoteTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteTemplate, error) {
	var template domain.QuoteTemplate
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyOwnerFilter(ctx, query)
	err := query.First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *TemplateRepository) Update(ctx context.Context, template *domain.QuoteTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.QuoteTemplate{}, "id = ?", id).Error
}

func (r *TemplateRepository) List(ctx context.Context, page, pageSize int, templateType domain.TemplateType, search string) ([]domain.QuoteTemplate, int64, error) {
	var templates []domain.QuoteTemplate
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.QuoteTemplate{})
	query = ApplyOwnerFilter(ctx, query)

	if templateType != "" {
		query = query.Where("type = ?", templateType)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&templates).Error

	return templates, total, err
}

// GetDefault returns the owner's default template for a type, if one is set
func (r *TemplateRepository) GetDefault(ctx context.Context, ownerID string, templateType domain.TemplateType) (*domain.QuoteTemplate, error) {
	var template domain.QuoteTemplate
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND type = ? AND is_default = ?", ownerID, templateType, true).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// ClearDefault unsets the default flag on all of an owner's templates of a type.
// Called inside the same transaction that sets a new default.
func (r *TemplateRepository) ClearDefault(ctx context.Context, ownerID string, templateType domain.TemplateType) error {
	return r.db.WithContext(ctx).Model(&domain.QuoteTemplate{}).
		Where("owner_id = ? AND type = ?", ownerID, templateType).
		Update("is_default", false).Error
}

// CountQuotes returns how many quotes reference a template
func (r *TemplateRepository) CountQuotes(ctx context.Context, templateID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}
