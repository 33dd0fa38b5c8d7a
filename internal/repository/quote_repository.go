package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a quote together with its line items
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Template").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_items.position ASC")
		}).
		Where("id = ?", id)
	query = ApplyOwnerFilter(ctx, query)
	err := query.First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByPublicToken loads a quote by its public access token. The lookup is
// deliberately unscoped: the token itself is the credential.
func (r *QuoteRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Template").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_items.position ASC")
		}).
		Where("public_token = ?", token).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// ReplaceItems swaps a quote's line items inside a transaction
func (r *QuoteRepository) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []domain.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quoteID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QuoteID = quoteID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quote{}, "id = ?", id).Error
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status *domain.QuoteStatus, search string) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_items.position ASC")
		})
	query = ApplyOwnerFilter(ctx, query)

	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(quote_number) LIKE ? OR LOWER(title) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotes).Error

	return quotes, total, err
}

// ListExpiringBetween returns unsigned quotes whose validity window ends in
// the given interval. Used by the daily expiry report job.
func (r *QuoteRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("valid_until >= ? AND valid_until < ?", from, to).
		Where("status NOT IN ?", []domain.QuoteStatus{domain.QuoteStatusSigned, domain.QuoteStatusRejected}).
		Order("valid_until ASC").
		Find(&quotes).Error
	return quotes, err
}

// CountByStatus returns quote counts grouped by status for the caller's scope
func (r *QuoteRepository) CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int64, error) {
	type result struct {
		Status domain.QuoteStatus
		Count  int64
	}

	var results []result
	query := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Select("status, COUNT(*) as count").
		Group("status")
	query = ApplyOwnerFilter(ctx, query)
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.QuoteStatus]int64)
	for _, res := range results {
		counts[res.Status] = res.Count
	}
	return counts, nil
}
