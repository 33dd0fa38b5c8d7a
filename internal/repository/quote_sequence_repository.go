package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

// QuoteSequenceRepository allocates sequential quote numbers.
// Allocation goes through an upsert that increments the counter row, so two
// concurrent quote creations can never draw the same number.
type QuoteSequenceRepository struct {
	db *gorm.DB
}

// NewQuoteSequenceRepository creates a new QuoteSequenceRepository
func NewQuoteSequenceRepository(db *gorm.DB) *QuoteSequenceRepository {
	return &QuoteSequenceRepository{db: db}
}

// NextNumber atomically increments and returns the next sequence value for
// an owner. The first call for an owner returns 1.
func (r *QuoteSequenceRepository) NextNumber(ctx context.Context, ownerID string) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The ON CONFLICT row update locks the counter row for the rest of
		// the transaction on postgres; sqlite serializes writers anyway.
		seed := domain.QuoteSequence{OwnerID: ownerID, LastValue: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_value": gorm.Expr("last_value + 1"),
			}),
		}).Create(&seed).Error
		if err != nil {
			return fmt.Errorf("failed to increment quote sequence: %w", err)
		}

		var seq domain.QuoteSequence
		if err := tx.Where("owner_id = ?", ownerID).First(&seq).Error; err != nil {
			return fmt.Errorf("failed to read quote sequence: %w", err)
		}
		next = seq.LastValue
		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// Current returns the last allocated value without incrementing.
// Returns 0 if the owner has never numbered a quote.
func (r *QuoteSequenceRepository) Current(ctx context.Context, ownerID string) (int64, error) {
	var seq domain.QuoteSequence
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&seq)
	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get quote sequence: %w", result.Error)
	}
	return seq.LastValue, nil
}

// Set raises the sequence to a specific value. Used by data migrations when
// importing previously numbered quotes; the value never decreases.
func (r *QuoteSequenceRepository) Set(ctx context.Context, ownerID string, value int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.QuoteSequence
		result := tx.Where("owner_id = ?", ownerID).First(&seq)
		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.QuoteSequence{OwnerID: ownerID, LastValue: value}
			return tx.Create(&seq).Error
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get quote sequence: %w", result.Error)
		}
		if value > seq.LastValue {
			return tx.Model(&seq).Update("last_value", value).Error
		}
		return nil
	})
}
