package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// GetByOwner returns the owner's business profile
func (r *CompanyRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Upsert creates the profile on first save and updates it afterwards
func (r *CompanyRepository) Upsert(ctx context.Context, company *domain.Company) error {
	var existing domain.Company
	err := r.db.WithContext(ctx).Where("owner_id = ?", company.OwnerID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(company).Error
	}
	if err != nil {
		return err
	}

	company.ID = existing.ID
	company.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(company).Error
}
