package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/storage"
)

// DefaultVATRate is applied to new business profiles (Israeli VAT)
const DefaultVATRate = 17.0

type CompanyService struct {
	companyRepo   *repository.CompanyRepository
	assets        storage.Storage
	auditLog      *AuditLogService
	logger        *zap.Logger
	publicBaseURL string
}

func NewCompanyService(
	companyRepo *repository.CompanyRepository,
	assets storage.Storage,
	auditLog *AuditLogService,
	logger *zap.Logger,
	publicBaseURL string,
) *CompanyService {
	return &CompanyService{
		companyRepo:   companyRepo,
		assets:        assets,
		auditLog:      auditLog,
		logger:        logger,
		publicBaseURL: publicBaseURL,
	}
}

// Get returns the caller's business profile
func (s *CompanyService) Get(ctx context.Context) (*domain.CompanyDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByOwner(ctx, userCtx.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// Update saves the caller's business profile, creating it on first save
func (s *CompanyService) Update(ctx context.Context, req *domain.UpdateCompanyRequest) (*domain.CompanyDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	company := &domain.Company{
		OwnerID:     userCtx.UserID,
		Name:        req.Name,
		Logo:        req.Logo,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		Signature:   req.Signature,
		TaxID:       req.TaxID,
		BankName:    req.BankName,
		BankBranch:  req.BankBranch,
		BankAccount: req.BankAccount,
		VATRate:     DefaultVATRate,
	}
	if req.VATRate != nil {
		company.VATRate = *req.VATRate
	}

	if err := s.companyRepo.Upsert(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to save company profile: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionUpdate, "company", &company.ID, company.Name, "")

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// UploadLogo stores a logo image and points the profile at its public URL.
// The asset is served unauthenticated so the PDF renderer can fetch it.
func (s *CompanyService) UploadLogo(ctx context.Context, filename, contentType string, data io.Reader) (*domain.CompanyDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByOwner(ctx, userCtx.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: logo must be an image, got %s", ErrInvalidInput, contentType)
	}

	path, size, err := s.assets.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	company.Logo = fmt.Sprintf("%s/public/assets/%s", strings.TrimRight(s.publicBaseURL, "/"), path)
	if err := s.companyRepo.Upsert(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to save company profile: %w", err)
	}

	s.logger.Info("company logo uploaded",
		zap.String("path", path),
		zap.Int64("size", size))
	s.auditLog.Record(ctx, domain.AuditActionUpdate, "company", &company.ID, company.Name, "logo updated")

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// OpenAsset streams a stored asset by its storage path.
func (s *CompanyService) OpenAsset(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := s.assets.Download(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, path)
	}
	return rc, nil
}
