package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/accounting"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

// CustomerImportService pulls customer records from the bookkeeping system
// into the quoting database so quotes reference the same client records.
type CustomerImportService struct {
	client       *accounting.Client
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
	ownerID      string

	lastSyncedAt time.Time
}

func NewCustomerImportService(client *accounting.Client, customerRepo *repository.CustomerRepository, logger *zap.Logger, ownerID string) *CustomerImportService {
	return &CustomerImportService{
		client:       client,
		customerRepo: customerRepo,
		logger:       logger,
		ownerID:      ownerID,
	}
}

// SyncCustomers imports customers changed since the last successful run.
// Returns counts of imported and failed rows. The first run imports
// everything.
func (s *CustomerImportService) SyncCustomers(ctx context.Context) (imported int, failed int, err error) {
	if !s.client.IsEnabled() {
		return 0, 0, nil
	}
	if s.ownerID == "" {
		s.logger.Warn("customer import skipped: no import owner configured")
		return 0, 0, nil
	}

	since := s.lastSyncedAt
	runStarted := time.Now()

	customers, err := s.client.ListCustomers(ctx, since)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list accounting customers: %w", err)
	}

	for i := range customers {
		row := &customers[i]
		if strings.TrimSpace(row.Email) == "" {
			continue
		}

		customer := &domain.Customer{
			OwnerID:     s.ownerID,
			Name:        row.Name,
			CompanyName: row.CompanyName,
			Email:       strings.TrimSpace(row.Email),
			Phone:       row.Phone,
			Address:     row.Address,
		}
		if customer.Name == "" {
			customer.Name = customer.Email
		}

		if err := s.customerRepo.UpsertImported(ctx, customer); err != nil {
			s.logger.Warn("failed to upsert imported customer",
				zap.String("email", customer.Email),
				zap.Error(err))
			failed++
			continue
		}
		imported++
	}

	if failed == 0 {
		s.lastSyncedAt = runStarted
	}

	return imported, failed, nil
}
