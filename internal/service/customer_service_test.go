package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

func newCustomerService(t *testing.T) (*service.CustomerService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	log := zap.NewNop()
	auditLog := service.NewAuditLogService(repository.NewAuditLogRepository(db), log)
	return service.NewCustomerService(repository.NewCustomerRepository(db), auditLog, log), db
}

func TestCustomerService_Create(t *testing.T) {
	customers, _ := newCustomerService(t)
	ctx := ownerContext()

	dto, err := customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "דנה לוי",
		Email: "dana@example.co.il",
		Phone: "050-1234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "דנה לוי", dto.Name)
	assert.Equal(t, "dana@example.co.il", dto.Email)
}

func TestCustomerService_Create_DuplicateEmail(t *testing.T) {
	customers, _ := newCustomerService(t)
	ctx := ownerContext()

	_, err := customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "דנה לוי",
		Email: "dana@example.co.il",
	})
	require.NoError(t, err)

	// The same address in a different casing is still the same customer.
	_, err = customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "דנה אחרת",
		Email: "DANA@example.co.il",
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestCustomerService_Update_DuplicateEmail(t *testing.T) {
	customers, _ := newCustomerService(t)
	ctx := ownerContext()

	first, err := customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "דנה לוי",
		Email: "dana@example.co.il",
	})
	require.NoError(t, err)

	second, err := customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "יוסי כהן",
		Email: "yossi@example.co.il",
	})
	require.NoError(t, err)

	_, err = customers.Update(ctx, second.ID, &domain.UpdateCustomerRequest{
		Name:  "יוסי כהן",
		Email: first.Email,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Keeping your own address is not a conflict.
	dto, err := customers.Update(ctx, second.ID, &domain.UpdateCustomerRequest{
		Name:  "יוסי כהן-לוי",
		Email: "YOSSI@example.co.il",
	})
	require.NoError(t, err)
	assert.Equal(t, "יוסי כהן-לוי", dto.Name)
}

func TestCustomerService_Create_NoUser(t *testing.T) {
	customers, _ := newCustomerService(t)

	_, err := customers.Create(context.Background(), &domain.CreateCustomerRequest{
		Name:  "דנה לוי",
		Email: "dana@example.co.il",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
