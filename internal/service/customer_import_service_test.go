package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

func TestCustomerImportService_DisabledClient(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewCustomerImportService(nil, repository.NewCustomerRepository(db), zap.NewNop(), "owner-1")

	imported, failed, err := svc.SyncCustomers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, imported)
	assert.Zero(t, failed)
}
