package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AccountingSyncJobName is the name of the customer import job
const AccountingSyncJobName = "accounting_sync"

// CustomerSyncService defines the interface for importing customers from the
// bookkeeping system. This interface allows the job to call the service
// without importing the service package directly.
type CustomerSyncService interface {
	// SyncCustomers imports customers changed since the last successful run.
	// Returns counts for imported and failed rows.
	SyncCustomers(ctx context.Context) (imported int, failed int, err error)
}

// AccountingSyncJob periodically imports customers from the bookkeeping
// system so quotes can be issued against existing client records.
type AccountingSyncJob struct {
	importService CustomerSyncService
	logger        *zap.Logger
	timeout       time.Duration
}

// NewAccountingSyncJob creates a new customer import job.
// The timeout controls how long one import run is allowed to take.
func NewAccountingSyncJob(importService CustomerSyncService, logger *zap.Logger, timeout time.Duration) *AccountingSyncJob {
	return &AccountingSyncJob{
		importService: importService,
		logger:        logger,
		timeout:       timeout,
	}
}

// Run executes the customer import.
// This is called by the scheduler according to the cron expression.
func (j *AccountingSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting customer import job")

	imported, failed, err := j.importService.SyncCustomers(ctx)
	if err != nil {
		j.logger.Error("customer import failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("customer import job completed",
		zap.Int("customers_imported", imported),
		zap.Int("customers_failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterAccountingSyncJob registers the customer import job with the
// scheduler. If runOnStartup is true an import also runs immediately in a
// background goroutine so it doesn't block API startup.
func RegisterAccountingSyncJob(scheduler *Scheduler, importService CustomerSyncService, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewAccountingSyncJob(importService, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(AccountingSyncJobName, cronExpr, job.Run)
}
