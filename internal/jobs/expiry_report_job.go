package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiryReportJobName is the name of the daily expiring-quotes report job
const ExpiryReportJobName = "expiry_report"

// ExpiryReportWindow is how far ahead the report looks for quotes about to expire
const ExpiryReportWindow = 7 * 24 * time.Hour

// ExpiringQuote is one row of the report
type ExpiringQuote struct {
	QuoteNumber  string
	CustomerName string
	ValidUntil   time.Time
}

// QuoteExpiryService lists open quotes whose validity ends inside a window.
type QuoteExpiryService interface {
	ListExpiring(ctx context.Context, from, to time.Time) ([]ExpiringQuote, error)
}

// ExpiryReportJob logs a daily report of open quotes that expire within the
// coming week, so follow-up calls happen before the validity runs out.
type ExpiryReportJob struct {
	quoteService QuoteExpiryService
	logger       *zap.Logger
	timeout      time.Duration
}

func NewExpiryReportJob(quoteService QuoteExpiryService, logger *zap.Logger, timeout time.Duration) *ExpiryReportJob {
	return &ExpiryReportJob{
		quoteService: quoteService,
		logger:       logger,
		timeout:      timeout,
	}
}

// Run executes the expiry report.
func (j *ExpiryReportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	now := time.Now()
	quotes, err := j.quoteService.ListExpiring(ctx, now, now.Add(ExpiryReportWindow))
	if err != nil {
		j.logger.Error("expiry report failed", zap.Error(err))
		return
	}

	if len(quotes) == 0 {
		j.logger.Info("expiry report: no quotes expiring this week")
		return
	}

	for _, q := range quotes {
		j.logger.Info("quote expiring soon",
			zap.String("quote_number", q.QuoteNumber),
			zap.String("customer", q.CustomerName),
			zap.Time("valid_until", q.ValidUntil))
	}

	j.logger.Info("expiry report completed",
		zap.Int("expiring_quotes", len(quotes)))
}

// RegisterExpiryReportJob registers the daily expiry report with the scheduler.
func RegisterExpiryReportJob(scheduler *Scheduler, quoteService QuoteExpiryService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewExpiryReportJob(quoteService, logger, timeout)
	return scheduler.AddJob(ExpiryReportJobName, cronExpr, job.Run)
}
