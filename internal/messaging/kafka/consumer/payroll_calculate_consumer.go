package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-workforce/internal/events"
	"go-workforce/internal/payroll"
	"go-workforce/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Backoff between attempts on the same message. Vars so tests can shrink them.
var (
	retryBaseDelay = time.Second
	retryMaxDelay  = time.Minute
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumePayrollCalculateRequested runs payroll for each scheduler request
// until ctx is done. Messages that can never succeed are committed and
// dropped. A transient failure is retried on the same message before the next
// fetch, because committing a later offset would skip it. If ctx ends while
// retrying, the message stays uncommitted and the group redelivers it.
func ConsumePayrollCalculateRequested(
	ctx context.Context,
	reader MessageReader,
	payrollService payroll.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_calculate")
	log.Info("payroll calculate consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll calculate consumer stopped")
				return
			}
			log.Error("fetch payroll calculate message failed", zap.Error(err))
			continue
		}

		handlePayrollCalculate(ctx, reader, payrollService, msg, log)
	}
}

func handlePayrollCalculate(
	ctx context.Context,
	reader MessageReader,
	payrollService payroll.Service,
	msg kafkago.Message,
	log *zap.Logger,
) {
	var event events.PayrollCalculateRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.CompanyID == "" || event.PeriodID == "" {
		log.Error("decode payroll calculate event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	fields := []zap.Field{
		zap.String("company_id", event.CompanyID),
		zap.String("period_id", event.PeriodID),
		zap.String("requested_by", event.RequestedBy),
	}

	var resp payroll.CalculateResponse
	for attempt := 0; ; attempt++ {
		var err error
		resp, err = payrollService.Calculate(ctx, event.CompanyID, event.PeriodID)
		if err == nil {
			break
		}

		switch apperror.CodeOf(err) {
		case apperror.CodeNotFound, apperror.CodeInvalidInput:
			log.Warn("payroll calculate request dropped", append(fields, zap.Error(err))...)
			_ = reader.CommitMessages(ctx, msg)
			return
		}

		delay := retryDelay(attempt)
		log.Error("payroll calculate failed, retrying",
			append(fields,
				zap.Int("attempt", attempt+1),
				zap.Duration("retry_in", delay),
				zap.Error(err),
			)...,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Warn("payroll calculate left uncommitted on shutdown",
				append(fields, zap.Int64("offset", msg.Offset))...)
			return
		case <-timer.C:
		}
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit payroll calculate message failed", zap.Error(err))
		return
	}

	log.Info("payroll calculated from scheduler request",
		append(fields,
			zap.Int("employees_processed", resp.EmployeesProcessed),
			zap.Int("employees_failed", resp.EmployeesFailed),
		)...,
	)
}

func retryDelay(attempt int) time.Duration {
	delay := retryBaseDelay
	for i := 0; i < attempt && delay < retryMaxDelay; i++ {
		delay *= 2
	}
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}
