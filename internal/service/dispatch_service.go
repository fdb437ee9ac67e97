package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fieldpilot/dispatch-api/internal/matching"
	"github.com/fieldpilot/dispatch-api/internal/models"
	appErrors "github.com/fieldpilot/dispatch-api/pkg/errors"
	"github.com/fieldpilot/dispatch-api/pkg/jobs"
)

type dispatchCronRepository interface {
	ListEnabled(ctx context.Context) ([]models.Cron, error)
	FindByID(ctx context.Context, id string) (*models.Cron, error)
}

type dispatchAssignmentRepository interface {
	ListByCron(ctx context.Context, cronID string) ([]models.Assignment, error)
	Upsert(ctx context.Context, assignment *models.Assignment) error
	PruneMissing(ctx context.Context, cronID string, keepWorkOrderIDs []string) error
}

type dispatchEvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type marketplaceGateway interface {
	ListAvailable(ctx context.Context) ([]models.WorkOrder, error)
	ListAssigned(ctx context.Context) ([]models.WorkOrder, error)
	Request(ctx context.Context, workOrderID string) error
	SendCounterOffer(ctx context.Context, workOrderID string, offer matching.CounterOffer) error
}

type dedupeCache interface {
	MarkEvaluated(ctx context.Context, cronID, workOrderID string) (bool, error)
}

// DispatchService runs the full poll-evaluate-act cycle: it syncs committed
// assignments from the marketplace, evaluates every available work order
// against each enabled cron, and requests, counters, or skips accordingly.
type DispatchService struct {
	crons       dispatchCronRepository
	assignments dispatchAssignmentRepository
	evaluations dispatchEvaluationRepository
	marketplace marketplaceGateway
	dedupe      dedupeCache
	metrics     *MetricsService
	logger      *zap.Logger
	retention   time.Duration
	now         func() time.Time

	queue *jobs.Queue
}

// NewDispatchService wires the orchestrator. metrics and dedupe may be nil.
func NewDispatchService(
	crons dispatchCronRepository,
	assignments dispatchAssignmentRepository,
	evaluations dispatchEvaluationRepository,
	marketplace marketplaceGateway,
	dedupe dedupeCache,
	metrics *MetricsService,
	logger *zap.Logger,
	retention time.Duration,
	workers int,
) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DispatchService{
		crons:       crons,
		assignments: assignments,
		evaluations: evaluations,
		marketplace: marketplace,
		dedupe:      dedupe,
		metrics:     metrics,
		logger:      logger,
		retention:   retention,
		now:         func() time.Time { return time.Now().UTC() },
	}
	s.queue = jobs.NewQueue("dispatch", s.handleJob, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the background evaluation workers.
func (s *DispatchService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the evaluation workers.
func (s *DispatchService) Stop() {
	s.queue.Stop()
}

func (s *DispatchService) handleJob(ctx context.Context, job jobs.Job) error {
	cronID, ok := job.Payload.(string)
	if !ok {
		s.logger.Error("dispatch job with unexpected payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	_, err := s.EvaluateCron(ctx, cronID)
	return err
}

// EvaluateAll enqueues an evaluation run for every enabled cron and returns
// the number of crons queued.
func (s *DispatchService) EvaluateAll(ctx context.Context) (int, error) {
	crons, err := s.crons.ListEnabled(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list enabled crons")
	}

	queued := 0
	for _, cron := range crons {
		job := jobs.Job{ID: cron.ID, Type: "evaluate_cron", Payload: cron.ID}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue cron evaluation", zap.String("cron_id", cron.ID), zap.Error(err))
			continue
		}
		queued++
	}
	return queued, nil
}

// EvaluateCron runs one full evaluation cycle for a single cron.
func (s *DispatchService) EvaluateCron(ctx context.Context, cronID string) (*models.DispatchSummary, error) {
	cron, err := s.crons.FindByID(ctx, cronID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "cron not found")
	}
	if !cron.Enabled {
		return nil, appErrors.ErrCronDisabled
	}

	calendar, err := cron.CalendarRules()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cron calendar is invalid")
	}
	payment := cron.PaymentRules()

	if err := s.syncAssignments(ctx, cron); err != nil {
		return nil, err
	}
	stored, err := s.assignments.ListByCron(ctx, cron.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load assignments")
	}
	committed := models.CommittedIntervals(stored)

	available, err := s.marketplace.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMarketplace.Code, appErrors.ErrMarketplace.Status, "list available work orders")
	}

	summary := &models.DispatchSummary{CronID: cron.ID}
	for _, candidate := range available {
		summary.Candidates++
		s.evaluateCandidate(ctx, cron, calendar, payment, committed, candidate, summary)
	}
	summary.CompletedAt = s.now()

	s.logger.Info("cron evaluation complete",
		zap.String("cron_id", cron.ID),
		zap.Int("candidates", summary.Candidates),
		zap.Int("requested", summary.Requested),
		zap.Int("countered", summary.Countered),
		zap.Int("skipped", summary.Skipped),
		zap.Int("deduped", summary.Deduped),
		zap.Int("errors", summary.Errors))
	return summary, nil
}

func (s *DispatchService) evaluateCandidate(
	ctx context.Context,
	cron *models.Cron,
	calendar matching.CalendarRules,
	payment matching.PaymentRules,
	committed []matching.CommittedInterval,
	candidate models.WorkOrder,
	summary *models.DispatchSummary,
) {
	if s.dedupe != nil {
		first, err := s.dedupe.MarkEvaluated(ctx, cron.ID, candidate.ID)
		if err != nil {
			s.logger.Warn("dedupe check failed", zap.String("work_order_id", candidate.ID), zap.Error(err))
		}
		if !first {
			summary.Deduped++
			s.metrics.RecordDedupeHit()
			return
		}
	}

	window := candidate.ServiceWindow()
	result := matching.Evaluate(window, candidate.CandidatePayment(), calendar, payment, committed)

	record := &models.Evaluation{
		CronID:            cron.ID,
		WorkOrderID:       candidate.ID,
		PaymentSatisfied:  result.PaymentSatisfied,
		ScheduleSatisfied: result.ScheduleSatisfied,
	}

	switch {
	case result.Matched():
		if err := s.marketplace.Request(ctx, candidate.ID); err != nil {
			s.logger.Warn("work order request failed", zap.String("work_order_id", candidate.ID), zap.Error(err))
			summary.Errors++
			return
		}
		record.Action = models.ActionRequested
		summary.Requested++

	case cron.CounterOfferEnabled:
		offer, ok := s.buildCounterOffer(result, candidate, calendar, payment, window, committed)
		if !ok {
			record.Action = models.ActionSkipped
			summary.Skipped++
			break
		}
		if err := s.marketplace.SendCounterOffer(ctx, candidate.ID, offer); err != nil {
			s.logger.Warn("counter-offer failed", zap.String("work_order_id", candidate.ID), zap.Error(err))
			summary.Errors++
			return
		}
		if payload, err := json.Marshal(offer); err == nil {
			record.CounterOffer = payload
		}
		record.Action = models.ActionCountered
		summary.Countered++

	default:
		record.Action = models.ActionSkipped
		summary.Skipped++
	}

	s.metrics.RecordEvaluation(record.Action)
	if err := s.evaluations.Create(ctx, record); err != nil {
		s.logger.Warn("failed to record evaluation", zap.String("work_order_id", candidate.ID), zap.Error(err))
	}
}

func (s *DispatchService) buildCounterOffer(
	result matching.MatchResult,
	candidate models.WorkOrder,
	calendar matching.CalendarRules,
	payment matching.PaymentRules,
	window matching.ServiceWindow,
	committed []matching.CommittedInterval,
) (matching.CounterOffer, bool) {
	var slot *matching.TimeInterval
	if !result.ScheduleSatisfied {
		found, ok := matching.FindNextSlot(s.now(), window, calendar, committed)
		if ok {
			slot = &found
		} else {
			s.metrics.RecordSlotSearchExhausted()
		}
	}

	// An exhausted search leaves the schedule section out; the offer still
	// goes out payment-only when the pay terms are fixable.
	offer := matching.BuildCounterOffer(result, candidate.CandidatePayment(), payment, window, slot)
	if offer.Empty() {
		return matching.CounterOffer{}, false
	}
	return offer, true
}

// syncAssignments mirrors the marketplace's assigned list into local storage
// so conflict checks always run against fresh commitments.
func (s *DispatchService) syncAssignments(ctx context.Context, cron *models.Cron) error {
	assigned, err := s.marketplace.ListAssigned(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrMarketplace.Code, appErrors.ErrMarketplace.Status, "list assigned work orders")
	}

	keep := make([]string, 0, len(assigned))
	for _, order := range assigned {
		interval := order.ServiceWindow().Interval()
		assignment := &models.Assignment{
			CronID:         cron.ID,
			WorkOrderID:    order.ID,
			StartsAt:       interval.Start,
			EndsAt:         interval.End,
			EstimatedHours: order.EstimatedHours,
		}
		if err := s.assignments.Upsert(ctx, assignment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sync assignment")
		}
		keep = append(keep, order.ID)
	}

	if err := s.assignments.PruneMissing(ctx, cron.ID, keep); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "prune assignments")
	}
	return nil
}

// PruneHistory deletes evaluations older than the retention horizon.
func (s *DispatchService) PruneHistory(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.evaluations.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "prune evaluations")
	}
	if deleted > 0 {
		s.logger.Info("pruned evaluation history", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
