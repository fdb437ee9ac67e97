package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldpilot/dispatch-api/internal/matching"
	"github.com/fieldpilot/dispatch-api/internal/models"
)

type cronRepoStub struct {
	crons map[string]*models.Cron
}

func (m *cronRepoStub) ListEnabled(ctx context.Context) ([]models.Cron, error) {
	var out []models.Cron
	for _, c := range m.crons {
		if c.Enabled {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *cronRepoStub) FindByID(ctx context.Context, id string) (*models.Cron, error) {
	c, ok := m.crons[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *c
	return &cp, nil
}

type assignmentRepoStub struct {
	byCron map[string][]models.Assignment
}

func (m *assignmentRepoStub) ListByCron(ctx context.Context, cronID string) ([]models.Assignment, error) {
	return m.byCron[cronID], nil
}

func (m *assignmentRepoStub) Upsert(ctx context.Context, assignment *models.Assignment) error {
	for i, existing := range m.byCron[assignment.CronID] {
		if existing.WorkOrderID == assignment.WorkOrderID {
			m.byCron[assignment.CronID][i] = *assignment
			return nil
		}
	}
	if m.byCron == nil {
		m.byCron = map[string][]models.Assignment{}
	}
	m.byCron[assignment.CronID] = append(m.byCron[assignment.CronID], *assignment)
	return nil
}

func (m *assignmentRepoStub) PruneMissing(ctx context.Context, cronID string, keep []string) error {
	keepSet := map[string]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}
	var remaining []models.Assignment
	for _, a := range m.byCron[cronID] {
		if keepSet[a.WorkOrderID] {
			remaining = append(remaining, a)
		}
	}
	m.byCron[cronID] = remaining
	return nil
}

type evaluationRepoStub struct {
	created []models.Evaluation
}

func (m *evaluationRepoStub) Create(ctx context.Context, evaluation *models.Evaluation) error {
	m.created = append(m.created, *evaluation)
	return nil
}

func (m *evaluationRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 7, nil
}

type marketplaceStub struct {
	available []models.WorkOrder
	assigned  []models.WorkOrder

	requested []string
	countered map[string]matching.CounterOffer

	requestErr error
}

func (m *marketplaceStub) ListAvailable(ctx context.Context) ([]models.WorkOrder, error) {
	return m.available, nil
}

func (m *marketplaceStub) ListAssigned(ctx context.Context) ([]models.WorkOrder, error) {
	return m.assigned, nil
}

func (m *marketplaceStub) Request(ctx context.Context, workOrderID string) error {
	if m.requestErr != nil {
		return m.requestErr
	}
	m.requested = append(m.requested, workOrderID)
	return nil
}

func (m *marketplaceStub) SendCounterOffer(ctx context.Context, workOrderID string, offer matching.CounterOffer) error {
	if m.countered == nil {
		m.countered = map[string]matching.CounterOffer{}
	}
	m.countered[workOrderID] = offer
	return nil
}

type dedupeStub struct {
	seen map[string]bool
}

func (m *dedupeStub) MarkEvaluated(ctx context.Context, cronID, workOrderID string) (bool, error) {
	key := cronID + ":" + workOrderID
	if m.seen[key] {
		return false, nil
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	m.seen[key] = true
	return true, nil
}

func testCron() *models.Cron {
	return &models.Cron{
		ID:                  "cron-1",
		ProviderID:          "prov-1",
		Name:                "weekday fixed",
		Enabled:             true,
		CounterOfferEnabled: true,
		Timezone:            "UTC",
		WorkdayStart:        "09:00",
		WorkdayEnd:          "17:00",
		OffDays:             []byte(`["SUNDAY"]`),
		FixedEnabled:        true,
		FixedAmount:         150,
	}
}

// Monday March 10 2025.
func mondayAt(hour int) time.Time {
	return time.Date(2025, time.March, 10, hour, 0, 0, 0, time.UTC)
}

func newDispatchFixture(market *marketplaceStub) (*DispatchService, *evaluationRepoStub, *assignmentRepoStub) {
	crons := &cronRepoStub{crons: map[string]*models.Cron{"cron-1": testCron()}}
	assignments := &assignmentRepoStub{byCron: map[string][]models.Assignment{}}
	evaluations := &evaluationRepoStub{}
	service := NewDispatchService(crons, assignments, evaluations, market, &dedupeStub{}, nil, zap.NewNop(), 0, 1)
	service.now = func() time.Time { return time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC) }
	return service, evaluations, assignments
}

func TestDispatchRequestsMatchedWorkOrder(t *testing.T) {
	market := &marketplaceStub{
		available: []models.WorkOrder{{
			ID:             "wo-100",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  mondayAt(10),
			EstimatedHours: 2,
			PayType:        "fixed",
			PayBase:        200,
		}},
	}
	service, evaluations, _ := newDispatchFixture(market)

	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Requested)
	assert.Equal(t, []string{"wo-100"}, market.requested)
	require.Len(t, evaluations.created, 1)
	assert.Equal(t, models.ActionRequested, evaluations.created[0].Action)
	assert.True(t, evaluations.created[0].PaymentSatisfied)
	assert.True(t, evaluations.created[0].ScheduleSatisfied)
}

func TestDispatchCountersUnderpaidWorkOrder(t *testing.T) {
	market := &marketplaceStub{
		available: []models.WorkOrder{{
			ID:             "wo-101",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  mondayAt(10),
			EstimatedHours: 1,
			PayType:        "fixed",
			PayBase:        90,
		}},
	}
	service, evaluations, _ := newDispatchFixture(market)

	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Countered)
	offer, ok := market.countered["wo-101"]
	require.True(t, ok)
	require.NotNil(t, offer.Payment)
	assert.Equal(t, 150.0, offer.Payment.BaseAmount)
	assert.Nil(t, offer.Schedule)
	require.Len(t, evaluations.created, 1)
	assert.Equal(t, models.ActionCountered, evaluations.created[0].Action)
	assert.NotEmpty(t, evaluations.created[0].CounterOffer)
}

func TestDispatchCountersOffDayWithAlternativeSlot(t *testing.T) {
	// Sunday is an off-day; the search should land on Monday 09:00.
	sunday := time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC)
	market := &marketplaceStub{
		available: []models.WorkOrder{{
			ID:             "wo-102",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  sunday,
			EstimatedHours: 1,
			PayType:        "fixed",
			PayBase:        200,
		}},
	}
	service, _, _ := newDispatchFixture(market)

	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Countered)
	offer := market.countered["wo-102"]
	assert.Nil(t, offer.Payment)
	require.NotNil(t, offer.Schedule)
	assert.Equal(t, time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC), offer.Schedule.Start)
}

func TestDispatchSkipsWhenCounterOffersDisabled(t *testing.T) {
	market := &marketplaceStub{
		available: []models.WorkOrder{{
			ID:             "wo-103",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  mondayAt(10),
			EstimatedHours: 1,
			PayType:        "fixed",
			PayBase:        90,
		}},
	}
	crons := &cronRepoStub{crons: map[string]*models.Cron{"cron-1": testCron()}}
	crons.crons["cron-1"].CounterOfferEnabled = false
	assignments := &assignmentRepoStub{byCron: map[string][]models.Assignment{}}
	evaluations := &evaluationRepoStub{}
	service := NewDispatchService(crons, assignments, evaluations, market, &dedupeStub{}, nil, zap.NewNop(), 0, 1)

	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, market.countered)
	require.Len(t, evaluations.created, 1)
	assert.Equal(t, models.ActionSkipped, evaluations.created[0].Action)
}

func TestDispatchSkipsUnparseablePaymentType(t *testing.T) {
	market := &marketplaceStub{
		available: []models.WorkOrder{{
			ID:             "wo-104",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  mondayAt(10),
			EstimatedHours: 1,
			PayType:        "mystery",
			PayBase:        500,
		}},
	}
	service, evaluations, _ := newDispatchFixture(market)

	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, evaluations.created, 1)
	assert.False(t, evaluations.created[0].PaymentSatisfied)
}

func TestDispatchDeduplicatesAcrossRuns(t *testing.T) {
	market := &marketplaceStub{
		available: []models.WorkOrder{{
			ID:             "wo-100",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  mondayAt(10),
			EstimatedHours: 2,
			PayType:        "fixed",
			PayBase:        200,
		}},
	}
	service, evaluations, _ := newDispatchFixture(market)

	_, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deduped)
	assert.Len(t, market.requested, 1)
	assert.Len(t, evaluations.created, 1)
}

func TestDispatchSyncsAssignmentsBeforeEvaluating(t *testing.T) {
	committedStart := mondayAt(9)
	committedEnd := mondayAt(12)
	market := &marketplaceStub{
		assigned: []models.WorkOrder{{
			ID:             "wo-committed",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  committedStart,
			ScheduleEnd:    &committedEnd,
			EstimatedHours: 3,
		}},
		available: []models.WorkOrder{{
			ID:             "wo-105",
			Timezone:       "UTC",
			ScheduleMode:   "exact",
			ScheduleStart:  mondayAt(10),
			EstimatedHours: 1,
			PayType:        "fixed",
			PayBase:        200,
		}},
	}
	service, evaluations, assignments := newDispatchFixture(market)

	summary, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)

	require.Len(t, assignments.byCron["cron-1"], 1)
	assert.Equal(t, "wo-committed", assignments.byCron["cron-1"][0].WorkOrderID)

	// The candidate collides with the committed interval, so it gets a
	// schedule counter-offer instead of a request.
	assert.Equal(t, 1, summary.Countered)
	assert.Empty(t, market.requested)
	require.Len(t, evaluations.created, 1)
	assert.False(t, evaluations.created[0].ScheduleSatisfied)
}

func TestDispatchStaleAssignmentsArePruned(t *testing.T) {
	market := &marketplaceStub{}
	service, _, assignments := newDispatchFixture(market)
	assignments.byCron["cron-1"] = []models.Assignment{{
		CronID:      "cron-1",
		WorkOrderID: "wo-old",
		StartsAt:    mondayAt(9),
		EndsAt:      mondayAt(11),
	}}

	_, err := service.EvaluateCron(context.Background(), "cron-1")
	require.NoError(t, err)
	assert.Empty(t, assignments.byCron["cron-1"])
}

func TestDispatchDisabledCron(t *testing.T) {
	crons := &cronRepoStub{crons: map[string]*models.Cron{"cron-1": testCron()}}
	crons.crons["cron-1"].Enabled = false
	service := NewDispatchService(crons, &assignmentRepoStub{}, &evaluationRepoStub{}, &marketplaceStub{}, nil, nil, zap.NewNop(), 0, 1)

	_, err := service.EvaluateCron(context.Background(), "cron-1")
	assert.Error(t, err)
}

func TestDispatchPruneHistory(t *testing.T) {
	service, _, _ := newDispatchFixture(&marketplaceStub{})
	service.retention = 24 * time.Hour

	deleted, err := service.PruneHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}
