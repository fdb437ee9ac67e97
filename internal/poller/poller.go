package poller

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type dispatcher interface {
	EvaluateAll(ctx context.Context) (int, error)
	PruneHistory(ctx context.Context) (int64, error)
}

// Poller drives the periodic marketplace evaluation cycle from a cron
// schedule (the OS-style kind, not the provider configuration record).
type Poller struct {
	schedule   string
	dispatch   dispatcher
	logger     *zap.Logger
	cron       *cron.Cron
	cancelRoot context.CancelFunc
}

// New builds a poller with the given schedule expression. Supported forms
// are the five-field standard syntax and descriptors such as "@every 5m".
func New(schedule string, dispatch dispatcher, logger *zap.Logger) (*Poller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = "@every 5m"
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, err
	}
	return &Poller{
		schedule: schedule,
		dispatch: dispatch,
		logger:   logger,
		cron:     cron.New(),
	}, nil
}

// Start registers the evaluation and retention jobs and begins ticking.
func (p *Poller) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancelRoot = cancel

	if _, err := p.cron.AddFunc(p.schedule, func() { p.runCycle(ctx) }); err != nil {
		cancel()
		return err
	}
	if _, err := p.cron.AddFunc("@daily", func() { p.runRetention(ctx) }); err != nil {
		cancel()
		return err
	}

	p.cron.Start()
	p.logger.Info("poller started", zap.String("schedule", p.schedule))
	return nil
}

// Stop halts the schedule and waits for running jobs to finish.
func (p *Poller) Stop() {
	if p.cancelRoot != nil {
		p.cancelRoot()
	}
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("poller stopped")
}

func (p *Poller) runCycle(ctx context.Context) {
	queued, err := p.dispatch.EvaluateAll(ctx)
	if err != nil {
		p.logger.Error("evaluation cycle failed", zap.Error(err))
		return
	}
	p.logger.Info("evaluation cycle queued", zap.Int("crons", queued))
}

func (p *Poller) runRetention(ctx context.Context) {
	if _, err := p.dispatch.PruneHistory(ctx); err != nil {
		p.logger.Error("history retention failed", zap.Error(err))
	}
}
