package audit

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Pruner periodically deletes entries older than the retention window.
type Pruner struct {
	rec       Recorder
	retention time.Duration
	log       zerolog.Logger
	now       func() time.Time
	sched     *cron.Cron
}

func NewPruner(rec Recorder, retention time.Duration, log zerolog.Logger) *Pruner {
	return &Pruner{
		rec:       rec,
		retention: retention,
		log:       log,
		now:       time.Now,
		sched:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules pruning on a five-field cron spec.
func (p *Pruner) Start(spec string) error {
	if _, err := p.sched.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = p.RunOnce(ctx)
	}); err != nil {
		return err
	}
	p.sched.Start()
	return nil
}

// Stop waits for a running job to finish.
func (p *Pruner) Stop() {
	<-p.sched.Stop().Done()
}

func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	n, err := p.rec.Prune(ctx, cutoff)
	if err != nil {
		p.log.Error().Err(err).Msg("audit prune failed")
		return 0, err
	}
	p.log.Info().Int64("deleted", n).Time("before", cutoff).Msg("audit pruned")
	return n, nil
}
