package schedsvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/kazi/core"
)

// Scheduler runs registered jobs on fixed schedules. A run that is still
// going when the next tick fires makes that tick skip.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(logger core.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cl))),
	}
}

// AddJob schedules fn; schedule takes the cron spec format ("@every 1m", "15 2 * * *", ...).
func (s *Scheduler) AddJob(schedule, name string, fn func()) error {
	_, err := s.cron.AddFunc(schedule, fn)
	return errors.Wrap(err, "scheduling "+name)
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling new runs; the returned context is done once
// running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

var _ cron.Logger = (*cronLogger)(nil)

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{err}, keysAndValues...)...)
}
