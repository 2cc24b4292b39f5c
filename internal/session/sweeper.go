package session

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweepable is a store that drops expired sessions on demand
type Sweepable interface {
	Sweep() int
}

// Sweeper periodically removes expired sessions from a store
type Sweeper struct {
	cron   *cron.Cron
	store  Sweepable
	logger *zap.Logger
}

// NewSweeper creates a sweeper running on the given cron schedule
// The schedule accepts standard cron expressions and descriptors like "@every 10m"
func NewSweeper(store Sweepable, schedule string, logger *zap.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:   cron.New(),
		store:  store,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start starts the sweeper in the background
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("Session sweeper started")
}

// Stop stops the sweeper and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Session sweeper stopped")
}

func (s *Sweeper) sweep() {
	s.store.Sweep()
}
