/**
 * @description
 * Cron-driven cleanup of aged-out verification codes. Expiry is enforced at
 * read time by CodeRepository.FindActive; the sweep only keeps the
 * verification_codes table from accumulating dead rows in a long-lived
 * process.
 */
package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/reckon/reckon-api/internal/store"
)

// DefaultSweepSchedule runs the cleanup every ten minutes, matching the
// default code time-to-live.
const DefaultSweepSchedule = "@every 10m"

// CodeSweeper periodically deletes expired verification codes.
type CodeSweeper struct {
	cron     *cron.Cron
	codes    store.CodeRepository
	ttl      time.Duration
	schedule string
}

// NewCodeSweeper creates the sweeper. An empty schedule falls back to
// DefaultSweepSchedule.
func NewCodeSweeper(codes store.CodeRepository, ttl time.Duration, schedule string) *CodeSweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &CodeSweeper{
		cron:     c,
		codes:    codes,
		ttl:      ttl,
		schedule: schedule,
	}
}

// Start registers the sweep job and starts the cron runner.
func (s *CodeSweeper) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		log.Printf("level=error component=sweeper msg=\"failed to schedule code cleanup\" schedule=%q err=%v", s.schedule, err)
		return
	}
	log.Printf("level=info component=sweeper msg=\"scheduled code cleanup\" schedule=%q", s.schedule)
	s.cron.Start()
}

// Stop stops the cron runner and returns a context that is done once any
// in-flight sweep has finished.
func (s *CodeSweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *CodeSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.codes.DeleteExpired(ctx, s.ttl)
	if err != nil {
		log.Printf("level=error component=sweeper msg=\"code cleanup failed\" err=%v", err)
		return
	}
	if removed > 0 {
		log.Printf("level=info component=sweeper msg=\"removed expired verification codes\" count=%d", removed)
	}
}
