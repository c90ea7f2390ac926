package sweep

import (
	"context"
	"log"
	"strings"
	"time"

	"unitconv/internal/config"
	"unitconv/internal/history"
)

type Config = config.Config

// ExpireIdleSessions drops every session idle for longer than idle and
// returns how many were removed.
func ExpireIdleSessions(ctx context.Context, store history.Store, now time.Time, idle time.Duration) (int, error) {
	removed, err := store.ExpireIdle(ctx, now.Add(-idle))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("session sweep expired=%d idle=%s", removed, idle)
	}
	return removed, nil
}

// Start runs ExpireIdleSessions on the configured cron schedule until ctx is
// cancelled. The schedule is a standard 5-field cron expression.
func Start(ctx context.Context, cfg Config, store history.Store) {
	schedule := strings.TrimSpace(cfg.SessionSweepSchedule)
	if schedule == "" {
		log.Println("Session sweep disabled (session_sweep_schedule not set)")
		return
	}
	sched, err := config.ParseSchedule(schedule)
	if err != nil {
		log.Printf("Invalid session_sweep_schedule '%s': %v, session sweep disabled", schedule, err)
		return
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Session sweep scheduled (cron: %s) idle=%s", schedule, cfg.SessionIdle())

	go func() {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Println("Session sweep stopped")
				return
			case <-timer.C:
			}
			if _, err := ExpireIdleSessions(ctx, store, time.Now(), cfg.SessionIdle()); err != nil {
				log.Printf("Session sweep error: %v", err)
			}
		}
	}()
}
