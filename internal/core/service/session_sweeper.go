package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionSweeper periodically deletes expired sessions. Expired rows are
// already inert, so this only keeps the collection small.
type SessionSweeper struct {
	sessions *SessionService
	interval time.Duration
	log      zerolog.Logger
}

func NewSessionSweeper(sessions *SessionService, interval time.Duration, log zerolog.Logger) *SessionSweeper {
	return &SessionSweeper{sessions: sessions, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (w *SessionSweeper) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info().Msg("session sweeper disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.sessions.Sweep(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				w.log.Info().Int64("deleted", n).Msg("expired sessions swept")
			}
		}
	}
}
