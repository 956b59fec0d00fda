package app

import (
	"context"
	"errors"
	"time"
)

// Sweep evicts games not updated within the TTL. A game with a connected
// subscriber is still mounted somewhere and is kept. It returns the number
// of evicted games.
func (s *Service) Sweep() int {
	s.mu.Lock()
	now := s.clock.Now()
	var evicted []string
	for id, gs := range s.games {
		if now.Sub(gs.Updated) < s.ttl || len(s.subs[id]) > 0 {
			continue
		}
		delete(s.games, id)
		delete(s.subs, id)
		evicted = append(evicted, id)
	}
	s.mu.Unlock()

	for _, id := range evicted {
		s.logger.Info("game expired", "game", id)
	}
	return len(evicted)
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) error {
	s.logger.Debug("janitor started", "interval", interval, "ttl", s.ttl)
	w := s.clock.TickerFunc(ctx, interval, func() error {
		s.Sweep()
		return nil
	}, "janitor")
	if err := w.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
