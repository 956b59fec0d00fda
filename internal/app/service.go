package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// DefaultTTL is how long an untouched game is kept.
const DefaultTTL = 30 * time.Minute

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    *domain.Game
	Created time.Time
	Updated time.Time
}

func (gs *GameState) snapshot() *GameState {
	cp := *gs
	cp.Game = gs.Game.Clone()
	return &cp
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// send delivers b without blocking; false means the subscriber is full or gone.
func (s *subscriber) send(b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- b:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service manages games and subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	clock  quartz.Clock
	logger *log.Logger
	ttl    time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for timestamps and expiry.
func WithClock(c quartz.Clock) Option { return func(s *Service) { s.clock = c } }

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option { return func(s *Service) { s.logger = l } }

// WithTTL sets how long an idle game survives a sweep.
func WithTTL(d time.Duration) Option { return func(s *Service) { s.ttl = d } }

// WithRenderer sets the broadcast renderer.
func WithRenderer(r func(GameState) []byte) Option { return func(s *Service) { s.setRenderer(r) } }

// NewService creates a service with a real clock, a discarding logger and
// a renderer that encodes nothing.
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(GameState) []byte { return nil },
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
		ttl:    DefaultTTL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte, opts ...Option) *Service {
	return NewService(append([]Option{WithRenderer(renderer)}, opts...)...)
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRenderer(renderer)
}

func (s *Service) setRenderer(renderer func(GameState) []byte) {
	if renderer == nil {
		renderer = func(GameState) []byte { return nil }
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.clock.Now()
	gs := &GameState{ID: id, Game: domain.New(), Created: now, Updated: now}
	s.games[id] = gs
	s.logger.Debug("game created", "game", id)
	return gs.snapshot(), nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return gs.snapshot(), true
}

// Click plays the current turn at cell. A rejected click returns the
// unchanged state alongside the domain error.
func (s *Service) Click(id string, cell int) (*GameState, error) {
	return s.mutate(id, func(g *domain.Game) error { return g.Click(cell) })
}

// JumpTo moves the viewed step of a game.
func (s *Service) JumpTo(id string, step int) (*GameState, error) {
	return s.mutate(id, func(g *domain.Game) error { return g.JumpTo(step) })
}

// ToggleOrder flips the move list order of a game.
func (s *Service) ToggleOrder(id string) (*GameState, error) {
	return s.mutate(id, func(g *domain.Game) error { g.ToggleOrder(); return nil })
}

// mutate applies fn to a game, updates timestamps, and broadcasts.
func (s *Service) mutate(id string, fn func(*domain.Game) error) (*GameState, error) {
	var toDrop []*subscriber

	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if err := fn(gs.Game); err != nil {
		cp := gs.snapshot()
		s.mu.Unlock()
		return cp, err
	}
	gs.Updated = s.clock.Now()

	// Snapshot state and subscribers
	cp := gs.snapshot()
	subs := s.copySubsLocked(id)
	payload := s.render(*cp)
	s.mu.Unlock()

	// Fan-out; drop slow subscribers by closing and marking for deletion
	for sub := range subs {
		if !sub.send(payload) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.logger.Debug("dropped slow subscribers", "game", id, "count", len(toDrop))
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
	}
	return cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func. The channel is closed when ctx ends, when the
// subscriber falls behind, or when the game is swept.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}

// Len returns the number of live games.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}
