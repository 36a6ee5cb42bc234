// Package session keeps live interactive diagrams for the HTTP server.
//
// A session owns one [pipeline.View] and the animation timeline behind
// it. The timeline runs on wall-clock time: every access first advances it
// by the time elapsed since the previous access, so a frame fetched 200ms
// after a click shows the transition 200ms in. Clicks that arrive while a
// tree is still animating are dropped, exactly as in the browser.
//
// # Usage
//
//	m := session.NewManager(session.Options{TTL: 30 * time.Minute})
//	sess, err := m.Create(ctx, tree, frame.ViewIcicle, pipeline.ViewParams{})
//	outcome, err := sess.Click(ctx, "Energy")
//	f := sess.Frame()
//
// Sessions expire after TTL without access. [Manager.Run] sweeps them.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/observability"
	"github.com/matzehuels/solutionmap/pkg/pipeline"
)

// Default limits.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSessions bounds the live sessions of one manager.
	DefaultMaxSessions = 1000

	// DefaultSweepInterval is how often [Manager.Run] removes idle sessions.
	DefaultSweepInterval = time.Minute
)

// Session is one live diagram.
type Session struct {
	ID        string
	View      frame.View
	CreatedAt time.Time

	mu       sync.Mutex
	v        pipeline.View
	now      func() time.Time
	synced   time.Time
	lastSeen time.Time
	clicks   int
}

// sync advances the timeline to wall-clock time. Callers hold s.mu.
func (s *Session) sync() {
	now := s.now()
	if d := now.Sub(s.synced); d > 0 {
		s.v.Timeline().Advance(d)
	}
	s.synced = now
	s.lastSeen = now
}

// Frame returns the current frame.
func (s *Session) Frame() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	return s.v.Frame()
}

// Busy reports whether the view would drop a click now.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	return s.v.Busy()
}

// Animating reports whether any transition is still running.
func (s *Session) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	return !s.v.Timeline().Idle()
}

// Clicks returns the number of clicks the session has received.
func (s *Session) Clicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks
}

// Click clicks the node named by ref. See [pipeline.View.Click].
func (s *Session) Click(ctx context.Context, ref string) (string, error) {
	return s.interact(ctx, func(v pipeline.View) (string, error) { return v.Click(ref) })
}

// Up moves a zoom focus one level out.
func (s *Session) Up(ctx context.Context) (string, error) {
	return s.interact(ctx, pipeline.View.Up)
}

// Reset returns to the initial state.
func (s *Session) Reset(ctx context.Context) (string, error) {
	return s.interact(ctx, func(v pipeline.View) (string, error) { return v.Reset(), nil })
}

func (s *Session) interact(ctx context.Context, fn func(pipeline.View) (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	outcome, err := fn(s.v)
	if err != nil {
		return outcome, err
	}
	s.clicks++
	observability.Interaction().OnClick(ctx, string(s.View), outcome)
	return outcome, nil
}

// Settle finishes every pending transition.
func (s *Session) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	s.v.Settle()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// =============================================================================
// Manager
// =============================================================================

// Options configures a [Manager]. Zero values take defaults.
type Options struct {
	TTL         time.Duration
	MaxSessions int
	// Now is the wall clock. Defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Manager is an in-memory session store. It is safe for concurrent use.
type Manager struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty manager.
func NewManager(opts Options) *Manager {
	opts.SetDefaults()
	return &Manager{opts: opts, sessions: make(map[string]*Session)}
}

// Create starts a session showing tree in the given view.
func (m *Manager) Create(ctx context.Context, tree *hierarchy.Node, kind frame.View, p pipeline.ViewParams) (*Session, error) {
	if tree == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no tree to show")
	}
	if p.Logger == nil {
		p.Logger = m.opts.Logger
	}
	if kind == frame.ViewTree && p.OnTransitionEnd == nil {
		hooks := observability.Interaction()
		// The request context is gone by the time transitions end.
		bg := context.WithoutCancel(ctx)
		p.OnTransitionEnd = func(d time.Duration) { hooks.OnTransitionEnd(bg, string(kind), d) }
	}
	v, err := pipeline.NewView(kind, tree, p)
	if err != nil {
		return nil, err
	}

	now := m.opts.Now()
	s := &Session{
		ID:        uuid.NewString(),
		View:      kind,
		CreatedAt: now,
		v:         v,
		now:       m.opts.Now,
		synced:    now,
		lastSeen:  now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.opts.MaxSessions {
		m.sweepLocked()
		if len(m.sessions) >= m.opts.MaxSessions {
			return nil, errs.New(errs.ErrCodeUnsupported, "too many live sessions (max %d)", m.opts.MaxSessions)
		}
	}
	m.sessions[s.ID] = s
	m.opts.Logger.Debug("session created", "id", s.ID, "view", kind)
	return s, nil
}

// Get returns a live session. Expired sessions are removed and reported
// as not found.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "no session %q", id)
	}
	if m.expired(s) {
		m.Delete(id)
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q expired", id)
	}
	return s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of sessions, including expired ones not yet swept.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes expired sessions and returns how many it removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

func (m *Manager) sweepLocked() int {
	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.opts.Logger.Debug("sessions expired", "count", n, "live", len(m.sessions))
	}
	return n
}

func (m *Manager) expired(s *Session) bool {
	return m.opts.Now().Sub(s.idleSince()) > m.opts.TTL
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Cleanup()
		}
	}
}
