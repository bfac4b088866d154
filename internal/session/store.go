package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

// Gauge receives the number of live sessions.
type Gauge interface {
	SetActiveSessions(n int)
}

// Store owns the live sessions of a front-end. Sessions idle for longer than the
// configured timeout are closed by Sweep.
type Store struct {
	tracer trace.Tracer
	svc    Inference
	idle   time.Duration
	now    func() time.Time
	newID  func() string

	mu       sync.Mutex
	sessions map[string]*Session
	gauge    Gauge
}

func NewStore(tracer trace.Tracer, svc Inference, idle time.Duration) *Store {
	return &Store{
		tracer:   tracer,
		svc:      svc,
		idle:     idle,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

// SetGauge attaches an active-session gauge.
func (st *Store) SetGauge(g Gauge) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gauge = g
	st.reportLocked()
}

// Create starts a new session with a random id.
func (st *Store) Create() *Session {
	return st.GetOrCreate(st.newID())
}

// GetOrCreate returns the session for key, creating it when missing.
func (st *Store) GetOrCreate(key string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[key]; ok {
		return s
	}
	s := New(key, st.tracer, st.svc)
	s.now = st.now
	s.updatedAt = st.now()
	st.sessions[key] = s
	st.reportLocked()
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and removes a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
		st.reportLocked()
	}
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes every session idle for longer than the timeout and returns how many it removed.
func (st *Store) Sweep() int {
	if st.idle <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idle)

	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	if len(stale) > 0 {
		st.reportLocked()
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// StartJanitor schedules Sweep on a cron spec such as "@every 1m". The returned func stops it.
func (st *Store) StartJanitor(spec string) (func(), error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := st.Sweep(); n > 0 {
			log.Printf("Swept %d idle sessions", n)
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

// CloseAll closes every session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.reportLocked()
	st.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (st *Store) reportLocked() {
	if st.gauge != nil {
		st.gauge.SetActiveSessions(len(st.sessions))
	}
}
