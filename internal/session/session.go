// Package session holds the transient per-user state: instrument selection, the current
// screenshot and the analysis and generation flows.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/inference"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultStatusInterval = 1500 * time.Millisecond

// Inference is the remote service a session drives.
type Inference interface {
	AnalyzeImage(ctx context.Context, shot inference.Screenshot) (*domain.AnalysisResult, error)
	GenerateSignals(ctx context.Context, symbols []string) ([]domain.Signal, error)
}

type analysisFlow struct {
	state  FlowState
	result *domain.AnalysisResult
	seq    uint64
	cancel context.CancelFunc
}

type generationFlow struct {
	state   FlowState
	signals []domain.Signal
	status  int
	seq     uint64
	cancel  context.CancelFunc
}

// Session is safe for concurrent use. Create with New and release with Close.
type Session struct {
	id     string
	tracer trace.Tracer
	svc    Inference
	now    func() time.Time

	statusInterval time.Duration

	mu         sync.Mutex
	selected   map[string]bool
	screenshot inference.Screenshot
	analysis   analysisFlow
	generation generationFlow
	errMsg     string
	notice     string
	updatedAt  time.Time
	closed     bool

	subs    map[int]chan Snapshot
	nextSub int
}

func New(id string, tracer trace.Tracer, svc Inference) *Session {
	s := &Session{
		id:             id,
		tracer:         tracer,
		svc:            svc,
		now:            time.Now,
		statusInterval: defaultStatusInterval,
		selected:       make(map[string]bool),
		subs:           make(map[int]chan Snapshot),
	}
	s.updatedAt = s.now()
	return s
}

func (s *Session) ID() string { return s.id }

// LastActive is the time of the last state change.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every state change.
// A slow reader only sees the latest snapshot. The channel is closed by cancel or Close.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Toggle flips one instrument in the selection.
func (s *Session) Toggle(symbol string) error {
	if _, ok := domain.LookupInstrument(symbol); !ok {
		return ErrUnknownInstrument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.selected[symbol] {
		delete(s.selected, symbol)
	} else {
		s.selected[symbol] = true
	}
	s.changedLocked()
	return nil
}

// ToggleAll clears the selection when everything is selected, otherwise selects the whole registry.
func (s *Session) ToggleAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.selected) == len(domain.Instruments) {
		s.selected = make(map[string]bool)
	} else {
		for _, inst := range domain.Instruments {
			s.selected[inst.Symbol] = true
		}
	}
	s.changedLocked()
	return nil
}

// Select replaces the selection. Every symbol must be in the registry.
func (s *Session) Select(symbols []string) error {
	next := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if _, ok := domain.LookupInstrument(sym); !ok {
			return ErrUnknownInstrument
		}
		next[sym] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.selected = next
	s.changedLocked()
	return nil
}

// Selected returns the selection in registry order.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

// DismissError clears the banner.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errMsg == "" || s.closed {
		return
	}
	s.errMsg = ""
	s.changedLocked()
}

// Analyze replaces the screenshot and runs a chart analysis on it. A newer call supersedes
// an in-flight one: the older request is cancelled and its result discarded.
// On failure the previous result is kept and the banner is set.
func (s *Session) Analyze(ctx context.Context, shot inference.Screenshot) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.id))

	if shot.IsZero() {
		return nil, inference.ErrEmptyImage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.analysis.cancel != nil {
		s.analysis.cancel()
	}
	s.analysis.seq++
	seq := s.analysis.seq
	callCtx, cancel := context.WithCancel(ctx)
	s.analysis.cancel = cancel
	s.screenshot = shot
	s.analysis.state = InFlight
	s.errMsg = ""
	s.changedLocked()
	s.mu.Unlock()

	result, err := s.svc.AnalyzeImage(callCtx, shot)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if seq != s.analysis.seq {
		span.SetAttributes(attribute.Bool("session.superseded", true))
		return nil, ErrSuperseded
	}
	s.analysis.cancel = nil

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.analysis.state = Failed
		s.errMsg = AnalysisFailedMessage
		s.changedLocked()
		return nil, err
	}

	s.analysis.state = Ready
	s.analysis.result = result
	s.errMsg = ""
	s.changedLocked()
	return result, nil
}

// Generate requests a new signal batch for the current selection. An empty selection sets the
// banner and returns ErrNoInstruments without calling the service; a second call while one is
// in flight returns ErrBusy.
func (s *Session) Generate(ctx context.Context) ([]domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "session.generate")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.id))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if len(s.selected) == 0 {
		s.errMsg = NoInstrumentsMessage
		s.changedLocked()
		s.mu.Unlock()
		return nil, inference.ErrNoInstruments
	}
	if s.generation.state == InFlight {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.generation.seq++
	seq := s.generation.seq
	callCtx, cancel := context.WithCancel(ctx)
	s.generation.cancel = cancel
	symbols := s.selectedLocked()
	s.generation.state = InFlight
	s.generation.status = 0
	s.errMsg = ""
	s.notice = ""
	s.changedLocked()
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("session.instrument_count", len(symbols)))

	done := make(chan struct{})
	go s.rotateStatus(seq, done)

	signals, err := s.svc.GenerateSignals(callCtx, symbols)
	close(done)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if seq != s.generation.seq {
		return nil, ErrSuperseded
	}
	s.generation.cancel = nil

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.generation.state = Failed
		s.errMsg = GenerationFailedMessage
		if errors.Is(err, inference.ErrNoInstruments) {
			s.errMsg = NoInstrumentsMessage
		}
		s.changedLocked()
		return nil, err
	}

	if signals == nil {
		signals = []domain.Signal{}
	}
	s.generation.state = Ready
	s.generation.signals = signals
	if len(signals) == 0 {
		s.notice = EmptyBatchNotice
	}
	s.changedLocked()
	return append([]domain.Signal(nil), signals...), nil
}

// Close cancels in-flight requests and closes every subscriber channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.analysis.cancel != nil {
		s.analysis.cancel()
	}
	if s.generation.cancel != nil {
		s.generation.cancel()
	}
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Session) rotateStatus(seq uint64, done <-chan struct{}) {
	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.closed || seq != s.generation.seq || s.generation.state != InFlight {
				s.mu.Unlock()
				return
			}
			s.generation.status = (s.generation.status + 1) % len(generationStatuses)
			s.changedLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Session) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for sym := range s.selected {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.InstrumentPosition(out[i]) < domain.InstrumentPosition(out[j])
	})
	return out
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:             s.id,
		Selected:       s.selectedLocked(),
		HasScreenshot:  !s.screenshot.IsZero(),
		ScreenshotMIME: s.screenshot.MIMEType,
		Analysis:       s.analysis.state,
		Generation:     s.generation.state,
		Signals:        append([]domain.Signal{}, s.generation.signals...),
		Error:          s.errMsg,
		Notice:         s.notice,
		UpdatedAt:      s.updatedAt,
	}
	if s.analysis.result != nil {
		r := *s.analysis.result
		r.Patterns = append([]string(nil), r.Patterns...)
		snap.AnalysisResult = &r
	}
	if s.generation.state == InFlight {
		snap.GenerationStatus = generationStatuses[s.generation.status]
	}
	return snap
}

// changedLocked stamps the state and publishes it to subscribers, coalescing for slow readers.
func (s *Session) changedLocked() {
	s.updatedAt = s.now()
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
