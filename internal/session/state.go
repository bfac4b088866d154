package session

import (
	"errors"
	"fmt"
	"time"

	"signal-desk/internal/domain"
)

// FlowState is the lifecycle of one asynchronous flow.
type FlowState int

const (
	Idle FlowState = iota
	InFlight
	Ready
	Failed
)

func (f FlowState) String() string {
	switch f {
	case InFlight:
		return "in_flight"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (f FlowState) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FlowState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*f = Idle
	case "in_flight":
		*f = InFlight
	case "ready":
		*f = Ready
	case "failed":
		*f = Failed
	default:
		return fmt.Errorf("unknown flow state %q", b)
	}
	return nil
}

// User-facing banner and advisory texts.
const (
	AnalysisFailedMessage   = "ACCURACY < 80%. SIGNAL REJECTED."
	GenerationFailedMessage = "Market noise detected. Accuracy below 80%. Re-syncing nodes..."
	NoInstrumentsMessage    = "SYSTEM ALERT: NO ASSETS SELECTED."
	EmptyBatchNotice        = "Market conditions unstable. Accuracy dropped below 80%."
)

// generationStatuses rotate while a generation is in flight.
var generationStatuses = []string{
	"Synchronizing Live Global Feeds...",
	"Filtering < 80% Accuracy Markets...",
	"Calculating 3-Minute Signal Gaps...",
	"Applying Rejection Ratio Models...",
	"Mapping Magnet Round Numbers...",
	"Broadcasting Verified Signals...",
}

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrBusy              = errors.New("signal generation already in progress")
	// ErrSuperseded is returned to a caller whose result was discarded in favour of a newer request.
	ErrSuperseded = errors.New("request superseded by a newer one")
	ErrClosed     = errors.New("session closed")
	ErrNotFound   = errors.New("session not found")
)

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	ID       string   `json:"id"`
	Selected []string `json:"selected"`

	HasScreenshot  bool   `json:"has_screenshot"`
	ScreenshotMIME string `json:"screenshot_mime,omitempty"`

	Analysis       FlowState              `json:"analysis"`
	AnalysisResult *domain.AnalysisResult `json:"analysis_result,omitempty"`

	Generation       FlowState       `json:"generation"`
	GenerationStatus string          `json:"generation_status,omitempty"`
	Signals          []domain.Signal `json:"signals"`

	Error  string `json:"error,omitempty"`
	Notice string `json:"notice,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// AllSelected reports whether every registry instrument is selected.
func (s Snapshot) AllSelected() bool {
	return len(s.Selected) == len(domain.Instruments)
}

// IsSelected reports whether symbol is in the selection.
func (s Snapshot) IsSelected(symbol string) bool {
	for _, sel := range s.Selected {
		if sel == symbol {
			return true
		}
	}
	return false
}
