package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the three-way prediction for the next candle.
type Verdict string

const (
	VerdictGreen Verdict = "GREEN"
	VerdictRed   Verdict = "RED"
	VerdictWait  Verdict = "WAIT"
)

// Verdicts lists the accepted verdict values, in schema order.
var Verdicts = []Verdict{VerdictGreen, VerdictRed, VerdictWait}

func (v Verdict) IsValid() bool {
	switch v {
	case VerdictGreen, VerdictRed, VerdictWait:
		return true
	}
	return false
}

// Action is the trade label shown for a verdict.
func (v Verdict) Action() string {
	switch v {
	case VerdictGreen:
		return "CALL"
	case VerdictRed:
		return "PUT"
	default:
		return "WAIT"
	}
}

func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed := Verdict(strings.ToUpper(strings.TrimSpace(s)))
	if !parsed.IsValid() {
		return fmt.Errorf("unknown verdict %q", s)
	}
	*v = parsed
	return nil
}

// AnalysisResult is the outcome of one screenshot analysis.
type AnalysisResult struct {
	Verdict    Verdict  `json:"nextCandle"`
	Confidence float64  `json:"confidence"`
	Patterns   []string `json:"patternsIdentified"`
	Reasoning  string   `json:"reasoning"`
}

// Direction is the predicted move of a signal.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// WireValue is the label the inference service uses for d.
func (d Direction) WireValue() string {
	if d == DirectionDown {
		return "PUT"
	}
	return "CALL"
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.WireValue())
}

// UnmarshalJSON accepts CALL/PUT as well as UP/DOWN.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "UP":
		*d = DirectionUp
	case "PUT", "DOWN":
		*d = DirectionDown
	default:
		return fmt.Errorf("unknown signal direction %q", s)
	}
	return nil
}

// Signal is one predicted directional call for an instrument at a local civil time.
type Signal struct {
	Instrument  string    `json:"pair"`
	Time        string    `json:"time"`
	Direction   Direction `json:"type"`
	Probability float64   `json:"probability"`
	Rationale   string    `json:"logic"`
}
