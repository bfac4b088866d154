package inference

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"signal-desk/internal/domain"
)

// DefaultMinProbability is the lowest probability a surfaced signal may carry.
const DefaultMinProbability = 80.0

// QualifyingSignals drops entries below minProbability and stable-sorts the rest by time.
// Times are fixed-width HH:mm, so lexicographic order is chronological within a day.
func QualifyingSignals(signals []domain.Signal, minProbability float64) []domain.Signal {
	out := make([]domain.Signal, 0, len(signals))
	for _, s := range signals {
		if s.Probability >= minProbability {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

// decodeSignalBatch accepts {"signals": [...]} or a bare JSON array.
func decodeSignalBatch(text string) ([]domain.Signal, error) {
	raw := []byte(stripCodeFence(text))
	if len(raw) == 0 {
		return nil, errors.New("empty response")
	}

	if raw[0] == '[' {
		var signals []domain.Signal
		if err := json.Unmarshal(raw, &signals); err != nil {
			return nil, err
		}
		return signals, nil
	}

	var batch struct {
		Signals *[]domain.Signal `json:"signals"`
	}
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, err
	}
	if batch.Signals == nil {
		return nil, errors.New("response has no signals field")
	}
	return *batch.Signals, nil
}

func decodeAnalysis(text string) (*domain.AnalysisResult, error) {
	raw := []byte(stripCodeFence(text))
	if len(raw) == 0 {
		return nil, errors.New("empty response")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	var result domain.AnalysisResult
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if result.Verdict == "" {
		return nil, errors.New("response has no verdict")
	}
	if result.Patterns == nil {
		result.Patterns = []string{}
	}
	return &result, nil
}

// stripCodeFence removes a markdown ```json fence some endpoints wrap structured output in.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
