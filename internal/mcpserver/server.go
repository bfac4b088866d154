// Package mcpserver exposes chart analysis and signal generation as MCP tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/inference"
	"signal-desk/internal/session"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Inference is the subset of the inference client the tools call.
type Inference interface {
	AnalyzeImage(ctx context.Context, shot inference.Screenshot) (*domain.AnalysisResult, error)
	GenerateSignals(ctx context.Context, symbols []string) ([]domain.Signal, error)
}

type listInstrumentsInput struct{}

type listInstrumentsOutput struct {
	Instruments []domain.Instrument `json:"instruments"`
}

type analyzeChartInput struct {
	Image string `json:"image" jsonschema:"chart screenshot as a data URI (data:image/png;base64,...) or bare base64"`
}

type analyzeChartOutput struct {
	Action     string   `json:"action" jsonschema:"CALL, PUT or WAIT"`
	NextCandle string   `json:"nextCandle"`
	Confidence float64  `json:"confidence"`
	Patterns   []string `json:"patternsIdentified"`
	Reasoning  string   `json:"reasoning"`
}

type generateSignalsInput struct {
	Symbols []string `json:"symbols" jsonschema:"instrument symbols from list_instruments"`
}

type signalOutput struct {
	Pair        string  `json:"pair"`
	Time        string  `json:"time"`
	Type        string  `json:"type"`
	Probability float64 `json:"probability"`
	Logic       string  `json:"logic"`
}

type generateSignalsOutput struct {
	Signals []signalOutput `json:"signals"`
	Notice  string         `json:"notice,omitempty"`
}

type tools struct {
	tracer  trace.Tracer
	svc     Inference
	timeout time.Duration
}

// New builds an MCP server with the list_instruments, analyze_chart and generate_signals tools.
// A positive timeout bounds each tool call.
func New(tracer trace.Tracer, svc Inference, version string, timeout time.Duration) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "signal-desk", Version: version}, nil)
	registerTools(server, &tools{tracer: tracer, svc: svc, timeout: timeout})
	return server
}

func registerTools(s *mcp.Server, t *tools) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_instruments",
		Description: "List the tradable instruments (forex, OTC forex, crypto, commodities, indices) accepted by generate_signals.",
	}, t.listInstruments)
	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_chart",
		Description: "Predict the next candle (CALL, PUT or WAIT) from a candlestick chart screenshot, with confidence, identified patterns and reasoning.",
	}, t.analyzeChart)
	mcp.AddTool(s, &mcp.Tool{
		Name:        "generate_signals",
		Description: "Generate one-minute future signals for the given instruments. Only signals with probability of at least 80 are returned, sorted by time.",
	}, t.generateSignals)
}

func (t *tools) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return context.WithCancel(ctx)
}

func (t *tools) listInstruments(ctx context.Context, _ *mcp.CallToolRequest, _ listInstrumentsInput) (*mcp.CallToolResult, listInstrumentsOutput, error) {
	return nil, listInstrumentsOutput{Instruments: domain.Instruments}, nil
}

func (t *tools) analyzeChart(ctx context.Context, _ *mcp.CallToolRequest, in analyzeChartInput) (*mcp.CallToolResult, analyzeChartOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.analyze-chart")
	defer span.End()

	shot, err := inference.DecodeScreenshot(in.Image)
	if err != nil {
		return nil, analyzeChartOutput{}, err
	}
	span.SetAttributes(attribute.String("image.mime", shot.MIMEType))

	ctx, cancel := t.callContext(ctx)
	defer cancel()

	result, err := t.svc.AnalyzeImage(ctx, shot)
	if err != nil {
		span.RecordError(err)
		return nil, analyzeChartOutput{}, err
	}

	out := analyzeChartOutput{
		Action:     result.Verdict.Action(),
		NextCandle: string(result.Verdict),
		Confidence: result.Confidence,
		Patterns:   result.Patterns,
		Reasoning:  result.Reasoning,
	}
	if out.Patterns == nil {
		out.Patterns = []string{}
	}
	return nil, out, nil
}

func (t *tools) generateSignals(ctx context.Context, _ *mcp.CallToolRequest, in generateSignalsInput) (*mcp.CallToolResult, generateSignalsOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.generate-signals")
	defer span.End()

	if len(in.Symbols) == 0 {
		return nil, generateSignalsOutput{}, inference.ErrNoInstruments
	}
	var unknown []string
	for _, sym := range in.Symbols {
		if _, ok := domain.LookupInstrument(sym); !ok {
			unknown = append(unknown, sym)
		}
	}
	if len(unknown) > 0 {
		return nil, generateSignalsOutput{}, fmt.Errorf("unknown instruments %v, see list_instruments", unknown)
	}
	span.SetAttributes(attribute.Int("signals.instrument_count", len(in.Symbols)))

	ctx, cancel := t.callContext(ctx)
	defer cancel()

	signals, err := t.svc.GenerateSignals(ctx, in.Symbols)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, generateSignalsOutput{}, fmt.Errorf("%w: timed out", inference.ErrMarketNoise)
		}
		return nil, generateSignalsOutput{}, err
	}

	out := generateSignalsOutput{Signals: make([]signalOutput, 0, len(signals))}
	for _, s := range signals {
		out.Signals = append(out.Signals, signalOutput{
			Pair:        s.Instrument,
			Time:        s.Time,
			Type:        s.Direction.WireValue(),
			Probability: s.Probability,
			Logic:       s.Rationale,
		})
	}
	if len(out.Signals) == 0 {
		out.Notice = session.EmptyBatchNotice
	}
	return nil, out, nil
}
