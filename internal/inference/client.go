package inference

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"signal-desk/internal/domain"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	opAnalyzeImage    = "analyze_image"
	opGenerateSignals = "generate_signals"
)

// LLMClient abstracts the chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Limiter gates outbound calls per operation.
type Limiter interface {
	Wait(ctx context.Context, op string) error
}

// SignalCache holds recently generated batches so identical requests share one call.
type SignalCache interface {
	GetSignals(ctx context.Context, key string) ([]domain.Signal, bool, error)
	SetSignals(ctx context.Context, key string, signals []domain.Signal) error
}

// Recorder receives per-operation outcomes.
type Recorder interface {
	RecordInference(op, outcome string)
	RecordLatency(op string, seconds float64)
}

// Settings configures a Client.
type Settings struct {
	// Model serves chart analysis and must accept image input.
	Model string
	// SignalModel serves generation, which is search augmented. Empty means Model.
	SignalModel    string
	Location       *time.Location
	MinProbability float64
	// Timeout bounds a single remote call; zero means no timeout.
	Timeout time.Duration
}

// Client translates local intents into inference requests and normalises the responses.
type Client struct {
	tracer      trace.Tracer
	llm         LLMClient
	model       string
	signalModel string
	loc         *time.Location
	minProb     float64
	timeout     time.Duration

	limiter Limiter
	cache   SignalCache
	metrics Recorder
	now     func() time.Time
}

func NewClient(tracer trace.Tracer, llm LLMClient, settings Settings) *Client {
	loc := settings.Location
	if loc == nil {
		loc = time.UTC
	}
	// the threshold can be raised but never drops below DefaultMinProbability
	minProb := settings.MinProbability
	if minProb < DefaultMinProbability {
		minProb = DefaultMinProbability
	}
	signalModel := settings.SignalModel
	if signalModel == "" {
		signalModel = settings.Model
	}
	return &Client{
		tracer:      tracer,
		llm:         llm,
		model:       settings.Model,
		signalModel: signalModel,
		loc:         loc,
		minProb:     minProb,
		timeout:     settings.Timeout,
		now:         time.Now,
	}
}

func (c *Client) SetLimiter(l Limiter)          { c.limiter = l }
func (c *Client) SetSignalCache(sc SignalCache) { c.cache = sc }
func (c *Client) SetRecorder(r Recorder)        { c.metrics = r }

// Location is the zone signal times are expressed in.
func (c *Client) Location() *time.Location { return c.loc }

// MinProbability is the surfacing threshold.
func (c *Client) MinProbability() float64 { return c.minProb }

// AnalyzeImage asks the model for a next-candle verdict on a chart screenshot.
func (c *Client) AnalyzeImage(ctx context.Context, shot Screenshot) (*domain.AnalysisResult, error) {
	ctx, span := c.tracer.Start(ctx, "inference.analyze-image")
	defer span.End()

	if shot.IsZero() {
		return nil, ErrEmptyImage
	}
	span.SetAttributes(
		attribute.String("image.mime_type", shot.MIMEType),
		attribute.Int("image.bytes", len(shot.Data)),
	)

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: shot.DataURI(),
				}),
				openai.TextContentPart(analysisInstructions),
			}),
		},
		ResponseFormat: jsonSchemaFormat("chart_analysis", analysisSchema),
	}

	text, err := c.complete(ctx, opAnalyzeImage, params)
	if err != nil {
		span.RecordError(err)
		c.record(opAnalyzeImage, "error")
		return nil, fmt.Errorf("%w: %w", ErrSignalRejected, err)
	}

	result, err := decodeAnalysis(text)
	if err != nil {
		span.RecordError(err)
		c.record(opAnalyzeImage, "malformed")
		log.Printf("analysis response rejected: %v", err)
		return nil, fmt.Errorf("%w: decode response: %w", ErrSignalRejected, err)
	}

	c.record(opAnalyzeImage, "ok")
	span.SetAttributes(
		attribute.String("analysis.verdict", string(result.Verdict)),
		attribute.Float64("analysis.confidence", result.Confidence),
	)
	return result, nil
}

// GenerateSignals asks the model for a batch of signals for symbols, with web search enabled.
// The returned batch holds only qualifying signals, ordered by time; it may be empty.
func (c *Client) GenerateSignals(ctx context.Context, symbols []string) ([]domain.Signal, error) {
	ctx, span := c.tracer.Start(ctx, "inference.generate-signals")
	defer span.End()

	if len(symbols) == 0 {
		return nil, ErrNoInstruments
	}
	span.SetAttributes(attribute.Int("signals.instrument_count", len(symbols)))

	localTime := c.now().In(c.loc).Format("15:04")
	key := batchKey(symbols, localTime)

	if c.cache != nil {
		cached, ok, err := c.cache.GetSignals(ctx, key)
		if err != nil {
			log.Printf("signal cache read error: %v", err)
		}
		if ok {
			c.record(opGenerateSignals, "cached")
			span.SetAttributes(attribute.Bool("signals.cached", true))
			return QualifyingSignals(cached, c.minProb), nil
		}
	}

	params := openai.ChatCompletionNewParams{
		Model: c.signalModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildSignalPrompt(localTime, c.loc.String(), symbols, c.minProb)),
		},
		ResponseFormat: jsonSchemaFormat("signal_batch", signalBatchSchema),
		WebSearchOptions: openai.ChatCompletionNewParamsWebSearchOptions{
			SearchContextSize: "medium",
		},
	}

	text, err := c.complete(ctx, opGenerateSignals, params)
	if err != nil {
		span.RecordError(err)
		c.record(opGenerateSignals, "error")
		return nil, fmt.Errorf("%w: %w", ErrMarketNoise, err)
	}

	raw, err := decodeSignalBatch(text)
	if err != nil {
		span.RecordError(err)
		c.record(opGenerateSignals, "malformed")
		log.Printf("signal generation response rejected: %v", err)
		return nil, fmt.Errorf("%w: decode response: %w", ErrMarketNoise, err)
	}

	if c.cache != nil {
		if err := c.cache.SetSignals(ctx, key, raw); err != nil {
			log.Printf("signal cache write error: %v", err)
		}
	}

	signals := QualifyingSignals(raw, c.minProb)
	outcome := "ok"
	if len(signals) == 0 {
		outcome = "empty"
	}
	c.record(opGenerateSignals, outcome)
	span.SetAttributes(
		attribute.Int("signals.received", len(raw)),
		attribute.Int("signals.qualifying", len(signals)),
	)
	return signals, nil
}

func (c *Client) complete(ctx context.Context, op string, params openai.ChatCompletionNewParams) (string, error) {
	ctx, span := c.tracer.Start(ctx, "inference.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", params.Model),
		attribute.String("llm.operation", op),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, op); err != nil {
			return "", fmt.Errorf("rate limited: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := c.llm.CreateChatCompletion(ctx, params)
	if c.metrics != nil {
		c.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
	if err != nil {
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

func (c *Client) record(op, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordInference(op, outcome)
	}
}

// batchKey identifies a generation request: order-insensitive symbol set plus the local minute.
func batchKey(symbols []string, localTime string) string {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	return localTime + "|" + strings.Join(sorted, ",")
}
