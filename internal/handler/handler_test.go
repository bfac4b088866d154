package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signal-desk/internal/clock"
	"signal-desk/internal/domain"
	"signal-desk/internal/inference"
	"signal-desk/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

type stubInference struct {
	analysis    *domain.AnalysisResult
	analysisErr error
	signals     []domain.Signal
	signalsErr  error
	lastSymbols []string
}

func (s *stubInference) AnalyzeImage(context.Context, inference.Screenshot) (*domain.AnalysisResult, error) {
	return s.analysis, s.analysisErr
}

func (s *stubInference) GenerateSignals(_ context.Context, symbols []string) ([]domain.Signal, error) {
	s.lastSymbols = symbols
	return s.signals, s.signalsErr
}

type stubClock struct{ tick clock.Tick }

func (s stubClock) Current() clock.Tick { return s.tick }

func newTestRouter(svc *stubInference) (*gin.Engine, *session.Store) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	store := session.NewStore(tracer, svc, time.Hour)
	h := New(tracer, store, stubClock{tick: clock.Tick{Time: "14:03:09", Gauge: 99.102}})
	r := gin.New()
	h.RegisterRoutes(r)
	return r, store
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(&stubInference{})
	w := doJSON(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if body != "{\"status\":\"healthy\"}\n" && body != "{\"status\":\"healthy\"}" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestListInstruments(t *testing.T) {
	r, _ := newTestRouter(&stubInference{})
	w := doJSON(r, http.MethodGet, "/api/instruments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Instruments []domain.Instrument `json:"instruments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Instruments) != len(domain.Instruments) || body.Instruments[0].Symbol != "EUR/USD" {
		t.Fatalf("unexpected instruments: %+v", body.Instruments)
	}
}

func TestGetClock(t *testing.T) {
	r, _ := newTestRouter(&stubInference{})
	w := doJSON(r, http.MethodGet, "/api/clock", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "14:03:09") {
		t.Fatalf("unexpected clock response %d %s", w.Code, w.Body.String())
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	r, _ := newTestRouter(&stubInference{})
	w := doJSON(r, http.MethodGet, "/api/sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := &stubInference{signals: []domain.Signal{
		{Instrument: "EUR/USD", Time: "14:05", Direction: domain.DirectionUp, Probability: 95},
	}}
	r, store := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	base := "/api/sessions/" + snap.ID

	w = doJSON(r, http.MethodPost, base+"/toggle", gin.H{"symbol": "EUR/USD"})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, base+"/signals", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signals: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"type":"CALL"`) || !strings.Contains(w.Body.String(), `"pair":"EUR/USD"`) {
		t.Fatalf("unexpected signals body: %s", w.Body.String())
	}
	if len(svc.lastSymbols) != 1 {
		t.Fatalf("expected one symbol sent, got %v", svc.lastSymbols)
	}

	w = doJSON(r, http.MethodDelete, base, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if store.Len() != 0 {
		t.Fatal("expected session removed")
	}
}

func TestToggleUnknownInstrument(t *testing.T) {
	r, store := newTestRouter(&stubInference{})
	sess := store.Create()
	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/toggle", gin.H{"symbol": "XXX/YYY"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestToggleAllRoute(t *testing.T) {
	r, store := newTestRouter(&stubInference{})
	sess := store.Create()
	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/toggle-all", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !sess.Snapshot().AllSelected() {
		t.Fatal("expected full selection")
	}
}

func TestGenerateWithoutSelection(t *testing.T) {
	r, store := newTestRouter(&stubInference{})
	sess := store.Create()

	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/signals", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "NO ASSETS SELECTED") {
		t.Fatalf("expected banner text, got %s", w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/api/sessions/"+sess.ID()+"/error", nil)
	if w.Code != http.StatusOK || sess.Snapshot().Error != "" {
		t.Fatalf("expected banner dismissed, got %d %q", w.Code, sess.Snapshot().Error)
	}
}

func TestGenerateEmptyBatchNotice(t *testing.T) {
	r, store := newTestRouter(&stubInference{signals: []domain.Signal{}})
	sess := store.Create()
	_ = sess.Toggle("Bitcoin")

	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/signals", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Signals []domain.Signal `json:"signals"`
		Notice  string          `json:"notice"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Signals == nil || len(body.Signals) != 0 || body.Notice != session.EmptyBatchNotice {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestGenerateFailureIsBadGateway(t *testing.T) {
	r, store := newTestRouter(&stubInference{signalsErr: inference.ErrMarketNoise})
	sess := store.Create()
	_ = sess.Toggle("Bitcoin")

	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/signals", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Market noise detected") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAnalyzeScreenshotJSON(t *testing.T) {
	svc := &stubInference{analysis: &domain.AnalysisResult{
		Verdict: domain.VerdictRed, Confidence: 88, Patterns: []string{"Shooting Star"}, Reasoning: "rejection at resistance",
	}}
	r, store := newTestRouter(svc)
	sess := store.Create()

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/screenshot", gin.H{"image": uri})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"action":"PUT"`) || !strings.Contains(w.Body.String(), `"nextCandle":"RED"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAnalyzeScreenshotMultipart(t *testing.T) {
	svc := &stubInference{analysis: &domain.AnalysisResult{Verdict: domain.VerdictGreen, Confidence: 92}}
	r, store := newTestRouter(svc)
	sess := store.Create()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "chart.png")
	_, _ = fw.Write(pngBytes)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sess.ID()+"/screenshot", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if snap := sess.Snapshot(); snap.ScreenshotMIME != "image/png" || snap.AnalysisResult == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestAnalyzeScreenshotRejectsNonImage(t *testing.T) {
	r, store := newTestRouter(&stubInference{})
	sess := store.Create()
	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/screenshot", gin.H{"image": "hello world"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeScreenshotFailure(t *testing.T) {
	r, store := newTestRouter(&stubInference{analysisErr: inference.ErrSignalRejected})
	sess := store.Create()
	w := doJSON(r, http.MethodPost, "/api/sessions/"+sess.ID()+"/screenshot",
		gin.H{"image": base64.StdEncoding.EncodeToString(pngBytes)})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "SIGNAL REJECTED") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestEventsStreamsSnapshots(t *testing.T) {
	r, store := newTestRouter(&stubInference{})
	sess := store.Create()

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + sess.ID() + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first session.Snapshot
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first.ID != sess.ID() {
		t.Fatalf("unexpected snapshot id %q", first.ID)
	}

	_ = sess.Toggle("Gold (XAU/USD)")
	var next session.Snapshot
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if len(next.Selected) != 1 || next.Selected[0] != "Gold (XAU/USD)" {
		t.Fatalf("unexpected update %+v", next)
	}
}
