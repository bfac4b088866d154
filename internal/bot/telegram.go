package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/inference"
	"signal-desk/internal/session"

	tele "gopkg.in/telebot.v3"
)

const maxPhotoBytes = 10 << 20

const helpText = `Signal Desk
/instruments - list instruments and your selection
/select EUR/USD, Bitcoin - replace the selection (comma separated)
/all - select or clear every instrument
/signals - generate future signals for the selection
Send a chart screenshot to predict the next candle.`

// StartTelegramBot starts long polling with one session per chat. It is a no-op without a token.
func StartTelegramBot(store *session.Store) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Printf("failed to create Telegram bot: %v", err)
		return
	}

	chatSession := func(c tele.Context) *session.Session {
		return store.GetOrCreate(fmt.Sprintf("tg:%d", c.Chat().ID))
	}

	b.Handle("/start", func(c tele.Context) error {
		return c.Send(helpText)
	})

	b.Handle("/instruments", func(c tele.Context) error {
		return c.Send(formatInstruments(chatSession(c).Snapshot()))
	})

	b.Handle("/select", func(c tele.Context) error {
		return c.Send(selectReply(chatSession(c), c.Message().Payload))
	})

	b.Handle("/all", func(c tele.Context) error {
		sess := chatSession(c)
		if err := sess.ToggleAll(); err != nil {
			return c.Send(err.Error())
		}
		return c.Send(formatSelection(sess.Snapshot()))
	})

	b.Handle("/signals", func(c tele.Context) error {
		_ = c.Send("Synchronizing live global feeds...")
		return c.Send(signalsReply(context.Background(), chatSession(c)))
	})

	b.Handle(tele.OnPhoto, func(c tele.Context) error {
		photo := c.Message().Photo
		rc, err := b.File(&photo.File)
		if err != nil {
			log.Printf("telegram: download photo: %v", err)
			return c.Send("Could not download the screenshot.")
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxPhotoBytes))
		if err != nil {
			return c.Send("Could not read the screenshot.")
		}
		return c.Send(analyzeReply(context.Background(), chatSession(c), data))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func selectReply(sess *session.Session, payload string) string {
	symbols, unknown := resolveSymbols(payload)
	if len(unknown) > 0 {
		return fmt.Sprintf("Unknown instrument: %s\nSee /instruments", strings.Join(unknown, ", "))
	}
	if len(symbols) == 0 {
		return "Usage: /select EUR/USD, Bitcoin"
	}
	if err := sess.Select(symbols); err != nil {
		return err.Error()
	}
	return formatSelection(sess.Snapshot())
}

func signalsReply(ctx context.Context, sess *session.Session) string {
	signals, err := sess.Generate(ctx)
	switch {
	case errors.Is(err, session.ErrBusy):
		return "A scan is already running."
	case err != nil:
		if msg := sess.Snapshot().Error; msg != "" {
			return msg
		}
		return err.Error()
	}
	if len(signals) == 0 {
		return session.EmptyBatchNotice
	}
	return formatSignals(signals)
}

func analyzeReply(ctx context.Context, sess *session.Session, data []byte) string {
	shot, err := inference.ScreenshotFromBytes(data)
	if err != nil {
		return "That does not look like a chart image."
	}
	result, err := sess.Analyze(ctx, shot)
	if err != nil {
		if errors.Is(err, session.ErrSuperseded) {
			return "Superseded by a newer screenshot."
		}
		return session.AnalysisFailedMessage
	}
	return formatAnalysis(result)
}

// resolveSymbols matches a comma separated list against the registry, ignoring case.
func resolveSymbols(payload string) (symbols, unknown []string) {
	for _, part := range strings.Split(payload, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if inst, ok := domain.FindInstrument(part); ok {
			symbols = append(symbols, inst.Symbol)
		} else {
			unknown = append(unknown, part)
		}
	}
	return symbols, unknown
}

func formatInstruments(snap session.Snapshot) string {
	var b strings.Builder
	for _, inst := range domain.Instruments {
		mark := "[ ]"
		if snap.IsSelected(inst.Symbol) {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", mark, inst.Symbol, inst.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSelection(snap session.Snapshot) string {
	if len(snap.Selected) == 0 {
		return "Selection cleared."
	}
	return fmt.Sprintf("Selected (%d): %s", len(snap.Selected), strings.Join(snap.Selected, ", "))
}

func formatAnalysis(r *domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Next candle: %s (%s)\nConfidence: %.0f%%\n", r.Verdict.Action(), r.Verdict, r.Confidence)
	if len(r.Patterns) > 0 {
		fmt.Fprintf(&b, "Patterns: %s\n", strings.Join(r.Patterns, ", "))
	}
	b.WriteString(r.Reasoning)
	return strings.TrimRight(b.String(), "\n")
}

func formatSignals(signals []domain.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d verified signals\n", len(signals))
	for _, s := range signals {
		fmt.Fprintf(&b, "%s %s %s %.0f%%", s.Time, s.Instrument, s.Direction.WireValue(), s.Probability)
		if s.Rationale != "" {
			fmt.Fprintf(&b, " - %s", s.Rationale)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
