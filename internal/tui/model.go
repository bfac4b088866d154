// Package tui renders a session as a terminal UI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signal-desk/internal/clock"
	"signal-desk/internal/domain"
	"signal-desk/internal/inference"
	"signal-desk/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ClockSource drives the header.
type ClockSource interface {
	Current() clock.Tick
	Next() clock.Tick
}

type Services struct {
	Session  *session.Session
	Clock    ClockSource
	Interval time.Duration
	Username string
}

type (
	snapshotMsg session.Snapshot
	tickMsg     clock.Tick
	closedMsg   struct{}
	hintMsg     string
)

type AppModel struct {
	svc    Services
	ctx    context.Context
	cancel context.CancelFunc

	snaps       <-chan session.Snapshot
	unsubscribe func()

	snap    session.Snapshot
	tick    clock.Tick
	cursor  int
	offset  int
	width   int
	height  int
	pasting bool
	input   textinput.Model
	spinner spinner.Model
	// local validation messages that never reach the session banner
	hint string
}

func NewAppModel(svc Services) *AppModel {
	if svc.Interval <= 0 {
		svc.Interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())

	ti := textinput.New()
	ti.Placeholder = "data:image/png;base64,..."
	ti.CharLimit = 0
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = gaugeStyle

	snaps, unsubscribe := svc.Session.Subscribe()
	return &AppModel{
		svc:         svc,
		ctx:         ctx,
		cancel:      cancel,
		snaps:       snaps,
		unsubscribe: unsubscribe,
		snap:        svc.Session.Snapshot(),
		tick:        svc.Clock.Current(),
		input:       ti,
		spinner:     sp,
		width:       80,
		height:      24,
	}
}

func (m *AppModel) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.nextTick(), m.spinner.Tick)
}

func (m *AppModel) waitForSnapshot() tea.Cmd {
	ch := m.snaps
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m *AppModel) nextTick() tea.Cmd {
	clk := m.svc.Clock
	return tea.Tick(m.svc.Interval, func(time.Time) tea.Msg {
		return tickMsg(clk.Next())
	})
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		return m, m.waitForSnapshot()
	case tickMsg:
		m.tick = clock.Tick(msg)
		return m, m.nextTick()
	case closedMsg:
		return m, m.quit()
	case hintMsg:
		m.hint = string(msg)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.pasting {
			return m.updatePaste(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *AppModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.hint = ""
	switch {
	case key.Matches(msg, keys.Quit):
		return m, m.quit()
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(domain.Instruments)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Toggle):
		_ = m.svc.Session.Toggle(domain.Instruments[m.cursor].Symbol)
	case key.Matches(msg, keys.ToggleAll):
		_ = m.svc.Session.ToggleAll()
	case key.Matches(msg, keys.Generate):
		return m, m.generate()
	case key.Matches(msg, keys.Paste):
		m.pasting = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, keys.Dismiss):
		m.svc.Session.DismissError()
	}
	return m, nil
}

func (m *AppModel) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.pasting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.pasting = false
		m.input.Blur()
		shot, err := inference.DecodeScreenshot(m.input.Value())
		if err != nil {
			// non-image clipboard content is ignored
			m.hint = "Clipboard content is not an image."
			return m, nil
		}
		return m, m.analyze(shot)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Inference failures show up as the session banner, so flow commands only report ErrBusy.
func (m *AppModel) generate() tea.Cmd {
	ctx, sess := m.ctx, m.svc.Session
	return func() tea.Msg {
		if _, err := sess.Generate(ctx); errors.Is(err, session.ErrBusy) {
			return hintMsg("A scan is already running.")
		}
		return nil
	}
}

func (m *AppModel) analyze(shot inference.Screenshot) tea.Cmd {
	ctx, sess := m.ctx, m.svc.Session
	return func() tea.Msg {
		_, _ = sess.Analyze(ctx, shot)
		return nil
	}
}

func (m *AppModel) quit() tea.Cmd {
	m.cancel()
	m.unsubscribe()
	return tea.Quit
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("SIGNAL DESK"))
	if m.svc.Username != "" {
		b.WriteString(mutedStyle.Render("  " + m.svc.Username))
	}
	fmt.Fprintf(&b, "  %s  %s\n", m.tick.Time, gaugeStyle.Render(fmt.Sprintf("ACCURACY %.4f%%", m.tick.Gauge)))

	if m.snap.Error != "" {
		b.WriteString(errorStyle.Render(m.snap.Error+"  [x]") + "\n")
	}
	if m.hint != "" {
		b.WriteString(noticeStyle.Render(m.hint) + "\n")
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("Instruments (%d/%d selected)", len(m.snap.Selected), len(domain.Instruments))) + "\n")
	b.WriteString(m.renderInstruments())

	b.WriteString(titleStyle.Render("Chart analysis") + "\n")
	b.WriteString(m.renderAnalysis())

	b.WriteString(titleStyle.Render("Future signals") + "\n")
	b.WriteString(m.renderSignals())

	if m.pasting {
		b.WriteString("\nPaste chart image: " + m.input.View() + "\n")
	}
	b.WriteString("\n" + m.renderHelp())
	return b.String()
}

func (m *AppModel) visibleRows() int {
	// header, titles, analysis, signals and help take roughly this many lines
	rows := m.height - 16
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (m *AppModel) renderInstruments() string {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}

	var b strings.Builder
	end := m.offset + rows
	if end > len(domain.Instruments) {
		end = len(domain.Instruments)
	}
	for i := m.offset; i < end; i++ {
		inst := domain.Instruments[i]
		check := "[ ]"
		if m.snap.IsSelected(inst.Symbol) {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %-18s %s", check, inst.Symbol, mutedStyle.Render(inst.Name))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func (m *AppModel) renderAnalysis() string {
	switch {
	case m.snap.Analysis == session.InFlight:
		return m.spinner.View() + " Scanning chart...\n"
	case m.snap.AnalysisResult != nil:
		r := m.snap.AnalysisResult
		action := r.Verdict.Action()
		out := fmt.Sprintf("%s  confidence %.0f%%\n", actionStyle(action).Render(action), r.Confidence)
		if len(r.Patterns) > 0 {
			out += mutedStyle.Render(strings.Join(r.Patterns, " · ")) + "\n"
		}
		if r.Reasoning != "" {
			out += r.Reasoning + "\n"
		}
		return out
	case !m.snap.HasScreenshot:
		return mutedStyle.Render("Press p to paste a chart screenshot.") + "\n"
	}
	return ""
}

func (m *AppModel) renderSignals() string {
	if m.snap.Generation == session.InFlight {
		return m.spinner.View() + " " + m.snap.GenerationStatus + "\n"
	}
	if m.snap.Notice != "" {
		return noticeStyle.Render(m.snap.Notice) + "\n"
	}
	if len(m.snap.Signals) == 0 {
		return mutedStyle.Render("Select instruments and press g.") + "\n"
	}
	var b strings.Builder
	for _, s := range m.snap.Signals {
		action := s.Direction.WireValue()
		fmt.Fprintf(&b, "%s  %-18s %s  %.0f%%  %s\n",
			s.Time, s.Instrument, actionStyle(action).Render(fmt.Sprintf("%-4s", action)), s.Probability, mutedStyle.Render(s.Rationale))
	}
	return b.String()
}

func (m *AppModel) renderHelp() string {
	parts := make([]string, 0, len(keys.help()))
	for _, k := range keys.help() {
		h := k.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
