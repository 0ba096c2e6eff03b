package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voxhook/clipboard"
	"voxhook/log"
	"voxhook/recorder"
)

// TUI message types
type AudioLevelMsg struct{ Level float64 }
type snapshotMsg struct{ snap recorder.Snapshot }
type opDoneMsg struct {
	op   string
	err  error
	snap recorder.Snapshot
}
type copiedMsg struct{ err error }
type tickMsg time.Time

type tuiInfo struct {
	Endpoint string
	Device   string
	Format   string
	Version  string
}

type tuiModel struct {
	ctx   context.Context
	rec   *recorder.Recorder
	info  tuiInfo
	theme Theme

	snap      recorder.Snapshot
	spinner   spinner.Model
	input     textinput.Model
	prompting bool

	audioLevel float64
	peakLevel  float64
	now        time.Time
	copied     bool
	notice     string // transient clipboard feedback

	width, height int
}

func newTUIModel(ctx context.Context, rec *recorder.Recorder, info tuiInfo, theme Theme) tuiModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	ti := textinput.New()
	ti.Placeholder = "path/to/audio.wav"
	ti.Prompt = "file: "
	ti.CharLimit = 4096

	return tuiModel{
		ctx:     ctx,
		rec:     rec,
		info:    info,
		theme:   theme,
		snap:    rec.Snapshot(),
		spinner: sp,
		input:   ti,
		now:     time.Now(),
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(tuiTick(), m.spinner.Tick)
}

// recorderCmd runs a recorder operation off the UI goroutine. The resulting
// snapshot is taken there too, so Update never waits on the recorder lock.
func (m tuiModel) recorderCmd(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		return opDoneMsg{op: op, err: err, snap: m.rec.Snapshot()}
	}
}

func (m tuiModel) copyCmd() tea.Cmd {
	text := m.snap.Transcript
	return func() tea.Msg {
		return copiedMsg{err: clipboard.Copy(text)}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)

	case tickMsg:
		m.now = time.Time(msg)
		return m, tuiTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m = m.applySnapshot(msg.snap)

	case opDoneMsg:
		if msg.err != nil {
			log.Debug(fmt.Sprintf("%s: %v", msg.op, msg.err))
		}
		m = m.applySnapshot(msg.snap)

	case AudioLevelMsg:
		if m.snap.Phase() == recorder.PhaseRecording {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
			m.peakLevel = max(m.peakLevel, msg.Level)
		}

	case copiedMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
			m.copied = false
		} else {
			m.notice = ""
			m.copied = true
		}
	}
	return m, nil
}

func (m tuiModel) applySnapshot(s recorder.Snapshot) tuiModel {
	if s.Phase() == recorder.PhaseRecording && m.snap.Phase() != recorder.PhaseRecording {
		m.audioLevel = 0
		m.peakLevel = 0
	}
	if s.Transcript != m.snap.Transcript {
		m.copied = false
	}
	m.snap = s
	return m
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.snap.Controls()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "r", " ":
		if c.Stop {
			return m, m.recorderCmd("stop", m.rec.Stop)
		}
		if c.Record {
			return m, m.recorderCmd("start", m.rec.Start)
		}

	case "s":
		if c.Stop {
			return m, m.recorderCmd("stop", m.rec.Stop)
		}

	case "o":
		if c.SelectFile {
			m.prompting = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}

	case "u", "enter":
		if c.Upload {
			ctx := m.ctx
			return m, m.recorderCmd("upload", func() error { return m.rec.Upload(ctx) })
		}

	case "c":
		if m.snap.Transcript != "" && m.snap.Transcript != recorder.PlaceholderTranscript {
			return m, m.copyCmd()
		}
	}
	return m, nil
}

func (m tuiModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		path := expandHome(strings.TrimSpace(m.input.Value()))
		m.prompting = false
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		return m, m.recorderCmd("select file", func() error { return m.rec.SelectFile(path) })
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

const cardWidth = 56

func (m tuiModel) renderCard() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(t.Text).Bold(true).Render("Transcription Input") + "\n")
	b.WriteString(t.style(t.Muted).Render("Record live audio or open a pre-recorded audio file.") + "\n\n")
	b.WriteString(renderControls(t, m.snap) + "\n")

	if m.prompting {
		b.WriteString("\n" + m.input.View() + "\n")
		b.WriteString(t.style(t.Faint).Render("enter to load · esc to cancel") + "\n")
	}

	switch st := m.snap.State.(type) {
	case recorder.Recording:
		elapsed := m.now.Sub(st.Started).Seconds()
		rec := t.style(t.Recording).Bold(true).Render(fmt.Sprintf("● REC %.1fs", max(elapsed, 0)))
		b.WriteString("\n" + rec + "  " + renderLevelMeter(t, m.audioLevel, 20) + "\n")
		// Voice detection warning (after 1s of recording with no voice)
		if elapsed > 1.0 && m.peakLevel < 0.02 {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("⚠ no voice detected") + "\n")
		}
	case recorder.Uploading:
		b.WriteString("\n" + m.spinner.View() + t.style(t.Muted).Render(" waiting for the workflow...") + "\n")
	}

	if status := renderStatus(t, m.snap.Status, cardWidth-6); status != "" {
		b.WriteString("\n" + status + "\n")
	}

	if p, ok := m.snap.Payload(); ok {
		b.WriteString("\n" + renderReady(t, p) + "\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 2).
		Width(cardWidth).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m tuiModel) renderHelp() string {
	t := m.theme
	bold := t.style(t.Faint).Bold(true)
	plain := t.style(t.Faint)
	keys := []string{
		bold.Render("r") + plain.Render(" record/stop"),
		bold.Render("o") + plain.Render(" open file"),
		bold.Render("u") + plain.Render(" upload"),
		bold.Render("c") + plain.Render(" copy"),
		bold.Render("q") + plain.Render(" quit"),
	}
	line := strings.Join(keys, plain.Render(" · "))
	meta := plain.Render(fmt.Sprintf("voxhook %s · %s · mic: %s · %s", m.info.Version, m.info.Format, m.info.Device, m.info.Endpoint))
	if m.notice != "" {
		meta = t.style(t.Error).Render(m.notice) + "\n" + meta
	}
	return line + "\n" + meta
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	t := m.theme

	header := t.style(t.Text).Bold(true).Render("voxhook") +
		t.style(t.Accent).Render("  Record → Workflow → Transcript")

	card := m.renderCard()
	var body string
	if m.width >= cardWidth*2+4 {
		transcriptWidth := m.width - lipgloss.Width(card) - 2
		transcript := renderTranscript(t, m.snap.Transcript, transcriptWidth, m.copied)
		body = lipgloss.JoinHorizontal(lipgloss.Top, card, "  ", transcript)
	} else {
		transcript := renderTranscript(t, m.snap.Transcript, max(m.width, 20), m.copied)
		body = lipgloss.JoinVertical(lipgloss.Left, transcript, "", card)
	}

	return header + "\n\n" + body + "\n\n" + m.renderHelp()
}
