package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"voxhook/recorder"
)

// Theme is a palette for the card and transcript panels.
type Theme struct {
	Name      string
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Faint     lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color
	Error     lipgloss.Color
	ErrorEdge lipgloss.Color
	Recording lipgloss.Color
	Success   lipgloss.Color
}

var themes = map[string]Theme{
	"cyan": {
		Name:      "cyan",
		Accent:    lipgloss.Color("44"),
		Muted:     lipgloss.Color("245"),
		Faint:     lipgloss.Color("240"),
		Text:      lipgloss.Color("252"),
		Border:    lipgloss.Color("238"),
		Error:     lipgloss.Color("210"),
		ErrorEdge: lipgloss.Color("160"),
		Recording: lipgloss.Color("196"),
		Success:   lipgloss.Color("42"),
	},
	"slate": {
		Name:      "slate",
		Accent:    lipgloss.Color("110"),
		Muted:     lipgloss.Color("247"),
		Faint:     lipgloss.Color("242"),
		Text:      lipgloss.Color("254"),
		Border:    lipgloss.Color("240"),
		Error:     lipgloss.Color("217"),
		ErrorEdge: lipgloss.Color("167"),
		Recording: lipgloss.Color("203"),
		Success:   lipgloss.Color("108"),
	},
}

func themeByName(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["cyan"]
}

func (t Theme) style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// renderButton draws one control. Disabled controls are dimmed and keep
// their label so the layout does not jump.
func renderButton(t Theme, key, label string, enabled, active bool) string {
	text := fmt.Sprintf("[%s] %s", key, label)
	switch {
	case !enabled:
		return t.style(t.Faint).Render(text)
	case active:
		return t.style(t.Recording).Bold(true).Render(text)
	default:
		return t.style(t.Accent).Bold(true).Render(text)
	}
}

func renderControls(t Theme, snap recorder.Snapshot) string {
	c := snap.Controls()
	var record string
	if snap.Phase() == recorder.PhaseRecording {
		record = renderButton(t, "r", "STOP", c.Stop, true)
	} else {
		record = renderButton(t, "r", "RECORD", c.Record, false)
	}
	open := renderButton(t, "o", "OPEN FILE", c.SelectFile, false)

	uploadLabel := "Record or Open a File to Proceed"
	if _, ok := snap.Payload(); ok {
		uploadLabel = "Upload & Transcribe"
	}
	upload := renderButton(t, "u", uploadLabel, c.Upload, false)

	return record + "   " + open + "\n\n" + upload
}

// renderStatus draws the status box, red for errors and accent otherwise.
func renderStatus(t Theme, s recorder.Status, width int) string {
	if s.Empty() {
		return ""
	}
	fg, edge := t.Accent, t.Accent
	if s.IsError() {
		fg, edge = t.Error, t.ErrorEdge
	}
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(edge).
		Foreground(fg).
		PaddingLeft(1).
		Width(width).
		Render(s.Text)
}

func formatSize(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}

func renderReady(t Theme, p recorder.Payload) string {
	title := t.style(t.Accent).Bold(true).Render("✓ Audio Ready for Upload")
	details := []string{p.Name, p.MIME, formatSize(p.Size())}
	if p.Duration > 0 {
		details = append(details, fmt.Sprintf("%.1fs", p.Duration.Seconds()))
	}
	info := t.style(t.Text).Render(strings.Join(details, " · "))
	hint := t.style(t.Muted).Render("Ready to upload to your workflow.")
	return title + "\n" + info + "\n" + hint
}

// renderLevelMeter draws a horizontal bar for a 0..1 input level.
func renderLevelMeter(t Theme, level float64, width int) string {
	if width < 1 {
		return ""
	}
	// speech rarely exceeds 0.3 rms
	filled := int(min(level/0.3, 1) * float64(width))
	bar := strings.Repeat("█", filled)
	rest := strings.Repeat("░", width-filled)
	return t.style(t.Success).Render(bar) + t.style(t.Faint).Render(rest)
}

// wrapText splits text into lines of at most width runes, breaking at the
// last space when there is one.
func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(runes) > width {
			// Find last space within width
			splitAt := width
			for i := width; i > 0; i-- {
				if runes[i] == ' ' {
					splitAt = i
					break
				}
			}
			lines = append(lines, string(runes[:splitAt]))
			runes = []rune(strings.TrimLeft(string(runes[splitAt:]), " "))
		}
		if len(runes) > 0 {
			lines = append(lines, string(runes))
		}
	}
	return lines
}

func renderTranscript(t Theme, text string, width int, copied bool) string {
	title := t.style(t.Accent).Bold(true).Render("Transcription Result")

	inner := max(width-4, 10)
	body := strings.Join(wrapText(text, inner), "\n")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1).
		Width(inner + 2).
		Render(body)

	footer := t.style(t.Faint).Render("Final JSON or text returned by the workflow's Respond to Webhook node.")
	if copied {
		footer += " " + t.style(t.Success).Render("[✓ copied]")
	}
	return title + "\n\n" + box + "\n" + footer
}
