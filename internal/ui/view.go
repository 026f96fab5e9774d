package ui

import (
	"fmt"
	"strings"

	"videomorph/internal/progress"
	"videomorph/internal/util/format"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.order)
	for _, id := range m.order {
		if m.files[id].done {
			done++
		}
	}
	title := m.styles.Title.Render("videomorph")
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Files: %d/%d done • s: skip • q: stop", done, total))
	return title + "\n" + sub
}

func (m Model) viewOverall() string {
	return fmt.Sprintf("%s %5.1f%%  %s",
		m.overallBar.ViewAs(m.overall/100.0), m.overall,
		m.styles.Faint.Render("total "+format.Clock(m.total)))
}

func (m Model) viewFiles() string {
	var b strings.Builder
	for _, id := range m.order {
		b.WriteString(m.viewFile(m.files[id]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewFile(fs *fileState) string {
	stageStyle := m.styles.JobInfo
	switch fs.stage {
	case progress.StageConverting:
		stageStyle = m.styles.StageConv
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageSkipped, progress.StageStopped:
		stageStyle = m.styles.Warning
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	left := m.styles.JobTitle.Render(truncate(fs.name, 48))
	stage := stageStyle.Render(string(fs.stage))
	quality := m.styles.Faint.Render(fs.quality + " • " + format.Clock(fs.duration))

	var right string
	switch {
	case fs.percent >= 0 && fs.percent <= 100:
		right = fmt.Sprintf("%s %5.1f%%", fs.bar.ViewAs(fs.percent/100.0), fs.percent)
		if fs.eta != "" {
			right += m.styles.Faint.Render("  eta " + fs.eta)
		}
	case fs.done && fs.err == nil:
		right = m.styles.Warning.Render("- " + string(fs.stage))
	case fs.err != nil:
		right = m.styles.Error.Render("✗ error")
	default:
		right = m.styles.Spinner.Render(fs.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	line1 := fmt.Sprintf("%s  %s  %s", left, stage, quality)
	line2 := m.styles.JobInfo.Render(fs.status)
	return m.styles.Box.Render(line1 + "\n" + right + "\n" + line2)
}

func (m Model) viewSummary() string {
	var completed []string
	for _, id := range m.order {
		fs := m.files[id]
		if fs.done && fs.err == nil && fs.outputPath != "" {
			completed = append(completed, fs.outputPath)
		}
	}
	if len(completed) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("✓ Completed Files:"))
	b.WriteString("\n")
	for _, path := range completed {
		b.WriteString(m.styles.Success.Render("  • " + path))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
