package ui

import (
	"fmt"
	"strings"

	"iecsize/internal/progress"
	"iecsize/internal/util/format"
)

func (m Model) totals() (bytes int64, files int, done int) {
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js.err == nil {
			bytes += js.bytes
			files += js.files
		}
		if js.done {
			done++
		}
	}
	return bytes, files, done
}

func (m Model) viewHeader() string {
	total, _, done := m.totals()
	title := m.styles.Title.Render("iecsize du")
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Paths: %d/%d done • %s so far • q: quit",
		done, len(m.jobOrder), format.HumanizeBytes(total)))
	return title + "\n" + sub
}

func (m Model) viewJobs() string {
	total, _, _ := m.totals()
	var b strings.Builder
	for _, id := range m.jobOrder {
		b.WriteString(m.viewJob(m.jobs[id], total))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewJob(js *jobState, total int64) string {
	stageStyle := m.styles.JobInfo
	switch js.stage {
	case progress.StageScanning:
		stageStyle = m.styles.StageScan
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	left := m.styles.JobTitle.Render(truncate(js.path, 48))
	stage := stageStyle.Render(string(js.stage))
	size := m.styles.Size.Render(format.HumanizeBytes(js.bytes))

	var right string
	switch {
	case js.err != nil:
		right = m.styles.Error.Render("✗ " + js.status)
	case js.done:
		share := 0.0
		if total > 0 {
			share = float64(js.bytes) / float64(total)
		}
		right = fmt.Sprintf("%s  %s in %d files", js.bar.ViewAs(share), size, js.files)
	case js.stage == progress.StageScanning:
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + fmt.Sprintf("%s in %d files", size, js.files)
	default:
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	line1 := fmt.Sprintf("%s  %s", left, stage)
	return m.styles.Box.Render(line1 + "\n" + right)
}

func (m Model) viewSummary() string {
	total, files, _ := m.totals()
	line := fmt.Sprintf("Total: %s in %d files", format.HumanizeBytes(total), files)
	return m.styles.Subtitle.Render(line) + "\n"
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
