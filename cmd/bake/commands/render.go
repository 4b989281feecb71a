package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/pipeline"
	"go.trai.ch/bake/internal/ui/output"
	"go.trai.ch/bake/internal/ui/style"
)

var labelStyle = lipgloss.NewStyle().Width(8)

func renderReport(w io.Writer, report *pipeline.Report) error {
	lipgloss.SetColorProfile(output.ColorProfile(w))

	var b strings.Builder
	b.WriteString(style.Header.Render("bake"))
	b.WriteString(style.Muted.Render(fmt.Sprintf(" %d modules in %s", len(report.Candidates), report.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	line := func(icon string, s lipgloss.Style, label string, names []string) {
		if len(names) == 0 {
			return
		}
		b.WriteString("  ")
		b.WriteString(s.Render(icon))
		b.WriteString(" ")
		b.WriteString(labelStyle.Render(label))
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	line(style.Tilde, style.Notice, "built", report.Dirty)
	line(style.Dot, style.Success, "reused", report.Cacheable)
	line(style.Check, style.Success, "cached", report.Pruned)
	line(style.Circle, style.Muted, "source", inState(report.States, domain.StateKeptAsSource))
	if len(report.Patched) > 0 {
		b.WriteString(style.Muted.Render(fmt.Sprintf("  patched %d files", len(report.Patched))))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderHistory(w io.Writer, runs []domain.RunRecord) error {
	lipgloss.SetColorProfile(output.ColorProfile(w))

	if len(runs) == 0 {
		_, err := io.WriteString(w, style.Muted.Render("no runs recorded")+"\n")
		return err
	}

	var b strings.Builder
	for i := range runs {
		run := &runs[i]
		icon, s := style.Dot, style.Muted
		switch run.Status {
		case domain.RunStatusSucceeded:
			icon, s = style.Check, style.Success
		case domain.RunStatusFailed:
			icon, s = style.Cross, style.Failure
		case domain.RunStatusRunning:
		}

		sdks := make([]string, 0, len(run.SDKs))
		for _, sdk := range run.SDKs {
			sdks = append(sdks, string(sdk))
		}

		b.WriteString(s.Render(icon))
		b.WriteString(" ")
		b.WriteString(run.StartedAt.Local().Format(time.DateTime))
		b.WriteString(style.Muted.Render(" " + shortID(run.ID)))
		fmt.Fprintf(&b, "  %s  %d cached, %d source",
			strings.Join(sdks, ","), run.Count(domain.StatePruned), run.Count(domain.StateKeptAsSource))
		if !run.FinishedAt.IsZero() {
			b.WriteString(style.Muted.Render(" in " + run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()))
		}
		if run.FailedStep != "" {
			b.WriteString(style.Failure.Render("  failed at " + run.FailedStep))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func inState(states map[string]domain.ModuleState, want domain.ModuleState) []string {
	var names []string
	for name, st := range states {
		if st == want {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
