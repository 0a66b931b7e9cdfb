package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"leafscan/internal/render"
)

// BarCells is the width of the confidence bar in the terminal
const BarCells = 24

// Frame renders the result panel as revealed so far
func Frame(v *render.ResultView, d *render.Display) string {
	var b strings.Builder

	b.WriteString(CurrentTheme.Header.Render(d.Name))
	b.WriteString("\n")
	b.WriteString(CurrentTheme.Style(v.Badge.Header).Render(v.Badge.Label))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Confidence %s %s", Bar(v.Bar, d.BarWidth), d.CounterText())

	lists := []struct {
		title string
		items []string
	}{
		{"Causes", d.Causes},
		{"Prevention", d.Prevention},
		{"Treatment", d.Treatment},
	}
	for _, l := range lists {
		if len(l.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s:", l.title)
		for _, item := range l.items {
			fmt.Fprintf(&b, "\n  • %s", item)
		}
	}
	return b.String()
}

// Bar draws a percentage as a bar of BarCells cells in the tier style
func Bar(style render.Style, percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * BarCells / 100
	return CurrentTheme.Style(style).Render(strings.Repeat("█", filled)) +
		CurrentTheme.Muted.Render(strings.Repeat("░", BarCells-filled))
}

// Animate plays the reveal of a result on w. Each batch of due steps
// redraws the whole frame in place; sleep waits between batches.
func Animate(w io.Writer, v *render.ResultView, t render.Timing, sleep func(time.Duration)) {
	tl := render.BuildTimeline(v, t)
	d := &render.Display{}

	lines := 0
	draw := func() {
		if lines > 0 {
			// move to the first line of the previous frame and clear below
			fmt.Fprintf(w, "\033[%dF\033[J", lines)
		}
		frame := Frame(v, d)
		fmt.Fprintln(w, frame)
		lines = strings.Count(frame, "\n") + 1
	}

	var elapsed time.Duration
	for i := 0; i < len(tl); {
		if due := tl[i].Delay; due > elapsed {
			sleep(due - elapsed)
			elapsed = due
		}
		i = tl.PlayUntil(d, i, elapsed)
		draw()
	}
	if v.Description != "" {
		fmt.Fprintf(w, "\n%s\n", v.Description)
	}
}
