package render

import (
	"fmt"
	"strings"
)

// Summary renders a fully revealed result as plain text, suitable for a
// terminal or the clipboard.
func Summary(r *ResultView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.DiseaseName)
	fmt.Fprintf(&b, "%s\n", r.Badge.Label)
	fmt.Fprintf(&b, "Confidence: %d%% (%s)\n", r.Percent, r.Tier)
	if r.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Description)
	}

	writeList(&b, "Causes", r.Causes)
	writeList(&b, "Prevention", r.Prevention)
	writeList(&b, "Treatment", r.Treatment)

	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
}
