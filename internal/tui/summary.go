package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/pgcsv/internal/checksum"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// RenderSummary writes one line per file and a totals line to w. It is the
// only place per-file outcomes reach the user outside verbose mode. Colors are
// used only when w is a terminal that accepts them.
func RenderSummary(w io.Writer, summary pgcsv.RunSummary) {
	r := lipgloss.NewRenderer(w)
	ok := r.NewStyle().Foreground(ColorSuccess)
	bad := r.NewStyle().Foreground(ColorError)
	muted := r.NewStyle().Foreground(ColorMuted)

	nameWidth := 0
	for _, res := range summary.Results {
		nameWidth = max(nameWidth, lipgloss.Width(displayName(res)))
	}
	nameCol := r.NewStyle().Width(nameWidth + 2)

	for _, res := range summary.Results {
		var line strings.Builder
		if res.State == pgcsv.StateLoaded {
			line.WriteString(ok.Render(SymbolCheck) + " ")
			line.WriteString(nameCol.Render(displayName(res)))
			line.WriteString(fmt.Sprintf("%s %s  %d rows", SymbolArrowRight, res.Target, res.Rows))
		} else {
			line.WriteString(bad.Render(SymbolCross) + " ")
			line.WriteString(nameCol.Render(displayName(res)))
			line.WriteString(bad.Render(fmt.Sprintf("%s after %s", res.Kind, res.LastState)))
			if res.Err != nil {
				line.WriteString(bad.Render(": " + res.Err.Error()))
			}
		}
		if res.Checksum != "" {
			line.WriteString(muted.Render("  sha256:" + checksum.Short(res.Checksum)))
		}
		if res.Duration > 0 {
			line.WriteString(muted.Render("  " + res.Duration.Round(time.Millisecond).String()))
		}
		fmt.Fprintln(w, line.String())
	}

	totals := fmt.Sprintf("%d file(s): %d loaded, %d failed, %d rows", len(summary.Results), summary.Loaded, summary.Failed, summary.TotalRows())
	if summary.Failed > 0 {
		fmt.Fprintln(w, bad.Render(totals))
	} else {
		fmt.Fprintln(w, ok.Render(totals))
	}
}

func displayName(res pgcsv.FileResult) string {
	if res.Source.Name != "" {
		return res.Source.Name
	}
	return res.Source.Path
}

