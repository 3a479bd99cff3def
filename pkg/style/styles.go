// Package style renders the user-facing parts of a run: a header before
// each phase, skip notices, the closing summary and the fatal error block.
package style

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Printer writes styled output to one stream.
type Printer struct {
	w io.Writer

	header  lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	errBox  lipgloss.Style
	errHead lipgloss.Style
}

// NewPrinter styles output for w. Colour is used only when w is a terminal
// and the environment allows it.
func NewPrinter(w io.Writer) *Printer {
	return newPrinter(w, ColorEnabled(w))
}

// NewPlainPrinter never emits escape sequences.
func NewPlainPrinter(w io.Writer) *Printer {
	return newPrinter(w, false)
}

func newPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:       w,
		header:  r.NewStyle().Foreground(HeadingColor).Bold(true),
		muted:   r.NewStyle().Foreground(MutedColor),
		warning: r.NewStyle().Foreground(WarningColor).Bold(true),
		success: r.NewStyle().Foreground(SuccessColor).Bold(true),
		errHead: r.NewStyle().Foreground(ErrorColor).Bold(true),
		errBox: r.NewStyle().
			Border(lipgloss.NormalBorder(), true, false).
			BorderForeground(ErrorColor).
			Padding(0, 1),
	}
}

// ColorEnabled reports whether w should get ANSI colour. TERM=dumb, an
// unset TERM or NO_COLOR turn it off.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if term := os.Getenv("TERM"); term == "" || term == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PhaseHeader announces a phase before it starts.
func (p *Printer) PhaseHeader(index, total int, name string) {
	fmt.Fprintf(p.w, "%s %s\n", p.muted.Render(fmt.Sprintf("[%d/%d]", index, total)), p.header.Render("==> "+name))
}

// Skipped notes a phase that did not run.
func (p *Printer) Skipped(name, reason string) {
	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf("--- %s skipped (%s)", name, reason)))
}

// Warning prints a non-fatal notice.
func (p *Printer) Warning(msg string) {
	fmt.Fprintln(p.w, p.warning.Render("! "+msg))
}

// Done closes a successful run.
func (p *Printer) Done(completed, skipped int, elapsed time.Duration) {
	fmt.Fprintln(p.w, p.success.Render(fmt.Sprintf("✓ %d phases completed, %d skipped in %s", completed, skipped, elapsed.Round(time.Second))))
}

// Fatal prints err as a single delimited block.
func (p *Printer) Fatal(err error, exitCode int) {
	body := p.errHead.Render(fmt.Sprintf("bootstrap failed (exit %d)", exitCode)) + "\n" + strings.TrimSpace(err.Error())
	fmt.Fprintln(p.w, p.errBox.Render(body))
}
