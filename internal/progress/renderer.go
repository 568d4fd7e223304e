// internal/progress/renderer.go
// Package: progress

// Package progress displays a run while it is being measured. The terminal
// renderer drives a Bubble Tea model directly from the runner's callbacks and
// repaints in place; it keeps no goroutine of its own.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"

	"github.com/mwiater/opsbench/internal/bench"
)

// Formatter renders a finished result as one line. A nil Formatter prints nothing.
type Formatter func(bench.Result) string

// Renderer observes a run. Start must be called before the run and Stop after it.
type Renderer interface {
	bench.Observer
	Start()
	Stop() error
}

// New picks the terminal renderer when out is a terminal and progress is
// enabled, and the plain renderer otherwise.
func New(out *os.File, total int, enabled bool, format Formatter) Renderer {
	if enabled && IsTerminal(out) {
		return NewTeaRenderer(out, total, format)
	}
	return NewPlainRenderer(out, format)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TeaRenderer draws a spinner and a progress bar for the current workload and
// prints each result line in its place. The model is updated and repainted
// synchronously inside the observer callbacks, which the runner calls only
// outside timed regions; no goroutine or timer runs between them.
type TeaRenderer struct {
	out    io.Writer
	model  *model
	format Formatter

	// painted is the number of lines of the last view still on screen.
	painted int
}

// NewTeaRenderer returns a renderer writing to out.
func NewTeaRenderer(out io.Writer, total int, format Formatter) *TeaRenderer {
	return &TeaRenderer{out: out, model: newModel(total), format: format}
}

// Start sizes the progress bar to the terminal, when out is one.
func (r *TeaRenderer) Start() {
	f, ok := r.out.(*os.File)
	if !ok {
		return
	}
	if width, height, err := term.GetSize(f.Fd()); err == nil {
		r.model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	}
}

// Started implements bench.Observer.
func (r *TeaRenderer) Started(w bench.Workload) {
	r.model.Update(startedMsg{name: w.Name, samples: w.Options.Samples})
	r.repaint()
}

// Progress implements bench.ProgressSink.
func (r *TeaRenderer) Progress(p bench.Progress) {
	r.model.Update(progressMsg(p))
	r.repaint()
}

// Finished implements bench.Observer. The result line replaces the progress view.
func (r *TeaRenderer) Finished(res bench.Result) {
	r.model.Update(finishedMsg{})
	r.erase()
	if r.format != nil {
		fmt.Fprintln(r.out, r.format(res))
	}
}

// Stop clears whatever progress view is left, e.g. after a failed workload.
func (r *TeaRenderer) Stop() error {
	r.erase()
	return nil
}

func (r *TeaRenderer) repaint() {
	r.erase()
	view := r.model.View()
	io.WriteString(r.out, view)
	r.painted = strings.Count(view, "\n")
}

// erase moves the cursor back over the painted view, clearing each line.
func (r *TeaRenderer) erase() {
	for ; r.painted > 0; r.painted-- {
		io.WriteString(r.out, ansi.CursorUp(1)+"\r"+ansi.EraseEntireLine)
	}
}

// PlainRenderer prints result lines only.
type PlainRenderer struct {
	out    io.Writer
	format Formatter
}

// NewPlainRenderer returns a renderer writing result lines to out.
func NewPlainRenderer(out io.Writer, format Formatter) *PlainRenderer {
	return &PlainRenderer{out: out, format: format}
}

func (r *PlainRenderer) Start()                  {}
func (r *PlainRenderer) Stop() error             { return nil }
func (r *PlainRenderer) Started(bench.Workload)  {}
func (r *PlainRenderer) Progress(bench.Progress) {}

// Finished writes the formatted result.
func (r *PlainRenderer) Finished(res bench.Result) {
	if r.format == nil {
		return
	}
	fmt.Fprintln(r.out, r.format(res))
}
