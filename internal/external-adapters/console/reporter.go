// Package console renders the run report on a terminal or plain writer.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Reporter implements interfaces.Reporter.
// Banners are cyan, PASS is green and FAIL and failure notices are red when
// color output is enabled.
type Reporter struct {
	writer io.Writer
	mutex  sync.Mutex

	banner *color.Color
	pass   *color.Color
	fail   *color.Color
}

// NewReporter creates a Reporter writing to w. Color is used only when w is a
// terminal, NO_COLOR is unset and noColor is false.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		writer: w,
		banner: color.New(color.FgCyan, color.Bold),
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgRed, color.Bold),
	}

	useColor := !noColor && isTerminal(w)
	for _, c := range []*color.Color{r.banner, r.pass, r.fail} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// isTerminal reports whether w is a TTY that should receive color
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor && (f == os.Stdout || f == os.Stderr) {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StageStarted prints the opening banner, underlined to the header's width
func (r *Reporter) StageStarted(stage string) {
	header := "Running stage " + stage
	r.write(r.banner.Sprint(header) + "\n" +
		r.banner.Sprint(strings.Repeat("=", len(header))) + "\n\n")
}

// StageFinished prints the closing banner, ruled to the footer's width
func (r *Reporter) StageFinished(stage string) {
	footer := "Finished stage " + stage
	r.write("\n" + r.banner.Sprint(strings.Repeat("-", len(footer))) + "\n" +
		r.banner.Sprint(footer) + "\n\n")
}

// StageFailed prints the failure notice for a stage
func (r *Reporter) StageFailed(stage string) {
	r.write(r.fail.Sprintf("!!! Stage %s failed !!!", stage) + "\n")
}

// RunFailed prints the summary failure notice
func (r *Reporter) RunFailed() {
	r.write(r.fail.Sprint("!!! One or more test stages failed !!!") + "\n")
}

// Pass prints a PASS verdict
func (r *Reporter) Pass(format string, args ...interface{}) {
	r.write(r.pass.Sprint("PASS:") + " " + fmt.Sprintf(format, args...) + "\n")
}

// Fail prints a FAIL verdict
func (r *Reporter) Fail(format string, args ...interface{}) {
	r.write(r.fail.Sprint("FAIL:") + " " + fmt.Sprintf(format, args...) + "\n")
}

// Printf prints a plain line
func (r *Reporter) Printf(format string, args ...interface{}) {
	r.write(fmt.Sprintf(format, args...) + "\n")
}

// Raw prints tool output as captured
func (r *Reporter) Raw(output string) {
	if output == "" {
		return
	}
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	r.write(output)
}

func (r *Reporter) write(s string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	_, _ = io.WriteString(r.writer, s)
}
