package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// colorLevelOnce/colorLevelVal cache, for the whole process, whether the
// first writer passed to PrettyError supports ANSI color, using the same
// NO_COLOR/TERM=dumb/isatty checks a terminal-aware CLI runs once at
// startup rather than on every line printed.
var (
	colorLevelOnce sync.Once
	colorLevelVal  bool
)

func detectColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func supportsColor(w io.Writer) bool {
	colorLevelOnce.Do(func() { colorLevelVal = detectColor(w) })
	return colorLevelVal
}

const (
	ansiRed    = "\033[31m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiReset  = "\033[0m"
	ansiCyan   = "\033[36m"
)

func wrap(color, s string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + ansiReset
}

// PrettyError renders one Error as a multi-line, human-facing diagnostic:
// a bold file:line:col header, the kind in dim, and, when the location
// carries source text, a caret line pointing at the offending span.
// Output is plain text when the first writer any PrettyError call received
// was not a color-capable terminal; that decision is made once per process
// and reused for every later w.
func PrettyError(w io.Writer, e *Error) string {
	color := supportsColor(w)
	var b strings.Builder

	loc := e.Location
	pos := fmt.Sprintf("%s:%d:%d", loc.File, loc.Start.Line, loc.Start.Column)
	fmt.Fprintf(&b, "%s %s %s\n", wrap(ansiBold, pos, color), wrap(ansiRed, e.Message, color), wrap(ansiDim, "["+string(e.Kind)+"]", color))

	if loc.Source != "" {
		line := sourceLine(loc.Source, loc.Start.Line)
		if line != "" {
			fmt.Fprintf(&b, "  %s\n", line)
			width := loc.End.Column - loc.Start.Column
			if width < 1 {
				width = 1
			}
			caret := strings.Repeat(" ", loc.Start.Column-1) + strings.Repeat("^", width)
			fmt.Fprintf(&b, "  %s\n", wrap(ansiCyan, caret, color))
		}
	}
	return b.String()
}

// sourceLine returns line n (1-indexed) of src, or "" if out of range.
func sourceLine(src string, n int) string {
	lines := strings.Split(src, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// PrintErrors writes every error in errs to w via PrettyError, in order.
func PrintErrors(w io.Writer, errs Errors) {
	for _, e := range errs {
		fmt.Fprint(w, PrettyError(w, e))
	}
}
