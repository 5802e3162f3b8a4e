package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/text/width"

	verr "github.com/astirlang/astir/error"
)

// RenderDiagnostic prints one SpecError against its source, in the style of
// a source snippet with a caret under the offending column, colorized via
// pterm the way an interactive REPL reports its own errors.
func RenderDiagnostic(w io.Writer, src string, se *verr.SpecError) {
	pterm.Error.WithWriter(w).Println(se.Error())

	if se.Pos.Row <= 0 {
		return
	}
	lines := strings.Split(src, "\n")
	if se.Pos.Row > len(lines) {
		return
	}
	line := lines[se.Pos.Row-1]
	fmt.Fprintf(w, "  %s\n", line)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", caretOffset(line, se.Pos.Col-1)), pterm.FgRed.Sprint("^"))
}

// RenderDiagnostics prints every error in a SpecErrors slice in order.
func RenderDiagnostics(w io.Writer, src string, errs verr.SpecErrors) {
	for _, se := range errs {
		RenderDiagnostic(w, src, se)
	}
}

// caretOffset returns the on-screen column a caret must be printed at to
// land under the byte offset col in line, accounting for any East Asian
// wide runes preceding it so a multi-byte-wide grammar identifier doesn't
// throw off the alignment.
func caretOffset(line string, col int) int {
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	offset := 0
	for _, r := range line[:col] {
		if isWideRune(r) {
			offset += 2
		} else {
			offset++
		}
	}
	return offset
}

func isWideRune(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
