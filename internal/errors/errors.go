// Package errors formats the driver's user-facing diagnostics: a
// message, a source position, and (when source text is available) a
// caret pointing at the offending column. Grounded on
// CWBudde-go-dws/internal/errors/errors.go's CompilerError, generalized
// from that package's lexer.Position to this system's pkg/token.Position.
package errors

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/matthew-healy/uplp/pkg/token"
)

// CompilerError is a single diagnostic from any pipeline stage (lex,
// parse, scope check, type check): a message anchored at a source
// position, with the option to render the offending line and a caret
// under it when source text is available.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// NewCompilerError builds a CompilerError.
func NewCompilerError(pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

func (e *CompilerError) Error() string { return e.Format() }

// Format renders the error with a file:line:column header and, if
// Source is set, the offending line with a caret under Pos.Column.
func (e *CompilerError) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s\n", e.File, e.Pos.Line, e.Pos.Column, e.Message)
	} else {
		fmt.Fprintf(&sb, "%d:%d: %s\n", e.Pos.Line, e.Pos.Column, e.Message)
	}

	line := e.sourceLine(e.Pos.Line)
	if line == "" {
		return strings.TrimRight(sb.String(), "\n")
	}

	lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
	sb.WriteString(lineNumStr)
	sb.WriteString(line)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", len(lineNumStr)))
	sb.WriteString(strings.Repeat(" ", runePrefixWidth(line, e.Pos.Column-1)))
	sb.WriteString("^")

	return sb.String()
}

// runePrefixWidth sums the terminal display width of the first n runes of
// line: 2 columns for runes x/text/width classifies as East Asian wide or
// fullwidth, 1 otherwise. token.Position's Column counts code points, which
// undercounts the caret offset whenever the line contains wide CJK text, so
// the lexer leaves column accounting to here rather than to itself (see
// internal/lexer's doc comment).
func runePrefixWidth(line string, n int) int {
	w := 0
	i := 0
	for _, r := range line {
		if i >= n {
			break
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
		i++
	}
	return w
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of errors, numbering them when there is more
// than one.
func FormatAll(errs []*CompilerError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&sb, "[%d/%d] %s", i+1, len(errs), err.Format())
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
