package token

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Error is a single compile-time diagnostic (SyntaxError or ResolveError),
// carrying the exact position required by spec: every location is reported
// as "file:line:col: message", mirroring go/scanner.Error's shape.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string {
	if !e.Pos.Valid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList collects every Error produced during a single compile so that
// compile-time errors can be returned as a list rather than aborting on the
// first one. It implements error and Unwrap() []error so callers can use
// errors.Is/As/Join-style inspection.
type ErrorList []Error

// Add appends a new diagnostic at the given position.
func (l *ErrorList) Add(pos Position, msg string) {
	*l = append(*l, Error{Pos: pos, Msg: msg})
}

// Addf is Add with fmt.Sprintf-style formatting.
func (l *ErrorList) Addf(pos Position, format string, args ...interface{}) {
	l.Add(pos, fmt.Sprintf(format, args...))
}

// Sort orders the diagnostics by source name, then line, then column, so
// output is deterministic regardless of the order passes discovered them in.
func (l ErrorList) Sort() {
	slices.SortFunc(l, func(a, b Error) int {
		if c := strings.Compare(a.Pos.Source, b.Pos.Source); c != 0 {
			return c
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line - b.Pos.Line
		}
		return a.Pos.Col - b.Pos.Col
	})
}

// Err returns nil if the list is empty, otherwise it returns the list itself
// as an error.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more error", l[0], len(l)-1)
	if len(l) > 2 {
		sb.WriteByte('s')
	}
	sb.WriteByte(')')
	return sb.String()
}

// Unwrap exposes each collected Error individually, allowing errors.Is/As to
// traverse the list as the standard library's multi-error conventions do.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// PrintError formats a single diagnostic as "file:line:col: message" plus a
// caret line pointing at the offending column.
func PrintError(err error, src *Source) string {
	var sb strings.Builder
	printOne := func(e Error) {
		fmt.Fprintln(&sb, e.Error())
		if src != nil && e.Pos.Valid() {
			line := src.Line(e.Pos.Line)
			if line != nil {
				sb.Write(line)
				sb.WriteByte('\n')
				col := e.Pos.Col
				if col > len(line)+1 {
					col = len(line) + 1
				}
				if col > 0 {
					sb.WriteString(strings.Repeat(" ", col-1))
				}
				sb.WriteString("^\n")
			}
		}
	}
	if list, ok := err.(ErrorList); ok {
		for _, e := range list {
			printOne(e)
		}
		return sb.String()
	}
	if e, ok := err.(Error); ok {
		printOne(e)
		return sb.String()
	}
	fmt.Fprintln(&sb, err.Error())
	return sb.String()
}
