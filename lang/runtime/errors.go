package runtime

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// RuntimeError is raised by a failed built-in operation: a type mismatch, an
// out-of-bounds index, division by zero, an unresolved field, and so on.
type RuntimeError struct {
	Pos     token.Position
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Pos.Source != "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// DieError is raised by an explicit `die expr` / `throw expr` statement. It
// carries the Value the script died with, which a host-level try/catch (or
// the top-level Execute caller) can inspect.
type DieError struct {
	Pos   token.Position
	Value Value
}

func (e DieError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Value.String())
}

// CancelledError is raised when a script's step budget (MaxSteps) is
// exceeded or its context is cancelled. It is
// never recoverable with a script-level try/catch: once raised, Execute and
// Resume must both return it without attempting further evaluation.
type CancelledError struct {
	Reason string
}

func (e CancelledError) Error() string { return "execution cancelled: " + e.Reason }
