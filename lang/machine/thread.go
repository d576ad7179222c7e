package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

// AsyncCall is what the evaluator hands off to the driving goroutine when it
// reaches a call site the resolver marked async: the host function name and
// its already-evaluated arguments. The embedder is expected to perform the
// real (potentially slow, potentially out-of-process) work and hand the
// result back through Thread.Resume.
type AsyncCall struct {
	Name string
	Args []runtime.Value
}

// Suspension is returned by Execute/Resume in place of a final result when
// the script paused on an AsyncCall. It is a single-use token: exactly one
// Resume call may be made against it.
type Suspension struct {
	th      *Thread
	Pending AsyncCall
}

type asyncResume struct {
	value runtime.Value
	err   error
}

type evalOutcome struct {
	value runtime.Value
	err   error
}

// Thread is one independent execution of a script: its own reified call
// stack, I/O streams, resource limits and cancellation state. A Thread is
// single-shot: once RunProgram/Execute has returned a final result (not a
// Suspension), it must not be reused.
type Thread struct {
	Name string

	// Host resolves any name the resolver left as ast.ScopeGlobal: builtin
	// functions and methods a runtime.Value doesn't implement itself. nil
	// means no host bindings are available (every such call fails).
	Host Host

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of statements/expressions evaluated before
	// the thread cancels itself with a CancelledError. <= 0 means no limit.
	MaxSteps int

	// MaxCallStackDepth bounds the depth of the reified Frame stack. <= 0
	// means no limit.
	MaxCallStackDepth int

	callStack []*Frame
	cancelled atomic.Bool
	steps     uint64
	maxSteps  uint64

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	reqCh    chan AsyncCall
	resumeCh chan asyncResume
	doneCh   chan evalOutcome
	started  bool

	// lastMatch holds the whole-match (index 0) and capture groups (index
	// 1, 2, ...) of the most recently evaluated RegexMatch, read by $0, $1,
	// $2, ... expressions. regexPos tracks, per global (/g) RegexMatch
	// node, the byte offset the next match should resume from, so a while
	// loop over the same node walks forward through repeated matches
	// instead of matching the same occurrence forever.
	lastMatch []string
	regexPos  map[*ast.RegexMatch]int
}

// captureGroup returns capture group i of the most recent regex match, or
// null if there was no match or the group didn't participate in it.
func (th *Thread) captureGroup(i int) runtime.Value {
	if i < 0 || i >= len(th.lastMatch) {
		return runtime.TheNull
	}
	return runtime.Str(th.lastMatch[i])
}

// setLastMatch records the groups of a match of s located by loc, a
// (start,end) index pair per group as returned by
// regexp.Regexp.FindStringSubmatchIndex.
func (th *Thread) setLastMatch(s string, loc []int) {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	th.lastMatch = groups
}

func (th *Thread) init() {
	if th.started {
		return
	}
	th.started = true
	if th.MaxSteps <= 0 {
		th.maxSteps--
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	th.stdout = th.Stdout
	if th.stdout == nil {
		th.stdout = os.Stdout
	}
	th.stderr = th.Stderr
	if th.stderr == nil {
		th.stderr = os.Stderr
	}
	th.stdin = th.Stdin
	if th.stdin == nil {
		th.stdin = os.Stdin
	}
	th.reqCh = make(chan AsyncCall)
	th.resumeCh = make(chan asyncResume)
	th.doneCh = make(chan evalOutcome, 1)
}

func (th *Thread) pushFrame(fr *Frame) error {
	if th.MaxCallStackDepth > 0 && len(th.callStack) >= th.MaxCallStackDepth {
		return fmt.Errorf("call stack depth exceeded (%d)", th.MaxCallStackDepth)
	}
	th.callStack = append(th.callStack, fr)
	return nil
}

func (th *Thread) popFrame() { th.callStack = th.callStack[:len(th.callStack)-1] }

func (th *Thread) tick() error {
	th.steps++
	if th.cancelled.Load() {
		return runtime.CancelledError{Reason: "context cancelled"}
	}
	if th.steps > th.maxSteps {
		th.cancelled.Store(true)
		return runtime.CancelledError{Reason: "max step count exceeded"}
	}
	return nil
}

// Execute begins running fn(args...) on a fresh goroutine that becomes this
// Thread's continuation: the goroutine parks on an internal channel the
// instant the script suspends, and Resume wakes it back up. Execute and
// Resume never return concurrently; each hands control back and forth
// exactly once per round trip.
func (th *Thread) Execute(ctx context.Context, fn *runtime.Function, args []runtime.Value) (runtime.Value, *Suspension, error) {
	th.init()
	e := &evaluator{th: th, host: th.Host}
	go func() {
		v, err := e.callFunction(fn, args)
		th.doneCh <- evalOutcome{v, err}
	}()
	return th.wait(ctx)
}

// Resume hands result (or err, if the embedder's async operation failed)
// back to the parked goroutine behind susp and waits for the next
// suspension or final outcome.
func (th *Thread) Resume(ctx context.Context, susp *Suspension, result runtime.Value, err error) (runtime.Value, *Suspension, error) {
	susp.th.resumeCh <- asyncResume{result, err}
	return susp.th.wait(ctx)
}

func (th *Thread) wait(ctx context.Context) (runtime.Value, *Suspension, error) {
	select {
	case call := <-th.reqCh:
		return nil, &Suspension{th: th, Pending: call}, nil
	case out := <-th.doneCh:
		return out.value, nil, out.err
	case <-ctx.Done():
		th.cancelled.Store(true)
		return nil, nil, ctx.Err()
	}
}

// suspendAndAwait is called by the evaluator from inside the execution
// goroutine when it reaches an async call site; it blocks until Resume
// supplies a value, which becomes this call's result.
func (th *Thread) suspendAndAwait(call AsyncCall) (runtime.Value, error) {
	th.reqCh <- call
	r := <-th.resumeCh
	return r.value, r.err
}
