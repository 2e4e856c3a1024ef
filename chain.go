package execlog

import (
	stderrs "errors"
	"fmt"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// Kind is a reporting tag derived from an error's message.
type Kind string

const (
	KindSimulated   Kind = "SimulatedError"
	KindOperational Kind = "OperationalError"
)

const simulatedMarker = "simulated"

// Classify tags err as KindSimulated when its message mentions "simulated"
// and KindOperational otherwise. A nil error has no kind.
func Classify(err error) Kind {
	if err == nil {
		return emptyString
	}
	msg := err.Error()
	if e, ok := err.(*ErrorRecord); ok {
		msg = e.Message()
	}
	if strings.Contains(msg, simulatedMarker) {
		return KindSimulated
	}
	return KindOperational
}

// ErrorRecord is a domain error that remembers where it was constructed and,
// optionally, the lower-level error it wraps.
type ErrorRecord struct {
	msg      string
	cause    error
	severity Severity
	frame    Frame
	located  bool
}

var (
	_ error  = (*ErrorRecord)(nil)
	_ Tracer = (*ErrorRecord)(nil)
)

// New returns an error-severity *ErrorRecord located at the caller.
func New(msg string) *ErrorRecord {
	return newAt(msg, nil, 2)
}

// Newf is New with fmt.Sprintf formatting.
func Newf(format string, args ...any) *ErrorRecord {
	return newAt(fmt.Sprintf(format, args...), nil, 2)
}

// Wrap returns a higher-level error labelled label whose cause is err. The
// original error stays reachable through Cause, Unwrap and Root.
func Wrap(err error, label string) *ErrorRecord {
	return newAt(label, err, 2)
}

// Wrapf is Wrap with fmt.Sprintf formatting of the label.
func Wrapf(err error, format string, args ...any) *ErrorRecord {
	return newAt(fmt.Sprintf(format, args...), err, 2)
}

func newAt(msg string, cause error, skip int) *ErrorRecord {
	e := &ErrorRecord{msg: msg, cause: cause, severity: Error}
	e.frame, e.located = captureFrame(skip)
	return e
}

// newLocated builds an *ErrorRecord pinned to an explicit frame.
func newLocated(msg string, cause error, f Frame, ok bool) *ErrorRecord {
	return &ErrorRecord{msg: msg, cause: cause, severity: Error, frame: f, located: ok}
}

// Error joins the message with its cause's, outermost first.
func (e *ErrorRecord) Error() string {
	if e == nil {
		return emptyString
	}
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Message returns the error's own message without its causes.
func (e *ErrorRecord) Message() string {
	if e == nil {
		return emptyString
	}
	return e.msg
}

// Cause returns the immediate lower-level error, or nil.
func (e *ErrorRecord) Cause() error {
	if e == nil || e.cause == nil {
		return nil
	}
	return e.cause
}

// Unwrap lets errors.Is and errors.As see the cause.
func (e *ErrorRecord) Unwrap() error {
	return e.Cause()
}

// Root returns the deepest error in the chain; e itself when it has no cause.
func (e *ErrorRecord) Root() error {
	if e == nil {
		return nil
	}
	return RootCause(e)
}

// Severity returns the severity the error should be reported at.
func (e *ErrorRecord) Severity() Severity {
	if e == nil {
		return Error
	}
	return e.severity
}

// WithSeverity sets the reporting severity and returns e.
func (e *ErrorRecord) WithSeverity(s Severity) *ErrorRecord {
	if e != nil && s.Valid() {
		e.severity = s
	}
	return e
}

// Kind classifies the error by its own message.
func (e *ErrorRecord) Kind() Kind {
	return Classify(e)
}

// Frames returns the construction frame, if one was captured.
func (e *ErrorRecord) Frames() []Frame {
	if e == nil || !e.located {
		return nil
	}
	return []Frame{e.frame}
}

type causer interface {
	Cause() error
}

// unwrapChain returns err followed by each of its causes, outermost first.
//
// Station-Manager DetailedError links are followed through Cause(), then any
// other Cause() implementation (this package, pkg/errors), then the stdlib
// Unwrap. A DetailedError found deeper in the chain is only treated as such
// when the walk reaches it. Traversal stops at maxChainDepth and on a
// repeated error value.
func unwrapChain(err error) []error {
	var chain []error
	seen := map[error]bool{}

	for err != nil && len(chain) < maxChainDepth {
		if hashable(err) {
			if seen[err] {
				break
			}
			seen[err] = true
		}
		chain = append(chain, err)

		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil && sameError(dErr, err) {
			if next := dErr.Cause(); next != nil {
				err = next
				continue
			}
			break
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		err = stderrs.Unwrap(err)
	}
	return chain
}

// hashable reports whether err can be used as a map key without panicking.
func hashable(err error) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = map[error]bool{err: true}
	return true
}

// sameError compares two error values, treating uncomparable dynamic types as distinct.
func sameError(a, b error) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// RootCause follows the causal chain of err to its end.
func RootCause(err error) error {
	chain := unwrapChain(err)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages (each link's own message)
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	for _, link := range unwrapChain(err) {
		var msg, op string
		switch e := link.(type) {
		case *ErrorRecord:
			msg = e.Message()
		default:
			msg = link.Error()
		}
		if dErr, ok := smerrors.AsDetailedError(link); ok && dErr != nil && sameError(dErr, link) {
			msg = dErr.Error()
			op = string(dErr.Op())
		}
		chain = append(chain, msg)
		ops = append(ops, op)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}
