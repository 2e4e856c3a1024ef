package execlog

import (
	"runtime"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// SourceLocation is the resolved origin of an event. File is relative to the
// project root and uses forward slashes; an empty File or a zero Line renders
// as the UnknownFile/UnknownLine sentinel.
type SourceLocation struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// UnknownLocation is the sentinel used whenever attribution is not possible.
func UnknownLocation() SourceLocation {
	return SourceLocation{}
}

// Known reports whether both file and line were resolved.
func (l SourceLocation) Known() bool {
	return l.File != emptyString && l.Line > 0
}

// FileString returns the file or UnknownFile.
func (l SourceLocation) FileString() string {
	if l.File == emptyString {
		return UnknownFile
	}
	return l.File
}

// LineString returns the line number or UnknownLine.
func (l SourceLocation) LineString() string {
	if l.Line <= 0 {
		return UnknownLine
	}
	return strconv.Itoa(l.Line)
}

func (l SourceLocation) String() string {
	return l.FileString() + ":" + l.LineString()
}

// Frame is a raw, unresolved call-site as captured at raise time.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Tracer is implemented by errors that carry the frames captured where they
// were raised, innermost first.
type Tracer interface {
	Frames() []Frame
}

// stackTracer mirrors the interface pkg/errors values satisfy.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// captureFrame records the frame skip levels above its caller.
func captureFrame(skip int) (Frame, bool) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{}, false
	}
	f := Frame{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		f.Function = fn.Name()
	}
	return f, true
}

// panicFrame returns the frame that raised the panic currently being
// recovered. It must be called from within the deferred recover function.
func panicFrame() (Frame, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	afterPanic := false
	for {
		fr, more := frames.Next()
		if fr.Function == "runtime.gopanic" {
			afterPanic = true
		} else if afterPanic && !strings.HasPrefix(fr.Function, "runtime.") {
			return Frame{Function: fr.Function, File: fr.File, Line: fr.Line}, true
		}
		if !more {
			break
		}
	}
	return Frame{}, false
}

// framesOf extracts captured frames from err without walking its causes.
func framesOf(err error) []Frame {
	switch e := err.(type) {
	case Tracer:
		return e.Frames()
	case stackTracer:
		st := e.StackTrace()
		out := make([]Frame, 0, len(st))
		for _, f := range st {
			pc := uintptr(f) - 1
			fn := runtime.FuncForPC(pc)
			if fn == nil {
				continue
			}
			file, line := fn.FileLine(pc)
			out = append(out, Frame{Function: fn.Name(), File: file, Line: line})
		}
		return out
	default:
		return nil
	}
}

// Resolver turns errors into project-relative SourceLocations.
type Resolver struct {
	root   string
	prefix string
}

// NewResolver builds a Resolver that trims projectRoot from resolved paths.
// An empty projectRoot leaves every file unresolvable.
func NewResolver(projectRoot string) *Resolver {
	root := normalizePath(projectRoot)
	r := &Resolver{}
	if root == emptyString {
		return r
	}
	if root == "/" {
		r.root, r.prefix = root, root
		return r
	}
	r.root = strings.TrimSuffix(root, "/")
	r.prefix = r.root + "/"
	return r
}

// Root returns the normalised project root without a trailing slash.
func (r *Resolver) Root() string {
	if r == nil {
		return emptyString
	}
	return r.root
}

// Resolve attributes err to the place its root cause was raised. Errors with
// no captured frames resolve to UnknownLocation. When the root itself carries
// no frames, the deepest cause that does is used.
func (r *Resolver) Resolve(err error) SourceLocation {
	if err == nil {
		return UnknownLocation()
	}
	chain := unwrapChain(err)
	for i := len(chain) - 1; i >= 0; i-- {
		frames := framesOf(chain[i])
		if len(frames) == 0 {
			continue
		}
		return r.locate(frames[0])
	}
	return UnknownLocation()
}

func (r *Resolver) locate(f Frame) SourceLocation {
	loc := SourceLocation{Line: f.Line}
	if f.Line < 0 {
		loc.Line = 0
	}
	if rel, ok := r.Relative(f.File); ok {
		loc.File = rel
	}
	return loc
}

// Relative returns path relative to the project root. It reports false when
// path does not live under the root.
func (r *Resolver) Relative(path string) (string, bool) {
	if r == nil || r.prefix == emptyString {
		return emptyString, false
	}
	p := normalizePath(path)
	if !strings.HasPrefix(p, r.prefix) {
		return emptyString, false
	}
	rel := strings.TrimPrefix(p, r.prefix)
	if rel == emptyString {
		return emptyString, false
	}
	return rel, true
}

// normalizePath converts separators to forward slashes and strips a file:// scheme.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(p, fileURIScheme)
	return p
}
