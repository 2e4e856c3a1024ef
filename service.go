package execlog

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Logger is the surface application code and the guard helpers depend on.
type Logger interface {
	LogSuccess(message string, err error)
	LogWarn(message string, err error)
	LogError(message string, err error)
	Flush() error
}

// State is the Service flush state.
type State int32

const (
	StateIdle State = iota
	StateFlushing
)

func (s State) String() string {
	if s == StateFlushing {
		return "flushing"
	}
	return "idle"
}

// Service is the pipeline orchestrator. Construct one per logical run and
// pass it to whoever logs; it owns the only Buffer for that run.
//
// Sink and Console are optional: a FileSink under Config.LogDir and stderr
// are used when they are nil.
type Service struct {
	WorkingDir string
	Config     *Config
	Sink       Sink
	Console    io.Writer

	resolver *Resolver
	buffer   Buffer
	console  atomic.Pointer[zerolog.Logger]
	runID    string
	clock    func() time.Time
	logDir   string

	// writeMu keeps buffer order and line-stream order identical.
	writeMu sync.Mutex
	flushMu sync.Mutex

	state         atomic.Int32
	reporting     atomic.Bool
	isInitialized atomic.Bool
	isClosed      atomic.Bool
	initOnce      sync.Once
	initErr       error
}

var _ Logger = (*Service)(nil)

// NewService returns a Service for cfg; call Initialize before use or let the
// first log call do it.
func NewService(cfg *Config) *Service {
	return &Service{Config: cfg}
}

// Initialize validates the config and opens the sinks. It runs once; later
// calls return the first result.
func (s *Service) Initialize() error {
	const op smerrors.Op = "execlog.Service.Initialize"
	if s == nil {
		return smerrors.New(op).Msg(errMsgNilService)
	}
	s.initOnce.Do(func() {
		s.initErr = s.initialize()
	})
	return s.initErr
}

func (s *Service) initialize() error {
	const op smerrors.Op = "execlog.Service.initialize"

	if s.Config == nil {
		s.Config = DefaultConfig()
	}
	if err := validateConfig(s.Config); err != nil {
		return err
	}
	minSeverity, _ := ParseSeverity(s.Config.Level)

	if s.WorkingDir == emptyString {
		wd, err := os.Getwd()
		if err != nil {
			return smerrors.New(op).Err(err).Msg(errMsgWorkingDir)
		}
		s.WorkingDir = wd
	}

	root := s.Config.ProjectRoot
	if root == emptyString {
		root = s.WorkingDir
	}
	s.resolver = NewResolver(root)

	s.logDir = s.Config.LogDir
	if !filepath.IsAbs(s.logDir) {
		s.logDir = filepath.Join(s.WorkingDir, s.logDir)
	}

	s.runID = uuid.NewString()
	if s.clock == nil {
		s.clock = time.Now
	}

	if s.Sink == nil {
		sink, err := NewFileSink(FileSinkConfig{
			Dir:         s.logDir,
			MinSeverity: minSeverity,
			MaxSizeMB:   s.Config.MaxFileSizeMB,
			RunID:       s.runID,
		})
		if err != nil {
			return smerrors.New(op).Err(err).Msg(errMsgSinkOpen)
		}
		s.Sink = sink
	}

	if !s.Config.production() {
		l := newConsoleLogger(s.Console, s.Config)
		s.console.Store(&l)
	}

	s.isInitialized.Store(true)
	return nil
}

// ready lazily initialises the service and reports whether it can log.
func (s *Service) ready() bool {
	if s == nil || s.isClosed.Load() {
		return false
	}
	if !s.isInitialized.Load() {
		if err := s.Initialize(); err != nil {
			return false
		}
	}
	return s.isInitialized.Load()
}

// Close releases the sink. Pending entries are not flushed. It's safe to call
// Close multiple times.
func (s *Service) Close() error {
	if s == nil || !s.isInitialized.Load() {
		return nil
	}
	if !s.isClosed.CompareAndSwap(false, true) {
		return nil
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.isInitialized.Store(false)
	s.console.Store(nil)
	return s.Sink.Close()
}

// RunID identifies this Service's run in line records and snapshots.
func (s *Service) RunID() string {
	if s == nil {
		return emptyString
	}
	return s.runID
}

// LogDir returns the resolved log directory.
func (s *Service) LogDir() string {
	if s == nil {
		return emptyString
	}
	return s.logDir
}

// LogSuccess records a success-severity event. err is optional and only used
// for attribution.
func (s *Service) LogSuccess(message string, err error) {
	s.Log(Success, message, err)
}

// LogWarn records a warning-severity event.
func (s *Service) LogWarn(message string, err error) {
	s.Log(Warning, message, err)
}

// LogError records an error-severity event attributed to err's root cause.
func (s *Service) LogError(message string, err error) {
	s.Log(Error, message, err)
}

// Report logs err at its own severity (Error unless it is an *ErrorRecord with
// another severity) using err's message.
func (s *Service) Report(err error) {
	if err == nil {
		return
	}
	sev := Error
	if e, ok := err.(*ErrorRecord); ok {
		sev = e.Severity()
	}
	s.Log(sev, err.Error(), err)
}

// Log resolves, formats, buffers and line-writes one event. It never fails;
// an uninitialisable or closed service drops the event.
func (s *Service) Log(sev Severity, message string, err error) {
	if !sev.Valid() || !s.ready() {
		return
	}
	e := NewEntry(sev, message, s.resolver.Resolve(err), err, s.clock())

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed.Load() {
		return
	}
	s.buffer.Append(e)
	s.Sink.AppendLine(e)
	mirror(s.console.Load(), e)
}

// Pending returns the number of buffered entries per severity.
func (s *Service) Pending() map[Severity]int {
	if s == nil {
		return map[Severity]int{}
	}
	return s.buffer.Counts()
}

// Entries returns a copy of the buffered entries.
func (s *Service) Entries() Batch {
	if s == nil {
		return Batch{}
	}
	return s.buffer.Snapshot()
}

// State reports whether a flush is in flight.
func (s *Service) State() State {
	if s == nil {
		return StateIdle
	}
	return State(s.state.Load())
}

// Flush writes the buffer to the snapshot sink and, only when that succeeds,
// removes the written entries. On failure every entry is kept, the failure is
// reported on the line streams and returned.
func (s *Service) Flush() error {
	const op smerrors.Op = "execlog.Service.Flush"
	if s == nil {
		return smerrors.New(op).Msg(errMsgNilService)
	}
	if s.isClosed.Load() {
		return smerrors.New(op).Msg(errMsgClosed)
	}
	if err := s.Initialize(); err != nil {
		return err
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.isClosed.Load() {
		return smerrors.New(op).Msg(errMsgClosed)
	}

	s.state.Store(int32(StateFlushing))
	defer s.state.Store(int32(StateIdle))

	batch := s.buffer.Snapshot()
	if err := s.Sink.WriteSnapshot(s.snapshot(batch)); err != nil {
		failure := smerrors.New(op).Err(err).Msg(errMsgSnapshotFailed)
		s.reportSinkFailure(failure)
		return failure
	}
	s.buffer.Discard(batch)
	return nil
}

func (s *Service) snapshot(batch Batch) Snapshot {
	successful := make([]Entry, 0, len(batch[Success])+len(batch[Warning]))
	successful = append(successful, batch[Success]...)
	successful = append(successful, batch[Warning]...)

	errs := batch[Error]
	if errs == nil {
		errs = []Entry{}
	}

	return Snapshot{
		Summary: Summary{
			HourMinutes: s.clock().Local().Format(summaryLayout),
			File:        projectFileURI(s.resolver.Root()),
			Run:         s.runID,
			Count:       batch.Len(),
		},
		Errors:     errs,
		Successful: successful,
	}
}

// projectFileURI renders root as file://<root>/ with exactly one trailing slash.
func projectFileURI(root string) string {
	root = strings.TrimSuffix(normalizePath(root), "/")
	return fileURIScheme + root + "/"
}

// reportSinkFailure sends err to the line streams and console only. It is
// never buffered and never re-enters Flush, so a failing sink cannot recurse.
func (s *Service) reportSinkFailure(err error) {
	if !s.reporting.CompareAndSwap(false, true) {
		return
	}
	defer s.reporting.Store(false)

	e := NewEntry(Error, "Failed to write "+SnapshotFileName+": "+err.Error(), UnknownLocation(), err, s.clock())
	e.SinkFailure = true

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.Sink.AppendLine(e)
	mirror(s.console.Load(), e)
}
