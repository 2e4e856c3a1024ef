package execlog

import (
	stderrs "errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	smerrors "github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Summary heads every snapshot.
type Summary struct {
	HourMinutes string `json:"Hour_Minutes"`
	File        string `json:"File"`
	Run         string `json:"Run,omitempty"`
	Count       int    `json:"Count"`
}

// Snapshot is the aggregated document written on Flush. Errors holds
// error-severity entries; Successful holds success and warning entries.
type Snapshot struct {
	Summary    Summary `json:"Summary"`
	Errors     []Entry `json:"Errors"`
	Successful []Entry `json:"Successful"`
}

// Sink is durable storage for log output.
type Sink interface {
	// AppendLine writes one entry to the continuous line streams. It is best
	// effort and never fails the caller.
	AppendLine(e Entry)
	// WriteSnapshot replaces the previous snapshot with snap.
	WriteSnapshot(snap Snapshot) error
	Close() error
}

// FileSinkConfig configures NewFileSink.
type FileSinkConfig struct {
	Dir string
	// MinSeverity is the lowest severity accepted by combined.json.
	MinSeverity Severity
	// MaxSizeMB is passed to lumberjack; zero means lumberjack's default.
	MaxSizeMB int
	RunID     string
}

// FileSink appends JSON lines to error.json and combined.json under Dir and
// writes ExecutionLog.json snapshots next to them.
type FileSink struct {
	dir          string
	snapshotPath string

	errorFile    *lumberjack.Logger
	combinedFile *lumberjack.Logger
	lines        zerolog.Logger

	mu     sync.Mutex
	closed bool
}

var _ Sink = (*FileSink)(nil)

// NewFileSink creates Dir if needed and prepares both line streams. The
// files themselves are created on first write, in append mode.
func NewFileSink(cfg FileSinkConfig) (*FileSink, error) {
	const op smerrors.Op = "execlog.NewFileSink"
	if cfg.Dir == emptyString {
		return nil, smerrors.New(op).Msg(errMsgLogDir)
	}
	if err := os.MkdirAll(cfg.Dir, os.ModePerm); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgLogDir)
	}
	if !cfg.MinSeverity.Valid() {
		return nil, smerrors.New(op).Msg(errMsgSinkOpen)
	}

	s := &FileSink{
		dir:          cfg.Dir,
		snapshotPath: filepath.Join(cfg.Dir, SnapshotFileName),
		errorFile:    newLineFile(cfg.Dir, ErrorFileName, cfg.MaxSizeMB),
		combinedFile: newLineFile(cfg.Dir, CombinedFileName, cfg.MaxSizeMB),
	}

	mw := zerolog.MultiLevelWriter(
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: s.errorFile},
			Level:  zerolog.ErrorLevel,
		},
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: s.combinedFile},
			Level:  cfg.MinSeverity.zerologLevel(),
		},
	)
	ctx := zerolog.New(mw).With()
	if cfg.RunID != emptyString {
		ctx = ctx.Str("run_id", cfg.RunID)
	}
	s.lines = ctx.Logger()

	return s, nil
}

func newLineFile(dir, name string, maxSizeMB int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename: filepath.Join(dir, name),
		MaxSize:  maxSizeMB,
	}
}

// Dir returns the directory the sink writes into.
func (s *FileSink) Dir() string {
	return s.dir
}

// SnapshotPath returns the full path of ExecutionLog.json.
func (s *FileSink) SnapshotPath() string {
	return s.snapshotPath
}

// AppendLine writes e as one JSON line. error.json receives it only when it
// is error severity; combined.json when it meets the configured minimum.
func (s *FileSink) AppendLine(e Entry) {
	if s == nil || !e.Severity.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	writeLine(&s.lines, e)
}

// writeLine emits e on l with the error-history enrichment fields.
func writeLine(l *zerolog.Logger, e Entry) {
	ev := l.WithLevel(e.Severity.zerologLevel())
	if ev == nil {
		return
	}
	ev.Time(zerolog.TimestampFieldName, e.Time).
		Str("severity", e.Severity.String()).
		Str("file", e.Location.FileString()).
		Str("line", e.Location.LineString())

	if e.Err != nil {
		ev.Err(e.Err).Str("kind", string(Classify(e.Err)))
		chain, ops, root, rootOp := buildErrorChain(e.Err)
		if len(chain) > 0 {
			ev.Strs("error_chain", chain).
				Str("error_root", root).
				Str("error_history", joinChain(chain)).
				Strs("error_ops", ops)
			if rootOp != emptyString {
				ev.Str("error_root_op", rootOp)
			}
		}
	}
	if e.SinkFailure {
		ev.Bool("sink_failure", true)
	}
	ev.Msg(e.Text)
}

// WriteSnapshot encodes snap and atomically replaces ExecutionLog.json.
func (s *FileSink) WriteSnapshot(snap Snapshot) error {
	const op smerrors.Op = "execlog.FileSink.WriteSnapshot"
	if snap.Errors == nil {
		snap.Errors = []Entry{}
	}
	if snap.Successful == nil {
		snap.Successful = []Entry{}
	}

	data, err := json.MarshalIndent(snap, emptyString, snapshotIndent)
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgSnapshotEncode)
	}

	if err = os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgLogDir)
	}
	tmp, err := os.CreateTemp(s.dir, ".execlog-*.tmp")
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgSnapshotWrite)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return smerrors.New(op).Err(err).Msg(errMsgSnapshotWrite)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return smerrors.New(op).Err(err).Msg(errMsgSnapshotWrite)
	}
	if err = os.Rename(tmpName, s.snapshotPath); err != nil {
		_ = os.Remove(tmpName)
		return smerrors.New(op).Err(err).Msg(errMsgSnapshotWrite)
	}
	return nil
}

// Close releases both line files. It's safe to call Close multiple times.
func (s *FileSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, f := range []io.Closer{s.errorFile, s.combinedFile} {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrs.Join(errs...)
}
