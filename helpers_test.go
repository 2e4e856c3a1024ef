package execlog

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// currentLine returns the line of its call site.
func currentLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

// projectRoot returns the package directory, which is where test files live.
func projectRoot(t testing.TB) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func fixedClock() func() time.Time {
	at := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// memSink records everything it is given; WriteSnapshot fails while failWith is set.
type memSink struct {
	mu        sync.Mutex
	lines     []Entry
	snapshots []Snapshot
	failWith  error
	closed    int
}

func (m *memSink) AppendLine(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, e)
}

func (m *memSink) WriteSnapshot(snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *memSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *memSink) setFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *memSink) Lines() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.lines...)
}

func (m *memSink) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Snapshot(nil), m.snapshots...)
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = EnvProduction
	return cfg
}

// newMemService returns an initialised Service backed by a memSink.
func newMemService(t testing.TB) (*Service, *memSink) {
	t.Helper()
	cfg := testConfig()
	cfg.ProjectRoot = projectRoot(t)
	sink := &memSink{}
	svc := &Service{WorkingDir: t.TempDir(), Config: cfg, Sink: sink, clock: fixedClock()}
	require.NoError(t, svc.Initialize())
	t.Cleanup(func() { _ = svc.Close() })
	return svc, sink
}

// newFileService returns an initialised Service writing into a temp log dir.
func newFileService(t testing.TB) *Service {
	t.Helper()
	cfg := testConfig()
	cfg.ProjectRoot = projectRoot(t)
	svc := &Service{WorkingDir: t.TempDir(), Config: cfg}
	require.NoError(t, svc.Initialize())
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

type lineRecord map[string]any

// readLines decodes a JSON-lines file; a missing file yields no records.
func readLines(t testing.TB, path string) []lineRecord {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	defer f.Close()

	var out []lineRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec lineRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

type snapshotDoc struct {
	Summary    map[string]any      `json:"Summary"`
	Errors     []map[string]string `json:"Errors"`
	Successful []map[string]string `json:"Successful"`
}

func readSnapshot(t testing.TB, dir string) snapshotDoc {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, SnapshotFileName))
	require.NoError(t, err)
	var doc snapshotDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}
