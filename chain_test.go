package execlog

import (
	stderrs "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	smerrors "github.com/Station-Manager/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_KeepsOriginal(t *testing.T) {
	low := New("A low-level error")
	high := Wrap(low, "A high-level error.")

	assert.Equal(t, "A high-level error.", high.Message())
	assert.Equal(t, "A high-level error.: A low-level error", high.Error())
	assert.Same(t, low, high.Cause())
	assert.Same(t, low, high.Root())
	assert.True(t, stderrs.Is(high, low))

	var target *ErrorRecord
	require.True(t, stderrs.As(fmt.Errorf("ctx: %w", high), &target))
	assert.Same(t, high, target)
}

func TestWrap_ForeignCause(t *testing.T) {
	high := Wrap(io.ErrUnexpectedEOF, "decode failed")
	assert.Equal(t, io.ErrUnexpectedEOF, high.Root())
	assert.True(t, stderrs.Is(high, io.ErrUnexpectedEOF))
}

func TestWrap_NilCause(t *testing.T) {
	e := Wrap(nil, "nothing underneath")
	assert.Nil(t, e.Cause())
	assert.Same(t, e, e.Root())
	assert.Equal(t, "nothing underneath", e.Error())
	assert.NotEmpty(t, e.Frames())
}

func TestError_NilReceiver(t *testing.T) {
	var e *ErrorRecord
	assert.Equal(t, "", e.Error())
	assert.Equal(t, "", e.Message())
	assert.Nil(t, e.Cause())
	assert.Nil(t, e.Root())
	assert.Nil(t, e.Frames())
	assert.Equal(t, Error, e.Severity())
}

func TestError_Severity(t *testing.T) {
	e := New("minor").WithSeverity(Warning)
	assert.Equal(t, Warning, e.Severity())
	e.WithSeverity(Severity(42))
	assert.Equal(t, Warning, e.Severity())
	assert.Equal(t, Error, New("default").Severity())
}

func TestRootCause(t *testing.T) {
	assert.Nil(t, RootCause(nil))

	a := stderrs.New("a")
	b := fmt.Errorf("b: %w", a)
	c := Wrapf(b, "c %d", 3)
	d := pkgerrors.Wrap(c, "d")
	assert.Equal(t, a, RootCause(d))
	assert.Equal(t, "c 3", c.Message())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindSimulated, Classify(New("A simulated error.")))
	assert.Equal(t, KindOperational, Classify(New("disk full")))
	assert.Equal(t, KindOperational, Classify(Wrap(New("A simulated error."), "outer")))
	assert.Equal(t, KindSimulated, Classify(stderrs.New("simulated outage")))
	assert.Equal(t, Kind(""), Classify(nil))
	assert.Equal(t, KindSimulated, Newf("%s failure", "simulated").Kind())
}

func TestBuildErrorChain_WithDetailedAndStd(t *testing.T) {
	inner := smerrors.New("db.Connect").Msg("dial tcp 127.0.0.1:5432: connect: connection refused")
	middle := smerrors.New("db.Open").Err(inner).Msg("failed to connect to database")
	outer := Wrap(middle, "startup failed")

	chain, ops, root, rootOp := buildErrorChain(outer)
	assert.Equal(t, []string{
		"startup failed",
		"failed to connect to database",
		"dial tcp 127.0.0.1:5432: connect: connection refused",
	}, chain)
	assert.Equal(t, "dial tcp 127.0.0.1:5432: connect: connection refused", root)
	assert.Equal(t, []string{"", "db.Open", "db.Connect"}, ops)
	assert.Equal(t, "db.Connect", rootOp)

	wrapped := fmt.Errorf("wrap: %w", outer)
	chain2, _, root2, _ := buildErrorChain(wrapped)
	assert.True(t, strings.HasPrefix(chain2[0], "wrap:"))
	assert.Equal(t, root, root2)
}

func TestBuildErrorChain_Empty(t *testing.T) {
	chain, ops, root, rootOp := buildErrorChain(nil)
	assert.Empty(t, chain)
	assert.Empty(t, ops)
	assert.Empty(t, root)
	assert.Empty(t, rootOp)
	assert.Equal(t, "", joinChain(nil))
	assert.Equal(t, "a -> b", joinChain([]string{"a", "b"}))
}

// loopErr names itself as its own cause.
type loopErr struct{}

func (l *loopErr) Error() string { return "loop" }
func (l *loopErr) Cause() error  { return l }

func TestUnwrapChain_StopsOnCycles(t *testing.T) {
	chain := unwrapChain(&loopErr{})
	assert.Len(t, chain, 1)
}

func TestUnwrapChain_DepthCap(t *testing.T) {
	var err error = stderrs.New("root")
	for i := 0; i < maxChainDepth*2; i++ {
		err = Wrapf(err, "layer %d", i)
	}
	assert.Len(t, unwrapChain(err), maxChainDepth)
}
