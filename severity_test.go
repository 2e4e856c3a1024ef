package execlog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Names(t *testing.T) {
	cases := []struct {
		sev   Severity
		name  string
		level string
		zl    zerolog.Level
	}{
		{Success, "success", "info", zerolog.InfoLevel},
		{Warning, "warning", "warn", zerolog.WarnLevel},
		{Error, "error", "error", zerolog.ErrorLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.sev.String())
			assert.Equal(t, tc.level, tc.sev.Level())
			assert.Equal(t, tc.zl, tc.sev.zerologLevel())
			assert.True(t, tc.sev.Valid())
		})
	}

	t.Run("undefined", func(t *testing.T) {
		s := Severity(7)
		assert.False(t, s.Valid())
		assert.Equal(t, "severity(7)", s.String())
		assert.Equal(t, "severity(7)", s.Level())
		assert.Equal(t, zerolog.NoLevel, s.zerologLevel())
	})
}

func TestSeverity_Order(t *testing.T) {
	assert.Less(t, Success, Warning)
	assert.Less(t, Warning, Error)
}

func TestParseSeverity(t *testing.T) {
	valid := map[string]Severity{
		"success": Success,
		"info":    Success,
		"INFO":    Success,
		"warning": Warning,
		"warn":    Warning,
		"error":   Error,
		" error ": Error,
	}
	for in, want := range valid {
		got, err := ParseSeverity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "debug", "fatal", "loud"} {
		_, err := ParseSeverity(in)
		assert.Error(t, err, in)
	}
}
