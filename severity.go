package execlog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Severity classifies a logged event. The zero value is Success and the
// ordering Success < Warning < Error is used for filtering.
type Severity int

const (
	Success Severity = iota
	Warning
	Error
)

// severities lists every Severity in ascending order.
var severities = [...]Severity{Success, Warning, Error}

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Level returns the level name used in rendered lines and snapshot keys.
func (s Severity) Level() string {
	switch s {
	case Success:
		return zerolog.InfoLevel.String()
	case Warning:
		return zerolog.WarnLevel.String()
	case Error:
		return zerolog.ErrorLevel.String()
	default:
		return s.String()
	}
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s >= Success && s <= Error
}

func (s Severity) zerologLevel() zerolog.Level {
	switch s {
	case Success:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}

// ParseSeverity accepts both the severity names and their level names
// ("success"/"info", "warning"/"warn", "error").
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "success":
		return Success, nil
	case "warning":
		return Warning, nil
	}

	l, err := parseLevel(name)
	if err != nil {
		return Success, err
	}
	switch l {
	case zerolog.InfoLevel:
		return Success, nil
	case zerolog.WarnLevel:
		return Warning, nil
	case zerolog.ErrorLevel:
		return Error, nil
	default:
		return Success, fmt.Errorf("unsupported severity level %q", name)
	}
}

// parseLevel parses a string log level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}
