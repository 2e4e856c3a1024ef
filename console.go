package execlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var (
	successColor   = color.New(color.FgGreen)
	warningColor   = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	timestampColor = color.New(color.FgBlue)
)

func init() {
	for _, c := range []*color.Color{successColor, warningColor, errorColor, timestampColor} {
		c.EnableColor()
	}
}

// newConsoleLogger builds the colourised console mirror. Output goes to out,
// or stderr when out is nil.
func newConsoleLogger(out io.Writer, cfg *Config) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == emptyString {
		timeFormat = time.Kitchen
	}

	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat, NoColor: cfg.NoColor}
	if !cfg.NoColor {
		cw.FormatLevel = colorizeLevel
		cw.FormatTimestamp = func(i interface{}) string {
			return timestampColor.Sprint(consoleTime(i, timeFormat))
		}
	}
	return zerolog.New(cw).With().Timestamp().Logger()
}

// colorizeLevel colours the level column: info green, warn yellow, error red.
func colorizeLevel(i interface{}) string {
	level, _ := i.(string)
	switch level {
	case zerolog.InfoLevel.String():
		return successColor.Sprint(level)
	case zerolog.WarnLevel.String():
		return warningColor.Sprint(level)
	case zerolog.ErrorLevel.String():
		return errorColor.Sprint(level)
	default:
		return fmt.Sprint(i)
	}
}

func consoleTime(i interface{}, layout string) string {
	s, ok := i.(string)
	if !ok {
		return fmt.Sprint(i)
	}
	t, err := time.Parse(zerolog.TimeFieldFormat, s)
	if err != nil {
		return s
	}
	return t.Local().Format(layout)
}

// mirror writes e to the console logger, if one is configured.
func mirror(l *zerolog.Logger, e Entry) {
	if l == nil {
		return
	}
	ev := l.WithLevel(e.Severity.zerologLevel())
	if ev == nil {
		return
	}
	ev = ev.Str("at", e.Location.String())
	if e.SinkFailure {
		ev = ev.Bool("sink_failure", true)
	}
	ev.Msg(e.Message)
}
