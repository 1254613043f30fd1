// Package logger provides the process-wide leveled logger used by every
// webserve component. It is a thin facade over zerolog so call sites stay
// printf-style while output format and level remain configurable.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var log = newLogger("text", "stdout")

func newLogger(format, output string) zerolog.Logger {
	var w *os.File
	switch output {
	case "stderr":
		w = os.Stderr
	default:
		w = os.Stdout
	}

	if format == "json" {
		return zerolog.New(w).With().Timestamp().Logger()
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(console).With().Timestamp().Logger()
}

// Setup reconfigures the global logger. Level accepts DEBUG, INFO, WARN or
// ERROR (case-insensitive); format accepts "text" or "json"; output accepts
// "stdout" or "stderr".
func Setup(level, format, output string) {
	log = newLogger(format, output)
	SetLevel(level)
}

// SetLevel adjusts the minimum level of the global logger. Unknown values
// leave the current level untouched.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return
	}
	zerolog.SetGlobalLevel(parsed)
}

func Debug(format string, v ...any) {
	log.Debug().Msg(fmt.Sprintf(format, v...))
}

func Info(format string, v ...any) {
	log.Info().Msg(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...any) {
	log.Warn().Msg(fmt.Sprintf(format, v...))
}

func Error(format string, v ...any) {
	log.Error().Msg(fmt.Sprintf(format, v...))
}

// Security records a rejected request as a security event. These entries are
// tagged so they can be filtered apart from ordinary error logging.
func Security(format string, v ...any) {
	log.Warn().Str("event", "security").Msg(fmt.Sprintf(format, v...))
}
