package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	// log is the process-wide logger. Everything goes to stderr so that
	// stdout only carries the project listing.
	log zerolog.Logger

	// DefaultLevel is used until --log-level is parsed
	DefaultLevel = "warn"

	levels = map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"fatal":    zerolog.FatalLevel,
		"disabled": zerolog.Disabled,
	}
)

func init() {
	initLogger(consoleWriter(os.Stderr), DefaultLevel)
}

func consoleWriter(f *os.File) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    !term.IsTerminal(int(f.Fd())),
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "???"
		},
	}
}

func initLogger(output io.Writer, levelStr string) {
	level, err := ParseLevel(levelStr)
	if err != nil {
		level = zerolog.WarnLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "msg"

	log = zerolog.New(output).With().Timestamp().Logger()
}

// ParseLevel resolves a level name such as "debug" or "WARN".
func ParseLevel(levelStr string) (zerolog.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(levelStr))]
	if !ok {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", levelStr)
	}
	return level, nil
}

// SetLevel changes the global logging level.
func SetLevel(levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// SetOutput redirects the logger, keeping the current level. Files get the
// console format, any other writer gets JSON lines.
func SetOutput(w io.Writer) {
	if f, ok := w.(*os.File); ok {
		log = log.Output(consoleWriter(f))
		return
	}
	log = log.Output(w)
}

// Debug logs a debug message with optional key-value pairs
func Debug(msg string, keysAndValues ...interface{}) {
	logEvent(log.Debug(), msg, keysAndValues...)
}

// Info logs an info message with optional key-value pairs
func Info(msg string, keysAndValues ...interface{}) {
	logEvent(log.Info(), msg, keysAndValues...)
}

// Warn logs a warning message with optional key-value pairs
func Warn(msg string, keysAndValues ...interface{}) {
	logEvent(log.Warn(), msg, keysAndValues...)
}

// Error logs an error message with optional key-value pairs
func Error(msg string, keysAndValues ...interface{}) {
	logEvent(log.Error(), msg, keysAndValues...)
}

func logEvent(event *zerolog.Event, msg string, keysAndValues ...interface{}) {
	// disabled levels hand back a nil event
	if event == nil {
		return
	}
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			event = event.Interface("orphaned", keysAndValues[i])
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			event = event.AnErr(key, err)
		} else {
			event = event.Interface(key, keysAndValues[i+1])
		}
	}
	event.Msg(msg)
}
