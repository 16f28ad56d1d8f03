package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger *zerolog.Logger
	mu            sync.Mutex
)

func Init(env string) {
	InitWithLevel(env, "")
}

// InitWithLevel configures the process-wide logger. Production writes JSON,
// everything else uses the console writer.
func InitWithLevel(env, level string) {
	var w io.Writer = os.Stdout
	lvl := zerolog.InfoLevel
	if env != "production" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()

	mu.Lock()
	defaultLogger = &l
	mu.Unlock()

	log.Logger = l
	zerolog.DefaultContextLogger = &l
}

func LoggerWrapper() zerolog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		// lazy initialize a development logger so callers never get a disabled logger
		Init("development")
		mu.Lock()
		l = defaultLogger
		mu.Unlock()
	}
	return *l
}

// Nop is used by tests that do not care about log output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
