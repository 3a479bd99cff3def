package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvDebug turns on trace logging and command tracing when set to any
// non-empty value.
const EnvDebug = "DEBUG"

// LogFile is the log location relative to $XDG_STATE_HOME.
var LogFile = filepath.Join("bootstrap", "bootstrap.log")

// LevelFor maps the -v count to a zerolog level. 0 is warn, each -v
// lowers it one step down to trace.
func LevelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger installs the global logger. Records go to a console writer
// on stderr and, when it can be opened, to the append-only log file.
func SetupLogger(verbosity int) {
	if os.Getenv(EnvDebug) != "" && verbosity < 3 {
		verbosity = 3
	}
	zerolog.SetGlobalLevel(LevelFor(verbosity))

	term := os.Getenv("TERM")
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    term == "" || term == "dumb",
	}}

	file, fileErr := openLogFile()
	if fileErr == nil {
		writers = append(writers, file)
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Msg("Log file unavailable, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Msg("Logger initialized")
}

// GetLogger returns a logger tagged with the component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func logFilePath() (string, error) {
	return xdg.StateFile(LogFile)
}

func openLogFile() (*os.File, error) {
	path, err := logFilePath()
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// LogCommand records an external command before it runs.
func LogCommand(name string, args []string) {
	log.Debug().Str("command", name).Strs("args", args).Msg("Executing command")
}

// LogOperationStart logs at debug level and returns a func that logs the
// elapsed time when called.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
