// Package log provides the zerolog module loggers shared by the greeter service and its libraries.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Module names attached to every log line under KeyModule.
const (
	KeyModule = "mod"

	ModuleWeb      = "web"
	ModuleView     = "view"
	ModuleContract = "contract"
	ModuleStore    = "store"
	ModuleBroker   = "broker"
)

// Output formats accepted by SetOutput.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

func init() { // nolint:gochecknoinits
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldName = "level"
	zerolog.ErrorFieldName = "error"
}

// SetOutput replaces the writer of all module loggers. format is either FormatConsole or FormatJSON; anything else is
// treated as JSON.
func SetOutput(w io.Writer, format string) {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	logger = zerolog.New(w).With().Timestamp().Logger()
	mu.Unlock()
}

// SetLevel sets the global minimum level from its textual name (debug, info, warn...).
func SetLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(l)

	return nil
}

func module(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return logger.With().Str(KeyModule, name).Logger()
}

func Web() zerolog.Logger      { return module(ModuleWeb) }
func View() zerolog.Logger     { return module(ModuleView) }
func Contract() zerolog.Logger { return module(ModuleContract) }
func Store() zerolog.Logger    { return module(ModuleStore) }
func Broker() zerolog.Logger   { return module(ModuleBroker) }
