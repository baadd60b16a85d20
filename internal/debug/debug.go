// Package debug provides conditional debug logging.
//
// Logging is enabled by setting THREADBOX_DEBUG:
//
//	THREADBOX_DEBUG=1 threadbox
//
// Messages go to stderr, or to the file named by THREADBOX_DEBUG_FILE so they
// do not corrupt the terminal UI. When disabled every function is a no-op.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[THREADBOX_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("THREADBOX_DEBUG") == "" {
		return
	}
	var out io.Writer = os.Stderr
	if path := os.Getenv("THREADBOX_DEBUG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			out = f
		}
	}
	SetOutput(out)
}

func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetOutput enables logging to w. A nil writer disables it.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		enabled = false
		logger = nil
		return
	}
	enabled = true
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

func current() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if l := current(); l != nil {
		l.Printf(format, args...)
	}
}

func LogTiming(name string, d time.Duration) {
	if l := current(); l != nil {
		l.Printf("%s took %v", name, d)
	}
}

// LogIf writes a debug message only if cond is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs entry and returns a func that logs exit with timing:
//
//	defer debug.LogEnterExit("merge")()
func LogEnterExit(name string) func() {
	l := current()
	if l == nil {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		LogTiming("<- "+name, time.Since(start))
	}
}
