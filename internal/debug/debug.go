package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnvVar names the environment variable that enables logging on first use.
const EnvVar = "TAGX_DEBUG"

var (
	logFile  *os.File
	mu       sync.Mutex
	envTried bool
)

// Init initializes debug logging to the specified file path.
// If path is empty, uses "tagx-debug.log" in the current directory.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked(path)
}

// initLocked does the actual init work. Caller must hold mu.
func initLocked(path string) error {
	if path == "" {
		path = "tagx-debug.log"
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}

	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	return nil
}

// Close closes the debug log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Enabled reports whether log output is currently being written.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabledLocked()
}

// enabledLocked opens the TAGX_DEBUG file the first time it is consulted.
func enabledLocked() bool {
	if logFile == nil && !envTried {
		envTried = true
		if path := os.Getenv(EnvVar); path != "" {
			_ = initLocked(path)
		}
	}
	return logFile != nil
}

// Log writes a message to the debug log with a timestamp.
func Log(format string, args ...any) {
	write("", format, args...)
}

// Parse writes a parse-prefixed log message.
func Parse(format string, args ...any) {
	write("[parse] ", format, args...)
}

// Resolve writes a resolve-prefixed log message.
func Resolve(format string, args ...any) {
	write("[resolve] ", format, args...)
}

// Render writes a render-prefixed log message.
func Render(format string, args ...any) {
	write("[render] ", format, args...)
}

// Build writes a build-prefixed log message.
func Build(format string, args ...any) {
	write("[build] ", format, args...)
}

func write(prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabledLocked() {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(logFile, "[%s] %s%s\n", timestamp, prefix, msg)
	logFile.Sync()
}
