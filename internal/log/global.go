package log

import "sync"

var (
	mu      sync.Mutex
	current *Logger
)

// SetDefaultLogger sets the process-wide default logger. The root
// command calls this once after reading the config; passing nil resets
// to lazy initialization.
func SetDefaultLogger(logger *Logger) {
	mu.Lock()
	current = logger
	mu.Unlock()
}

// DefaultLogger returns the process-wide default logger, creating one
// with DefaultConfig on first use.
func DefaultLogger() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = New(DefaultConfig())
	}
	return current
}
