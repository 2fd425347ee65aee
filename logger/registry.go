package logger

import "sync"

// overrides holds loggers that replace the global one for a component.
var overrides sync.Map

// Override routes WithComponent(name) to l. A nil l removes the override.
// Tests use it to capture a single component's output.
func Override(name string, l *Logger) {
	if l == nil {
		overrides.Delete(name)
		return
	}
	overrides.Store(name, l.WithComponent(name))
}

// ClearOverrides removes every component override.
func ClearOverrides() {
	overrides.Clear()
}

func componentLogger(name string) *Logger {
	if l, ok := overrides.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
