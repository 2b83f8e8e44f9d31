// Package logging provides the engine's process-wide structured logger,
// grounded on the *zap.SugaredLogger field pattern used elsewhere in the
// retrieved corpus (e.g. ignite's Index/IndexManager types) rather than
// plain log.Printf calls.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

// Init installs the process-wide logger, replacing any previous one. Passing
// nil restores the production default (zap.NewProduction).
func Init(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l, _ = zap.NewProduction()
	}
	logger = l.Sugar()
}

// L returns the process-wide logger, lazily initialized to the production
// default on first use.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	}
	return logger
}

// Sync flushes any buffered log entries. The error returned by the
// underlying zap sync is discarded, since stderr/stdout syncing commonly
// fails harmlessly on some platforms at process exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		_ = logger.Sync()
	}
}
