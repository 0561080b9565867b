package unit

import (
	"github.com/modrunio/modrun/pkg/manifest"
	"github.com/modrunio/modrun/pkg/metrics"
	"github.com/modrunio/modrun/pkg/runtime"
	"go.uber.org/zap"
)

// Option is a functor to build a unit handle with some options
type Option func(*Handle)

// Logger injects a logging facility into handle operations
func Logger(l *zap.Logger) Option {
	return func(h *Handle) {
		if l != nil {
			h.l = l
		}
	}
}

// Facade attaches the runtime facade forwarded operations go to
func Facade(f runtime.Facade) Option {
	return func(h *Handle) {
		h.facade = f
	}
}

// Parser overrides the manifest parser used when building revisions
func Parser(p manifest.Parser) Option {
	return func(h *Handle) {
		if p != nil {
			h.parser = p
		}
	}
}

// Metrics attaches a prometheus collector to handle operations
func Metrics(c *metrics.Collector) Option {
	return func(h *Handle) {
		h.mtx = c
	}
}

// Tracker attaches the dependent tracker revisions consult for in-use
// detection
func Tracker(t DependentTracker) Option {
	return func(h *Handle) {
		h.tracker = t
	}
}

// Bare skips creating the initial revision. Used for the degenerate
// system unit whose revisions are attached later via AppendRevision.
func Bare() Option {
	return func(h *Handle) {
		h.bare = true
	}
}
