package atomgo

import (
	"github.com/hupe1980/atomgo/unify"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	patternCacheSize int
	unifyConfig      unify.Config
	predicates       map[string]unify.Predicate
}

// Option configures Space constructor behavior.
type Option func(*options)

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures operational metrics collection.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metricsCollector = collector
	}
}

// WithPatternCacheSize bounds the compiled-pattern LRU cache. Values <= 0
// select pattern.DefaultCacheSize.
func WithPatternCacheSize(size int) Option {
	return func(o *options) {
		o.patternCacheSize = size
	}
}

// WithMatchBudget sets the exploration budget per match call. Exhausting it
// fails the call with ErrMatchBudgetExceeded instead of searching forever.
func WithMatchBudget(steps int) Option {
	return func(o *options) {
		o.unifyConfig.MaxSteps = steps
	}
}

// WithMaxDepth prunes unification descent below the given expression depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.unifyConfig.MaxDepth = depth
	}
}

// WithMaxRepeat caps how many sibling positions a single sequence pattern
// may consume.
func WithMaxRepeat(n int) Option {
	return func(o *options) {
		o.unifyConfig.MaxRepeat = n
	}
}

// WithParallelism bounds the goroutines used to unify candidates in Match.
// Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.unifyConfig.Parallelism = n
	}
}

// WithFirstAlternativeOnly keeps only the first succeeding branch of each
// alternative pattern. The default is the union of all succeeding branches.
func WithFirstAlternativeOnly() Option {
	return func(o *options) {
		o.unifyConfig.FirstAlternativeOnly = true
	}
}

// WithPredicate registers a named predicate for conditional patterns
// (the "@name" postfix). Matching a pattern that names an unregistered
// predicate fails with ErrUnknownPredicate.
func WithPredicate(name string, p unify.Predicate) Option {
	return func(o *options) {
		if o.predicates == nil {
			o.predicates = make(map[string]unify.Predicate)
		}
		o.predicates[name] = p
	}
}
