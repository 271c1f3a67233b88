package atomgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each insert. created is false when the
	// expression was already stored and its existing ID was returned.
	RecordInsert(created bool, duration time.Duration)

	// RecordRemove is called after each remove. removed is false when the
	// ID was unknown.
	RecordRemove(removed bool, duration time.Duration)

	// RecordQuery is called after each single-dimension query. dimension is
	// "symbol", "arity" or "shape"; results is the result cardinality.
	RecordQuery(dimension string, results uint64, duration time.Duration)

	// RecordMatch is called after each pattern match against the store.
	// candidates is the prefiltered candidate count, matches the number of
	// binding sets produced. err is nil on success.
	RecordMatch(candidates, matches int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(bool, time.Duration)           {}
func (NoopMetricsCollector) RecordRemove(bool, time.Duration)           {}
func (NoopMetricsCollector) RecordQuery(string, uint64, time.Duration)  {}
func (NoopMetricsCollector) RecordMatch(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount     atomic.Int64
	InsertDedup     atomic.Int64
	RemoveCount     atomic.Int64
	RemoveMisses    atomic.Int64
	QueryCount      atomic.Int64
	MatchCount      atomic.Int64
	MatchErrors     atomic.Int64
	MatchCandidates atomic.Int64
	MatchResults    atomic.Int64
}

func (c *BasicMetricsCollector) RecordInsert(created bool, _ time.Duration) {
	c.InsertCount.Add(1)
	if !created {
		c.InsertDedup.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordRemove(removed bool, _ time.Duration) {
	c.RemoveCount.Add(1)
	if !removed {
		c.RemoveMisses.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordQuery(_ string, _ uint64, _ time.Duration) {
	c.QueryCount.Add(1)
}

func (c *BasicMetricsCollector) RecordMatch(candidates, matches int, _ time.Duration, err error) {
	c.MatchCount.Add(1)
	if err != nil {
		c.MatchErrors.Add(1)
		return
	}
	c.MatchCandidates.Add(int64(candidates))
	c.MatchResults.Add(int64(matches))
}
