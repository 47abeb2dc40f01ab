package lexfst

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    lookupCounter   prometheus.Counter
//	    buildHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordLookup(found bool, duration time.Duration, err error) {
//	    p.lookupCounter.Inc()
//	    // ... record hit ratio, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called when a DictionaryBuilder finishes.
	// terms is the number of terms added, err is nil if successful.
	RecordBuild(terms int64, duration time.Duration, err error)

	// RecordLookup is called after each point lookup (Get, Contains).
	RecordLookup(found bool, duration time.Duration, err error)

	// RecordBatch is called after each GetBatch call.
	// count is the number of terms requested, found the number present.
	RecordBatch(count, found int, duration time.Duration)

	// RecordSave is called after a dictionary is written to a blob store.
	// bytes is the container size written.
	RecordSave(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after a dictionary is read from a blob store.
	RecordLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordLookup(bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)     {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)  {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildTerms       atomic.Int64
	LookupCount      atomic.Int64
	LookupHits       atomic.Int64
	LookupErrors     atomic.Int64
	LookupTotalNanos atomic.Int64
	BatchCount       atomic.Int64
	BatchItems       atomic.Int64
	BatchHits        atomic.Int64
	SaveCount        atomic.Int64
	SaveErrors       atomic.Int64
	SaveBytes        atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadBytes        atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(terms int64, _ time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildTerms.Add(terms)
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(found bool, duration time.Duration, err error) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LookupErrors.Add(1)
	} else if found {
		b.LookupHits.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, found int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchHits.Add(int64(found))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
		BuildTerms:     b.BuildTerms.Load(),
		LookupCount:    b.LookupCount.Load(),
		LookupHits:     b.LookupHits.Load(),
		LookupErrors:   b.LookupErrors.Load(),
		LookupAvgNanos: b.getAvgLookupNanos(),
		BatchCount:     b.BatchCount.Load(),
		BatchItems:     b.BatchItems.Load(),
		BatchHits:      b.BatchHits.Load(),
		SaveCount:      b.SaveCount.Load(),
		SaveErrors:     b.SaveErrors.Load(),
		SaveBytes:      b.SaveBytes.Load(),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadBytes:      b.LoadBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgLookupNanos() int64 {
	count := b.LookupCount.Load()
	if count == 0 {
		return 0
	}
	return b.LookupTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildErrors    int64
	BuildTerms     int64
	LookupCount    int64
	LookupHits     int64
	LookupErrors   int64
	LookupAvgNanos int64
	BatchCount     int64
	BatchItems     int64
	BatchHits      int64
	SaveCount      int64
	SaveErrors     int64
	SaveBytes      int64
	LoadCount      int64
	LoadErrors     int64
	LoadBytes      int64
}
