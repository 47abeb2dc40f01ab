package lexfst

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/lexfst/fst"
	"github.com/hupe1980/lexfst/internal/compress"
	"github.com/hupe1980/lexfst/resource"
)

// Compression selects how the serialized automaton is stored inside the
// dictionary container.
type Compression = compress.Type

const (
	// CompressionNone stores the automaton as is.
	CompressionNone = compress.None
	// CompressionLZ4 favors load speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZstd favors size.
	CompressionZstd = compress.Zstd
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	compression      Compression
	pack             bool
	concurrency      int
	controller       *resource.Controller
	builderOptions   []fst.BuilderOption
}

// Option configures dictionary building, loading, and saving.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lexfst.BasicMetricsCollector{}
//	dict, _ := lexfst.BuildFromMap(terms, lexfst.WithMetricsCollector(metrics))
//	// ... use dict ...
//	stats := metrics.GetStats()
//	fmt.Printf("Lookups: %d, hits: %d\n", stats.LookupCount, stats.LookupHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lexfst.NewJSONLogger(slog.LevelInfo)
//	b := lexfst.NewDictionaryBuilder(lexfst.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCompression sets the payload compression used by WriteTo and Save.
// Compression is skipped when it would not shrink the payload by at least
// a tenth.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithPacking packs the automaton after building. Packing renumbers nodes
// and stores frequently targeted ones by reference, trading build time for
// a smaller automaton.
func WithPacking() Option {
	return func(o *options) {
		o.pack = true
	}
}

// WithConcurrency bounds the number of goroutines used by GetBatch.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.concurrency = n
	}
}

// WithResourceController shares memory, IO concurrency and IO rate limits
// across dictionaries.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithIOLimit paces Save and Open to bytesPerSec.
// Convenience wrapper for a private resource.Controller.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.controller = resource.NewController(resource.Config{
			IOLimitBytesPerSec: bytesPerSec,
			MaxConcurrentIO:    1,
		})
	}
}

// WithBuilderOptions passes options through to the automaton builder,
// for example fst.WithSuffixSharing(false) to trade size for build memory.
func WithBuilderOptions(opts ...fst.BuilderOption) Option {
	return func(o *options) {
		o.builderOptions = append(o.builderOptions, opts...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      CompressionNone,
		concurrency:      runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
