// Package resource implements a Controller for limits shared by dictionaries.
//
// The Controller manages three resource types:
//
//   - Memory: decoded size of opened dictionaries (non-blocking, fail-fast)
//   - Concurrency: number of saves and loads in flight
//   - IO: token-bucket pacing of save/load bytes
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded if the
// limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(size); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides what to evict
//	}
//	defer rc.ReleaseMemory(size)
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	writer := resource.NewRateLimitedWriter(ctx, blob, rc)
//	reader := resource.NewRateLimitedReader(ctx, r, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
