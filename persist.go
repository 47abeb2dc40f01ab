package lexfst

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/lexfst/blobstore"
	"github.com/hupe1980/lexfst/resource"
)

// Save writes the dictionary to store under name. The blob only becomes
// visible once it is completely written; on failure it is discarded.
// Writes are paced by the resource controller, if any.
func (d *Dictionary) Save(ctx context.Context, store blobstore.Store, name string) error {
	start := time.Now()
	n, err := d.save(ctx, store, name)
	d.opts.metricsCollector.RecordSave(n, time.Since(start), err)
	d.opts.logger.LogSave(ctx, name, n, err)
	return err
}

func (d *Dictionary) save(ctx context.Context, store blobstore.Store, name string) (int64, error) {
	rc := d.opts.controller
	if err := rc.AcquireIOSlot(ctx); err != nil {
		return 0, err
	}
	defer rc.ReleaseIOSlot()

	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	n, err := d.WriteTo(resource.NewRateLimitedWriter(ctx, w, rc))
	if err == nil {
		err = w.Sync()
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", name, errors.Join(err, w.Abort()))
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("commit %s: %w", name, err)
	}
	return n, nil
}

// Open reads the dictionary stored under name. Reads are paced by the
// resource controller, if any.
func Open(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Dictionary, error) {
	o := applyOptions(optFns)
	start := time.Now()

	d, size, err := open(ctx, store, name, o)
	o.metricsCollector.RecordLoad(size, time.Since(start), err)
	var terms int64
	if d != nil {
		terms = d.terms
	}
	o.logger.LogLoad(ctx, name, terms, err)
	return d, err
}

func open(ctx context.Context, store blobstore.Store, name string, o options) (*Dictionary, int64, error) {
	rc := o.controller
	if err := rc.AcquireIOSlot(ctx); err != nil {
		return nil, 0, err
	}
	defer rc.ReleaseIOSlot()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer blob.Close()

	size := blob.Size()
	r, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", name, err)
	}
	defer r.Close()

	d, err := readDictionary(resource.NewRateLimitedReader(ctx, r, rc), o)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", name, err)
	}
	return d, size, nil
}
