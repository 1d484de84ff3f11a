package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pnrjson/pkg/cache"
	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/jsonwrite"
	"github.com/matzehuels/pnrjson/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP service use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of cached artifacts.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLArtifact,
	}
}

// Execute exports and renders src in every requested format.
func (r *Runner) Execute(ctx context.Context, src *Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	d := src.Design
	result := &Result{
		Artifacts: make(map[string][]byte),
		Stats: Stats{
			Ports: len(d.Ports()),
			Cells: len(d.Cells()),
			Nets:  len(d.Nets()),
		},
		CacheInfo: CacheInfo{RenderHit: true},
	}

	rendered := 0
	for _, format := range opts.Formats {
		start := time.Now()
		if format == FormatJSON {
			data, hit, err := r.ExportWithCacheInfo(ctx, src, opts)
			if err != nil {
				return nil, err
			}
			result.Artifacts[format] = data
			result.Stats.ExportTime = time.Since(start)
			result.CacheInfo.ExportHit = hit
			continue
		}

		data, hit, err := r.RenderWithCacheInfo(ctx, src, format, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
		result.Stats.RenderTime += time.Since(start)
		result.CacheInfo.RenderHit = result.CacheInfo.RenderHit && hit
		rendered++
	}
	if rendered == 0 {
		result.CacheInfo.RenderHit = false
	}

	r.Logger.Info("pipeline complete",
		"formats", opts.Formats,
		"export", result.Stats.ExportTime,
		"render", result.Stats.RenderTime)

	return result, nil
}

// maxTeeBytes bounds the copy of a streamed netlist kept for the cache.
// Larger documents are written to the sink but not cached.
const maxTeeBytes = 16 << 20

// CacheReporter is implemented by sinks that need to know whether an export
// is replayed from the cache before its first byte arrives, such as an HTTP
// response that reports it in a header.
type CacheReporter interface {
	ReportCache(hit bool)
}

// ExportTo streams the JSON netlist of src to w and reports whether it was
// replayed from the cache.
//
// On a miss the document goes straight to w. When caching is enabled a
// bounded copy is teed off on the way and stored once the pass succeeds.
func (r *Runner) ExportTo(ctx context.Context, w io.Writer, src *Source, opts Options) (bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return false, err
	}
	exportOpts := opts.ExportOptions()
	caching := r.caching()

	var key string
	if caching {
		key = r.Keyer.ArtifactKey(src.Hash, opts.ArtifactKeyOpts(FormatJSON))
		if data, hit := r.cached(ctx, key, opts.Refresh); hit {
			jsonwrite.WarnMixedDirections(src.Design, exportOpts.Order, opts.Logger)
			reportCache(w, true)
			if _, err := w.Write(data); err != nil {
				return true, errors.Wrap(errors.ErrCodeWriteFailed, err, "write cached netlist")
			}
			return true, nil
		}
	}
	reportCache(w, false)

	module := jsonwrite.ModuleName(src.Design)
	hooks := observability.Export()
	hooks.OnExportStart(ctx, module)
	start := time.Now()

	counter := &countingWriter{w: w}
	var sink io.Writer = counter
	var tee *boundedBuffer
	if caching {
		tee = &boundedBuffer{limit: maxTeeBytes}
		sink = io.MultiWriter(counter, tee)
	}

	var err error
	if !jsonwrite.Export(sink, src.Design, exportOpts, opts.Logger) {
		err = errors.New(errors.ErrCodeWriteFailed, "export netlist of %s", module)
	}
	hooks.OnExportComplete(ctx, module, counter.n, time.Since(start), err)
	if err != nil {
		return false, err
	}

	r.Logger.Debug("exported netlist",
		"module", module,
		"bytes", counter.n,
		"duration", time.Since(start))

	if tee != nil {
		if tee.overflow {
			r.Logger.Debug("netlist too large to cache", "bytes", counter.n)
		} else {
			r.store(ctx, key, tee.buf.Bytes())
		}
	}
	return false, nil
}

// ExportWithCacheInfo returns the JSON netlist of src in memory and reports
// whether it came from the cache. Use ExportTo to stream to a sink.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, src *Source, opts Options) ([]byte, bool, error) {
	var buf bytes.Buffer
	hit, err := r.ExportTo(ctx, &buf, src, opts)
	if err != nil {
		return nil, false, err
	}
	return buf.Bytes(), hit, nil
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and discards the cache hit info.
func (r *Runner) Export(ctx context.Context, src *Source, opts Options) ([]byte, error) {
	data, _, err := r.ExportWithCacheInfo(ctx, src, opts)
	return data, err
}

// RenderWithCacheInfo draws src in format and reports whether the result
// came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, src *Source, format string, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if format == FormatJSON {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "json is not a render format")
	}
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(src.Hash, opts.ArtifactKeyOpts(format))
	if data, hit := r.cached(ctx, key, opts.Refresh); hit {
		return data, true, nil
	}

	hooks := observability.Export()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	data, err := RenderSchematic(src.Design, format, opts)
	hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.Logger.Debug("rendered schematic",
		"format", format,
		"bytes", len(data),
		"duration", time.Since(start))

	r.store(ctx, key, data)
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, src *Source, format string, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, src, format, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// caching reports whether artifacts are read from and written to a cache.
func (r *Runner) caching() bool {
	_, off := r.Cache.(*cache.NullCache)
	return !off
}

func reportCache(w io.Writer, hit bool) {
	if cr, ok := w.(CacheReporter); ok {
		cr.ReportCache(hit)
	}
}

func (r *Runner) cached(ctx context.Context, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")
	return nil, false
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// boundedBuffer keeps what is written to it until limit is exceeded, then
// drops everything and only swallows further writes.
type boundedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return len(p), nil
	}
	if b.buf.Len()+len(p) > b.limit {
		b.overflow = true
		b.buf = bytes.Buffer{}
		return len(p), nil
	}
	return b.buf.Write(p)
}
