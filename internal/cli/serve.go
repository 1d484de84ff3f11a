package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pnrjson/pkg/buildinfo"
	"github.com/matzehuels/pnrjson/pkg/cache"
	"github.com/matzehuels/pnrjson/pkg/errors"
	pkgio "github.com/matzehuels/pnrjson/pkg/io"
	"github.com/matzehuels/pnrjson/pkg/metrics"
	"github.com/matzehuels/pnrjson/pkg/observability"
	"github.com/matzehuels/pnrjson/pkg/pipeline"
	"github.com/matzehuels/pnrjson/pkg/render"
)

const (
	// maxDesignBytes bounds request bodies.
	maxDesignBytes = 10 << 20

	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second

	headerRequestID = "X-Request-Id"
	headerCache     = "X-Cache"
)

// serveCommand creates the serve command that exposes export and render over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		redis   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve export and render over HTTP",
		Long: `Serve export and render over HTTP.

Endpoints:
  POST /export   design description in the body, JSON netlist in the response
  POST /render   design description in the body, schematic in the response
  GET  /metrics  Prometheus metrics
  GET  /healthz  liveness check

The description format is given by ?format=toml|yaml (default toml). Export
accepts ?creator=, ?order=, ?strict_quotes=1 and ?gzip=1; render accepts
?output=svg|dot|pdf|png, ?detailed=1 and ?scale=.

Artifacts are cached in Redis when --redis (or cache.redis_addr) is set,
otherwise in the local file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}
			if cmd.Flags().Changed("redis") {
				c.Config.Cache.RedisAddr = redis
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&redis, "redis", "", "Redis address for the artifact cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe starts the HTTP server and shuts it down when ctx is done.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "serve:")

	collector := metrics.New(prometheus.NewRegistry())
	observability.SetExportHooks(collector)
	observability.SetCacheHooks(collector)
	observability.SetHTTPHooks(collector)
	defer observability.Reset()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, collector, c.Config.Creator, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	c.Logger.Info("Serving", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Router
// =============================================================================

type server struct {
	runner  *pipeline.Runner
	creator string
	logger  *log.Logger
}

// newServer builds the HTTP router.
func newServer(runner *pipeline.Runner, collector *metrics.Collector, creator string, logger *log.Logger) http.Handler {
	s := &server{runner: runner, creator: creator, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(httpHooks)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", collector.Handler())
	r.Post("/export", s.export)
	r.Post("/render", s.render)

	return r
}

// requestID tags each request with an ID, reusing the caller's X-Request-Id
// when present.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(headerRequestID, id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			return
		}
		loggerFromContext(r.Context()).Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// httpHooks reports requests to the registered observability hooks, labelled
// by route pattern.
func httpHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		hooks := observability.HTTP()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *server) export(w http.ResponseWriter, r *http.Request) {
	src, err := s.load(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Creator:      s.creator,
		Order:        q.Get("order"),
		StrictQuotes: queryBool(q.Get("strict_quotes")),
		Gzip:         queryBool(q.Get("gzip")),
		Refresh:      queryBool(q.Get("refresh")),
		Logger:       loggerFromContext(r.Context()),
	}
	if creator := q.Get("creator"); creator != "" {
		opts.Creator = creator
	}

	contentType := "application/json"
	if opts.Gzip {
		contentType = "application/gzip"
	}
	sink := &streamResponse{w: w, contentType: contentType}
	if _, err := s.runner.ExportTo(r.Context(), sink, src, opts); err != nil {
		if !sink.started {
			writeError(w, r, err)
			return
		}
		loggerFromContext(r.Context()).Error("Export aborted mid-response", "err", err)
	}
}

func (s *server) render(w http.ResponseWriter, r *http.Request) {
	src, err := s.load(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	output := q.Get("output")
	if output == "" {
		output = string(render.FormatSVG)
	}
	format, err := render.ParseFormat(output)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "output"))
		return
	}

	opts := pipeline.Options{
		Detailed: queryBool(q.Get("detailed")),
		Refresh:  queryBool(q.Get("refresh")),
		Logger:   loggerFromContext(r.Context()),
	}
	if scale := q.Get("scale"); scale != "" {
		v, err := strconv.ParseFloat(scale, 64)
		if err != nil || v <= 0 {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", scale))
			return
		}
		opts.Scale = v
	}

	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), src, string(format), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArtifactResponse(w, format.ContentType(), data, hit)
}

// load decodes the design description in the request body.
func (s *server) load(w http.ResponseWriter, r *http.Request) (*pipeline.Source, error) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(pkgio.FormatTOML)
	}
	format, err := pkgio.ParseFormat(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "format")
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDesignBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return s.runner.LoadBytes(r.Context(), body, format)
}

// =============================================================================
// Responses
// =============================================================================

func queryBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

func writeArtifactResponse(w http.ResponseWriter, contentType string, data []byte, hit bool) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if hit {
		w.Header().Set(headerCache, "hit")
	} else {
		w.Header().Set(headerCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// streamResponse sends the response headers, X-Cache included, before the
// first body byte.
type streamResponse struct {
	w           http.ResponseWriter
	contentType string
	started     bool
}

func (s *streamResponse) ReportCache(hit bool) {
	if hit {
		s.w.Header().Set(headerCache, "hit")
	} else {
		s.w.Header().Set(headerCache, "miss")
	}
}

func (s *streamResponse) Write(p []byte) (int, error) {
	if !s.started {
		s.started = true
		s.w.Header().Set("Content-Type", s.contentType)
		s.w.WriteHeader(http.StatusOK)
	}
	return s.w.Write(p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("Request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      string(errors.GetCode(err)),
		RequestID: w.Header().Get(headerRequestID),
	})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidDesign, errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
