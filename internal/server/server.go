// Package server renders daily art over HTTP.
//
// Images are generated on demand through a pipeline.Runner, so a shared
// Redis cache lets several replicas render each date only once.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dailyart/pkg/buildinfo"
	"github.com/matzehuels/dailyart/pkg/cache"
	"github.com/matzehuels/dailyart/pkg/errors"
	"github.com/matzehuels/dailyart/pkg/observability"
	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/pipeline"
	"github.com/matzehuels/dailyart/pkg/seed"
	"github.com/matzehuels/dailyart/pkg/sink"
)

// Defaults for Options.
const (
	DefaultAddr           = ":8080"
	DefaultMaxSize        = 4096
	DefaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Response headers.
const (
	HeaderSeed    = "X-Dailyart-Seed"
	HeaderPalette = "X-Dailyart-Palette"
	HeaderCache   = "X-Dailyart-Cache"
)

// Options configures a Server.
type Options struct {
	// Width and Height are used when a request omits them.
	Width  int
	Height int
	Style  string
	Format string

	// MaxSize caps each requested dimension.
	MaxSize int

	Registry       *palette.Registry
	RequestTimeout time.Duration

	// Now supplies the clock for /art/today.
	Now func() time.Time

	// Stats, when set, is served at /metrics.
	Stats *observability.Stats
}

// Server serves images for dates.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New builds a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = runner.Logger
	}
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = pipeline.DefaultWidth, pipeline.DefaultHeight
	}
	if opts.Style == "" {
		opts.Style = pipeline.DefaultStyle
	}
	if opts.Format == "" {
		opts.Format = pipeline.DefaultFormat
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Registry == nil {
		opts.Registry = palette.Default()
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/palettes", s.handlePalettes)
	if s.opts.Stats != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Stats.Handler())
	}
	r.Route("/art", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Get("/today", s.handleToday)
		r.Get("/{date}", s.handleArt)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

type paletteResponse struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	BgStart string   `json:"bg_start"`
	BgEnd   string   `json:"bg_end"`
	Lines   []string `json:"lines"`
	Grid    string   `json:"grid"`
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	all := s.opts.Registry.All()
	out := make([]paletteResponse, len(all))
	for i, p := range all {
		lines := make([]string, len(p.Lines))
		for j, c := range p.Lines {
			lines[j] = palette.Hex(c)
		}
		out[i] = paletteResponse{
			Index:   i,
			Name:    p.Name,
			BgStart: palette.Hex(p.BgStart),
			BgEnd:   palette.Hex(p.BgEnd),
			Lines:   lines,
			Grid:    palette.Hex(p.Grid),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	// Today's image changes at midnight, so it is only briefly cacheable.
	s.serveArt(w, r, seed.Today(s.opts.Now()), "public, max-age=60")
}

func (s *Server) handleArt(w http.ResponseWriter, r *http.Request) {
	s.serveArt(w, r, chi.URLParam(r, "date"), "public, max-age=31536000, immutable")
}

func (s *Server) serveArt(w http.ResponseWriter, r *http.Request, date, cacheControl string) {
	opts, err := s.requestOptions(r, date)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err == nil {
		err = r.Context().Err()
	}
	if err != nil {
		if ctxErr := r.Context().Err(); ctxErr != nil {
			// The timeout middleware answers 504 itself; a client that
			// went away gets nothing.
			s.logger.Warn("request canceled", "date", date, "error", ctxErr)
			return
		}
		writeError(w, err)
		return
	}

	etag := `"` + cache.Hash(res.Artifact)[:32] + `"`
	h := w.Header()
	h.Set("Content-Type", sink.ContentType(res.Format))
	h.Set("Cache-Control", cacheControl)
	h.Set("ETag", etag)
	h.Set(HeaderSeed, res.Seed.Hex())
	h.Set(HeaderPalette, res.Palette.Name)
	if res.CacheHit {
		h.Set(HeaderCache, "HIT")
	} else {
		h.Set(HeaderCache, "MISS")
	}

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

// requestOptions builds pipeline options from the date and query string.
func (s *Server) requestOptions(r *http.Request, date string) (pipeline.Options, error) {
	if err := errors.ValidateDate(date); err != nil {
		return pipeline.Options{}, err
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Date:     date,
		Width:    s.opts.Width,
		Height:   s.opts.Height,
		Style:    s.opts.Style,
		Format:   s.opts.Format,
		Palette:  q.Get("palette"),
		Registry: s.opts.Registry,
		Logger:   s.logger,
	}
	var err error
	if opts.Width, err = dimensionParam(q, "width", opts.Width); err != nil {
		return opts, err
	}
	if opts.Height, err = dimensionParam(q, "height", opts.Height); err != nil {
		return opts, err
	}
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("format"); v != "" {
		opts.Format = v
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	if opts.Width > s.opts.MaxSize || opts.Height > s.opts.MaxSize {
		return opts, errors.New(errors.ErrCodeInvalidDimensions,
			"dimensions %dx%d exceed the server limit of %d", opts.Width, opts.Height, s.opts.MaxSize)
	}
	return opts, nil
}

// dimensionParam reads a positive integer query parameter. An absent
// parameter yields def; a present one must be a positive integer.
func dimensionParam(q url.Values, name string, def int) (int, error) {
	if !q.Has(name) {
		return def, nil
	}
	v := q.Get(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidDimensions, err, "invalid %s %q", name, v)
	}
	if n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidDimensions, "%s must be positive, got %d", name, n)
	}
	return n, nil
}

// =============================================================================
// Middleware and helpers
// =============================================================================

// observe reports requests to the HTTP hooks and logs them.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsInvalidInput(err), errors.Is(err, errors.ErrCodeAllocation):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	case stderrors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
