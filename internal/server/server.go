package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/textextract/internal/extract"
	"github.com/hyperifyio/textextract/internal/metrics"
	"github.com/hyperifyio/textextract/internal/render"
)

// DefaultMaxBodyBytes bounds request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes int64 = 1 << 20

// Options configures a Server. Zero values select the defaults.
type Options struct {
	Extractor extract.Extractor
	Renderer  *render.Renderer
	// Metrics enables request instrumentation and GET /metrics when set.
	Metrics *metrics.Metrics
	// MaxBodyBytes caps POST bodies; negative disables the cap.
	MaxBodyBytes int64
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Server is the HTTP front end: a form on GET /, extraction on POST /, and
// file exports on POST /download. It holds no per-request state.
type Server struct {
	extractor extract.Extractor
	renderer  *render.Renderer
	metrics   *metrics.Metrics
	maxBody   int64
	log       zerolog.Logger
}

func New(opts Options) *Server {
	s := &Server{
		extractor: opts.Extractor,
		renderer:  opts.Renderer,
		metrics:   opts.Metrics,
		maxBody:   opts.MaxBodyBytes,
		log:       log.Logger,
	}
	if s.extractor == nil {
		s.extractor = extract.TableExtractor{}
	}
	if s.renderer == nil {
		s.renderer = render.New(string(render.List))
	}
	if s.maxBody == 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	return s
}

// Handler returns the routed handler wrapped with request logging and, when
// enabled, metrics instrumentation.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /{$}", s.handleExtract)
	mux.HandleFunc("POST /download", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var h http.Handler = mux
	h = s.metrics.InstrumentHandler(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(h)
	h = hlog.RemoteAddrHandler("remote")(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = hlog.NewHandler(s.log)(h)
	return h
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, "", nil)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	input, res, ok := s.extractRequest(w, r)
	if !ok {
		return
	}
	s.writePage(w, r, input, &res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	vals, err := readForm(w, r, s.maxBody)
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}
	format := formText(vals, "format")
	if format == "" {
		format = "txt"
	}
	exp, ok := exports[format]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}
	input := formText(vals, InputField)
	res := s.run(r, input)

	var buf bytes.Buffer
	if err := exp.write(&buf, res); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("format", format).Msg("export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", exp.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "extracted."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) extractRequest(w http.ResponseWriter, r *http.Request) (string, extract.Result, bool) {
	vals, err := readForm(w, r, s.maxBody)
	if err != nil {
		s.writeInputError(w, r, err)
		return "", extract.Result{}, false
	}
	input := formText(vals, InputField)
	return input, s.run(r, input), true
}

func (s *Server) run(r *http.Request, input string) extract.Result {
	res := s.extractor.Extract(input)
	s.metrics.ObserveExtraction(len(input), res)
	hlog.FromRequest(r).Debug().Int("input_bytes", len(input)).Int("matches", res.Total()).Msg("extracted")
	return res
}

// writePage renders into a buffer first so a template failure still yields a
// clean 500 instead of a truncated 200.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, input string, res *extract.Result) {
	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, input, res); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	msg := "bad request"
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		msg = "request body exceeds " + humanize.IBytes(uint64(tooLarge.Limit))
	case errors.Is(err, ErrInvalidEncoding), errors.Is(err, ErrUnsupportedCharset):
		msg = err.Error()
	}
	hlog.FromRequest(r).Warn().Err(err).Int("status", status).Msg("rejected request body")
	http.Error(w, msg, status)
}

type export struct {
	contentType string
	write       func(io.Writer, extract.Result) error
}

var exports = map[string]export{
	"txt":  {contentType: "text/plain; charset=utf-8", write: render.Text},
	"json": {contentType: "application/json", write: render.JSON},
	"pdf":  {contentType: "application/pdf", write: render.PDF},
}
