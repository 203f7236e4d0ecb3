package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/export"
	"github.com/sultanMIB/pdf-ui/internal/ingest"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/schema"
)

const (
	uploadField  = "pdf"
	formatXLSX   = "xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartMem = 8 << 20
)

// Submitter runs the analysis of a staged file, usually through an async.AnalysisQueue.
type Submitter interface {
	Submit(ctx context.Context, path string) (entity.AnalysisResult, error)
}

// HTTPConfig carries the server settings the handlers need.
type HTTPConfig struct {
	StaticDir      string
	MaxUploadBytes int64
	CORSOrigins    []string
	RateLimitRPS   float64 // 0 disables throttling
	RateLimitBurst int
}

// HTTPServer serves the upload endpoint, health check and static UI.
type HTTPServer struct {
	cfg      HTTPConfig
	lex      *lexicon.Lexicon
	analyzer Submitter
	stager   *ingest.Stager
	exporter *export.Service
	limiter  *rate.Limiter
	schema   *jsonschema.Schema
	logger   *slog.Logger
}

type HTTPOption func(*HTTPServer)

// WithResponseSchema validates every analysis response and logs mismatches.
func WithResponseSchema(s *jsonschema.Schema) HTTPOption {
	return func(h *HTTPServer) { h.schema = s }
}

func NewHTTPServer(cfg HTTPConfig, lex *lexicon.Lexicon, analyzer Submitter, stager *ingest.Stager, exporter *export.Service, logger *slog.Logger, opts ...HTTPOption) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	h := &HTTPServer{
		cfg:      cfg,
		lex:      lex,
		analyzer: analyzer,
		stager:   stager,
		exporter: exporter,
		logger:   logger,
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Handler returns the routed handler wrapped in request-id and CORS middleware.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /", h.handleStatic)
	return withRequestID(withCORS(h.cfg.CORSOrigins, mux))
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": h.lex.Labels.Healthy})
}

func (h *HTTPServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		http.ServeFile(w, r, filepath.Join(h.cfg.StaticDir, "index.html"))
		return
	}
	http.FileServer(http.Dir(h.cfg.StaticDir)).ServeHTTP(w, r)
}

func (h *HTTPServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := common.LoggerFrom(ctx, h.logger)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("server.analyze.panic", "panic", rec)
			h.writeFailure(w, http.StatusInternalServerError, h.lex.ProcessingFailed(fmt.Sprint(rec)))
		}
	}()

	if h.limiter != nil && !h.limiter.Allow() {
		log.Warn("server.analyze.throttled")
		h.writeFailure(w, http.StatusTooManyRequests, h.lex.Labels.Busy)
		return
	}

	upload, err := h.readUpload(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("server.analyze.too_large", "limit", tooLarge.Limit)
			h.writeFailure(w, http.StatusRequestEntityTooLarge, h.lex.Labels.TooLarge)
			return
		}
		log.Error("server.analyze.read_failed", "err", err)
		h.writeFailure(w, http.StatusInternalServerError, h.lex.ProcessingFailed(err.Error()))
		return
	}
	if err := ingest.ValidateUpload(upload); err != nil {
		log.Warn("server.analyze.rejected", "code", common.AppErrorCode(err), "filename", upload.Filename)
		h.writeFailure(w, http.StatusBadRequest, UploadMessage(h.lex, err))
		return
	}

	ctx = common.WithFilename(ctx, upload.Filename)
	log = common.LoggerFrom(ctx, h.logger)

	path, cleanup, err := h.stager.Stage(ctx, upload.Data)
	if err != nil {
		log.Error("server.analyze.stage_failed", "err", err)
		h.writeFailure(w, http.StatusInternalServerError, h.lex.ProcessingFailed(err.Error()))
		return
	}
	defer cleanup()

	res, err := h.analyzer.Submit(ctx, path)
	if err != nil {
		status := http.StatusInternalServerError
		msg := h.lex.ProcessingFailed(err.Error())
		switch {
		case errors.Is(err, common.ErrTimeout):
			status = http.StatusGatewayTimeout
		case errors.Is(err, common.ErrQueueClosed):
			status, msg = http.StatusServiceUnavailable, h.lex.Labels.Busy
		}
		log.Error("server.analyze.failed", "err", err, "status", status)
		h.writeFailure(w, status, msg)
		return
	}

	if r.URL.Query().Get("format") == formatXLSX && res.Success {
		h.writeWorkbook(ctx, w, upload.Filename, res.Tables)
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		log.Error("server.analyze.encode_failed", "err", err)
		h.writeFailure(w, http.StatusInternalServerError, h.lex.ProcessingFailed(err.Error()))
		return
	}
	if h.schema != nil {
		if err := schema.ValidateJSON(h.schema, body); err != nil {
			log.Warn("server.analyze.schema_mismatch", "err", err)
		}
	}
	log.Info("server.analyze.ok", "success", res.Success, "bytes", len(upload.Data))
	writeRaw(w, http.StatusOK, body)
}

// readUpload pulls the "pdf" part out of a multipart body. A request without
// that part is not an error; ValidateUpload reports it.
func (h *HTTPServer) readUpload(w http.ResponseWriter, r *http.Request) (ingest.Upload, error) {
	if h.cfg.MaxUploadBytes > 0 {
		if r.ContentLength > h.cfg.MaxUploadBytes {
			return ingest.Upload{}, &http.MaxBytesError{Limit: h.cfg.MaxUploadBytes}
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ingest.Upload{}, err
		}
		// Bodies that are not multipart carry no file part.
		return ingest.Upload{}, nil
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		// A part sent without a filename is parsed as a plain value.
		_, named := r.MultipartForm.Value[uploadField]
		return ingest.Upload{Present: named}, nil
	}
	if err != nil {
		return ingest.Upload{}, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return ingest.Upload{}, err
	}
	return ingest.Upload{Present: true, Filename: header.Filename, Data: data}, nil
}

// UploadMessage returns the localized message for an upload validation error.
func UploadMessage(lex *lexicon.Lexicon, err error) string {
	switch common.AppErrorCode(err) {
	case common.CodeNoFile:
		return lex.Labels.NoFile
	case common.CodeNoFilename:
		return lex.Labels.NoFilename
	case common.CodeNotPDF:
		return lex.Labels.NotPDF
	case common.CodeEmptyFile:
		return lex.Labels.EmptyFile
	}
	return err.Error()
}

func (h *HTTPServer) writeWorkbook(ctx context.Context, w http.ResponseWriter, filename string, tables []entity.Table) {
	b, err := h.exporter.TablesXLSX(ctx, tables)
	if err != nil {
		common.LoggerFrom(ctx, h.logger).Error("server.export.failed", "err", err)
		h.writeFailure(w, http.StatusInternalServerError, h.lex.ProcessingFailed(err.Error()))
		return
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + "-tables.xlsx"
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *HTTPServer) writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, entity.Failure(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, b)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func newRequestID() string {
	return uuid.NewString()
}
