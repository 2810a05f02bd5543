package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/conorfennell/salita/internal/domain"
	"github.com/conorfennell/salita/internal/sentence"
	"github.com/conorfennell/salita/internal/srs"
)

const maxBodyBytes = 1 << 20

// Server holds the dependencies for the HTTP API.
type Server struct {
	scheduler *srs.Scheduler
	validator *sentence.Validator
	catalog   *domain.Catalog
	router    *http.ServeMux
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewServer creates and configures a new server.
func NewServer(scheduler *srs.Scheduler, v *sentence.Validator, catalog *domain.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		scheduler: scheduler,
		validator: v,
		catalog:   catalog,
		router:    http.NewServeMux(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.withRequestLog(s.router).ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("POST /answers", s.handlePostAnswer())
	s.router.HandleFunc("GET /review/due", s.handleGetDue())
	s.router.HandleFunc("GET /review/difficult", s.handleGetDifficult())
	s.router.HandleFunc("GET /stats", s.handleGetStats())
	s.router.HandleFunc("GET /records/{id}", s.handleGetRecord())
	s.router.HandleFunc("DELETE /records/{id}", s.handleDeleteRecord())

	s.router.HandleFunc("GET /drills", s.handleGetDrills())
	s.router.HandleFunc("POST /drills/{id}/check", s.handleCheckDrill())
	s.router.HandleFunc("POST /drills/{id}/hints", s.handleDrillHints())
	s.router.HandleFunc("POST /sentences/validate", s.handleValidateSentence())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type loggerKey struct{}

// withRequestLog tags each request with an id and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		logger := s.logger.With("request_id", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(withLogger(r.Context(), logger)))

		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "invalid field "+verrs[0].Field()+": failed "+verrs[0].Tag())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
