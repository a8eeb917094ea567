// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ilnlp/convert"
	"ilnlp/ilasp"
	"ilnlp/parser"
	"ilnlp/task"
)

// Response is the JSON body of every endpoint except /convert.
type Response struct {
	Stage     string              `json:"stage"`
	RunID     string              `json:"run_id,omitempty"`
	Task      *ilasp.Document     `json:"task,omitempty"`
	Diagnoses []convert.Diagnosis `json:"diagnoses,omitempty"`
	Error     string              `json:"error,omitempty"`
	Position  *parser.Error       `json:"position,omitempty"`
}

const (
	ParsingStage    = "parse"
	CompatibleStage = "compatibility"
	ConvertedStage  = "converted"
	DiagnosedStage  = "diagnosed"
	InternalStage   = "internal"
	maxRequestBytes = 4 << 20
)

type Server struct {
	Pipeline *convert.Pipeline
	Logger   *zap.Logger
}

func New(p *convert.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Pipeline: p, Logger: logger}
}

// Handler returns the router serving all endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logging)
	r.Use(allowAllOrigins)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Post("/convert", s.convert)
	r.Post("/task", s.task)
	r.Post("/diagnose", s.diagnose)
	return r
}

func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.Logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	text, err := s.getTaskFile(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := s.Pipeline.Convert(r.Context(), text, nil)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Run-Id", result.RunID)
	if _, err := io.WriteString(w, result.Program); err != nil {
		s.Logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) task(w http.ResponseWriter, r *http.Request) {
	text, err := s.getTaskFile(w, r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, Response{Stage: ParsingStage, Error: err.Error()})
		return
	}
	result, err := s.Pipeline.Synthesize(r.Context(), text, nil)
	if err != nil {
		s.respondError(w, err)
		return
	}
	doc := result.Task.Document()
	s.respond(w, http.StatusOK, Response{Stage: ConvertedStage, RunID: result.RunID, Task: &doc})
}

func (s *Server) diagnose(w http.ResponseWriter, r *http.Request) {
	text, err := s.getTaskFile(w, r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, Response{Stage: ParsingStage, Error: err.Error()})
		return
	}
	diagnoses, err := s.Pipeline.Diagnose(r.Context(), text)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, Response{Stage: DiagnosedStage, Diagnoses: diagnoses})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	response := Response{Stage: InternalStage, Error: err.Error()}
	var perr *parser.Error
	switch {
	case errors.As(err, &perr):
		response.Stage = ParsingStage
		response.Position = perr
	case isIncompatible(err):
		response.Stage = CompatibleStage
	}
	s.respond(w, statusOf(err), response)
}

func (s *Server) respond(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.Logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) getTaskFile(w http.ResponseWriter, r *http.Request) (string, error) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			s.Logger.Warn("close request body", zap.Error(err))
		}
	}()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func isIncompatible(err error) bool {
	var incompatible *task.IncompatibleError
	return errors.As(err, &incompatible)
}

func statusOf(err error) int {
	var perr *parser.Error
	switch {
	case errors.As(err, &perr):
		return http.StatusBadRequest
	case isIncompatible(err), errors.Is(err, task.ErrNoModel):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
