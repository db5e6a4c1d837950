// Package httpapi exposes grading over HTTP with a chi router.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/domain"
	"essaysim/internal/linalg"
	logpkg "essaysim/internal/logger"
	"essaysim/internal/port"
	"essaysim/internal/similarity"
	"essaysim/internal/textstats"
	"essaysim/internal/usecase"
)

const (
	maxResponses     = 100
	maxBodyBytes     = 4 << 20
	defaultListLimit = 20
)

// Error codes returned in the error body.
const (
	CodeBadRequest         = "bad_request"
	CodeUnknownLanguage    = "unknown_language"
	CodeInvalidThresholds  = "invalid_thresholds"
	CodeUnknownStatItem    = "unknown_stat_item"
	CodeNoResponses        = "no_responses"
	CodeAttemptNotFound    = "attempt_not_found"
	CodeNonConvergence     = "non_convergence"
	CodeVocabularyTooLarge = "vocabulary_too_large"
	CodeHistoryDisabled    = "history_disabled"
	CodeInternal           = "internal_error"
)

var errHistoryDisabled = errors.New("attempt history is disabled")

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the grading API. A nil store disables the attempt routes.
type Server struct {
	grader        *usecase.GradeUseCase
	registry      *analyzer.Registry
	store         port.AttemptStore
	logger        *zap.Logger
	errorHandlers []errorHandler
}

func NewServer(grader *usecase.GradeUseCase, registry *analyzer.Registry, st port.AttemptStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		grader:   grader,
		registry: registry,
		store:    st,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(analyzer.ErrUnknownLanguage, http.StatusBadRequest, CodeUnknownLanguage),
		sentinelHandler(usecase.ErrInvalidThresholds, http.StatusBadRequest, CodeInvalidThresholds),
		sentinelHandler(textstats.ErrUnknownItem, http.StatusBadRequest, CodeUnknownStatItem),
		sentinelHandler(usecase.ErrNoResponses, http.StatusBadRequest, CodeNoResponses),
		sentinelHandler(domain.ErrAttemptNotFound, http.StatusNotFound, CodeAttemptNotFound),
		sentinelHandler(errHistoryDisabled, http.StatusNotFound, CodeHistoryDisabled),
		sentinelHandler(similarity.ErrVocabularyTooLarge, http.StatusRequestEntityTooLarge, CodeVocabularyTooLarge),
		sentinelHandler(linalg.ErrNonConvergence, http.StatusUnprocessableEntity, CodeNonConvergence),
	}
	return s
}

// Routes mounts the API on a new router with the standard middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.useMiddleware(r)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/grade", s.Grade)
		r.Post("/stats", s.Stats)
		r.Get("/languages", s.Languages)
		r.Get("/attempts", s.ListAttempts)
		r.Get("/attempts/{id}", s.GetAttempt)
	})
	return r
}

type responseBody struct {
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

type gradeRequest struct {
	Language   string              `json:"language"`
	Reference  string              `json:"reference"`
	Responses  []responseBody      `json:"responses"`
	Thresholds *usecase.Thresholds `json:"thresholds,omitempty"`
	StatItems  []string            `json:"stat_items,omitempty"`
	Joint      bool                `json:"joint,omitempty"`
	Record     bool                `json:"record,omitempty"`
}

// Grade handles POST /v1/grade.
func (s *Server) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Responses) > maxResponses {
		writeError(w, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("responses count must be at most %d", maxResponses))
		return
	}
	items, err := textstats.ParseItems(strings.Join(req.StatItems, ","))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	responses := make([]usecase.Response, len(req.Responses))
	for i, resp := range req.Responses {
		responses[i] = usecase.Response{Source: resp.Source, Text: resp.Text}
	}

	res, err := s.grader.Grade(r.Context(), usecase.GradeRequest{
		Language:   req.Language,
		Reference:  req.Reference,
		Responses:  responses,
		Thresholds: req.Thresholds,
		StatItems:  items,
		Joint:      req.Joint,
		Record:     req.Record && s.store != nil,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type statsRequest struct {
	Text  string   `json:"text"`
	Items []string `json:"items,omitempty"`
}

type statsResponse struct {
	Stats []textstats.Value `json:"stats"`
}

// Stats handles POST /v1/stats. No items selects all of them.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if !s.decode(w, r, &req) {
		return
	}
	items, err := textstats.ParseItems(strings.Join(req.Items, ","))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(items) == 0 {
		items = textstats.AllItems
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: textstats.Compute(req.Text, items)})
}

type language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type languagesResponse struct {
	Languages []language `json:"languages"`
}

// Languages handles GET /v1/languages.
func (s *Server) Languages(w http.ResponseWriter, r *http.Request) {
	codes := s.registry.Codes()
	resp := languagesResponse{Languages: make([]language, len(codes))}
	for i, code := range codes {
		resp.Languages[i] = language{Code: code, Name: s.registry.Name(code)}
	}
	writeJSON(w, http.StatusOK, resp)
}

type attemptsResponse struct {
	Items   []domain.Attempt `json:"items"`
	Summary domain.Summary   `json:"summary"`
}

// ListAttempts handles GET /v1/attempts?limit=N.
func (s *Server) ListAttempts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleDomainError(w, r, errHistoryDisabled)
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := s.store.ListAttempts(limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	sum, err := s.store.Summary()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Attempt{}
	}
	writeJSON(w, http.StatusOK, attemptsResponse{Items: items, Summary: sum})
}

// GetAttempt handles GET /v1/attempts/{id}.
func (s *Server) GetAttempt(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleDomainError(w, r, errHistoryDisabled)
		return
	}
	a, err := s.store.GetAttempt(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
