package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/epanichev/sheetcheck/internal/config"
	"github.com/epanichev/sheetcheck/internal/interview"
	"github.com/epanichev/sheetcheck/internal/observability"
	"github.com/epanichev/sheetcheck/internal/oracle"
	"github.com/epanichev/sheetcheck/internal/store"
)

type Server struct {
	cfg       config.Config
	service   *interview.Service
	metrics   *observability.Metrics
	storeMode string
	upgrader  websocket.Upgrader
}

func New(cfg config.Config, service *interview.Service, metrics *observability.Metrics, storeMode string) *Server {
	return &Server{
		cfg:       cfg,
		service:   service,
		metrics:   metrics,
		storeMode: storeMode,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other sites cannot drive a candidate's
				// interview if the service is exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndexPage)
	r.Get("/report/{id}", s.handleReportPage)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/interview/start", s.handleStart)
	r.Post("/api/interview/message", s.handleMessage)
	r.Get("/api/interview/status/{id}", s.handleStatus)
	r.Get("/api/interview/report/{id}", s.handleReport)
	r.Get("/api/interview/ws", s.handleInterviewWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode,
	})
}

type startRequest struct {
	CandidateName   string `json:"candidate_name"`
	TargetRole      string `json:"target_role"`
	ExperienceLevel string `json:"experience_level"`
}

type startResponse struct {
	InterviewID   string          `json:"interview_id"`
	CandidateName string          `json:"candidate_name"`
	TargetRole    string          `json:"target_role"`
	Phase         interview.Phase `json:"phase"`
	StartedAt     string          `json:"started_at"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error(), false)
		return
	}
	req.CandidateName = strings.TrimSpace(req.CandidateName)
	req.TargetRole = strings.TrimSpace(req.TargetRole)
	if req.CandidateName == "" || req.TargetRole == "" {
		respondError(w, http.StatusBadRequest, "missing_fields",
			"candidate_name and target_role are required", false)
		return
	}

	sess, err := s.service.Start(r.Context(), interview.StartParams{
		CandidateName:   req.CandidateName,
		TargetRole:      req.TargetRole,
		ExperienceLevel: strings.TrimSpace(req.ExperienceLevel),
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, startResponse{
		InterviewID:   sess.ID,
		CandidateName: sess.CandidateName,
		TargetRole:    sess.TargetRole,
		Phase:         sess.Phase,
		StartedAt:     sess.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

type messageRequest struct {
	InterviewID string `json:"interview_id"`
	Message     string `json:"message"`
}

type messageResponse struct {
	InterviewID string          `json:"interview_id"`
	Message     string          `json:"message"`
	Phase       interview.Phase `json:"phase"`
	Done        bool            `json:"done"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error(), false)
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" {
		respondError(w, http.StatusBadRequest, "missing_interview_id", "interview_id is required", false)
		return
	}

	sess, turn, err := s.service.HandleMessage(r.Context(), req.InterviewID, req.Message)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		InterviewID: sess.ID,
		Message:     turn.Message,
		Phase:       sess.Phase,
		Done:        turn.Done,
	})
}

type statusResponse struct {
	InterviewID       string               `json:"interview_id"`
	CandidateName     string               `json:"candidate_name"`
	TargetRole        string               `json:"target_role"`
	Phase             interview.Phase      `json:"phase"`
	CurrentDifficulty interview.Difficulty `json:"current_difficulty"`
	QuestionNumber    int                  `json:"question_number"`
	QuestionsAnswered int                  `json:"questions_answered"`
	RunningScore      float64              `json:"running_score"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.service.Status(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{
		InterviewID:       sess.ID,
		CandidateName:     sess.CandidateName,
		TargetRole:        sess.TargetRole,
		Phase:             sess.Phase,
		CurrentDifficulty: sess.Difficulty,
		QuestionNumber:    sess.QuestionNumber,
		QuestionsAnswered: len(sess.Records),
		RunningScore:      sess.RunningScore(),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.service.Report(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "interview_not_found", err.Error(), false)
	case errors.Is(err, interview.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "empty_message", err.Error(), false)
	case errors.Is(err, interview.ErrConcluded):
		respondError(w, http.StatusConflict, "interview_concluded", err.Error(), false)
	case errors.Is(err, interview.ErrNoEvaluations):
		respondError(w, http.StatusConflict, "no_evaluations", err.Error(), false)
	case errors.Is(err, oracle.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "oracle_unavailable", err.Error(), true)
	case errors.Is(err, oracle.ErrMalformed):
		respondError(w, http.StatusBadGateway, "oracle_malformed", err.Error(), true)
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error(), false)
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string, retryable bool) {
	respondJSON(w, status, errorResponse{Error: message, Code: code, Retryable: retryable})
}
