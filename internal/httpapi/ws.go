package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/epanichev/sheetcheck/internal/interview"
	"github.com/epanichev/sheetcheck/internal/oracle"
	"github.com/epanichev/sheetcheck/internal/store"
)

const (
	wsTypeCandidateMessage   = "candidate_message"
	wsTypeInterviewerMessage = "interviewer_message"
	wsTypeErrorEvent         = "error_event"
)

type wsCandidateMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type wsInterviewerMessage struct {
	Type        string          `json:"type"`
	InterviewID string          `json:"interview_id"`
	Message     string          `json:"message"`
	Phase       interview.Phase `json:"phase"`
	Done        bool            `json:"done"`
}

type wsErrorEvent struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
	Detail    string `json:"detail"`
}

// handleInterviewWS runs a live chat over one websocket connection. Each
// candidate message is a full turn: the handler blocks on the oracle, so at
// most one turn per connection is in flight at a time.
func (s *Server) handleInterviewWS(w http.ResponseWriter, r *http.Request) {
	interviewID := strings.TrimSpace(r.URL.Query().Get("interview_id"))
	if interviewID == "" {
		respondError(w, http.StatusBadRequest, "missing_interview_id",
			"query parameter interview_id is required", false)
		return
	}
	if _, err := s.service.Status(r.Context(), interviewID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.countWS("connection", "connected")

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg wsCandidateMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != wsTypeCandidateMessage {
			s.writeWS(conn, wsErrorEvent{
				Type:   wsTypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: "expected {\"type\":\"candidate_message\",\"message\":...}",
			})
			continue
		}
		s.countWS("inbound", wsTypeCandidateMessage)

		sess, turn, err := s.service.HandleMessage(r.Context(), interviewID, msg.Message)
		if err != nil {
			s.writeWS(conn, wsErrorEventFor(err))
			continue
		}

		s.writeWS(conn, wsInterviewerMessage{
			Type:        wsTypeInterviewerMessage,
			InterviewID: sess.ID,
			Message:     turn.Message,
			Phase:       sess.Phase,
			Done:        turn.Done,
		})
	}

	s.countWS("connection", "disconnected")
}

func (s *Server) writeWS(conn *websocket.Conn, v any) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(v); err != nil {
		return
	}
	if ev, ok := v.(wsErrorEvent); ok {
		s.countWS("outbound", ev.Type)
		return
	}
	s.countWS("outbound", wsTypeInterviewerMessage)
}

func (s *Server) countWS(direction, kind string) {
	if s.metrics == nil {
		return
	}
	s.metrics.WSMessages.WithLabelValues(direction, kind).Inc()
}

func wsErrorEventFor(err error) wsErrorEvent {
	ev := wsErrorEvent{Type: wsTypeErrorEvent, Detail: err.Error()}
	switch {
	case errors.Is(err, store.ErrNotFound):
		ev.Code = "interview_not_found"
	case errors.Is(err, interview.ErrEmptyMessage):
		ev.Code = "empty_message"
	case errors.Is(err, interview.ErrConcluded):
		ev.Code = "interview_concluded"
	case errors.Is(err, oracle.ErrUnavailable):
		ev.Code = "oracle_unavailable"
		ev.Retryable = true
	case errors.Is(err, oracle.ErrMalformed):
		ev.Code = "oracle_malformed"
		ev.Retryable = true
	default:
		ev.Code = "internal_error"
	}
	return ev
}
