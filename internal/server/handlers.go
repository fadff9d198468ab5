package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/decoykit/scamtrap/internal/domain"
	"github.com/decoykit/scamtrap/internal/session"
)

const serviceVersion = "2.0.0"

// messageRequest is the inbound adapter schema. conversationHistory and
// metadata are accepted for compatibility but the core does not require
// them; history lives in the session store.
type messageRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             domain.Message   `json:"message"`
	ConversationHistory []domain.Message `json:"conversationHistory,omitempty"`
	Metadata            *messageMetadata `json:"metadata,omitempty"`
}

type messageMetadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

type messageResponse struct {
	Status       string  `json:"status"`
	Reply        string  `json:"reply"`
	ScamDetected bool    `json:"scamDetected"`
	Confidence   float64 `json:"confidence"`
}

type closeRequest struct {
	SessionID string `json:"sessionId"`
}

// Handler exposes the honeypot core over HTTP.
type Handler struct {
	store  *session.Store
	logger *slog.Logger
}

// NewHandler creates the HTTP handler set around the given store.
func NewHandler(store *session.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// HandleMessage processes one inbound message and returns the agent's reply.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if msg := validateRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.store.Process(r.Context(), req.SessionID, req.Message)
	if err != nil {
		var invalid *domain.InvalidInputError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Error())
			return
		}

		// Internal faults are absorbed: the counterpart gets a bland reply,
		// never an outage that reveals something went wrong on our side.
		h.logger.Error("message processing failed",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("session_id", req.SessionID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, messageResponse{
			Status: "success",
			Reply:  "Sorry, I didn't catch that. Can you say it again?",
		})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Status:       "success",
		Reply:        result.Reply,
		ScamDetected: result.ScamDetected,
		Confidence:   result.Confidence,
	})
}

func validateRequest(req *messageRequest) string {
	switch {
	case strings.TrimSpace(req.SessionID) == "":
		return "sessionId must not be empty"
	case strings.TrimSpace(req.Message.Text) == "":
		return "message.text must not be empty"
	case strings.TrimSpace(req.Message.Sender) == "":
		return "message.sender must not be empty"
	case req.Message.Timestamp <= 0:
		return "message.timestamp must be a positive epoch-ms value"
	}
	return ""
}

// HandleClose concludes a session on an explicit operator signal.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "sessionId must not be empty")
		return
	}

	if !h.store.Close(req.SessionID) {
		writeError(w, http.StatusNotFound, "session not found or already concluded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleStats serves the read-only aggregate snapshot.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	st := h.store.SnapshotStats()

	rate := 0.0
	if st.TotalSessions > 0 {
		rate = float64(st.ScamSessions) / float64(st.TotalSessions) * 100
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalSessions":      st.TotalSessions,
		"activeSessions":     st.ActiveSessions,
		"scamSessions":       st.ScamSessions,
		"artifactsExtracted": st.ArtifactsExtracted,
		"detectionRate":      rate,
		"timestamp":          time.Now().UnixMilli(),
	})
}

// HandleRoot serves service info for health checks.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "scamtrap",
		"version":   serviceVersion,
		"timestamp": time.Now().UnixMilli(),
		"endpoints": map[string]string{
			"honeypot": "/honeypot/message",
			"close":    "/honeypot/close",
			"stats":    "/stats",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
