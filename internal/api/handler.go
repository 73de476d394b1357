package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rafael/ritmo/internal/assistant"
)

// maxRequestBodySize caps chat request bodies (1MB).
const maxRequestBodySize = 1 << 20

type Handler struct {
	assistant *assistant.Assistant
	userID    int64
}

// New creates the chat handler. The user ID is the identity every dispatched
// call is scoped to; the single-tenant deployment resolves it once at boot.
func New(a *assistant.Assistant, userID int64) *Handler {
	return &Handler{assistant: a, userID: userID}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type functionOutcome struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type chatResponse struct {
	Message         string            `json:"message"`
	SessionID       string            `json:"sessionId"`
	ActionsExecuted int               `json:"actionsExecuted"`
	Functions       []functionOutcome `json:"functions"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleChat handles POST /chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	slog.Info("chat request",
		"session_id", sessionID,
		"user_id", h.userID,
		"message_length", len(req.Message),
	)

	reply, err := h.assistant.Respond(r.Context(), h.userID, sessionID, req.Message)
	if err != nil {
		slog.Error("chat turn failed", "error", err, "session_id", sessionID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "processing error",
			Details: err.Error(),
		})
		return
	}

	functions := make([]functionOutcome, 0, len(reply.Executed))
	for _, ec := range reply.Executed {
		functions = append(functions, functionOutcome{
			Name:    ec.Name,
			Success: ec.Result.Success,
			Message: ec.Result.Message,
		})
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:         reply.Message,
		SessionID:       sessionID,
		ActionsExecuted: len(functions),
		Functions:       functions,
	})
}

// RegisterRoutes mounts the chat endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}
