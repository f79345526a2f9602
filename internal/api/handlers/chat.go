// HTTP handler for the conversational assistant.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/agent"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/llm"
)

// ChatService is the minimal contract used by ChatHandler.
// agent.Service satisfies this interface.
type ChatService interface {
	Chat(ctx context.Context, history []llm.Message, userMessage string) (agent.Turn, []llm.Message, error)
}

// ChatHandler handles POST /api/v1/chat. The endpoint is stateless: clients
// send the prior conversation back with each request.
type ChatHandler struct {
	chat ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatMessage is one prior conversation turn in the request/response.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// ToolCallResponse records one tool invocation made while answering.
type ToolCallResponse struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ChatResponse is the response body for POST /api/v1/chat.
type ChatResponse struct {
	Answer    string             `json:"answer"`
	History   []ChatMessage      `json:"history"`
	ToolCalls []ToolCallResponse `json:"toolCalls,omitempty"`
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	history := make([]llm.Message, 0, len(req.History))
	for _, m := range req.History {
		if m.Role != "user" && m.Role != "assistant" {
			writeError(w, http.StatusBadRequest, "history roles must be user or assistant")
			return
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	turn, updated, err := h.chat.Chat(r.Context(), history, req.Message)
	if err != nil {
		writeError(w, http.StatusBadGateway, "assistant unavailable")
		return
	}

	resp := ChatResponse{
		Answer:  turn.Answer,
		History: make([]ChatMessage, 0, len(updated)),
	}
	for _, m := range updated {
		resp.History = append(resp.History, ChatMessage{Role: m.Role, Content: m.Content})
	}
	for _, call := range turn.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCallResponse{
			Name:   call.Name,
			Params: call.Params,
			Result: call.Result,
			Error:  call.Err,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
