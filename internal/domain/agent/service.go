package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/tool"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/llm"
)

// action is the JSON object the model replies with on every round.
type action struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
	Answer string          `json:"answer"`
}

// Turn is the outcome of one user message: the final answer plus the tool
// invocations made along the way.
type Turn struct {
	Answer    string
	ToolCalls []ToolCall
}

// ToolCall records a single tool invocation within a turn.
type ToolCall struct {
	Name   string
	Params json.RawMessage
	Result json.RawMessage
	Err    string
}

// Service runs the tool-calling conversation loop.
type Service struct {
	provider llm.LLMProvider
	registry *tool.Registry
	profile  Profile
	system   string
	log      *slog.Logger
}

// NewService creates a Service. schemaReport may be empty when introspection
// is unavailable; the model then has to discover the schema through tools.
func NewService(provider llm.LLMProvider, registry *tool.Registry, profile Profile, schemaReport string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider: provider,
		registry: registry,
		profile:  profile,
		system:   BuildSystemPrompt(profile, schemaReport, registry.Definitions()),
		log:      log,
	}
}

// SystemPrompt returns the assembled system message.
func (s *Service) SystemPrompt() string { return s.system }

// Chat runs one user turn: the model may invoke tools for up to
// profile.MaxRounds rounds before it must answer. history carries prior
// turns (user/assistant messages only, no system message).
func (s *Service) Chat(ctx context.Context, history []llm.Message, userMessage string) (Turn, []llm.Message, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: s.system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	turn := Turn{}
	for round := 0; round < s.profile.MaxRounds; round++ {
		resp, err := s.provider.ChatCompletion(ctx, llm.ChatRequest{
			Model:       s.profile.Model,
			Messages:    messages,
			Temperature: s.profile.Temperature,
			MaxTokens:   s.profile.MaxTokens,
		})
		if err != nil {
			return Turn{}, history, fmt.Errorf("agent: chat completion: %w", err)
		}

		act, ok := parseAction(resp.Content)
		if !ok || act.Action == "" || act.Action == "final" {
			// Plain text or an explicit final action ends the turn.
			turn.Answer = act.Answer
			if turn.Answer == "" {
				turn.Answer = strings.TrimSpace(resp.Content)
			}
			messages = append(messages, llm.Message{Role: "assistant", Content: turn.Answer})
			return turn, messages[1:], nil
		}

		messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content})

		call := ToolCall{Name: act.Action, Params: act.Params}
		result, err := s.registry.Call(ctx, act.Action, act.Params)
		if err != nil {
			// Tool failures go back to the model so it can correct itself.
			call.Err = err.Error()
			s.log.Warn("tool call failed", "tool", act.Action, "error", err)
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: fmt.Sprintf("Tool %s failed: %s", act.Action, err),
			})
		} else {
			call.Result = result
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: fmt.Sprintf("Tool %s result:\n%s", act.Action, result),
			})
		}
		turn.ToolCalls = append(turn.ToolCalls, call)
	}

	return Turn{}, history, fmt.Errorf("agent: no final answer after %d rounds", s.profile.MaxRounds)
}

// parseAction extracts the action object from the model reply. Models often
// wrap JSON in code fences or prose, so the first balanced object is used.
func parseAction(content string) (action, bool) {
	raw, ok := firstJSONObject(content)
	if !ok {
		return action{}, false
	}
	var act action
	if err := json.Unmarshal([]byte(raw), &act); err != nil {
		return action{}, false
	}
	if act.Action == "" {
		return action{}, false
	}
	return act, true
}

// firstJSONObject returns the first balanced {...} in s, respecting string
// literals and escapes.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
