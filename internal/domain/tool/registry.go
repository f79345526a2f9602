// Package tool holds the tool surface exposed to agent runtimes: named,
// schema-described functions an LLM can invoke. The registry validates call
// params against each tool's JSON input schema before dispatching.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrExecutorNotRegistered     = errors.New("tool executor not registered")
	ErrValidationFailed          = errors.New("tool params validation failed")
)

// Definition describes one callable tool.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Registry maps tool names to definitions and executors.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
	executors   map[string]Executor
	order       []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		executors:   make(map[string]Executor),
	}
}

// Register adds a tool definition with its executor. Registering the same
// name twice is an error.
func (r *Registry) Register(def Definition, executor Executor) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("tool: name is required")
	}
	if executor == nil {
		return fmt.Errorf("tool %q: executor is required", def.Name)
	}
	if len(def.InputSchema) == 0 {
		def.InputSchema = json.RawMessage(`{"type":"object","additionalProperties":false,"properties":{}}`)
	}
	if !json.Valid(def.InputSchema) {
		return fmt.Errorf("tool %q: input schema must be valid json", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[def.Name]; exists {
		return ErrExecutorAlreadyRegistered
	}
	r.definitions[def.Name] = def
	r.executors[def.Name] = executor
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns the executor registered under name.
func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	if !ok {
		return nil, ErrExecutorNotRegistered
	}
	return executor, nil
}

// Definitions returns the registered tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.definitions[name])
	}
	return out
}

// Call validates params against the tool's input schema and dispatches to
// the executor.
func (r *Registry) Call(ctx context.Context, name string, params json.RawMessage) (json.RawMessage, error) {
	executor, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if err := r.ValidateParams(name, params); err != nil {
		return nil, err
	}
	return executor.Execute(ctx, params)
}

// ValidateParams checks params against the tool's declared input schema.
// Only the schema features the builtin tools use are enforced: required
// fields and additionalProperties.
func (r *Registry) ValidateParams(name string, params json.RawMessage) error {
	r.mu.RLock()
	def, ok := r.definitions[name]
	r.mu.RUnlock()
	if !ok {
		return ErrExecutorNotRegistered
	}

	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	var input map[string]any
	if err := json.Unmarshal(params, &input); err != nil {
		return fmt.Errorf("%w: params must be a json object", ErrValidationFailed)
	}

	var schema map[string]any
	if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
		return fmt.Errorf("%w: invalid registered schema", ErrValidationFailed)
	}

	return validateAgainstMinimalSchema(input, schema)
}

func validateAgainstMinimalSchema(input, schema map[string]any) error {
	requiredKeys := extractStringSlice(schema["required"])
	for _, key := range requiredKeys {
		if _, ok := input[key]; !ok {
			return fmt.Errorf("%w: missing required field %q", ErrValidationFailed, key)
		}
	}

	allowAdditional := true
	if v, ok := schema["additionalProperties"].(bool); ok {
		allowAdditional = v
	}

	allowedProps := map[string]struct{}{}
	if props, ok := schema["properties"].(map[string]any); ok {
		for key := range props {
			allowedProps[key] = struct{}{}
		}
	}

	if !allowAdditional {
		for key := range input {
			if _, ok := allowedProps[key]; !ok {
				return fmt.Errorf("%w: unknown field %q", ErrValidationFailed, key)
			}
		}
	}

	return nil
}

func extractStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
