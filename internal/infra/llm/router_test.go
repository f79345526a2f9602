package llm

import (
	"context"
	"testing"
)

type fakeProvider struct {
	id string
}

func (f *fakeProvider) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: "ok"}, nil
}

func (f *fakeProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: f.id, Provider: "fake"}
}

func (f *fakeProvider) HealthCheck(_ context.Context) error { return nil }

func TestRouter_RouteDefault(t *testing.T) {
	t.Parallel()

	r := NewRouter(map[string]LLMProvider{
		"fake": &fakeProvider{id: "fake-model"},
	}, "fake")

	p, err := r.Route(context.Background())
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if p.ModelInfo().ID != "fake-model" {
		t.Errorf("expected fake-model, got %q", p.ModelInfo().ID)
	}
}

func TestRouter_DefaultNotRegistered(t *testing.T) {
	t.Parallel()

	r := NewRouter(map[string]LLMProvider{}, "missing")

	if _, err := r.Route(context.Background()); err == nil {
		t.Fatal("expected error for unregistered default provider")
	}
}

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	r := NewRouter(map[string]LLMProvider{}, "late")
	r.Register("late", &fakeProvider{id: "late-model"})

	p, err := r.Route(context.Background())
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if p.ModelInfo().ID != "late-model" {
		t.Errorf("expected late-model, got %q", p.ModelInfo().ID)
	}
}

func TestRouter_DefensiveCopy(t *testing.T) {
	t.Parallel()

	providers := map[string]LLMProvider{"fake": &fakeProvider{id: "original"}}
	r := NewRouter(providers, "fake")

	// Mutating the caller's map must not affect the router.
	delete(providers, "fake")

	if _, err := r.Route(context.Background()); err != nil {
		t.Fatalf("Route failed after caller mutated the input map: %v", err)
	}
}
