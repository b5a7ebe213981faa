package testdata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rftriage/pkg/ai"
)

type fakeProvider struct {
	lastRequest ai.ChatRequest
	content     string
	err         error
}

func (f *fakeProvider) CreateChatCompletion(_ context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return ai.ChatResponse{}, f.err
	}
	return ai.ChatResponse{Content: f.content}, nil
}

func TestGenerateUserProfile(t *testing.T) {
	provider := &fakeProvider{content: `{
		"first_name": "Ana",
		"last_name": "Popescu",
		"email": "ana.popescu@example.com",
		"password": "Str0ng-Pass!",
		"country": "AT"
	}`}
	generator := NewGenerator(provider)

	object, err := generator.Generate(context.Background(), "user_profile", map[string]string{"country": "AT"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if object["first_name"] != "Ana" {
		t.Errorf("Expected first_name 'Ana', got %v", object["first_name"])
	}
	if object["country"] != "AT" {
		t.Errorf("Expected country 'AT', got %v", object["country"])
	}

	if !provider.lastRequest.JSONMode {
		t.Error("Expected JSON mode requested")
	}
	if provider.lastRequest.Temperature == nil || *provider.lastRequest.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", provider.lastRequest.Temperature)
	}
	userPrompt := provider.lastRequest.Messages[1].Content
	if !strings.Contains(userPrompt, "user_profile object as JSON") {
		t.Error("Expected data type named in prompt")
	}
	if !strings.Contains(userPrompt, "country=AT") {
		t.Error("Expected constraints listed in prompt")
	}
}

func TestGenerateStripsFences(t *testing.T) {
	provider := &fakeProvider{content: "```json\n{\"first_name\": \"Ana\", \"last_name\": \"Popescu\", \"email\": \"a@b.c\", \"password\": \"pw\"}\n```"}
	generator := NewGenerator(provider)

	object, err := generator.Generate(context.Background(), "user_profile", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if object["email"] != "a@b.c" {
		t.Errorf("Expected email from fenced JSON, got %v", object["email"])
	}
}

func TestGenerateSchemaViolation(t *testing.T) {
	// Missing the required password field.
	provider := &fakeProvider{content: `{"first_name": "Ana", "last_name": "Popescu", "email": "a@b.c"}`}
	generator := NewGenerator(provider)

	if _, err := generator.Generate(context.Background(), "user_profile", nil); err == nil {
		t.Error("Expected schema violation error")
	}
}

func TestGenerateUnknownTypeAcceptsAnyObject(t *testing.T) {
	provider := &fakeProvider{content: `{"anything": "goes"}`}
	generator := NewGenerator(provider)

	object, err := generator.Generate(context.Background(), "invoice", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if object["anything"] != "goes" {
		t.Errorf("Expected passthrough object, got %v", object)
	}
}

func TestGenerateNonObjectRejected(t *testing.T) {
	provider := &fakeProvider{content: `[1, 2, 3]`}
	generator := NewGenerator(provider)

	if _, err := generator.Generate(context.Background(), "user_profile", nil); err == nil {
		t.Error("Expected error for non-object result")
	}
}

func TestGenerateProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend down")}
	generator := NewGenerator(provider)

	if _, err := generator.Generate(context.Background(), "user_profile", nil); err == nil {
		t.Error("Expected provider error to propagate")
	}
}

func TestTypes(t *testing.T) {
	types := Types()
	if len(types) < 2 {
		t.Fatalf("Expected at least 2 registered types, got %d", len(types))
	}
	found := false
	for _, name := range types {
		if name == "user_profile" {
			found = true
		}
	}
	if !found {
		t.Error("Expected user_profile among registered types")
	}
}
