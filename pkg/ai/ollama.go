package ai

import (
	"context"
	"time"

	"rftriage/pkg/config"
	"rftriage/pkg/ollama"
)

func init() {
	RegisterProvider(ProviderInfo{
		Type:        ProviderOllama,
		Name:        "Ollama",
		Description: "Local or remote Ollama-compatible HTTP API",
		RequiresKey: false,
	}, NewOllamaProvider)
}

// OllamaProvider adapts the gateway client to the Provider interface. The
// gateway owns the wire format, the generate fallback and response
// normalization.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates an Ollama provider from config.
func NewOllamaProvider(cfg config.Config) (Provider, error) {
	client := ollama.NewClient(
		cfg.Ollama.Host,
		cfg.Ollama.Model,
		time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second,
	)
	return &OllamaProvider{client: client}, nil
}

// CreateChatCompletion sends a non-streaming chat request through the
// gateway.
func (p *OllamaProvider) CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages := make([]ollama.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollama.Message{Role: msg.Role, Content: msg.Content})
	}

	opts := ollama.Options{
		Model:       req.Model,
		Temperature: req.Temperature,
		JSONMode:    req.JSONMode,
	}

	content, err := p.client.Chat(ctx, messages, opts)
	if err != nil {
		return ChatResponse{}, err
	}

	model := req.Model
	if model == "" {
		model = p.client.Model()
	}
	return ChatResponse{Content: content, Model: model}, nil
}
