package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rftriage/pkg/config"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

func init() {
	RegisterProvider(ProviderInfo{
		Type:        ProviderOpenAI,
		Name:        "OpenAI",
		Description: "OpenAI-compatible chat completions API",
		RequiresKey: true,
	}, NewOpenAIProvider)
}

// OpenAIProvider implements the Provider interface for hosts that expose an
// OpenAI-style API instead of the Ollama one. There is no legacy fallback
// here; the SDK owns the wire format.
type OpenAIProvider struct {
	client             openai.Client
	defaultModel       string
	defaultTemperature float64
	defaultMaxTokens   int
}

// NewOpenAIProvider creates an OpenAI provider from config.
func NewOpenAIProvider(cfg config.Config) (Provider, error) {
	providerCfg := cfg.OpenAI

	if strings.TrimSpace(providerCfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api_key is required")
	}
	if strings.TrimSpace(providerCfg.Model) == "" {
		return nil, fmt.Errorf("openai model is required")
	}

	timeout := providerCfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 120
	}
	httpClient := &http.Client{Timeout: time.Duration(timeout) * time.Second}

	opts := []option.RequestOption{
		option.WithAPIKey(providerCfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if strings.TrimSpace(providerCfg.APIURL) != "" {
		opts = append(opts, option.WithBaseURL(providerCfg.APIURL))
	}

	return &OpenAIProvider{
		client:             openai.NewClient(opts...),
		defaultModel:       providerCfg.Model,
		defaultTemperature: providerCfg.Temperature,
		defaultMaxTokens:   providerCfg.MaxTokens,
	}, nil
}

// CreateChatCompletion sends a non-streaming chat completion request.
func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	params, err := p.buildChatParams(req)
	if err != nil {
		return ChatResponse{}, err
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ChatResponse{}, err
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return ChatResponse{
		Content: content,
		Model:   resp.Model,
	}, nil
}

func (p *OpenAIProvider) buildChatParams(req ChatRequest) (openai.ChatCompletionNewParams, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("messages are required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		param, err := toChatMessageParam(msg)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, param)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}

	temperature := p.defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	params.Temperature = openai.Float(temperature)

	if p.defaultMaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.defaultMaxTokens))
	}

	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	return params, nil
}

func toChatMessageParam(msg Message) (openai.ChatCompletionMessageParamUnion, error) {
	role := strings.ToLower(strings.TrimSpace(msg.Role))
	switch role {
	case "system":
		return openai.SystemMessage(msg.Content), nil
	case "user":
		return openai.UserMessage(msg.Content), nil
	case "assistant":
		return openai.AssistantMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role: %s", msg.Role)
	}
}
