package ollama

// Message roles accepted by the chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Options controls a single chat request.
type Options struct {
	Model       string   // overrides the client default when set
	Temperature *float64 // nil means the default (0.2); 0 is a valid explicit value
	JSONMode    bool     // ask the backend for JSON output (hint only, some models ignore it)
}

// chatRequest is the body for POST /api/chat.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  requestOptions `json:"options"`
}

// generateRequest is the body for the legacy POST /api/generate.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	Temperature float64 `json:"temperature"`
	Format      string  `json:"format,omitempty"`
}
