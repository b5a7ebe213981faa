package ollama

import (
	"bytes"
	"encoding/json"
)

// Backends answer in one of a few dialects. classify maps a raw payload to
// one of them so extraction can switch exhaustively instead of probing fields.
type payloadShape int

const (
	shapeUnknown         payloadShape = iota
	shapeChatMessage                  // {"message": {...}} (current chat API)
	shapeLegacyResponse               // {"response": "..."} (legacy generate API)
	shapeTopLevelContent              // {"content": "..."} or {"content": [blocks]}
)

// envelope holds the fields that identify a payload shape. Raw sub-documents
// are kept undecoded until the shape is known.
type envelope struct {
	Message  json.RawMessage `json:"message"`
	Response json.RawMessage `json:"response"`
	Content  json.RawMessage `json:"content"`
}

// messageBody is the chat-style message object. Content may be a plain string
// or a list of harmony-style blocks; Text/Response are top-level fallbacks
// some servers use instead.
type messageBody struct {
	Content  json.RawMessage `json:"content"`
	Text     json.RawMessage `json:"text"`
	Response json.RawMessage `json:"response"`
}

// contentBlock is one harmony-style segment. A block optionally carries a
// "json" payload (preferred) or text under "text", or under "content" when
// typed "output_text"/"text".
type contentBlock struct {
	Type    string          `json:"type"`
	Text    json.RawMessage `json:"text"`
	Content json.RawMessage `json:"content"`
	JSON    json.RawMessage `json:"json"`
}

// ExtractText normalizes any of the known response payload shapes to a single
// string that is either plain text or serialized JSON. It never fails: an
// unrecognized payload is returned re-serialized as-is.
func ExtractText(raw json.RawMessage) string {
	var env envelope
	shape := classify(raw, &env)

	switch shape {
	case shapeChatMessage:
		var msg messageBody
		if err := json.Unmarshal(env.Message, &msg); err == nil {
			if out := extractFromMessage(msg); out != "" {
				return out
			}
		}
		// An empty chat message falls through to the other shapes; some
		// servers put the text next to an empty message object.
		if env.Response != nil {
			return asString(env.Response)
		}
		if env.Content != nil {
			return extractFromContent(env.Content)
		}
		return compact(raw)
	case shapeLegacyResponse:
		return asString(env.Response)
	case shapeTopLevelContent:
		return extractFromContent(env.Content)
	case shapeUnknown:
		return compact(raw)
	default:
		return compact(raw)
	}
}

func classify(raw json.RawMessage, env *envelope) payloadShape {
	if err := json.Unmarshal(raw, env); err != nil {
		return shapeUnknown
	}
	if isObject(env.Message) {
		return shapeChatMessage
	}
	if env.Response != nil {
		return shapeLegacyResponse
	}
	if env.Content != nil {
		return shapeTopLevelContent
	}
	return shapeUnknown
}

// extractFromMessage applies the message-content rule: a plain string is
// returned directly; a block list prefers the first "json" block, else joins
// the text segments; anything else falls back to the message-level text or
// response fields.
func extractFromMessage(msg messageBody) string {
	if msg.Content != nil {
		var s string
		if err := json.Unmarshal(msg.Content, &s); err == nil {
			return s
		}
		var blocks []json.RawMessage
		if err := json.Unmarshal(msg.Content, &blocks); err == nil {
			if out := extractFromBlocks(blocks); out != "" {
				return out
			}
		}
	}
	if msg.Text != nil {
		return asString(msg.Text)
	}
	if msg.Response != nil {
		return asString(msg.Response)
	}
	return ""
}

// extractFromContent handles a top-level "content" field that is a string or
// a harmony-style block list.
func extractFromContent(content json.RawMessage) string {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	var blocks []json.RawMessage
	if err := json.Unmarshal(content, &blocks); err == nil {
		return extractFromBlocks(blocks)
	}
	return ""
}

// extractFromBlocks scans harmony blocks. The first block with a non-null
// "json" payload wins and is returned serialized; text segments are collected
// in encounter order as a fallback.
func extractFromBlocks(blocks []json.RawMessage) string {
	var firstJSON json.RawMessage
	var texts bytes.Buffer

	for _, rawBlock := range blocks {
		var block contentBlock
		if err := json.Unmarshal(rawBlock, &block); err != nil {
			continue
		}
		if block.JSON != nil && !isNull(block.JSON) && firstJSON == nil {
			firstJSON = block.JSON
		}
		if block.Text != nil {
			texts.WriteString(asString(block.Text))
		} else if (block.Type == "output_text" || block.Type == "text") && block.Content != nil {
			texts.WriteString(asString(block.Content))
		}
	}

	if firstJSON != nil {
		return compact(firstJSON)
	}
	return texts.String()
}

// asString decodes a raw value that should be a JSON string; any other value
// is returned in its serialized form.
func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return compact(raw)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
