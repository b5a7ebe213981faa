package ollama

import "strings"

// FlattenMessages reformats a conversation into the single prompt string the
// legacy generate endpoint expects: system content first under a [System]
// header, then alternating User:/Assistant: lines, ending with a trailing
// Assistant: cue for the model to complete.
func FlattenMessages(messages []Message) string {
	var system []string
	var convo []string

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
		}
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			convo = append(convo, "User: "+msg.Content)
		case RoleAssistant:
			convo = append(convo, "Assistant: "+msg.Content)
		}
	}
	convo = append(convo, "Assistant:")

	var builder strings.Builder
	if len(system) > 0 {
		builder.WriteString("[System]\n")
		builder.WriteString(strings.Join(system, "\n"))
		builder.WriteString("\n\n")
	}
	builder.WriteString(strings.Join(convo, "\n"))
	return builder.String()
}
