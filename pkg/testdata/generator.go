// Package testdata generates schema-backed synthetic test data through an
// AI provider. Each data type carries a JSON Schema; the generated object
// is validated against it before it is handed back.
package testdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"rftriage/pkg/ai"
	"rftriage/pkg/ollama"
)

const generationTemperature = 0.2

const systemPrompt = "You generate realistic test data for automated tests. " +
	"Follow the schema, fill plausible values, keep it deterministic-ish, and DO NOT include secrets.\n" +
	"Return ONLY valid JSON."

// fallbackSchema accepts any object for data types without a registered schema.
const fallbackSchema = `{"type":"object"}`

// schemaByType holds the JSON Schema for each known data type.
var schemaByType = map[string]string{
	"user_profile": `{
		"type": "object",
		"properties": {
			"first_name": {"type": "string"},
			"last_name": {"type": "string"},
			"email": {"type": "string"},
			"phone": {"type": "string"},
			"password": {"type": "string"},
			"country": {"type": "string"}
		},
		"required": ["first_name", "last_name", "email", "password"]
	}`,
	"address": `{
		"type": "object",
		"properties": {
			"street": {"type": "string"},
			"city": {"type": "string"},
			"postal_code": {"type": "string"},
			"country": {"type": "string"}
		},
		"required": ["street", "city", "country"]
	}`,
}

// Generator produces test data objects via an AI provider.
type Generator struct {
	provider ai.Provider
}

// NewGenerator creates a generator backed by the given provider.
func NewGenerator(provider ai.Provider) *Generator {
	return &Generator{provider: provider}
}

// Types returns the registered data types, sorted.
func Types() []string {
	types := make([]string, 0, len(schemaByType))
	for name := range schemaByType {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Generate asks the model for one object of the given data type and
// validates the result against the type's schema. Constraints are free-form
// key=value hints passed through to the prompt.
func (g *Generator) Generate(ctx context.Context, dataType string, constraints map[string]string) (map[string]any, error) {
	schemaText, ok := schemaByType[dataType]
	if !ok {
		schemaText = fallbackSchema
	}

	temperature := generationTemperature
	resp, err := g.provider.CreateChatCompletion(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(dataType, schemaText, constraints)},
		},
		Temperature: &temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	value, err := ollama.CoerceJSON(resp.Content)
	if err != nil {
		return nil, err
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("model returned %T instead of an object", value)
	}

	if err := validate(schemaText, object); err != nil {
		slog.Debug("generated data failed schema validation", "type", dataType, "error", err)
		return nil, fmt.Errorf("generated %s does not match its schema: %w", dataType, err)
	}
	return object, nil
}

// buildUserPrompt assembles the generation request with the schema inlined
// and constraints listed in a stable order.
func buildUserPrompt(dataType, schemaText string, constraints map[string]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate one %s object as JSON matching this JSON Schema:\n", dataType)
	sb.WriteString(schemaText)
	sb.WriteString("\nConstraints (optional):")
	if len(constraints) == 0 {
		sb.WriteString(" none")
	} else {
		keys := make([]string, 0, len(constraints))
		for key := range constraints {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&sb, " %s=%s", key, constraints[key])
		}
	}
	sb.WriteString("\nKeep values simple and test-friendly.")
	return sb.String()
}

// validate compiles the schema and checks the object against it.
func validate(schemaText string, object map[string]any) error {
	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaText), &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return schema.Validate(object)
}
