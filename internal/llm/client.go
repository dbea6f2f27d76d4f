package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Client sends a prompt and returns the model's raw text answer.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrNoJSON = errors.New("llm did not return valid JSON")

// DecodeJSON pulls the outermost JSON object out of a model answer and
// unmarshals it into v. Models wrap JSON in prose or code fences often
// enough that a plain Unmarshal is not enough.
func DecodeJSON(raw string, v any) error {
	text := extractJSON(raw)
	if text == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return errors.Join(ErrNoJSON, err)
	}
	return nil
}

func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}
