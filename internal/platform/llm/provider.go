// Package llm is the structured-generation layer. Providers take a prompt and
// an optional JSON schema and return validated JSON.
package llm

import (
	"context"
	"encoding/json"
)

type Provider interface {
	// Generate sends req and returns the response content. When req.Schema is
	// set, Content has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document. Name is used as the cache key for
// the compiled form, so two different definitions must not share a name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// UserPrompt builds a single-turn request.
func UserPrompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}
