package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerSchema() *Schema {
	return &Schema{
		Name: "test-answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer": map[string]any{"type": "string", "minLength": 1},
				"references": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "object"},
				},
			},
			"required": []any{"answer"},
		},
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `  {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"upper info string", "```JSON\n{\"a\":1}\n```\n", `{"a":1}`},
		{"single line", "```json {\"a\":1}```", `{"a":1}`},
		{"fence without close", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestValidateResponse(t *testing.T) {
	require.NoError(t, validateResponse(answerSchema(), json.RawMessage(`{"answer":"42","references":[]}`)))
	require.NoError(t, validateResponse(nil, json.RawMessage(`not json`)))

	for _, raw := range []string{`{"references":[]}`, `{"answer":""}`, `{"answer":7}`, `not json`} {
		err := validateResponse(answerSchema(), json.RawMessage(raw))
		var inv *ErrInvalidResponse
		require.Truef(t, errors.As(err, &inv), "raw %s: got %v", raw, err)
		assert.Equal(t, raw, string(inv.Content))
	}
}

func TestFinishReportsTruncation(t *testing.T) {
	req := Request{Schema: answerSchema()}

	_, err := finish(req, `{"answer": "cut of`, StopMaxTokens)
	var mt *ErrMaxTokensExceeded
	require.True(t, errors.As(err, &mt), "got %v", err)

	_, err = finish(req, `{"answer": "cut of`, StopEnd)
	var inv *ErrInvalidResponse
	require.True(t, errors.As(err, &inv), "got %v", err)

	content, err := finish(req, "```json\n{\"answer\":\"ok\"}\n```", StopEnd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"ok"}`, string(content))
}
