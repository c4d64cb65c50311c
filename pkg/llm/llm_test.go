package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagesRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

const messagesReply = `{"id":"msg_1","type":"message","role":"assistant","model":"m-default",` +
	`"content":[{"type":"text","text":"hello"}],"stop_reason":"end_turn",` +
	`"usage":{"input_tokens":1,"output_tokens":1}}`

func TestAnthropic_Generate(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesReply))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		APIKey: "secret", BaseURL: srv.URL, Model: "m-default", MaxTokens: 99, Temperature: 0.2,
	}, nil)
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	assert.Equal(t, "m-default", got.Model)
	assert.Equal(t, 99, got.MaxTokens)
	assert.Equal(t, 0.2, got.Temperature)
	require.Len(t, got.System, 1)
	assert.Equal(t, "sys", got.System[0].Text)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "hi", got.Messages[0].Content[0].Text)
}

func TestAnthropic_NonSuccessStatus(t *testing.T) {
	const body = `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := NewAnthropic("k", srv.URL, 0).Generate(context.Background(), Request{Model: "m", MaxTokens: 10, Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "failed calls are not retried")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 429, se.StatusCode)
	assert.Contains(t, se.Body, "slow down")
	assert.Contains(t, err.Error(), "Anthropic API error: 429 - ")
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "gemini"}, nil)
	assert.True(t, errors.Is(err, ErrNoAPIKey))

	_, err = New(context.Background(), Options{Provider: "other", APIKey: "k"}, nil)
	assert.Error(t, err)
}

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		langs []string
		want  string
	}{
		{"typescript fence", "Here:\n```typescript\nconst a = 1;\n```\nDone", []string{"typescript", "ts"}, "const a = 1;"},
		{"ts fence", "```ts\nx()\n```", []string{"typescript", "ts"}, "x()"},
		{"skips other languages", "```bash\nls\n```\n```ts\nok\n```", []string{"ts"}, "ok"},
		{"no fence", "  plain text  ", []string{"ts"}, "plain text"},
		{"any fence", "```\nraw\n```", nil, "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCodeBlock(tt.reply, tt.langs...))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	var v struct {
		HasTable bool `json:"hasTable"`
	}
	assert.True(t, ExtractJSON("Result:\n```json\n{\"hasTable\": true}\n```", &v))
	assert.True(t, v.HasTable)

	assert.True(t, ExtractJSON(`{"hasTable": false}`, &v))
	assert.False(t, v.HasTable)

	assert.False(t, ExtractJSON("```json\n{not json}\n```", &v))
	assert.False(t, ExtractJSON("no json here", &v))
}
