package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

func TestNewChatModelRequiresAPIKey(t *testing.T) {
	_, err := NewChatModel(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func sseServer(t *testing.T, lines []string, capture *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if capture != nil {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			*capture = body
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = io.WriteString(w, line+"\n\n")
		}
	}))
}

func TestStreamTextOnly(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
		`data: {"choices":[{"delta":{"content":" there"}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	}, nil)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	var events []driven.StreamEvent
	msg, err := model.Stream(context.Background(),
		[]domain.Message{domain.UserMessage("hi")}, nil, "system prompt",
		func(ev driven.StreamEvent) { events = append(events, ev) })
	require.NoError(t, err)

	assert.Equal(t, "Hello there", msg.Content)
	assert.Empty(t, msg.ToolCalls)
	require.NotEmpty(t, events)
	assert.Equal(t, driven.EventMessageDone, events[len(events)-1].Kind)
}

func TestStreamToolCalls(t *testing.T) {
	var captured []byte
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"rag_retrieve","arguments":""}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"query\":"}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"attention\"}"}}]}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
		`data: [DONE]`,
	}, &captured)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	tools := []driven.ToolDef{{
		Name:        "rag_retrieve",
		Description: "Search the paper",
		Parameters:  map[string]any{"type": "object"},
	}}

	var events []driven.StreamEvent
	msg, err := model.Stream(context.Background(),
		[]domain.Message{domain.UserMessage("what is attention?")}, tools, "sys",
		func(ev driven.StreamEvent) { events = append(events, ev) })
	require.NoError(t, err)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "rag_retrieve", msg.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"query": "attention"}, msg.ToolCalls[0].Arguments)

	var starts, dones int
	for _, ev := range events {
		switch ev.Kind {
		case driven.EventToolCallStart:
			starts++
			assert.Equal(t, "rag_retrieve", ev.Text)
		case driven.EventToolCallDone:
			dones++
		}
	}
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, dones)

	// System prompt leads the message list; tools use function wrapping.
	var req struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		Tools []struct {
			Type     string `json:"type"`
			Function struct {
				Name string `json:"name"`
			} `json:"function"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(captured, &req))
	require.NotEmpty(t, req.Messages)
	assert.Equal(t, "system", req.Messages[0].Role)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "function", req.Tools[0].Type)
	assert.Equal(t, "rag_retrieve", req.Tools[0].Function.Name)
}

func TestStreamSynthesisesMissingCallID(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"name":"web_search","arguments":"{}"}}]}}]}`,
		`data: [DONE]`,
	}, nil)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	msg, err := model.Stream(context.Background(), []domain.Message{domain.UserMessage("hi")}, nil, "", nil)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	assert.NotEmpty(t, msg.ToolCalls[0].ID)
}

func TestStreamSendsToolResultsAsToolMessages(t *testing.T) {
	var captured []byte
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Done."}}]}`,
		`data: [DONE]`,
	}, &captured)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	transcript := []domain.Message{
		domain.UserMessage("question"),
		{
			Role:      domain.RoleAssistant,
			ToolCalls: []domain.ToolCall{{ID: "call_1", Name: "rag_retrieve", Arguments: map[string]any{"query": "q"}}},
		},
		domain.ToolMessage([]domain.ToolResult{{ToolCallID: "call_1", Content: `{"ok":true}`}}),
	}

	_, err = model.Stream(context.Background(), transcript, nil, "", nil)
	require.NoError(t, err)

	var req struct {
		Messages []struct {
			Role       string `json:"role"`
			Content    string `json:"content"`
			ToolCallID string `json:"tool_call_id"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(captured, &req))
	require.Len(t, req.Messages, 3)
	last := req.Messages[2]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Equal(t, `{"ok":true}`, last.Content)
}

func TestStreamSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = model.Stream(context.Background(), []domain.Message{domain.UserMessage("hi")}, nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
