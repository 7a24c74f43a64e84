package anthropic

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
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
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
		`data: {"type":"message_start"}`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" there"}}`,
		`data: {"type":"content_block_stop","index":0}`,
		`data: {"type":"message_stop"}`,
	}, nil)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	var events []driven.StreamEvent
	msg, err := model.Stream(context.Background(),
		[]domain.Message{domain.UserMessage("hi")}, nil, "system prompt",
		func(ev driven.StreamEvent) { events = append(events, ev) })
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAssistant, msg.Role)
	assert.Equal(t, "Hello there", msg.Content)
	assert.Empty(t, msg.ToolCalls)

	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []string{
		driven.EventTextDelta,
		driven.EventTextDelta,
		driven.EventMessageDone,
	}, kinds)
	require.NotNil(t, events[2].Message)
	assert.Equal(t, "Hello there", events[2].Message.Content)
}

func TestStreamToolUse(t *testing.T) {
	var captured []byte
	server := sseServer(t, []string{
		`data: {"type":"message_start"}`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Let me check."}}`,
		`data: {"type":"content_block_stop","index":0}`,
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"rag_retrieve"}}`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"query\":"}}`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"attention\"}"}}`,
		`data: {"type":"content_block_stop","index":1}`,
		`data: {"type":"message_stop"}`,
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
		[]domain.Message{domain.UserMessage("what is attention?")}, tools, "",
		func(ev driven.StreamEvent) { events = append(events, ev) })
	require.NoError(t, err)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "toolu_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "rag_retrieve", msg.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"query": "attention"}, msg.ToolCalls[0].Arguments)
	assert.Equal(t, "Let me check.", msg.Content)

	var starts, dones int
	for _, ev := range events {
		switch ev.Kind {
		case driven.EventToolCallStart:
			starts++
			assert.Equal(t, "rag_retrieve", ev.Text)
		case driven.EventToolCallDone:
			dones++
			require.NotNil(t, ev.ToolCall)
			assert.Equal(t, "toolu_1", ev.ToolCall.ID)
		}
	}
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, dones)

	// Tool schema travels as input_schema.
	var req map[string]any
	require.NoError(t, json.Unmarshal(captured, &req))
	reqTools, ok := req["tools"].([]any)
	require.True(t, ok)
	require.Len(t, reqTools, 1)
	tool := reqTools[0].(map[string]any)
	assert.Equal(t, "rag_retrieve", tool["name"])
	assert.Contains(t, tool, "input_schema")
	assert.Equal(t, true, req["stream"])
}

func TestStreamSendsToolResultsAsUserBlocks(t *testing.T) {
	var captured []byte
	server := sseServer(t, []string{
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Done."}}`,
		`data: {"type":"message_stop"}`,
	}, &captured)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	transcript := []domain.Message{
		domain.UserMessage("question"),
		{
			Role:      domain.RoleAssistant,
			ToolCalls: []domain.ToolCall{{ID: "toolu_1", Name: "rag_retrieve", Arguments: map[string]any{"query": "q"}}},
		},
		domain.ToolMessage([]domain.ToolResult{{ToolCallID: "toolu_1", Content: `{"ok":true}`}}),
	}

	_, err = model.Stream(context.Background(), transcript, nil, "", nil)
	require.NoError(t, err)

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type      string `json:"type"`
				ToolUseID string `json:"tool_use_id"`
				Content   string `json:"content"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(captured, &req))
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "user", req.Messages[2].Role)
	require.Len(t, req.Messages[2].Content, 1)
	assert.Equal(t, "tool_result", req.Messages[2].Content[0].Type)
	assert.Equal(t, "toolu_1", req.Messages[2].Content[0].ToolUseID)
	assert.Equal(t, `{"ok":true}`, req.Messages[2].Content[0].Content)
}

func TestStreamSurfacesStreamError(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`,
	}, nil)
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = model.Stream(context.Background(), []domain.Message{domain.UserMessage("hi")}, nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestStreamSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	model, err := NewChatModel(Config{APIKey: "bad-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = model.Stream(context.Background(), []domain.Message{domain.UserMessage("hi")}, nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
