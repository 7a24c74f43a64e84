// Package openai provides a streaming chat model adapter using the
// OpenAI Chat Completions API.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 300 * time.Second
)

// Config holds configuration for the OpenAI chat model.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model ID to use (default: gpt-4o).
	Model string

	// Temperature controls sampling (0 means API default).
	Temperature float64

	// Timeout is the request timeout (default: 300s).
	Timeout time.Duration
}

// ChatModel streams responses from the OpenAI Chat Completions API.
type ChatModel struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// Wire format for /chat/completions with streaming enabled.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

// streamChunk is one decoded SSE data payload.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewChatModel creates a new OpenAI chat model.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key: %w", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &ChatModel{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// ModelName returns the model ID in use.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Stream invokes the model and relays stream events to onEvent.
// The completed assistant message is returned and also emitted as a
// message_done event.
func (m *ChatModel) Stream(ctx context.Context, messages []domain.Message, tools []driven.ToolDef, system string, onEvent driven.StreamHandler) (domain.Message, error) {
	reqBody := chatRequest{
		Model:       m.model,
		Messages:    toWireMessages(messages, system),
		Temperature: m.temperature,
		Stream:      true,
	}
	for _, t := range tools {
		var wt wireTool
		wt.Type = "function"
		wt.Function.Name = t.Name
		wt.Function.Description = t.Description
		wt.Function.Parameters = t.Parameters
		reqBody.Tools = append(reqBody.Tools, wt)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.client.Do(req)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Message{}, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}

	msg, err := m.consumeStream(resp.Body, onEvent)
	if err != nil {
		return domain.Message{}, err
	}

	if onEvent != nil {
		onEvent(driven.StreamEvent{Kind: driven.EventMessageDone, Message: &msg})
	}
	return msg, nil
}

// callState accumulates one tool call across its delta chunks.
type callState struct {
	id       string
	name     string
	argsJSON strings.Builder
	started  bool
}

// consumeStream reads the SSE body and assembles the assistant message.
// OpenAI interleaves tool call fragments keyed by index; a call is
// complete only when the stream finishes.
func (m *ChatModel) consumeStream(body io.Reader, onEvent driven.StreamHandler) (domain.Message, error) {
	emit := func(ev driven.StreamEvent) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	var text strings.Builder
	states := map[int]*callState{}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return domain.Message{}, fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return domain.Message{}, fmt.Errorf("openai error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			text.WriteString(delta.Content)
			emit(driven.StreamEvent{Kind: driven.EventTextDelta, Text: delta.Content})
		}

		for _, tc := range delta.ToolCalls {
			state := states[tc.Index]
			if state == nil {
				state = &callState{}
				states[tc.Index] = state
			}
			if tc.ID != "" {
				state.id = tc.ID
			}
			if tc.Function.Name != "" {
				state.name = tc.Function.Name
			}
			if !state.started && state.name != "" {
				state.started = true
				emit(driven.StreamEvent{Kind: driven.EventToolCallStart, Text: state.name})
			}
			if tc.Function.Arguments != "" {
				state.argsJSON.WriteString(tc.Function.Arguments)
				emit(driven.StreamEvent{Kind: driven.EventToolCallDelta, Text: tc.Function.Arguments})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Message{}, fmt.Errorf("read stream: %w", err)
	}

	calls, err := finishCalls(states, emit)
	if err != nil {
		return domain.Message{}, err
	}

	return domain.Message{
		Role:      domain.RoleAssistant,
		Content:   text.String(),
		ToolCalls: calls,
	}, nil
}

// finishCalls decodes the accumulated argument JSON for every call and
// emits tool_call_done events in index order.
func finishCalls(states map[int]*callState, emit func(driven.StreamEvent)) ([]domain.ToolCall, error) {
	if len(states) == 0 {
		return nil, nil
	}
	indexes := make([]int, 0, len(states))
	for i := range states {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	calls := make([]domain.ToolCall, 0, len(states))
	for _, i := range indexes {
		state := states[i]
		if state.id == "" {
			state.id = uuid.NewString()
		}
		args := map[string]any{}
		if raw := state.argsJSON.String(); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("decode tool arguments for %s: %w", state.name, err)
			}
		}
		call := domain.ToolCall{ID: state.id, Name: state.name, Arguments: args}
		calls = append(calls, call)
		emit(driven.StreamEvent{Kind: driven.EventToolCallDone, ToolCall: &call})
	}
	return calls, nil
}

// toWireMessages converts transcript messages to the Chat Completions
// format. The system prompt becomes the leading system message; each
// tool result becomes its own tool-role message.
func toWireMessages(messages []domain.Message, system string) []wireMessage {
	out := make([]wireMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, wireMessage{Role: "system", Content: system})
	}
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleUser:
			out = append(out, wireMessage{Role: "user", Content: msg.Content})

		case domain.RoleAssistant:
			wm := wireMessage{Role: "assistant", Content: msg.Content}
			for _, call := range msg.ToolCalls {
				args := call.Arguments
				if args == nil {
					args = map[string]any{}
				}
				encoded, err := json.Marshal(args)
				if err != nil {
					encoded = []byte("{}")
				}
				wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
					ID:   call.ID,
					Type: "function",
					Function: wireFunction{
						Name:      call.Name,
						Arguments: string(encoded),
					},
				})
			}
			out = append(out, wm)

		case domain.RoleTool:
			for _, res := range msg.ToolResults {
				out = append(out, wireMessage{
					Role:       "tool",
					Content:    res.Content,
					ToolCallID: res.ToolCallID,
				})
			}
		}
	}
	return out
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (m *ChatModel) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
