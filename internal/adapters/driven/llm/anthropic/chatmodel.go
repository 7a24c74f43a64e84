// Package anthropic provides a streaming chat model adapter using the
// Anthropic Messages API.
package anthropic

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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 4096
	DefaultTimeout   = 300 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic chat model.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model ID to use (default: claude-3-5-sonnet-latest).
	Model string

	// MaxTokens caps the response length (default: 4096).
	MaxTokens int

	// Temperature controls sampling (0 means API default).
	Temperature float64

	// Timeout is the request timeout. Streaming a long tool-calling turn
	// takes minutes, so the default is generous (300s).
	Timeout time.Duration
}

// ChatModel streams responses from the Anthropic Messages API.
type ChatModel struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// Wire format for /v1/messages with streaming enabled.
type messagesRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Stream      bool          `json:"stream"`
}

type wireMessage struct {
	Role    string      `json:"role"`
	Content []wireBlock `json:"content"`
}

type wireBlock struct {
	Type string `json:"type"`

	// type: "text"
	Text string `json:"text,omitempty"`

	// type: "tool_use"
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// type: "tool_result"
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type wireTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// streamChunk is one decoded SSE data payload.
type streamChunk struct {
	Type  string `json:"type"`
	Index int    `json:"index"`

	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block,omitempty"`

	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta,omitempty"`

	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewChatModel creates a new Anthropic chat model.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key: %w", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
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
		maxTokens:   cfg.MaxTokens,
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
	reqBody := messagesRequest{
		Model:       m.model,
		Messages:    toWireMessages(messages),
		MaxTokens:   m.maxTokens,
		System:      system,
		Temperature: m.temperature,
		Stream:      true,
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, wireTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.client.Do(req)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Message{}, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
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

// blockState accumulates one content block across its delta events.
type blockState struct {
	kind     string // "text" or "tool_use"
	id       string
	name     string
	argsJSON strings.Builder
}

// consumeStream reads the SSE body and assembles the assistant message.
func (m *ChatModel) consumeStream(body io.Reader, onEvent driven.StreamHandler) (domain.Message, error) {
	emit := func(ev driven.StreamEvent) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	var text strings.Builder
	blocks := map[int]*blockState{}
	calls := map[int]domain.ToolCall{}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return domain.Message{}, fmt.Errorf("decode stream chunk: %w", err)
		}

		switch chunk.Type {
		case "error":
			if chunk.Error != nil {
				return domain.Message{}, fmt.Errorf("anthropic error: %s", chunk.Error.Message)
			}
			return domain.Message{}, fmt.Errorf("anthropic: unspecified stream error")

		case "content_block_start":
			if chunk.ContentBlock == nil {
				continue
			}
			state := &blockState{kind: chunk.ContentBlock.Type}
			if state.kind == "tool_use" {
				state.id = chunk.ContentBlock.ID
				if state.id == "" {
					state.id = uuid.NewString()
				}
				state.name = chunk.ContentBlock.Name
				emit(driven.StreamEvent{Kind: driven.EventToolCallStart, Text: state.name})
			}
			blocks[chunk.Index] = state

		case "content_block_delta":
			state := blocks[chunk.Index]
			if state == nil || chunk.Delta == nil {
				continue
			}
			switch chunk.Delta.Type {
			case "text_delta":
				text.WriteString(chunk.Delta.Text)
				emit(driven.StreamEvent{Kind: driven.EventTextDelta, Text: chunk.Delta.Text})
			case "input_json_delta":
				state.argsJSON.WriteString(chunk.Delta.PartialJSON)
				emit(driven.StreamEvent{Kind: driven.EventToolCallDelta, Text: chunk.Delta.PartialJSON})
			}

		case "content_block_stop":
			state := blocks[chunk.Index]
			if state == nil || state.kind != "tool_use" {
				continue
			}
			args := map[string]any{}
			if raw := state.argsJSON.String(); raw != "" {
				if err := json.Unmarshal([]byte(raw), &args); err != nil {
					return domain.Message{}, fmt.Errorf("decode tool arguments for %s: %w", state.name, err)
				}
			}
			call := domain.ToolCall{ID: state.id, Name: state.name, Arguments: args}
			calls[chunk.Index] = call
			emit(driven.StreamEvent{Kind: driven.EventToolCallDone, ToolCall: &call})
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Message{}, fmt.Errorf("read stream: %w", err)
	}

	return domain.Message{
		Role:      domain.RoleAssistant,
		Content:   text.String(),
		ToolCalls: orderedCalls(calls),
	}, nil
}

// orderedCalls returns tool calls sorted by content block index.
func orderedCalls(calls map[int]domain.ToolCall) []domain.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(calls))
	for i := range calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	out := make([]domain.ToolCall, 0, len(calls))
	for _, i := range indexes {
		out = append(out, calls[i])
	}
	return out
}

// toWireMessages converts transcript messages into the Anthropic block
// format. Tool results travel as user-role tool_result blocks.
func toWireMessages(messages []domain.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleUser:
			out = append(out, wireMessage{
				Role:    "user",
				Content: []wireBlock{{Type: "text", Text: msg.Content}},
			})

		case domain.RoleAssistant:
			var blocks []wireBlock
			if msg.Content != "" {
				blocks = append(blocks, wireBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				input := call.Arguments
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, wireBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: input,
				})
			}
			out = append(out, wireMessage{Role: "assistant", Content: blocks})

		case domain.RoleTool:
			blocks := make([]wireBlock, 0, len(msg.ToolResults))
			for _, res := range msg.ToolResults {
				blocks = append(blocks, wireBlock{
					Type:      "tool_result",
					ToolUseID: res.ToolCallID,
					Content:   res.Content,
				})
			}
			out = append(out, wireMessage{Role: "user", Content: blocks})
		}
	}
	return out
}

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (m *ChatModel) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
