package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/paperlens/paperlens-cli/internal/adapters/driving/tui/components/input"
	"github.com/paperlens/paperlens-cli/internal/adapters/driving/tui/components/status"
	"github.com/paperlens/paperlens-cli/internal/adapters/driving/tui/keymap"
	"github.com/paperlens/paperlens-cli/internal/adapters/driving/tui/messages"
	"github.com/paperlens/paperlens-cli/internal/adapters/driving/tui/styles"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
)

// chromeHeight is the rows taken by the input (bordered) and status bar.
const chromeHeight = 4

// App is the root Bubbletea model for the chat TUI.
type App struct {
	ports  *Ports
	ctx    context.Context
	keymap *keymap.KeyMap
	styles *styles.Styles

	input    *input.PromptInput
	viewport viewport.Model
	status   *status.Bar

	// transcript holds finalised blocks; current accumulates the
	// streaming assistant answer until it is flushed.
	transcript strings.Builder
	current    strings.Builder

	// events carries agent stream messages from the worker goroutine
	// into the update loop. Nil when no run is in flight.
	events  chan tea.Msg
	running bool

	width  int
	height int
	ready  bool
}

// NewApp creates the chat application model.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		ports = &Ports{}
	}
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetContext(ports.DocTitle, ports.ModelName)

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		keymap:   km,
		styles:   s,
		input:    input.NewPromptInput(s),
		viewport: viewport.New(80, 20),
		status:   bar,
	}, nil
}

// WithContext sets the context used for agent runs.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return a.input.Init()
}

// Update handles all incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.SetWidth(msg.Width)
		a.status.SetWidth(msg.Width)
		vpHeight := msg.Height - chromeHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		a.viewport.Width = msg.Width
		a.viewport.Height = vpHeight
		a.ready = true
		a.syncViewport()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.StreamEventReceived:
		a.handleStreamEvent(msg.Event)
		a.syncViewport()
		return a, a.waitForEvent()

	case messages.ToolExecuted:
		return a, a.waitForEvent()

	case messages.AgentCompleted:
		a.running = false
		a.events = nil
		// Anything still buffered is the tail of the final answer.
		if a.current.Len() == 0 && msg.Message.Content != "" && !strings.HasSuffix(a.transcript.String(), msg.Message.Content+"\n\n") {
			a.current.WriteString(msg.Message.Content)
		}
		a.flushAssistant()
		a.status.SetState(status.StateReady)
		a.syncViewport()
		return a, nil

	case messages.AgentFailed:
		a.running = false
		a.events = nil
		a.flushAssistant()
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		a.syncViewport()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKey routes keypresses.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Submit):
		question := strings.TrimSpace(a.input.Value())
		if a.running || question == "" {
			return a, nil
		}
		return a, a.submit(question)

	case keymap.Matches(keyStr, a.keymap.Clear):
		a.input.Reset()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.ScrollUp), keymap.Matches(keyStr, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit starts an agent run for the question.
func (a *App) submit(question string) tea.Cmd {
	a.transcript.WriteString(a.styles.UserLabel.Render("You") + "\n" + question + "\n\n")
	a.input.Reset()
	a.current.Reset()
	a.running = true
	a.status.SetState(status.StateThinking)
	a.status.SetMessage("")
	a.syncViewport()

	ch := make(chan tea.Msg, 64)
	a.events = ch
	go a.runAgent(question, ch)

	return a.waitForEvent()
}

// runAgent executes the agent in a worker goroutine, forwarding stream
// events into the update loop.
func (a *App) runAgent(question string, ch chan<- tea.Msg) {
	callbacks := driving.AgentCallbacks{
		OnStream: func(event driven.StreamEvent) {
			ch <- messages.StreamEventReceived{Event: event}
		},
		OnToolResult: func(toolName string, _ map[string]any, _ string) {
			ch <- messages.ToolExecuted{ToolName: toolName}
		},
	}

	final, err := a.ports.Agent.Run(a.ctx, question, callbacks)
	if err != nil {
		ch <- messages.AgentFailed{Err: err}
	} else {
		ch <- messages.AgentCompleted{Message: final}
	}
	close(ch)
}

// waitForEvent waits for the next message from the agent goroutine.
func (a *App) waitForEvent() tea.Cmd {
	ch := a.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// handleStreamEvent folds one model stream event into the transcript.
func (a *App) handleStreamEvent(event driven.StreamEvent) {
	switch event.Kind {
	case driven.EventTextDelta:
		if a.current.Len() == 0 {
			a.status.SetState(status.StateStreaming)
		}
		a.current.WriteString(event.Text)

	case driven.EventToolCallStart:
		a.flushAssistant()
		a.transcript.WriteString(a.styles.ToolNotice.Render(fmt.Sprintf("⚙ %s", event.Text)) + "\n\n")
		a.status.SetState(status.StateThinking)

	case driven.EventMessageDone:
		a.flushAssistant()
	}
}

// flushAssistant moves the streamed answer into the transcript.
func (a *App) flushAssistant() {
	if a.current.Len() == 0 {
		return
	}
	a.transcript.WriteString(a.styles.AssistantLabel.Render("Paperlens") + "\n" + a.current.String() + "\n\n")
	a.current.Reset()
}

// syncViewport refreshes the viewport content and follows the tail.
func (a *App) syncViewport() {
	content := a.transcript.String()
	if a.current.Len() > 0 {
		content += a.styles.AssistantLabel.Render("Paperlens") + "\n" + a.current.String()
	}
	if content == "" {
		content = a.styles.Muted.Render("Ask a question about the paper to get started.")
	}
	a.viewport.SetContent(content)
	a.viewport.GotoBottom()
}

// View renders the application.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.viewport.View(),
		a.input.View(),
		a.status.View(),
	)
}

// Transcript returns the finalised transcript text. Used in tests.
func (a *App) Transcript() string {
	return a.transcript.String()
}
