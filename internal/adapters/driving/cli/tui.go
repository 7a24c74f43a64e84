package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/adapters/driving/tui"
)

var (
	tuiProvider string
	tuiModel    string
)

var tuiCmd = &cobra.Command{
	Use:   "tui [doc-id]",
	Short: "Launch the interactive chat UI",
	Long: `Launch an interactive terminal chat session with the research agent
over one ingested paper. The agent's answer streams into the viewport
as it is generated, with tool activity shown inline.

Controls:
  Enter    - Send question
  ↑/↓      - Scroll transcript
  Esc      - Clear input
  Ctrl+C   - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiProvider, "provider", "", "chat provider override (anthropic, openai)")
	tuiCmd.Flags().StringVarP(&tuiModel, "model", "m", "", "model name override")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if newAgent == nil {
		return errors.New("agent not configured")
	}

	docID := args[0]
	agent, modelName, err := newAgent(cmd.Context(), docID, tuiProvider, tuiModel)
	if err != nil {
		return fmt.Errorf("configuring agent: %w", err)
	}

	docTitle := docID
	if catalogStore != nil {
		if rec, err := catalogStore.Get(cmd.Context(), docID); err == nil && rec.Title != "" {
			docTitle = rec.Title
		}
	}

	ports := &tui.Ports{
		Agent:     agent,
		DocTitle:  docTitle,
		ModelName: modelName,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
