package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

var (
	chatProvider string
	chatModel    string
)

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id] [question]",
	Short: "Ask the agent a question about a paper",
	Long: `Runs the research agent against one ingested paper. The agent can
search the paper's semantic index and the web, and streams its answer
to stdout as it is generated.

For an interactive session use 'paperlens tui' instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatProvider, "provider", "", "chat provider override (anthropic, openai)")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model name override")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if newAgent == nil {
		return errors.New("agent not configured")
	}

	docID := args[0]
	question := strings.Join(args[1:], " ")

	agent, modelName, err := newAgent(cmd.Context(), docID, chatProvider, chatModel)
	if err != nil {
		return fmt.Errorf("configuring agent: %w", err)
	}
	logger.Info("Chatting with %s about %s", modelName, docID)

	callbacks := driving.AgentCallbacks{
		OnStream: func(event driven.StreamEvent) {
			switch event.Kind {
			case driven.EventTextDelta:
				cmd.Print(event.Text)
			case driven.EventToolCallStart:
				// Tool notices go to stderr so stdout stays a clean answer.
				fmt.Fprintf(cmd.ErrOrStderr(), "\n[%s]\n", event.Text)
			}
		},
		OnToolResult: func(toolName string, _ map[string]any, result string) {
			logger.Debug("Tool %s returned %d bytes", toolName, len(result))
		},
	}

	if _, err := agent.Run(cmd.Context(), question, callbacks); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println()
	return nil
}
