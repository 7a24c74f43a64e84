// Package cli implements the cobra command tree for the Paperlens CLI.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// version is overridden by Execute at startup.
var version = "dev"

// SemanticBackend couples index building and querying. Both sides must
// share one embedder so query vectors match the stored index.
type SemanticBackend interface {
	driving.VectorizeService
	driving.SemanticRetrieveService
}

// SemanticFactory builds an embedder-backed semantic service on demand.
// Construction validates credentials, so commands that never touch
// embeddings must not trigger it.
type SemanticFactory func(ctx context.Context) (SemanticBackend, error)

// AgentFactory builds an agent for one document, with optional
// provider/model overrides (empty strings mean configured defaults).
// It returns the agent and the resolved model name.
type AgentFactory func(ctx context.Context, docID, provider, model string) (driving.AgentService, string, error)

// Services aggregates everything the command tree needs.
type Services struct {
	Ingest   driving.IngestService
	Retrieve driving.RetrieveService
	Catalog  driven.Catalog
	Spans    driven.SpanStore
	Config   driven.ConfigStore
	Prompts  driven.PromptStore

	NewSemantic SemanticFactory
	NewAgent    AgentFactory
}

// Wired services, installed once via Configure.
var (
	ingestService   driving.IngestService
	retrieveService driving.RetrieveService
	catalogStore    driven.Catalog
	spanStore       driven.SpanStore
	configStore     driven.ConfigStore
	promptStore     driven.PromptStore
	newSemantic     SemanticFactory
	newAgent        AgentFactory
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "Extract, search, and chat over evidence in PDF papers",
	Long: `Paperlens turns PDF papers into positioned evidence spans you can
search lexically, search semantically, and discuss with an AI agent that
cites specific passages.

Typical flow:
  paperlens ingest paper.pdf
  paperlens vectorize sha256:...
  paperlens chat sha256:... "what architecture does the paper propose?"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging to stderr")
}

// Configure installs the wired services into the command tree. Must be
// called before Execute.
func Configure(s *Services) {
	if s == nil {
		return
	}
	ingestService = s.Ingest
	retrieveService = s.Retrieve
	catalogStore = s.Catalog
	spanStore = s.Spans
	configStore = s.Config
	promptStore = s.Prompts
	newSemantic = s.NewSemantic
	newAgent = s.NewAgent
}

// Execute runs the root command. Errors have already been printed by
// cobra; the process exits non-zero.
func Execute(v string) {
	if v != "" {
		version = v
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
