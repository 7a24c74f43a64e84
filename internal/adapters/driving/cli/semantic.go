package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	semanticPage int
	semanticTopK int
	semanticJSON bool
)

var retrieveSemanticCmd = &cobra.Command{
	Use:   "retrieve-semantic [doc-id] [query]",
	Short: "Search a document by meaning",
	Long: `Embeds the query with the model that built the document's index and
returns the most similar spans by cosine similarity.

Requires a prior 'paperlens vectorize' run for the document.`,
	Args: cobra.ExactArgs(2),
	RunE: runRetrieveSemantic,
}

func init() {
	retrieveSemanticCmd.Flags().IntVarP(&semanticPage, "page", "p", -1, "restrict results to one page (-1 = all pages)")
	retrieveSemanticCmd.Flags().IntVarP(&semanticTopK, "top-k", "k", 0, "maximum number of results (0 = default)")
	retrieveSemanticCmd.Flags().BoolVar(&semanticJSON, "json", false, "output evidence as JSON")
	rootCmd.AddCommand(retrieveSemanticCmd)
}

func runRetrieveSemantic(cmd *cobra.Command, args []string) error {
	if newSemantic == nil {
		return errors.New("semantic service not configured")
	}

	semantic, err := newSemantic(cmd.Context())
	if err != nil {
		return fmt.Errorf("configuring embeddings: %w", err)
	}

	evidence, err := semantic.RetrieveSemantic(cmd.Context(), args[0], args[1], semanticPage, semanticTopK)
	if err != nil {
		return fmt.Errorf("semantic retrieve failed: %w", err)
	}

	if semanticJSON {
		return outputEvidenceJSON(cmd, evidence)
	}

	return outputEvidenceTable(cmd, evidence)
}
