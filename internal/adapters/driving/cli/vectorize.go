package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var vectorizeJSON bool

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize [doc-id]",
	Short: "Build the embedding index for a document",
	Long: `Embeds every eligible span of an ingested document and stores the
vectors as the document's semantic index, replacing any prior index.

Must be re-run after re-ingesting a document.`,
	Args: cobra.ExactArgs(1),
	RunE: runVectorize,
}

func init() {
	vectorizeCmd.Flags().BoolVar(&vectorizeJSON, "json", false, "output the index summary as JSON")
	rootCmd.AddCommand(vectorizeCmd)
}

func runVectorize(cmd *cobra.Command, args []string) error {
	if newSemantic == nil {
		return errors.New("semantic service not configured")
	}

	semantic, err := newSemantic(cmd.Context())
	if err != nil {
		return fmt.Errorf("configuring embeddings: %w", err)
	}

	result, err := semantic.Vectorize(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("vectorize failed: %w", err)
	}

	if vectorizeJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Vectorized %s\n", result.DocID)
	cmd.Printf("  Embedded: %d spans\n", result.NEmbedded)
	cmd.Printf("  Skipped:  %d spans\n", result.NSkipped)
	cmd.Printf("  Model:    %s (%d dimensions)\n", result.Model, result.Dim)
	return nil
}
