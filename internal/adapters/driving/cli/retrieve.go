package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

var (
	retrievePage int
	retrieveText string
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [doc-id]",
	Short: "Find evidence for selected text on a page",
	Long: `Scores every span on one page against the selected text with fuzzy
partial matching, expands the top matches to their reading-order
neighbours, and returns deduplicated evidence in page reading order.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrievePage, "page", "p", 0, "0-indexed page number")
	retrieveCmd.Flags().StringVarP(&retrieveText, "text", "t", "", "selected text to locate")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output evidence as JSON")
	retrieveCmd.MarkFlagRequired("text") //nolint:errcheck
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	evidence, err := retrieveService.Retrieve(cmd.Context(), args[0], retrievePage, retrieveText)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputEvidenceJSON(cmd, evidence)
	}

	return outputEvidenceTable(cmd, evidence)
}

func outputEvidenceJSON(cmd *cobra.Command, evidence []domain.Evidence) error {
	data, err := json.MarshalIndent(evidence, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputEvidenceTable(cmd *cobra.Command, evidence []domain.Evidence) error {
	if len(evidence) == 0 {
		cmd.Println("No evidence found.")
		return nil
	}

	cmd.Println("Evidence:")
	cmd.Println()
	for i := range evidence {
		cmd.Printf("  [%d] p%d %s (%.1f)\n", i+1, evidence[i].Page, evidence[i].SpanID, evidence[i].Score)
		cmd.Printf("      %s\n", evidence[i].Text)
		cmd.Println()
	}
	return nil
}
