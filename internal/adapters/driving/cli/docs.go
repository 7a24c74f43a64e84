package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage ingested documents",
	Long:  `List ingested documents and show their ingestion summaries.`,
	RunE:  runDocsList,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document's ingestion summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if catalogStore == nil {
		return errors.New("catalog not configured")
	}

	records, err := catalogStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range records {
		title := records[i].Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s\n", records[i].DocID)
		cmd.Printf("    Title:    %s\n", title)
		cmd.Printf("    Pages:    %d  Spans: %d\n", records[i].NPages, records[i].NSpans)
		cmd.Printf("    Ingested: %s (%s)\n", records[i].IngestedAt.Format("2006-01-02 15:04:05"), records[i].Engine)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(records))
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if catalogStore == nil {
		return errors.New("catalog not configured")
	}

	rec, err := catalogStore.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", rec.DocID)
	cmd.Printf("  Title:    %s\n", rec.Title)
	cmd.Printf("  Pages:    %d\n", rec.NPages)
	cmd.Printf("  Spans:    %d\n", rec.NSpans)
	cmd.Printf("  Engine:   %s\n", rec.Engine)
	cmd.Printf("  Ingested: %s\n", rec.IngestedAt.Format("2006-01-02 15:04:05"))

	if spanStore != nil {
		if path, err := spanStore.PDFPath(rec.DocID); err == nil {
			cmd.Printf("  PDF:      %s\n", path)
		}
	}

	return nil
}
