package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

var (
	ingestTitle string
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf-path]",
	Short: "Extract spans from a PDF and store them",
	Long: `Extracts positioned text spans from a PDF and persists them under a
content-addressed document ID. Re-ingesting the same file is idempotent:
identical bytes always map to the same ID and fully replace the span set.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (defaults to the file name)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the ingestion summary as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	title := ingestTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	meta, err := ingestService.Ingest(cmd.Context(), pdfBytes, title)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, meta)
	}

	cmd.Printf("Ingested %s\n", meta.DocID)
	cmd.Printf("  Title:  %s\n", title)
	cmd.Printf("  Pages:  %d\n", meta.NPages)
	cmd.Printf("  Spans:  %d\n", meta.NSpans)
	cmd.Printf("  Engine: %s\n", meta.Ingest.Engine)
	return nil
}

func outputIngestJSON(cmd *cobra.Command, meta domain.DocumentMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
