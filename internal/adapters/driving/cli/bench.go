package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/core/services"
)

var benchPage int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Evaluate pipeline quality",
}

var benchIngestionCmd = &cobra.Command{
	Use:   "ingestion [gold-json] [doc-id]",
	Short: "Score stored spans against gold annotations",
	Long: `Matches a document's stored spans against hand-labelled gold spans by
bounding-box overlap and reports mean IoU, layout accuracy, coverage,
and spurious rate as JSON.

The gold file is a JSON array of {"bbox_norm": [x0,y0,x1,y1], "kind": "..."}.`,
	Args: cobra.ExactArgs(2),
	RunE: runBenchIngestion,
}

func init() {
	benchIngestionCmd.Flags().IntVarP(&benchPage, "page", "p", -1, "score one page only (-1 = whole document)")
	benchCmd.AddCommand(benchIngestionCmd)
	rootCmd.AddCommand(benchCmd)
}

func runBenchIngestion(cmd *cobra.Command, args []string) error {
	if spanStore == nil {
		return errors.New("span store not configured")
	}

	goldData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading gold file: %w", err)
	}

	var gold []services.BenchSpan
	if err := json.Unmarshal(goldData, &gold); err != nil {
		return fmt.Errorf("parsing gold file: %w", err)
	}

	spans, err := spanStore.ReadSpans(cmd.Context(), args[1])
	if err != nil {
		return fmt.Errorf("reading spans: %w", err)
	}

	var predicted []services.BenchSpan
	for _, sp := range spans {
		if benchPage >= 0 && sp.Page != benchPage {
			continue
		}
		predicted = append(predicted, services.BenchSpan{BBoxNorm: sp.BBoxNorm, Kind: sp.Kind})
	}

	metrics := services.ComputeIngestionMetrics(gold, predicted)
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
