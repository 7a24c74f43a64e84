package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchIngestionCmd_ScoresAgainstGold(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	gold := `[
  {"bbox_norm": [0.1, 0.1, 0.9, 0.15], "kind": "text"},
  {"bbox_norm": [0.1, 0.5, 0.9, 0.6], "kind": "table"}
]`
	goldPath := filepath.Join(t.TempDir(), "gold.json")
	require.NoError(t, os.WriteFile(goldPath, []byte(gold), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"bench", "ingestion", goldPath, "sha256:abc"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"mean_iou"`)
	assert.Contains(t, buf.String(), `"n_gold": 2`)
	assert.Contains(t, buf.String(), `"n_predicted": 2`)
}

func TestBenchIngestionCmd_PageFilter(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	goldPath := filepath.Join(t.TempDir(), "gold.json")
	require.NoError(t, os.WriteFile(goldPath, []byte(`[]`), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"bench", "ingestion", goldPath, "sha256:abc", "--page", "1"})
	defer func() {
		rootCmd.SetArgs(nil)
		benchPage = -1
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	// Only the page-1 span counts as predicted.
	assert.Contains(t, buf.String(), `"n_predicted": 1`)
}

func TestBenchIngestionCmd_BadGoldFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	goldPath := filepath.Join(t.TempDir(), "gold.json")
	require.NoError(t, os.WriteFile(goldPath, []byte(`not json`), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"bench", "ingestion", goldPath, "sha256:abc"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing gold file")
}
