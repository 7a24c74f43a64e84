package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [pdf-path]", ingestCmd.Use)
}

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", filepath.Join(t.TempDir(), "absent.pdf")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestIngestCmd_ExecutesWithFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "attention.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Ingested sha256:abc")
	assert.Contains(t, buf.String(), "Engine: blocks")

	// Title defaults to the file name without extension.
	mock := ingestService.(*mockIngestService)
	assert.Equal(t, "attention", mock.gotTitle)
	assert.Equal(t, []byte("%PDF-1.4 fake"), mock.gotBytes)
}

func TestIngestCmd_TitleFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path, "--title", "Attention Is All You Need"})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestTitle = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	mock := ingestService.(*mockIngestService)
	assert.Equal(t, "Attention Is All You Need", mock.gotTitle)
}
