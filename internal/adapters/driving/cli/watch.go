package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens-cli/internal/logger"
)

// settleDelay is how long a PDF must stay quiet after its last write
// event before it is considered fully copied in.
const settleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Auto-ingest PDFs dropped into a directory",
	Long: `Watches a directory and ingests every PDF created or modified in it.
Ingestion is content addressed, so re-dropping an unchanged file is a
no-op. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for PDFs (ctrl+c to stop)\n", dir)

	// Write events fire repeatedly while a file is being copied in, so
	// each path gets a settle timer that resets on every event and only
	// enqueues the path once the writes stop.
	ready := make(chan string)
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(settleDelay)
			return
		}
		timers[path] = time.AfterFunc(settleDelay, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			ready <- path
		})
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-ready:
			ingestWatched(cmd, path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			schedule(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func ingestWatched(cmd *cobra.Command, path string) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		cmd.PrintErrf("Skipping %s: %v\n", path, err)
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	meta, err := ingestService.Ingest(cmd.Context(), pdfBytes, title)
	if err != nil {
		cmd.PrintErrf("Failed to ingest %s: %v\n", path, err)
		return
	}

	cmd.Printf("Ingested %s -> %s (%d spans, %d pages)\n", filepath.Base(path), meta.DocID, meta.NSpans, meta.NPages)
}
