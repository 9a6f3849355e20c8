package card

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
)

// LoadSynonymTable reads a synonym table from a JSON file on disk.
func LoadSynonymTable(path string) (*SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonym table: %w", err)
	}
	var table SynonymTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse synonym table %s: %w", path, err)
	}
	return &table, nil
}

// WatchSynonymTable watches a synonym table file and reloads the
// Normalizer whenever the file is rewritten. It blocks until the context
// is cancelled. A load failure leaves the previous table in place.
func WatchSynonymTable(ctx context.Context, path string, n *Normalizer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create synonym watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch synonym table %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			table, err := LoadSynonymTable(path)
			if err != nil {
				slog.Warn("synonym table reload failed", "path", path, "error", err)
				continue
			}
			n.Reload(table)
			slog.Info("synonym table reloaded",
				"path", path,
				"synonyms", len(table.Synonyms),
				"canonicals", len(table.Canonicals))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("synonym watcher error", "error", err)
		}
	}
}
