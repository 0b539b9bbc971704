package commands

import (
	"log"
	"log/slog"
	"os"

	"github.com/roasbeef/corpus/internal/metastore"
)

// expandHome resolves a leading "~" in path to the current user's home
// directory, the same convention cmd/corpusd uses for its own flags.
func expandHome(path string) string {
	if path == "" {
		return ""
	}
	expanded := os.ExpandEnv(path)
	if expanded == path && len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		expanded = home + path[1:]
	}
	return expanded
}

// openMetastore opens the sqlite-backed metastore at the --db path, or an
// in-memory one if the flag was cleared.
func openMetastore() (metastore.Metastore, func()) {
	path := expandHome(dbPath)
	if path == "" {
		return metastore.NewInMemory(), func() {}
	}

	store, err := metastore.Open(path, slog.Default())
	if err != nil {
		log.Fatalf("Failed to open metastore at %s: %v", path, err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing metastore: %v", err)
		}
	}
}
