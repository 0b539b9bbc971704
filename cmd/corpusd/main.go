// Command corpusd runs a corpus actor Universe hosting one indexing
// pipeline supervisor, watching a directory for newline-delimited JSON
// documents and feeding each one into the pipeline's source stage.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/btcsuite/btclog/v2"
	"github.com/roasbeef/corpus/internal/actor"
	"github.com/roasbeef/corpus/internal/build"
	"github.com/roasbeef/corpus/internal/indexing"
	"github.com/roasbeef/corpus/internal/metastore"
)

func main() {
	var (
		dbPath         = flag.String("db", "~/.corpus/corpus.db", "Path to SQLite metastore database (empty for in-memory)")
		indexID        = flag.String("index", "default", "Index ID the pipeline publishes splits against")
		watchDir       = flag.String("watch", "", "Directory to watch for .ndjson document files (empty disables watching)")
		logDir         = flag.String("log-dir", "~/.corpus/logs", "Directory for log files (empty to disable file logging)")
		maxLogFiles    = flag.Int("max-log-files", build.DefaultMaxLogFiles, "Maximum number of rotated log files to keep")
		maxLogFileSize = flag.Int("max-log-file-size", build.DefaultMaxLogFileSize, "Maximum log file size in MB before rotation")
	)
	flag.Parse()

	dbPathExpanded := expandHome(*dbPath)
	logDirExpanded := expandHome(*logDir)

	var logRotator *build.RotatingLogWriter
	if logDirExpanded != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir:         logDirExpanded,
			MaxLogFiles:    *maxLogFiles,
			MaxLogFileSize: *maxLogFileSize,
		})
		if err != nil {
			log.Printf(
				"Failed to init log rotator: %v (continuing without file logging)",
				err,
			)
			logRotator = nil
		} else {
			defer logRotator.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, logRotator))
			log.SetFlags(log.LstdFlags)
		}
	}

	log.Printf(
		"corpusd version %s commit=%s go=%s",
		build.Version(), commitInfo(), build.GoVersion,
	)

	var btclogHandlers []btclog.Handler
	btclogHandlers = append(btclogHandlers, btclog.NewDefaultHandler(os.Stderr))
	if logRotator != nil {
		btclogHandlers = append(btclogHandlers, btclog.NewDefaultHandler(logRotator))
		log.Printf(
			"Log file rotation enabled: dir=%s, max_files=%d, max_size=%dMB",
			logDirExpanded, *maxLogFiles, *maxLogFileSize,
		)
	}
	combinedHandler := build.NewHandlerSet(btclogHandlers...)
	actorLogger := btclog.NewSLogger(combinedHandler)
	actor.UseLogger(actorLogger)

	store, closeStore := openMetastore(dbPathExpanded)
	defer closeStore()

	if err := ensureIndex(store, *indexID); err != nil {
		log.Fatalf("Failed to prepare index %q: %v", *indexID, err)
	}

	u := actor.NewUniverse()
	defer u.Shutdown()

	pipeline := indexing.NewPipeline(indexing.Params{
		IndexID:   *indexID,
		Metastore: store,
		Storage:   indexing.NewRAMStorage(),
		DocMapper: indexing.PassthroughMapper{},
		Config:    actor.DefaultConfig(),
	})
	handle := u.Spawn(actor.NewSpawnBuilder(pipeline))
	log.Printf("indexing pipeline supervisor %q started for index %q", handle.Name(), *indexID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, initiating graceful shutdown (send again to force exit)...", sig)
		cancel()

		sig = <-sigCh
		log.Printf("Received %v again, forcing immediate exit", sig)
		os.Exit(1)
	}()

	if *watchDir != "" {
		go watchAndSubmit(ctx, pipeline, expandHome(*watchDir))
	}

	go reportStats(ctx, handle)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	handle.SendExitWithSuccess()
	if _, _, err := handle.Join(shutdownCtx); err != nil {
		log.Printf("pipeline shutdown incomplete: %v", err)
	}
}

// openMetastore opens the sqlite-backed metastore at dbPath, or falls
// back to an in-memory metastore if dbPath is empty.
func openMetastore(dbPath string) (metastore.Metastore, func()) {
	if dbPath == "" {
		log.Println("Using in-memory metastore (no -db path given)")
		return metastore.NewInMemory(), func() {}
	}

	store, err := metastore.Open(dbPath, slog.Default())
	if err != nil {
		log.Fatalf("Failed to open metastore: %v", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing metastore: %v", err)
		}
	}
}

func ensureIndex(store metastore.Metastore, indexID string) error {
	switch s := store.(type) {
	case *metastore.InMemory:
		s.CreateIndex(indexID)
		return nil
	case *metastore.Sqlite:
		return s.CreateIndex(context.Background(), indexID)
	default:
		return fmt.Errorf("unsupported metastore implementation %T", store)
	}
}

// watchAndSubmit polls dir for .ndjson files, reading each line as a JSON
// RawDoc and submitting it to the pipeline. Processed files are renamed
// with a .done suffix so a restart doesn't reprocess them.
func watchAndSubmit(ctx context.Context, p *indexing.Pipeline, dir string) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Printf("watch: cannot create %s: %v", dir, err)
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entries, err := os.ReadDir(dir)
			if err != nil {
				log.Printf("watch: readdir %s: %v", dir, err)
				continue
			}
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".ndjson" {
					continue
				}
				path := filepath.Join(dir, entry.Name())
				if err := submitFile(ctx, p, path); err != nil {
					log.Printf("watch: %s: %v", path, err)
					continue
				}
				if err := os.Rename(path, path+".done"); err != nil {
					log.Printf("watch: rename %s: %v", path, err)
				}
			}
		}
	}
}

func submitFile(ctx context.Context, p *indexing.Pipeline, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc indexing.RawDoc
		if err := json.Unmarshal(line, &doc); err != nil {
			log.Printf("watch: skipping malformed line in %s: %v", path, err)
			continue
		}
		if err := p.SubmitDoc(ctx, doc); err != nil {
			return fmt.Errorf("submit doc %s: %w", doc.ID, err)
		}
	}
	return scanner.Err()
}

func reportStats(ctx context.Context, h *actor.ActorHandle) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if snap, ok := h.LatestObservableState().(indexing.Statistics); ok {
				log.Printf(
					"pipeline stats: generation=%d attempts=%d docs=%d splits=%d",
					snap.Generation, snap.NumSpawnAttempts,
					snap.NumDocsProcessed, snap.NumSplitsStaged,
				)
			}
		}
	}
}

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

func commitInfo() string {
	if build.Commit != "" {
		return build.Commit
	}
	if build.CommitHash != "" {
		return build.CommitHash
	}
	return "dev"
}
