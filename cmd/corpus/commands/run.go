package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/roasbeef/corpus/internal/actor"
	"github.com/roasbeef/corpus/internal/indexing"
	"github.com/roasbeef/corpus/internal/metastore"
	"github.com/spf13/cobra"
)

var runTimeout time.Duration

var runCmd = &cobra.Command{
	Use:   "run <ndjson-file>",
	Short: "Run a batch of documents through an indexing pipeline",
	Long: `Run spawns an indexing pipeline supervisor against --index, submits
every line of the given newline-delimited JSON file to its source stage,
waits for the DAG to drain, and prints the resulting statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(
		&runTimeout, "timeout", 30*time.Second,
		"Maximum time to wait for the pipeline to drain",
	)
}

func runRun(cmd *cobra.Command, args []string) error {
	store, closeStore := openMetastore()
	defer closeStore()

	if err := ensureIndex(store, indexID); err != nil {
		return fmt.Errorf("preparing index %q: %w", indexID, err)
	}

	docs, err := readDocs(args[0])
	if err != nil {
		return err
	}

	u := actor.NewUniverse()
	defer u.Shutdown()

	pipeline := indexing.NewPipeline(indexing.Params{
		IndexID:   indexID,
		Metastore: store,
		Storage:   indexing.NewRAMStorage(),
		DocMapper: indexing.PassthroughMapper{},
		Config:    actor.DefaultConfig(),
	})
	handle := u.Spawn(actor.NewSpawnBuilder(pipeline))

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := waitForSpawn(ctx, pipeline); err != nil {
		return err
	}

	for _, doc := range docs {
		if err := pipeline.SubmitDoc(ctx, doc); err != nil {
			return fmt.Errorf("submitting doc %s: %w", doc.ID, err)
		}
	}

	if err := waitForDrain(ctx, pipeline, len(docs)); err != nil {
		return err
	}

	handle.SendExitWithSuccess()
	if _, _, err := handle.Join(ctx); err != nil {
		return err
	}

	snap := pipeline.Snapshot()
	fmt.Printf(
		"generation=%d attempts=%d docs=%d splits=%d\n",
		snap.Generation, snap.NumSpawnAttempts,
		snap.NumDocsProcessed, snap.NumSplitsStaged,
	)
	return nil
}

func readDocs(path string) ([]indexing.RawDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []indexing.RawDoc
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc indexing.RawDoc
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return docs, scanner.Err()
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

// waitForSpawn polls until the pipeline's source stage exists, so SubmitDoc
// doesn't race the supervisor's asynchronous first Spawn attempt.
func waitForSpawn(ctx context.Context, p *indexing.Pipeline) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, ok := p.SourceHandle(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for pipeline DAG to spawn: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// waitForDrain polls the pipeline's lifetime statistics until every
// submitted document has produced a staged split, or ctx expires.
func waitForDrain(ctx context.Context, p *indexing.Pipeline, want int) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if int(p.Snapshot().NumSplitsStaged) >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for pipeline to drain: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
