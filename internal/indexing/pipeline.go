package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/roasbeef/corpus/internal/actor"
	"github.com/roasbeef/corpus/internal/metastore"
)

// spawnSemaphore bounds concurrent DAG (re)builds process-wide, per
// spec.md §4.5's "at most 10 concurrent spawns process-wide" and
// quickwit-indexing's SPAWN_PIPELINE_SEMAPHORE. It is package-level
// because the limit is process-wide, not per-pipeline: many Pipeline
// supervisors in the same process share one budget.
var spawnSemaphore = make(chan struct{}, actor.DefaultConfig().SpawnConcurrency)

// Params configures a Pipeline supervisor.
type Params struct {
	IndexID   string
	Metastore metastore.Metastore
	Storage   Storage
	DocMapper DocMapper
	Config    actor.Config
}

// Pipeline is the indexing example's supervisor actor: it builds the
// 8-stage DAG (source → processor → indexer → serializer → packager →
// uploader → sequencer → publisher), self-schedules Observe/Supervise/
// Spawn ticks, and tears down and respawns the DAG one heartbeat after a
// stage turns unhealthy. A spawn attempt whose metastore check fails is
// retried under exponential backoff. Grounded on quickwit-indexing's
// IndexingPipeline (indexing_pipeline.rs).
type Pipeline struct {
	params Params

	stats struct {
		mu               sync.Mutex
		generation       int
		numSpawnAttempts int
		prevGenerations  Statistics
	}
	docsProcessed atomic.Uint64
	splitsStaged  atomic.Uint64

	mu       sync.Mutex
	handles  []*actor.ActorHandle
	subtreeKS *actor.KillSwitch
	lastHealth map[string]uint64

	self *actor.ActorHandle
}

// NewPipeline constructs an unstarted Pipeline supervisor ready to be
// spawned into a Universe.
func NewPipeline(params Params) *Pipeline {
	if params.DocMapper == nil {
		params.DocMapper = PassthroughMapper{}
	}
	if params.Config == (actor.Config{}) {
		params.Config = actor.DefaultConfig()
	}
	return &Pipeline{
		params:     params,
		lastHealth: make(map[string]uint64),
	}
}

func (p *Pipeline) Name() string { return "indexing-pipeline-" + p.params.IndexID }

func (p *Pipeline) backgroundCtx() context.Context { return context.Background() }

// nextSplitID mints an identifier for a freshly sequenced split.
func (p *Pipeline) nextSplitID() string { return uuid.NewString() }

// Snapshot returns the pipeline's lifetime statistics.
func (p *Pipeline) Snapshot() Statistics {
	p.stats.mu.Lock()
	defer p.stats.mu.Unlock()
	current := Statistics{
		Generation:       p.stats.generation,
		NumSpawnAttempts: p.stats.numSpawnAttempts,
		NumDocsProcessed: p.docsProcessed.Load(),
		NumSplitsStaged:  p.splitsStaged.Load(),
	}
	return current.add(p.stats.prevGenerations)
}

// ObservableState implements actor.ObservableStateProvider.
func (p *Pipeline) ObservableState() any {
	return p.Snapshot()
}

// Initialize kicks off the self-scheduled Observe/Supervise/Spawn ticks
// and triggers the first spawn attempt immediately.
func (p *Pipeline) Initialize(ctx *actor.Context) error {
	p.self = ctx.Self()
	ctx.ScheduleSelfMsg(time.Second, &observeMsg{})
	ctx.ScheduleSelfMsg(p.params.Config.Heartbeat, &superviseMsg{})
	return ctx.Self().Tell(p.backgroundCtx(), &spawnMsg{retryCount: 0})
}

// Receive dispatches the supervisor's three self-scheduled message types.
func (p *Pipeline) Receive(ctx *actor.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case *observeMsg:
		ctx.ScheduleSelfMsg(time.Second, &observeMsg{})
		return nil

	case *superviseMsg:
		ctx.ScheduleSelfMsg(p.params.Config.Heartbeat, &superviseMsg{})
		return p.supervise(ctx)

	case *spawnMsg:
		return p.handleSpawn(ctx, m.retryCount)

	default:
		return nil
	}
}

// handleSpawn builds the DAG inside the process-wide concurrency-limited
// critical section. If the metastore check fails it schedules a retry
// under exponential backoff for retryCount; if the index does not exist
// it exits with Success.
func (p *Pipeline) handleSpawn(ctx *actor.Context, retryCount int) error {
	p.stats.mu.Lock()
	p.stats.numSpawnAttempts++
	p.stats.mu.Unlock()

	guard := ctx.ProtectZone()
	defer guard.Release()

	select {
	case spawnSemaphore <- struct{}{}:
		defer func() { <-spawnSemaphore }()
	case <-ctx.KillSwitch().Done():
		return actor.Killed()
	}

	exists, err := p.params.Metastore.IndexExists(p.backgroundCtx(), p.params.IndexID)
	if err != nil {
		return p.scheduleRetry(ctx, retryCount, err)
	}
	if !exists {
		// A missing index is terminal and non-retryable: the
		// supervisor reports Success with no further attempts, per
		// spec.md §4.5.
		return actor.Success()
	}

	p.spawnDAG(ctx)
	return nil
}

// scheduleRetry decides whether err is the terminal "index does not
// exist" condition or a transient failure worth retrying with backoff.
func (p *Pipeline) scheduleRetry(ctx *actor.Context, retryCount int, err error) error {
	if errors.Is(err, metastore.ErrIndexDoesNotExist) {
		return actor.Success()
	}

	wait := actor.WaitDurationBeforeRetry(retryCount, p.params.Config.MaxRetryDelay)
	ctx.ScheduleSelfMsg(wait, &spawnMsg{retryCount: retryCount + 1})
	return nil
}

// spawnDAG builds the 8-stage chain under a fresh subtree kill switch and
// records the handles for supervise() to health-check.
func (p *Pipeline) spawnDAG(ctx *actor.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subtreeKS = ctx.KillSwitch().Child()

	publisher := p.spawnStage(ctx, "publisher", nil, publisherTransform)
	sequencer := p.spawnStage(ctx, "sequencer", publisher, sequencerTransform)
	uploader := p.spawnStage(ctx, "uploader", sequencer, uploaderTransform)
	packager := p.spawnStage(ctx, "packager", uploader, packagerTransform)
	serializer := p.spawnStage(ctx, "serializer", packager, serializerTransform)
	indexer := p.spawnStage(ctx, "indexer", serializer, indexerTransform)
	processor := p.spawnStage(ctx, "processor", indexer, processorTransform)
	source := p.spawnStage(ctx, "source", processor, sourceTransform)

	p.handles = []*actor.ActorHandle{
		source, processor, indexer, serializer, packager, uploader,
		sequencer, publisher,
	}
	p.lastHealth = make(map[string]uint64)
}

func (p *Pipeline) spawnStage(
	ctx *actor.Context, name string, next *actor.ActorHandle, fn transformFn,
) *actor.ActorHandle {

	behavior := &pipelineStage{
		name:      fmt.Sprintf("%s/%s", p.Name(), name),
		pipeline:  p,
		next:      next,
		transform: fn,
	}
	return actor.NewSpawnBuilder(behavior).
		WithKillSwitch(p.subtreeKS).
		Spawn()
}

// SourceHandle returns the entry-point stage's handle, so a caller can
// Tell it RawDoc-carrying messages. Returns false if the DAG hasn't been
// spawned yet.
func (p *Pipeline) SourceHandle() (*actor.ActorHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.handles) == 0 {
		return nil, false
	}
	return p.handles[0], true
}

// ErrPipelineNotSpawned is returned by SubmitDoc when the DAG has not
// finished its first spawn attempt yet (or is mid-restart after a
// failure).
var ErrPipelineNotSpawned = errors.New("indexing: pipeline DAG not spawned")

// SubmitDoc feeds raw into the pipeline's source stage, the external
// entry point into the 8-stage DAG. Returns ErrPipelineNotSpawned if the
// DAG hasn't been built yet.
func (p *Pipeline) SubmitDoc(ctx context.Context, raw RawDoc) error {
	source, ok := p.SourceHandle()
	if !ok {
		return ErrPipelineNotSpawned
	}
	return source.Tell(ctx, &stageMsg{raw: raw})
}

// supervise aggregates child health and decides whether to continue,
// terminate-and-retry, or exit Success, per spec.md §4.5.
func (p *Pipeline) supervise(ctx *actor.Context) error {
	p.mu.Lock()
	handles := append([]*actor.ActorHandle(nil), p.handles...)
	p.mu.Unlock()

	if len(handles) == 0 {
		return nil
	}

	var healthy, unhealthy, succeeded int
	for _, h := range handles {
		switch h.Health() {
		case actor.HealthHealthy:
			healthy++
		case actor.HealthSuccess:
			succeeded++
		case actor.HealthFailureOrUnhealthy:
			unhealthy++
		}
	}

	switch {
	case unhealthy > 0:
		retryCount := p.terminateSubtree(ctx)
		ctx.ScheduleSelfMsg(p.params.Config.Heartbeat, &spawnMsg{retryCount: retryCount})
		return nil

	case healthy == 0 && unhealthy == 0:
		p.terminateSubtree(ctx)
		return actor.Success()

	default:
		return nil
	}
}

// terminateSubtree trips the subtree kill switch, force-kills every
// child's handle, and rolls the generation counter so the next spawn
// starts fresh statistics while the lifetime Snapshot still reflects
// everything already processed. Returns the retry count to use for the
// next Spawn attempt.
func (p *Pipeline) terminateSubtree(ctx *actor.Context) int {
	p.mu.Lock()
	handles := p.handles
	p.handles = nil
	ks := p.subtreeKS
	p.mu.Unlock()

	if ks != nil {
		ks.Kill()
	}
	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *actor.ActorHandle) {
			defer wg.Done()
			h.Kill()
			<-h.Done()
		}(h)
	}
	wg.Wait()

	p.stats.mu.Lock()
	p.stats.prevGenerations = p.stats.prevGenerations.add(Statistics{
		NumSpawnAttempts: p.stats.numSpawnAttempts,
		NumDocsProcessed: p.docsProcessed.Load(),
		NumSplitsStaged:  p.splitsStaged.Load(),
	})
	p.stats.generation++
	retryCount := p.stats.numSpawnAttempts
	p.stats.numSpawnAttempts = 0
	p.stats.mu.Unlock()

	p.docsProcessed.Store(0)
	p.splitsStaged.Store(0)

	return retryCount
}

// Finalize is a no-op; the supervisor has nothing to flush that wasn't
// already durably written by the publisher stage via the metastore.
func (p *Pipeline) Finalize(_ *actor.Context, _ actor.ExitStatus) error {
	return nil
}

var _ actor.Behavior = (*Pipeline)(nil)
var _ actor.Initializer = (*Pipeline)(nil)
var _ actor.Finalizer = (*Pipeline)(nil)
var _ actor.ObservableStateProvider = (*Pipeline)(nil)
