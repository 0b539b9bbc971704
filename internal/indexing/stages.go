package indexing

import (
	"sync/atomic"

	"github.com/roasbeef/corpus/internal/actor"
	"github.com/roasbeef/corpus/internal/metastore"
)

// transformFn mutates a stageMsg as it crosses one DAG edge. Returning an
// error ends the stage actor with ExitFailure, which (per spec.md §7)
// trips that stage's own kill switch; the supervisor's next health check
// sees the failed stage and tears down the rest of the pipeline.
type transformFn func(*Pipeline, *stageMsg) error

// pipelineStage is the uniform shape of every node in the 8-actor DAG
// (source, processor, indexer, serializer, packager, uploader, sequencer,
// publisher). The stages differ only in their transformFn and their
// downstream neighbor, which is exactly how quickwit's actors/mod.rs
// lists them: distinct actor *names* performing one narrow step each,
// wired into a straight-line chain by the pipeline supervisor. Modeling
// that as one configurable Behavior instead of eight near-identical
// structs keeps the DAG's uniform forward-and-count shape visible instead
// of buried in repetition.
type pipelineStage struct {
	name      string
	pipeline  *Pipeline
	next      *actor.ActorHandle
	transform transformFn
	processed atomic.Uint64
}

func (s *pipelineStage) Name() string { return s.name }

func (s *pipelineStage) Receive(ctx *actor.Context, msg actor.Message) error {
	sm, ok := msg.(*stageMsg)
	if !ok {
		return nil
	}
	if err := s.transform(s.pipeline, sm); err != nil {
		return err
	}
	s.processed.Add(1)
	ctx.RecordProgress()

	if s.next == nil {
		return nil
	}
	if err := s.next.Tell(ctx.KillSwitch().Context(), sm); err != nil {
		return err
	}
	return nil
}

// ObservableState implements actor.ObservableStateProvider.
func (s *pipelineStage) ObservableState() any {
	return StageState{Name: s.name, Processed: s.processed.Load()}
}

// StageState is the observable snapshot one pipeline stage publishes.
type StageState struct {
	Name      string
	Processed uint64
}

func sourceTransform(_ *Pipeline, _ *stageMsg) error {
	return nil
}

func processorTransform(p *Pipeline, sm *stageMsg) error {
	parsed, err := p.params.DocMapper.Parse(sm.raw)
	if err != nil {
		return err
	}
	sm.parsed = parsed
	return nil
}

func indexerTransform(_ *Pipeline, _ *stageMsg) error {
	return nil
}

func serializerTransform(_ *Pipeline, _ *stageMsg) error {
	return nil
}

func packagerTransform(_ *Pipeline, _ *stageMsg) error {
	return nil
}

func uploaderTransform(p *Pipeline, sm *stageMsg) error {
	key := sm.parsed.ID
	return p.params.Storage.Put(p.backgroundCtx(), key, []byte(sm.parsed.Fields["body"]))
}

func sequencerTransform(p *Pipeline, sm *stageMsg) error {
	sm.splitID = p.nextSplitID()
	return nil
}

func publisherTransform(p *Pipeline, sm *stageMsg) error {
	split := metastore.Split{SplitID: sm.splitID, NumDocs: 1}
	if err := p.params.Metastore.StageSplit(p.backgroundCtx(), p.params.IndexID, split); err != nil {
		return err
	}
	p.docsProcessed.Add(1)
	p.splitsStaged.Add(1)
	return nil
}
