package indexing

import "github.com/roasbeef/corpus/internal/actor"

// stageMsg carries one document between adjacent pipeline stages. Every
// stage actor speaks the same message type and forwards downstream after
// transforming ID/Fields/Payload as appropriate, which keeps the 8-stage
// DAG wiring uniform (spec.md §4.5's source→processor→...→publisher
// chain).
type stageMsg struct {
	actor.BaseMessage

	raw    RawDoc
	parsed ParsedDoc
	splitID string
}

func (stageMsg) MessageType() string { return "StageMsg" }

// observeMsg is the supervisor's self-scheduled 1s tick (spec.md §4.5).
// Handling it only schedules the next tick; child counters are not
// aggregated here.
type observeMsg struct{ actor.BaseMessage }

func (observeMsg) MessageType() string { return "Observe" }

// superviseMsg is the supervisor's self-scheduled heartbeat-cadence health
// evaluation tick.
type superviseMsg struct{ actor.BaseMessage }

func (superviseMsg) MessageType() string { return "Supervise" }

// spawnMsg requests the supervisor (re)build the pipeline DAG, carrying
// the retry count that determines backoff delay for anything other than
// the first attempt.
type spawnMsg struct {
	actor.BaseMessage

	retryCount int
}

func (spawnMsg) MessageType() string { return "Spawn" }
