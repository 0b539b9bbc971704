package indexing

// Statistics is a point-in-time snapshot of a pipeline's lifetime
// counters, including totals carried over from generations the
// supervisor has already restarted. Mirrors quickwit's
// IndexingStatistics, which keeps a previous_generations_statistics
// accumulator so a caller always sees true lifetime totals rather than
// just the current generation's.
type Statistics struct {
	Generation       int
	NumSpawnAttempts int
	NumDocsProcessed uint64
	NumSplitsStaged  uint64
}

func (s Statistics) add(other Statistics) Statistics {
	return Statistics{
		Generation:       s.Generation,
		NumSpawnAttempts: s.NumSpawnAttempts + other.NumSpawnAttempts,
		NumDocsProcessed: s.NumDocsProcessed + other.NumDocsProcessed,
		NumSplitsStaged:  s.NumSplitsStaged + other.NumSplitsStaged,
	}
}
