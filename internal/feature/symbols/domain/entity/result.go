package entity

// ReconcileResult summarizes one symbol reconciliation.
type ReconcileResult struct {
	UniverseSize       int
	New                int
	Inserted           int
	Refreshed          int
	Reactivated        int
	Missing            int
	FilteredJunk       int
	SkippedExcluded    int
	ExcludedNoName     []string
	InactiveCandidates []string
	DegradedSegments   []string
	FailedSources      []string
}

// SweepResult summarizes one staleness sweep.
type SweepResult struct {
	Candidates  int
	Deactivated []string
	Kept        []string
}

// SymbolStats is the reporting snapshot of the symbols table.
type SymbolStats struct {
	Total    int64
	Active   int64
	Inactive int64
	Stocks   int64
	ETFs     int64
}
