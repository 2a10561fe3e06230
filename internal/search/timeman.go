package search

import "time"

// Limits bounds a single search: any zero-value field is simply not
// applied. MoveTime is the only clock-based field the core defines — the
// full UCI wtime/btime/increment schedule lives outside this package's
// scope (no front-end in this repo drives the search over a network clock).
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

// TimeManager tracks elapsed time against a fixed move-time budget.
type TimeManager struct {
	limit     time.Duration
	startTime time.Time
}

// NewTimeManager creates a time manager for the given limits.
func NewTimeManager(limits Limits) *TimeManager {
	tm := &TimeManager{startTime: time.Now()}
	if limits.Infinite || limits.MoveTime == 0 {
		tm.limit = time.Hour
	} else {
		tm.limit = limits.MoveTime
	}
	return tm
}

// Elapsed returns the time elapsed since the time manager was created.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// ShouldStop returns true once the move-time budget is exhausted.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.limit
}
