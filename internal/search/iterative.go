package search

import (
	"time"

	"github.com/hailam/chessplay-core/internal/board"
)

// Result is the outcome of an iterative-deepening search: the best move
// and score found at the deepest completed iteration, plus bookkeeping an
// observer might want to report.
type Result struct {
	Move    board.Move
	Score   int
	Depth   int
	Nodes   uint64
	PV      []board.Move
	Elapsed time.Duration
}

// Engine couples a Searcher to its transposition table and drives
// iterative deepening under a Limits budget and a cooperative stop token.
type Engine struct {
	tt       *Table
	searcher *Searcher
}

// NewEngine creates an iterative-deepening driver with a table of the
// given size in megabytes.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTable(ttSizeMB)
	return &Engine{
		tt:       tt,
		searcher: NewSearcher(tt),
	}
}

// Stop requests the in-flight search to return its best result so far.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// NewGame clears transposition state between games (not between moves of
// the same game, where retained entries remain useful).
func (e *Engine) NewGame() {
	e.tt.Clear()
}

// Search runs iterative deepening from depth 1 up to limits.Depth (or
// MaxPly-1 if unset or larger), stopping early when limits.MoveTime elapses
// or the caller calls Stop. It returns the best move found at the last
// fully-completed depth; a cancelled iteration's partial result is
// discarded in favor of the prior iteration's, except at depth 1, whose
// result is kept even when cancelled.
func (e *Engine) Search(pos *board.Position, limits Limits) Result {
	e.tt.NewSearch()

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	tm := NewTimeManager(limits)

	if !limits.Infinite && limits.MoveTime > 0 {
		timer := time.AfterFunc(limits.MoveTime, e.searcher.Stop)
		defer timer.Stop()
	}

	var best Result
	for depth := 1; depth <= maxDepth; depth++ {
		move, score := e.searcher.Search(pos, depth)
		if e.searcher.stopFlag.Load() && depth > 1 {
			break
		}

		best = Result{
			Move:    move,
			Score:   score,
			Depth:   depth,
			Nodes:   e.searcher.Nodes(),
			PV:      e.searcher.GetPV(),
			Elapsed: tm.Elapsed(),
		}

		if limits.Nodes > 0 && best.Nodes >= limits.Nodes {
			break
		}
		if !limits.Infinite && tm.ShouldStop() {
			break
		}
	}

	return best
}
