package game

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay-core/internal/board"
	"github.com/hailam/chessplay-core/internal/eval"
	"github.com/hailam/chessplay-core/internal/search"
)

// moveRecord is one entry of the undo history: the move played and the
// state needed to reverse it. The hash of the position it produced is kept
// alongside in Controller.hashLog, which repetition detection reads.
type moveRecord struct {
	move board.Move
	undo board.UndoInfo
}

// Controller is a narrow façade hiding board, search and evaluation
// internals from a front-end. All of its synchronous methods are meant to
// be called from a single thread (the state machine's); the only
// concurrent activity it starts itself is the CPU search worker kicked off
// by RequestCPUMoveAsync.
type Controller struct {
	pos     *board.Position
	records []moveRecord
	hashLog []uint64

	engine *search.Engine

	config      Configuration
	localPlayer board.Color

	cachedMoves *board.MoveList
	cacheValid  bool

	onCPUMove func(board.Move)

	cpuGroup  *errgroup.Group
	cpuCancel context.CancelFunc
}

// NewController creates a controller with its own search engine and a
// 64 MiB transposition table. It must still be initialised with
// InitializeGame before use.
func NewController() *Controller {
	return &Controller{
		engine: search.NewEngine(64),
	}
}

// SetCPUMoveCallback registers the function invoked with the CPU's chosen
// move once RequestCPUMoveAsync's background search completes.
func (c *Controller) SetCPUMoveCallback(callback func(board.Move)) {
	c.onCPUMove = callback
}

// InitializeGame sets up the starting position and remembers the game mode
// and local side. It always succeeds for a well-formed configuration.
func (c *Controller) InitializeGame(config Configuration) bool {
	c.config = config

	switch config.Mode {
	case Multiplayer:
		c.localPlayer = config.LocalPlayerSide
	case VsCPU:
		c.localPlayer = config.LocalPlayerSide
	default: // LocalCoop
		c.localPlayer = board.White
	}

	c.pos = board.NewPosition()
	c.records = c.records[:0]
	c.hashLog = append(c.hashLog[:0], c.pos.Hash)
	c.engine.NewGame()
	c.invalidateCache()

	return true
}

// ResetGame clears the board, move history, transposition table and cached
// legal moves, returning to the starting position under the same
// configuration InitializeGame was last called with.
func (c *Controller) ResetGame() {
	c.cancelCPUSearch()
	c.pos = board.NewPosition()
	c.records = c.records[:0]
	c.hashLog = append(c.hashLog[:0], c.pos.Hash)
	c.engine.NewGame()
	c.invalidateCache()
}

func (c *Controller) invalidateCache() {
	c.cacheValid = false
}

func (c *Controller) ensureCacheValid() {
	if c.cacheValid {
		return
	}
	c.cachedMoves = c.pos.GenerateLegalMoves()
	c.cacheValid = true
}

// GetLegalMovesFromSquare returns the legal moves whose origin is sq.
func (c *Controller) GetLegalMovesFromSquare(sq board.Square) []board.Move {
	c.ensureCacheValid()

	var moves []board.Move
	for i := 0; i < c.cachedMoves.Len(); i++ {
		m := c.cachedMoves.Get(i)
		if m.From() == sq {
			moves = append(moves, m)
		}
	}
	return moves
}

// ExecuteMove applies move to the position. fromRemote only distinguishes
// the origin of the move for observers; it does not change legality
// checking, since the move must already be a member of the cached legal
// set. Returns false, leaving the position unchanged, if the move is not
// legal in the current position.
func (c *Controller) ExecuteMove(move board.Move, fromRemote bool) bool {
	c.ensureCacheValid()
	if !c.cachedMoves.Contains(move) {
		return false
	}

	undo := c.pos.MakeMove(move)
	c.records = append(c.records, moveRecord{move: move, undo: undo})
	c.hashLog = append(c.hashLog, c.pos.Hash)
	c.invalidateCache()

	return true
}

// UndoLastMove pops the most recently executed move. Returns false, leaving
// state unchanged, if the history is empty.
func (c *Controller) UndoLastMove() bool {
	if len(c.records) == 0 {
		return false
	}

	last := c.records[len(c.records)-1]
	c.pos.UnmakeMove(last.move, last.undo)
	c.records = c.records[:len(c.records)-1]
	c.hashLog = c.hashLog[:len(c.hashLog)-1]
	c.invalidateCache()

	return true
}

// IsPromotionMove reports whether any legal move with the given endpoints
// is a promotion.
func (c *Controller) IsPromotionMove(from, to board.Square) bool {
	c.ensureCacheValid()
	for i := 0; i < c.cachedMoves.Len(); i++ {
		m := c.cachedMoves.Get(i)
		if m.From() == from && m.To() == to && m.IsPromotion() {
			return true
		}
	}
	return false
}

// FindMove looks up the unique legal move matching the given endpoints and
// optional promotion piece (board.NoPieceType if none). ok is false if no
// such move exists among the currently legal moves.
func (c *Controller) FindMove(from, to board.Square, promotion board.PieceType) (move board.Move, ok bool) {
	c.ensureCacheValid()
	for i := 0; i < c.cachedMoves.Len(); i++ {
		m := c.cachedMoves.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if promotion != board.NoPieceType {
			if m.IsPromotion() && m.Promotion() == promotion {
				return m, true
			}
			continue
		}
		if !m.IsPromotion() {
			return m, true
		}
	}
	return board.NoMove, false
}

const repetitionThreshold = 3

// CheckEndGame classifies the current position's game-over status,
// including the 50-move rule, insufficient material, and threefold
// repetition tracked over this controller's own move history.
func (c *Controller) CheckEndGame() EndGameState {
	if !c.pos.HasLegalMoves() {
		if c.pos.InCheck() {
			return Checkmate
		}
		return Stalemate
	}

	if c.pos.IsDraw() {
		return Draw
	}

	occurrences := 0
	current := c.pos.Hash
	for _, h := range c.hashLog {
		if h == current {
			occurrences++
		}
	}
	if occurrences >= repetitionThreshold {
		return Draw
	}

	return OnGoing
}

// CurrentSide returns the side to move.
func (c *Controller) CurrentSide() board.Color {
	return c.pos.SideToMove
}

// IsLocalPlayerTurn reports whether the side to move is the local player's.
func (c *Controller) IsLocalPlayerTurn() bool {
	return c.pos.SideToMove == c.localPlayer
}

// SwitchTurns is a no-op beyond cache invalidation: board.Position.MakeMove
// already flips the side to move as part of applying a move, unlike the
// two-step make-then-switch protocol this controller's design was modelled
// on. It is kept so callers following that two-step shape have somewhere
// to call.
func (c *Controller) SwitchTurns() {
	c.invalidateCache()
}

// IsCPUTurn reports whether the engine should move next.
func (c *Controller) IsCPUTurn() bool {
	if c.config.Mode != VsCPU {
		return false
	}
	return !c.IsLocalPlayerTurn()
}

func (c *Controller) cancelCPUSearch() {
	if c.cpuCancel != nil {
		c.cpuCancel()
		c.engine.Stop()
		c.cpuGroup.Wait()
		c.cpuCancel = nil
		c.cpuGroup = nil
	}
}

// RequestCPUMoveAsync starts a background search for the side to move and
// delivers its result to the callback registered via SetCPUMoveCallback.
// The worker searches its own copy of the position, so the caller may keep
// using Controller concurrently up until the next call that mutates
// position state; per this package's concurrency contract, no such call
// happens while a CPU search is outstanding.
func (c *Controller) RequestCPUMoveAsync() {
	c.cancelCPUSearch()

	posCopy := c.pos.Copy()
	depth := depthForDifficulty(c.config.CPUDifficulty)
	factor := randomizationFactor(c.config.CPUDifficulty)
	topK := candidateMoveCount(c.config.CPUDifficulty)

	ctx, cancel := context.WithCancel(context.Background())
	g := &errgroup.Group{}
	c.cpuCancel = cancel
	c.cpuGroup = g

	g.Go(func() error {
		move := c.chooseCPUMove(posCopy, depth, factor, topK)

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if c.onCPUMove != nil {
			c.onCPUMove(move)
		}
		return nil
	})
}

type scoredMove struct {
	move  board.Move
	score int
}

// chooseCPUMove runs the engine to depth against pos and, when
// randomisation is enabled, samples among its top-scoring root moves
// instead of always playing the single best one: weaker difficulties
// should occasionally misplay, not merely search shallower.
func (c *Controller) chooseCPUMove(pos *board.Position, depth int, factor float64, topK int) board.Move {
	result := c.engine.Search(pos, search.Limits{Depth: depth})
	if result.Move == board.NoMove {
		return board.NoMove
	}
	if factor <= 0 {
		return result.Move
	}

	candidates := c.scoreRootMoves(pos, depth)
	if len(candidates) <= 1 {
		return result.Move
	}
	if topK < len(candidates) {
		candidates = candidates[:topK]
	}

	return sampleWeighted(candidates, factor)
}

// scoreRootMoves evaluates every legal root move one-by-one by making it
// and having the engine search the resulting position to depth-1 plies (or
// statically evaluating it at depth 1), mirroring how a naive root search
// scores each candidate independently. It returns moves sorted best-first.
func (c *Controller) scoreRootMoves(pos *board.Position, depth int) []scoredMove {
	moves := pos.GenerateLegalMoves()
	scored := make([]scoredMove, 0, moves.Len())

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		child := pos.Copy()
		child.MakeMove(m)

		var score int
		if depth <= 1 {
			score = -eval.Evaluate(child)
		} else {
			reply := c.engine.Search(child, search.Limits{Depth: depth - 1})
			score = -reply.Score
		}

		scored = append(scored, scoredMove{move: m, score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored
}

// sampleWeighted samples a move from candidates (best-first) using
// softmax weights exp(-Δscore * factor) against the best candidate's
// score, so moves close in value to the best one remain plausible picks
// while much worse moves become vanishingly unlikely.
func sampleWeighted(candidates []scoredMove, factor float64) board.Move {
	best := candidates[0].score

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		w := math.Exp(-float64(best-c.score) * factor)
		weights[i] = w
		total += w
	}

	r := rand.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return candidates[i].move
		}
	}
	return candidates[0].move
}
