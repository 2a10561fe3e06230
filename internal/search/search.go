package search

import (
	"sync/atomic"

	"github.com/hailam/chessplay-core/internal/board"
	"github.com/hailam/chessplay-core/internal/eval"
)

// Search constants shared with the transposition table's mate-distance
// adjustment.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// pvTable tracks the principal variation discovered at each ply.
type pvTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs a single-threaded negamax alpha-beta search with
// quiescence, a transposition table, and MVV-LVA/killer/history move
// ordering. It holds no position state between calls to Search other than
// its own working copy, so a single Searcher is reused across positions.
type Searcher struct {
	pos     *board.Position
	tt      *Table
	orderer *Orderer

	nodes    uint64
	stopFlag atomic.Bool

	pv pvTable

	undoStack [MaxPly]board.UndoInfo
}

// NewSearcher creates a searcher backed by the given transposition table.
func NewSearcher(tt *Table) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewOrderer(),
	}
}

// Stop requests the search to unwind at the next cooperative check point.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears per-search state ahead of a new call to Search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search returns the best move and its score (from pos's side-to-move
// perspective) found within depth plies. Search is synchronous; callers
// wanting cancellation call Stop from another goroutine.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()

	score := s.negamax(depth, 0, -Infinity, Infinity)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}

	return bestMove, score
}

// GetPV returns the principal variation from the most recent search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.nodes&4095 == 0 && s.stopFlag.Load() {
		return 0
	}
	s.nodes++
	s.pv.length[ply] = ply

	if ply > 0 && s.isDraw() {
		return 0
	}

	var ttMove board.Move
	if entry, found := s.tt.Probe(s.pos.Hash); found {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Node {
			case Exact:
				return score
			case Beta:
				if score > alpha {
					alpha = score
				}
			case Alpha:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	const nullMoveReduction = 3
	if !inCheck && ply > 0 && depth > nullMoveReduction && beta < MateScore-MaxPly &&
		s.pos.HasNonPawnMaterial() {
		nullUndo := s.pos.MakeNullMove()
		score := -s.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1)
		s.pos.UnmakeNullMove(nullUndo)

		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	moves := s.pos.GenerateLegalMoves()

	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	node := Alpha

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		s.undoStack[ply] = s.pos.MakeMove(move)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.pos.UnmakeMove(move, s.undoStack[ply])

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				node = Exact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), Beta, bestMove)

			if !move.IsCapture(s.pos) {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth, true)
			}

			return score
		}
	}

	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), node, bestMove)

	return bestScore
}

// quiescence extends search through captures only, to avoid the horizon
// effect at the nominal depth boundary.
func (s *Searcher) quiescence(ply, alpha, beta int) int {
	const maxQuiescencePly = 32
	if ply >= MaxPly || ply > maxQuiescencePly {
		return eval.Evaluate(s.pos)
	}

	if s.stopFlag.Load() {
		return 0
	}
	s.nodes++

	standPat := eval.Evaluate(s.pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	bigDelta := board.PieceValue[board.Queen]
	if standPat+bigDelta < alpha {
		return alpha
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !s.pos.InCheck() {
			var captureValue int
			if move.IsEnPassant() {
				captureValue = board.PieceValue[board.Pawn]
			} else if captured := s.pos.PieceAt(move.To()); captured != board.NoPiece {
				captureValue = board.PieceValue[captured.Type()]
			}
			if move.IsPromotion() {
				captureValue += board.PieceValue[board.Queen] - board.PieceValue[board.Pawn]
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// isDraw checks draw conditions visible from a single position. Threefold
// repetition needs game-history context the searcher doesn't hold; that
// check lives in the game controller, which also consults search results.
func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	return s.pos.IsInsufficientMaterial()
}
