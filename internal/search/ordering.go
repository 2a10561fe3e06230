package search

import (
	"github.com/hailam/chessplay-core/internal/board"
)

// Move ordering priority bands, highest first.
const (
	TTMoveScore     = 10000000
	GoodCaptureBase = 1000000
	CheckMoveScore  = 950000
	KillerScore1    = 900000
	KillerScore2    = 800000
)

// mvvLva[victim][attacker]: higher means search first. Victim dominates
// (10s digit), attacker breaks ties (1s digit) — cheapest attacker first.
var mvvLva = [6][6]int{
	/*        P   N   B   R   Q   K  (attacker) */
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// Orderer assigns search-order scores to a move list: hash move first,
// then MVV-LVA captures, then non-capturing promotions, then checking
// moves, then killer quiet moves, then history-scored quiet moves.
type Orderer struct {
	killers [MaxPly][2]board.Move
	history [64][64]int
}

// NewOrderer creates an empty move orderer.
func NewOrderer() *Orderer {
	return &Orderer{}
}

// Clear resets killer moves and ages the history table for a new search.
func (o *Orderer) Clear() {
	for i := range o.killers {
		o.killers[i][0] = board.NoMove
		o.killers[i][1] = board.NoMove
	}
	for i := range o.history {
		for j := range o.history[i] {
			o.history[i][j] /= 2
		}
	}
}

// ScoreMoves returns one ordering score per move in moves.
func (o *Orderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = o.scoreMove(pos, moves.Get(i), ply, ttMove)
	}
	return scores
}

func (o *Orderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	from := m.From()
	to := m.To()

	if m.IsCapture(pos) {
		attackerPiece := pos.PieceAt(from)
		if attackerPiece == board.NoPiece {
			return GoodCaptureBase
		}
		attacker := attackerPiece.Type()

		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			capturedPiece := pos.PieceAt(to)
			if capturedPiece == board.NoPiece {
				return GoodCaptureBase
			}
			victim = capturedPiece.Type()
		}

		if victim >= board.King || attacker > board.King {
			return GoodCaptureBase
		}

		score := GoodCaptureBase + mvvLva[victim][attacker]*1000
		if board.PieceValue[attacker] < board.PieceValue[victim] {
			score += 10000
		}
		return score
	}

	if m.IsPromotion() {
		return GoodCaptureBase - 1000 + int(m.Promotion())*100
	}

	if givesCheck(pos, m) {
		return CheckMoveScore
	}

	if m == o.killers[ply][0] {
		return KillerScore1
	}
	if m == o.killers[ply][1] {
		return KillerScore2
	}

	return o.history[from][to]
}

// PickMove selects the best-scoring remaining move at or after index and
// swaps it into place, giving lazy selection-sort ordering without
// sorting moves that end up pruned.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet move that caused a beta cutoff at ply.
func (o *Orderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || o.killers[ply][0] == m {
		return
	}
	o.killers[ply][1] = o.killers[ply][0]
	o.killers[ply][0] = m
}

// givesCheck reports whether m attacks the enemy king directly from its
// destination square. It only detects direct checks, not discovered or
// en-passant-discovered checks, which is enough for move-ordering purposes:
// a move search later proves gives check regardless gets explored anyway,
// just without the priority bump.
func givesCheck(pos *board.Position, m board.Move) bool {
	moving := pos.PieceAt(m.From())
	if moving == board.NoPiece {
		return false
	}

	pt := moving.Type()
	if m.IsPromotion() {
		pt = m.Promotion()
	}

	us := pos.SideToMove
	them := us.Other()
	ksq := pos.KingSquare[them]
	to := m.To()

	occ := (pos.AllOccupied &^ board.SquareBB(m.From())) | board.SquareBB(to)

	switch pt {
	case board.Pawn:
		return board.PawnAttacks(to, us)&board.SquareBB(ksq) != 0
	case board.Knight:
		return board.KnightAttacks(to)&board.SquareBB(ksq) != 0
	case board.Bishop:
		return board.BishopAttacks(to, occ)&board.SquareBB(ksq) != 0
	case board.Rook:
		return board.RookAttacks(to, occ)&board.SquareBB(ksq) != 0
	case board.Queen:
		return board.QueenAttacks(to, occ)&board.SquareBB(ksq) != 0
	default:
		return false
	}
}

// UpdateHistory adjusts the history heuristic score for a quiet move that
// caused (isGood) or failed to cause a beta cutoff.
func (o *Orderer) UpdateHistory(m board.Move, depth int, isGood bool) {
	from := m.From()
	to := m.To()
	bonus := depth * depth

	if isGood {
		o.history[from][to] += bonus
		if o.history[from][to] > 400000 {
			for i := range o.history {
				for j := range o.history[i] {
					o.history[i][j] /= 2
				}
			}
		}
	} else {
		o.history[from][to] -= bonus
		if o.history[from][to] < -400000 {
			o.history[from][to] = -400000
		}
	}
}
