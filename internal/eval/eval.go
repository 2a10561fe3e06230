// Package eval provides a static, tapered evaluation of a chess position.
package eval

import (
	"github.com/hailam/chessplay-core/internal/board"
)

// Material values in centipawns. board.PieceValue already holds these; the
// local copies keep this package's tuning independent of the board package's.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// Passed pawn bonuses by rank from the pawn's perspective (index 0 = rank 1).
var passedPawnBonus = [8]int{0, 10, 20, 40, 70, 120, 200, 0}

const (
	passedPawnConnectedBonus = 20
	passedPawnProtectedBonus = 15
	passedPawnFreePathBonus  = 30
)

var mobilityMgWeight = [6]int{0, 4, 5, 2, 1, 0}
var mobilityEgWeight = [6]int{0, 3, 4, 4, 2, 0}

var attackerWeight = [6]int{0, 20, 20, 40, 80, 0}

const (
	pawnShieldBonus      = 10
	pawnShieldMissing    = -15
	openFileNearKing     = -20
	semiOpenFileNearKing = -10
)

const (
	bishopPairMgBonus = 25
	bishopPairEgBonus = 50
)

const (
	rookOpenFileMg     = 20
	rookOpenFileEg     = 25
	rookSemiOpenFileMg = 10
	rookSemiOpenFileEg = 15
)

const (
	doubledPawnMgPenalty  = -15
	doubledPawnEgPenalty  = -20
	isolatedPawnMgPenalty = -20
	isolatedPawnEgPenalty = -25
	backwardPawnMgPenalty = -15
	backwardPawnEgPenalty = -10
)

const tempoBonus = 10

// Tactical pattern bonuses/penalties. These are deliberately simple: no
// static exchange evaluation is done here (the search package's quiescence
// search resolves captures by searching them). This package only rewards the shapes a position holds
// right now, independent of whose turn it is to exploit them.
const (
	pinnedPiecePenaltyMg = -15
	pinnedPiecePenaltyEg = -10
	knightForkBonusMg    = 35
	knightForkBonusEg    = 25
)

var kingDistanceBonus = [8]int{0, 0, 10, 20, 30, 40, 50, 60}

const passedPawnUnstoppableBonus = 200

var (
	pawnPST = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		50, 50, 50, 50, 50, 50, 50, 50,
		10, 10, 20, 30, 30, 20, 10, 10,
		5, 5, 10, 25, 25, 10, 5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -20, -20, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}

	knightPST = [64]int{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	}

	bishopPST = [64]int{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	}

	rookPST = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, 10, 10, 10, 10, 5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		0, 0, 0, 5, 5, 0, 0, 0,
	}

	queenPST = [64]int{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	}

	kingMidgamePST = [64]int{
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		20, 20, 0, 0, 0, 0, 20, 20,
		20, 30, 10, 0, 0, 10, 30, 20,
	}

	kingEndgamePST = [64]int{
		-50, -40, -30, -20, -20, -30, -40, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	}
)

var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST,
}

// maxPhase is the material-phase total at the start of a game: two knights,
// two bishops (1 each), two rooks (2 each) and one queen (4) per side.
const maxPhase = 24

// Evaluate returns the static evaluation of pos from its side-to-move's
// perspective, in centipawns. It linearly interpolates a middlegame and
// endgame score by the remaining non-pawn material (phase), so piece
// placement smoothly shifts in weight as pieces come off the board.
func Evaluate(pos *board.Position) int {
	return evaluate(pos, nil)
}

// EvaluateWithPawnTable is Evaluate but serves pawn-structure terms from pt
// when the position's pawn skeleton has been scored before.
func EvaluateWithPawnTable(pos *board.Position, pt *PawnTable) int {
	return evaluate(pos, pt)
}

func evaluate(pos *board.Position, pt *PawnTable) int {
	var mgScore, egScore int
	var phase int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		for p := board.Pawn; p <= board.King; p++ {
			bb := pos.Pieces[c][p]
			for bb != 0 {
				sq := bb.PopLSB()

				mgScore += sign * pieceValues[p]
				egScore += sign * pieceValues[p]

				pstSq := sq
				if c == board.Black {
					pstSq = sq.Mirror()
				}

				if p == board.King {
					mgScore += sign * kingMidgamePST[pstSq]
					egScore += sign * kingEndgamePST[pstSq]
				} else {
					pstValue := psts[p][pstSq]
					mgScore += sign * pstValue
					egScore += sign * pstValue
				}

				switch p {
				case board.Knight, board.Bishop:
					phase++
				case board.Rook:
					phase += 2
				case board.Queen:
					phase += 4
				}
			}
		}
	}

	ppMg, ppEg := evaluatePassedPawns(pos)
	mgScore += ppMg
	egScore += ppEg

	mobMg, mobEg := evaluateMobility(pos)
	mgScore += mobMg
	egScore += mobEg

	mgScore += evaluateKingSafety(pos)

	bpMg, bpEg := evaluateBishopPair(pos)
	mgScore += bpMg
	egScore += bpEg

	rfMg, rfEg := evaluateRooksOnFiles(pos)
	mgScore += rfMg
	egScore += rfEg

	psMg, psEg := evaluatePawnStructureWithCache(pos, pt)
	mgScore += psMg
	egScore += psEg

	tacMg, tacEg := evaluateTactics(pos)
	mgScore += tacMg
	egScore += tacEg

	if phase > maxPhase {
		phase = maxPhase
	}

	score := (mgScore*phase + egScore*(maxPhase-phase)) / maxPhase

	if pos.SideToMove == board.Black {
		score = -score
	}

	// Tempo bonus always credits the side to move, applied after the
	// perspective flip so it never ends up working against the mover.
	return score + tempoBonus
}

// EvaluateMaterial returns the material-only balance from the side to
// move's perspective, for callers that need a cheap sanity check or delta
// pruning margin rather than the full evaluation.
func EvaluateMaterial(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt <= board.King; pt++ {
		score += pos.Pieces[board.White][pt].PopCount() * pieceValues[pt]
		score -= pos.Pieces[board.Black][pt].PopCount() * pieceValues[pt]
	}
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// IsEndgame reports whether pos has left the middlegame: no queens, or each
// side's non-pawn material is at or below a minor-plus-rook.
func IsEndgame(pos *board.Position) bool {
	queens := pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]
	if queens == 0 {
		return true
	}

	for c := board.White; c <= board.Black; c++ {
		material := pos.Pieces[c][board.Knight].PopCount()*KnightValue +
			pos.Pieces[c][board.Bishop].PopCount()*BishopValue +
			pos.Pieces[c][board.Rook].PopCount()*RookValue +
			pos.Pieces[c][board.Queen].PopCount()*QueenValue
		if material > RookValue+KnightValue {
			return false
		}
	}
	return true
}

func isPassedPawn(pos *board.Position, sq board.Square, color board.Color) bool {
	file := sq.File()
	enemy := color.Other()
	enemyPawns := pos.Pieces[enemy][board.Pawn]

	var blockZone board.Bitboard
	if color == board.White {
		blockZone = board.SquareBB(sq).NorthFill() &^ board.SquareBB(sq)
	} else {
		blockZone = board.SquareBB(sq).SouthFill() &^ board.SquareBB(sq)
	}

	var fileSpan board.Bitboard
	fileSpan |= board.FileMask[file]
	if file > 0 {
		fileSpan |= board.FileMask[file-1]
	}
	if file < 7 {
		fileSpan |= board.FileMask[file+1]
	}

	return enemyPawns&blockZone&fileSpan == 0
}

func chebyshevDistance(a, b board.Square) int {
	df := a.File() - b.File()
	if df < 0 {
		df = -df
	}
	dr := a.Rank() - b.Rank()
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// evaluatePassedPawns scores passed pawns: a base bonus by rank, plus
// endgame-weighted bonuses for king proximity, pawn support, connection to
// another passed pawn, a clear path to promotion, and being unstoppable by
// the defending king.
func evaluatePassedPawns(pos *board.Position) (mgBonus, egBonus int) {
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		pawns := pos.Pieces[color][board.Pawn]
		friendlyPawns := pawns
		enemy := color.Other()

		friendlyKingSq := pos.KingSquare[color]
		enemyKingSq := pos.KingSquare[enemy]

		for pawns != 0 {
			sq := pawns.PopLSB()
			if !isPassedPawn(pos, sq, color) {
				continue
			}

			relRank := sq.RelativeRank(color)
			file := sq.File()

			bonus := passedPawnBonus[relRank]
			egBonusExtra := 0

			var promoSq board.Square
			if color == board.White {
				promoSq = board.NewSquare(file, 7)
			} else {
				promoSq = board.NewSquare(file, 0)
			}

			friendlyKingDist := chebyshevDistance(friendlyKingSq, sq)
			egBonusExtra += kingDistanceBonus[7-minInt(friendlyKingDist, 7)]

			enemyKingDistToPromo := chebyshevDistance(enemyKingSq, promoSq)
			egBonusExtra += kingDistanceBonus[minInt(enemyKingDistToPromo, 7)]

			pawnAttackers := board.PawnAttacks(sq, color.Other()) & friendlyPawns
			if pawnAttackers != 0 {
				bonus += passedPawnProtectedBonus
			}

			var adjacentFiles board.Bitboard
			if file > 0 {
				adjacentFiles |= board.FileMask[file-1]
			}
			if file < 7 {
				adjacentFiles |= board.FileMask[file+1]
			}
			connectedPawns := friendlyPawns & adjacentFiles
			for temp := connectedPawns; temp != 0; {
				connSq := temp.PopLSB()
				if isPassedPawn(pos, connSq, color) {
					bonus += passedPawnConnectedBonus
					break
				}
			}

			var frontSquares board.Bitboard
			if color == board.White {
				frontSquares = board.SquareBB(sq).NorthFill() &^ board.SquareBB(sq)
			} else {
				frontSquares = board.SquareBB(sq).SouthFill() &^ board.SquareBB(sq)
			}
			frontSquares &= board.FileMask[file]
			pathClear := (frontSquares & pos.AllOccupied) == 0
			if pathClear {
				bonus += passedPawnFreePathBonus
			}

			if pathClear && relRank >= 4 {
				squaresToPromo := 7 - relRank
				enemyKingDistToPawn := chebyshevDistance(enemyKingSq, sq)

				tempo := 0
				if pos.SideToMove == color {
					tempo = 1
				}

				if enemyKingDistToPawn > squaresToPromo+1-tempo {
					egBonusExtra += passedPawnUnstoppableBonus
				}
			}

			mgBonus += sign * bonus
			egBonus += sign * (bonus*3/2 + egBonusExtra)
		}
	}

	return mgBonus, egBonus
}

// evaluateMobility rewards the count of safe squares (not attacked by an
// enemy pawn, not occupied by a friendly piece) each minor, rook and queen
// can move to.
func evaluateMobility(pos *board.Position) (mgBonus, egBonus int) {
	occupied := pos.AllOccupied

	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		enemyPawns := pos.Pieces[color.Other()][board.Pawn]
		var unsafeSquares board.Bitboard
		if color == board.White {
			unsafeSquares = enemyPawns.SouthEast() | enemyPawns.SouthWest()
		} else {
			unsafeSquares = enemyPawns.NorthEast() | enemyPawns.NorthWest()
		}

		blockedSquares := unsafeSquares | pos.Occupied[color]

		knights := pos.Pieces[color][board.Knight]
		for knights != 0 {
			sq := knights.PopLSB()
			count := (board.KnightAttacks(sq) &^ blockedSquares).PopCount()
			mgBonus += sign * mobilityMgWeight[board.Knight] * count
			egBonus += sign * mobilityEgWeight[board.Knight] * count
		}

		bishops := pos.Pieces[color][board.Bishop]
		for bishops != 0 {
			sq := bishops.PopLSB()
			count := (board.BishopAttacks(sq, occupied) &^ blockedSquares).PopCount()
			mgBonus += sign * mobilityMgWeight[board.Bishop] * count
			egBonus += sign * mobilityEgWeight[board.Bishop] * count
		}

		rooks := pos.Pieces[color][board.Rook]
		for rooks != 0 {
			sq := rooks.PopLSB()
			count := (board.RookAttacks(sq, occupied) &^ blockedSquares).PopCount()
			mgBonus += sign * mobilityMgWeight[board.Rook] * count
			egBonus += sign * mobilityEgWeight[board.Rook] * count
		}

		queens := pos.Pieces[color][board.Queen]
		for queens != 0 {
			sq := queens.PopLSB()
			count := (board.QueenAttacks(sq, occupied) &^ blockedSquares).PopCount()
			mgBonus += sign * mobilityMgWeight[board.Queen] * count
			egBonus += sign * mobilityEgWeight[board.Queen] * count
		}
	}

	return mgBonus, egBonus
}

// evaluateKingSafety scores attacker pressure on the king's zone and pawn
// shield integrity. It is a middlegame-only term: king safety stops
// mattering once enough material is off the board to make king activity
// more valuable than shelter.
func evaluateKingSafety(pos *board.Position) int {
	var score int
	occupied := pos.AllOccupied

	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		kingSq := pos.KingSquare[color]
		kingFile := kingSq.File()

		kingZone := board.KingAttacks(kingSq) | board.SquareBB(kingSq)
		if color == board.White {
			kingZone |= kingZone.North()
		} else {
			kingZone |= kingZone.South()
		}

		enemy := color.Other()

		attackerCount := 0
		attackWeight := 0

		for temp := pos.Pieces[enemy][board.Knight]; temp != 0; {
			sq := temp.PopLSB()
			if board.KnightAttacks(sq)&kingZone != 0 {
				attackerCount++
				attackWeight += attackerWeight[board.Knight]
			}
		}
		for temp := pos.Pieces[enemy][board.Bishop]; temp != 0; {
			sq := temp.PopLSB()
			if board.BishopAttacks(sq, occupied)&kingZone != 0 {
				attackerCount++
				attackWeight += attackerWeight[board.Bishop]
			}
		}
		for temp := pos.Pieces[enemy][board.Rook]; temp != 0; {
			sq := temp.PopLSB()
			if board.RookAttacks(sq, occupied)&kingZone != 0 {
				attackerCount++
				attackWeight += attackerWeight[board.Rook]
			}
		}
		for temp := pos.Pieces[enemy][board.Queen]; temp != 0; {
			sq := temp.PopLSB()
			if board.QueenAttacks(sq, occupied)&kingZone != 0 {
				attackerCount++
				attackWeight += attackerWeight[board.Queen]
			}
		}

		if attackerCount >= 2 {
			attackWeight = attackWeight * attackerCount / 2
		}
		score -= sign * attackWeight

		ownPawns := pos.Pieces[color][board.Pawn]
		enemyFilePawns := pos.Pieces[enemy][board.Pawn]

		for f := kingFile - 1; f <= kingFile+1; f++ {
			if f < 0 || f > 7 {
				continue
			}

			filePawns := ownPawns & board.FileMask[f]
			enemyOnFile := enemyFilePawns & board.FileMask[f]

			shieldRank := 1
			if color == board.Black {
				shieldRank = 6
			}

			shieldMask := board.FileMask[f] & board.RankMask[shieldRank]
			if ownPawns&shieldMask != 0 {
				score += sign * pawnShieldBonus
			} else if filePawns == 0 {
				score += sign * pawnShieldMissing
			}

			if filePawns == 0 && enemyOnFile == 0 {
				score += sign * openFileNearKing
			} else if filePawns == 0 {
				score += sign * semiOpenFileNearKing
			}
		}
	}

	return score
}

// evaluateBishopPair rewards holding both bishops: together they cover both
// square colors, which a single bishop or a knight pair cannot.
func evaluateBishopPair(pos *board.Position) (mgBonus, egBonus int) {
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		if pos.Pieces[color][board.Bishop].PopCount() >= 2 {
			mgBonus += sign * bishopPairMgBonus
			egBonus += sign * bishopPairEgBonus
		}
	}
	return mgBonus, egBonus
}

// evaluateRooksOnFiles rewards rooks on open and semi-open files.
func evaluateRooksOnFiles(pos *board.Position) (mgBonus, egBonus int) {
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		ownPawns := pos.Pieces[color][board.Pawn]
		enemyPawns := pos.Pieces[color.Other()][board.Pawn]

		rooks := pos.Pieces[color][board.Rook]
		for rooks != 0 {
			sq := rooks.PopLSB()
			fileMask := board.FileMask[sq.File()]

			hasOwnPawn := (ownPawns & fileMask) != 0
			hasEnemyPawn := (enemyPawns & fileMask) != 0

			if !hasOwnPawn {
				if !hasEnemyPawn {
					mgBonus += sign * rookOpenFileMg
					egBonus += sign * rookOpenFileEg
				} else {
					mgBonus += sign * rookSemiOpenFileMg
					egBonus += sign * rookSemiOpenFileEg
				}
			}
		}
	}
	return mgBonus, egBonus
}

// evaluatePawnStructure penalizes doubled, isolated and backward pawns.
func evaluatePawnStructure(pos *board.Position) (mgPenalty, egPenalty int) {
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		pawns := pos.Pieces[color][board.Pawn]
		allPawns := pawns

		for pawns != 0 {
			sq := pawns.PopLSB()
			file := sq.File()
			fileMask := board.FileMask[file]

			pawnsOnFile := allPawns & fileMask
			if pawnsOnFile.PopCount() > 1 {
				var forwardPawn board.Square
				if color == board.White {
					forwardPawn = pawnsOnFile.MSB()
				} else {
					forwardPawn = pawnsOnFile.LSB()
				}
				if sq == forwardPawn {
					mgPenalty += sign * doubledPawnMgPenalty
					egPenalty += sign * doubledPawnEgPenalty
				}
			}

			var adjacentFiles board.Bitboard
			if file > 0 {
				adjacentFiles |= board.FileMask[file-1]
			}
			if file < 7 {
				adjacentFiles |= board.FileMask[file+1]
			}
			if (allPawns & adjacentFiles) == 0 {
				mgPenalty += sign * isolatedPawnMgPenalty
				egPenalty += sign * isolatedPawnEgPenalty
				continue
			}

			relRank := sq.RelativeRank(color)
			if relRank > 1 {
				var behindMask board.Bitboard
				if color == board.White {
					for r := 0; r < sq.Rank(); r++ {
						behindMask |= board.RankMask[r]
					}
				} else {
					for r := sq.Rank() + 1; r < 8; r++ {
						behindMask |= board.RankMask[r]
					}
				}

				adjacentPawns := allPawns & adjacentFiles
				if adjacentPawns != 0 && (adjacentPawns&behindMask) == adjacentPawns {
					continue
				}

				var stopSq board.Square
				if color == board.White {
					stopSq = sq + 8
				} else {
					stopSq = sq - 8
				}
				if stopSq.IsValid() {
					enemyPawnAttacks := board.PawnAttacks(stopSq, color)
					enemyPawns := pos.Pieces[color.Other()][board.Pawn]
					if (enemyPawns & enemyPawnAttacks) != 0 {
						mgPenalty += sign * backwardPawnMgPenalty
						egPenalty += sign * backwardPawnEgPenalty
					}
				}
			}
		}
	}
	return mgPenalty, egPenalty
}

// evaluatePawnStructureWithCache serves evaluatePawnStructure from pt when
// possible, falling back to direct computation on a miss or a nil table.
func evaluatePawnStructureWithCache(pos *board.Position, pt *PawnTable) (mgScore, egScore int) {
	if pt == nil {
		return evaluatePawnStructure(pos)
	}

	if mg, eg, found := pt.Probe(pos.PawnKey); found {
		return mg, eg
	}

	mg, eg := evaluatePawnStructure(pos)
	pt.Store(pos.PawnKey, mg, eg)
	return mg, eg
}

// evaluateTactics scores simple, non-search-based tactical shapes already
// present on the board: pieces pinned against their own king, and knights
// attacking two or more enemy pieces other than pawns and the king (whether
// those pieces are defended is not checked). A skewer is the
// same alignment a pin is, with the more valuable piece standing in front
// of the king instead of behind it, so it is covered by the same pin scan
// from the opposing side's perspective.
func evaluateTactics(pos *board.Position) (mgBonus, egBonus int) {
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}

		pinned := pos.PinnedTo(color)
		count := pinned.PopCount()
		mgBonus += sign * pinnedPiecePenaltyMg * count
		egBonus += sign * pinnedPiecePenaltyEg * count

		enemy := color.Other()
		enemyTargets := pos.Occupied[enemy] &^ pos.Pieces[enemy][board.Pawn] &^ pos.Pieces[enemy][board.King]

		knights := pos.Pieces[color][board.Knight]
		for knights != 0 {
			sq := knights.PopLSB()
			forked := board.KnightAttacks(sq) & enemyTargets
			if forked.PopCount() >= 2 {
				mgBonus += sign * knightForkBonusMg
				egBonus += sign * knightForkBonusEg
			}
		}
	}
	return mgBonus, egBonus
}
