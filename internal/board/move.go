package board

import (
	"fmt"
	"strings"
)

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: flag (see MoveFlag constants below)
type Move uint16

// MoveFlag identifies the special-move category of a Move. The encoding
// follows the standard chess programming convention: bit 3 set means
// promotion, bit 2 set (on a promotion flag) or flag==FlagCapture/
// FlagEnPassant means the move captures.
type MoveFlag uint8

const (
	FlagQuiet          MoveFlag = 0b0000
	FlagDoublePawnPush MoveFlag = 0b0001
	FlagCastleKing     MoveFlag = 0b0010
	FlagCastleQueen    MoveFlag = 0b0011
	FlagCapture        MoveFlag = 0b0100
	FlagEnPassant      MoveFlag = 0b0101
	// 0b0110, 0b0111 reserved
	FlagPromoKnight    MoveFlag = 0b1000
	FlagPromoBishop    MoveFlag = 0b1001
	FlagPromoRook      MoveFlag = 0b1010
	FlagPromoQueen     MoveFlag = 0b1011
	FlagPromoCapKnight MoveFlag = 0b1100
	FlagPromoCapBishop MoveFlag = 0b1101
	FlagPromoCapRook   MoveFlag = 0b1110
	FlagPromoCapQueen  MoveFlag = 0b1111
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

const (
	fromShift  = 0
	toShift    = 6
	flagShift  = 12
	squareMask = 0x3F
	flagMask   = 0xF
)

// NewMove packs a from/to/flag triple into a Move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(uint16(from)<<fromShift | uint16(to)<<toShift | uint16(flag)<<flagShift)
}

// NewQuietMove creates a quiet (non-capturing, non-special) move.
func NewQuietMove(from, to Square) Move {
	return NewMove(from, to, FlagQuiet)
}

// NewCaptureMove creates a normal capture move.
func NewCaptureMove(from, to Square) Move {
	return NewMove(from, to, FlagCapture)
}

// NewDoublePawnPush creates a two-square pawn push move.
func NewDoublePawnPush(from, to Square) Move {
	return NewMove(from, to, FlagDoublePawnPush)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return NewMove(from, to, FlagEnPassant)
}

// NewCastling creates a castling move (king's movement); kingSide selects
// O-O vs O-O-O.
func NewCastling(from, to Square, kingSide bool) Move {
	if kingSide {
		return NewMove(from, to, FlagCastleKing)
	}
	return NewMove(from, to, FlagCastleQueen)
}

var promoFlag = [4]MoveFlag{FlagPromoKnight, FlagPromoBishop, FlagPromoRook, FlagPromoQueen}
var promoCapFlag = [4]MoveFlag{FlagPromoCapKnight, FlagPromoCapBishop, FlagPromoCapRook, FlagPromoCapQueen}

func promotionPieceOffset(pt PieceType) int {
	switch pt {
	case Knight:
		return 0
	case Bishop:
		return 1
	case Rook:
		return 2
	default:
		return 3 // Queen, and anything malformed defaults to queen
	}
}

// NewPromotion creates a promotion move, capturing if capture is true.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	idx := promotionPieceOffset(promo)
	if capture {
		return NewMove(from, to, promoCapFlag[idx])
	}
	return NewMove(from, to, promoFlag[idx])
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((m >> fromShift) & squareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> toShift) & squareMask)
}

// Flag returns the move's flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag((m >> flagShift) & flagMask)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flag()&0b1000 != 0
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == FlagCastleKing || f == FlagCastleQueen
}

// IsKingSideCastle returns true if this is kingside castling.
func (m Move) IsKingSideCastle() bool {
	return m.Flag() == FlagCastleKing
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsDoublePawnPush returns true if this is a two-square pawn push.
func (m Move) IsDoublePawnPush() bool {
	return m.Flag() == FlagDoublePawnPush
}

// IsCapture returns true if this move captures a piece. The flag alone
// determines this; pos is accepted for API stability with call sites that
// previously needed board state.
func (m Move) IsCapture(pos *Position) bool {
	f := m.Flag()
	return f == FlagCapture || f == FlagEnPassant ||
		f == FlagPromoCapKnight || f == FlagPromoCapBishop || f == FlagPromoCapRook || f == FlagPromoCapQueen
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	switch m.Flag() {
	case FlagPromoKnight, FlagPromoCapKnight:
		return Knight
	case FlagPromoBishop, FlagPromoCapBishop:
		return Bishop
	case FlagPromoRook, FlagPromoCapRook:
		return Rook
	case FlagPromoQueen, FlagPromoCapQueen:
		return Queen
	default:
		return NoPieceType
	}
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		s += strings.ToLower(string("pnbrqk"[m.Promotion()]))
	}

	return s
}

// ParseMove parses a UCI format move string, consulting pos to determine
// the correct flag (capture/en-passant/castle/double-push).
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	capture := pos.PieceAt(to) != NoPiece

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo, capture), nil
	}

	pt := piece.Type()

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to, to > from), nil
	}

	if pt == Pawn {
		if to == pos.EnPassant && !capture {
			return NewEnPassant(from, to), nil
		}
		if abs(int(to)-int(from)) == 16 {
			return NewDoublePawnPush(from, to), nil
		}
	}

	if capture {
		return NewCaptureMove(from, to), nil
	}
	return NewQuietMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	if ml.count >= len(ml.moves) {
		return
	}
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo carries exactly the state MakeMove cannot otherwise recover: the
// captured piece (if any) and the board-state fields it mutated. This is
// intentionally minimal, not a full-board snapshot.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	Hash           uint64
}
