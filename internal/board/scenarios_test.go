package board

import "testing"

// playUCI finds the legal move matching the given UCI string (e.g. "e2e4",
// "a7a8q") and applies it, failing the test if no legal move matches. Using
// the legal-move list rather than ParseMove's raw reconstruction keeps these
// scenario tests honest: an illegal move string fails loudly instead of
// silently producing a move object that was never actually legal.
func playUCI(t *testing.T, pos *Position, uci string) UndoInfo {
	t.Helper()

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.String() == uci {
			return pos.MakeMove(m)
		}
	}
	t.Fatalf("%s is not a legal move in position %s", uci, pos.ToFEN())
	return UndoInfo{}
}

// TestScenarioScholarsMate is scenario A.
func TestScenarioScholarsMate(t *testing.T) {
	pos := NewPosition()

	for _, uci := range []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"} {
		playUCI(t, pos, uci)
	}

	if !pos.IsCheckmate() {
		t.Fatalf("expected checkmate after Qxf7#, got FEN %s", pos.ToFEN())
	}
	// White delivered mate; the side to move (Black) is the loser.
	if pos.SideToMove != Black {
		t.Fatalf("expected black to move after white's mating move, got %v", pos.SideToMove)
	}
}

// TestScenarioEnPassant is scenario B.
func TestScenarioEnPassant(t *testing.T) {
	pos := NewPosition()

	for _, uci := range []string{"e2e4", "e7e6", "g1f3", "g8f6", "e4e5", "d7d5"} {
		playUCI(t, pos, uci)
	}

	expectedEP, _ := ParseSquare("d6")
	if pos.EnPassant != expectedEP {
		t.Fatalf("expected en-passant target d6, got %v", pos.EnPassant)
	}

	before := *pos
	undo := playUCI(t, pos, "e5d6")

	if pos.PieceAt(mustSquare(t, "d6")).Type() != Pawn {
		t.Fatal("expected white pawn on d6 after en-passant capture")
	}
	if pos.PieceAt(mustSquare(t, "d5")) != NoPiece {
		t.Fatal("expected d5 to be empty after en-passant capture removes the black pawn")
	}

	m, err := ParseMove("e5d6", &before)
	if err != nil {
		t.Fatalf("failed to reconstruct move: %v", err)
	}
	pos.UnmakeMove(m, undo)
	if *pos != before {
		t.Fatal("undo after en-passant capture did not restore the position exactly")
	}
}

// TestScenarioCastlingBlockedByTransitAttack is scenario C.
func TestScenarioCastlingBlockedByTransitAttack(t *testing.T) {
	// White king e1, rook h1, black bishop on a6 attacking f1 along the
	// a6-f1 diagonal; nothing else obstructs castling rights or the path.
	pos, err := ParseFEN("4k3/8/b7/8/8/8/8/4K2R w K - 0 1")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsCastling() {
			t.Fatalf("kingside castle %v should be illegal: bishop on a6 attacks the f1 transit square", m)
		}
	}
}

// TestScenarioStalemate is scenario D.
func TestScenarioStalemate(t *testing.T) {
	// White king h1, black king f2, black queen g3, white to move: white
	// has no legal move and is not in check.
	pos, err := ParseFEN("8/8/8/8/8/6q1/5k2/7K w - - 0 1")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	if pos.InCheck() {
		t.Fatal("stalemate fixture must not have white in check")
	}
	if !pos.IsStalemate() {
		t.Fatalf("expected stalemate, got FEN %s with %d legal moves", pos.ToFEN(), pos.GenerateLegalMoves().Len())
	}
}

// TestScenarioPromotion is scenario E.
func TestScenarioPromotion(t *testing.T) {
	pos, err := ParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	from := mustSquare(t, "a7")
	moves := pos.GenerateLegalMoves()
	var fromA7 int
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.From() == from {
			fromA7++
		}
	}
	if fromA7 != 4 {
		t.Fatalf("expected exactly 4 promotion moves from a7, got %d", fromA7)
	}

	undo := playUCI(t, pos, "a7a8q")
	to := mustSquare(t, "a8")
	if piece := pos.PieceAt(to); piece.Type() != Queen || piece.Color() != White {
		t.Fatalf("expected a white queen on a8 after promotion, got %v", piece)
	}
	if pos.PieceAt(from) != NoPiece {
		t.Fatal("expected a7 to be empty after the pawn promotes")
	}

	pos.UnmakeMove(NewPromotion(from, to, Queen, false), undo)
	if pos.PieceAt(from).Type() != Pawn {
		t.Fatal("expected the pawn restored on a7 after undo")
	}
	if pos.PieceAt(to) != NoPiece {
		t.Fatal("expected a8 empty after undoing the promotion")
	}
}

// TestScenarioThreefoldRepetitionHashesMatch is scenario F, exercised at the board
// level by hashing three occurrences of the same position reached via a
// knight shuffle; the counting itself is game.Controller's responsibility
// (see game.TestCheckEndGameThreefoldRepetition), but the position-equality
// half of the property belongs here.
func TestScenarioThreefoldRepetitionHashesMatch(t *testing.T) {
	pos := NewPosition()
	startHash := pos.Hash

	for _, uci := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		playUCI(t, pos, uci)
	}

	if pos.Hash != startHash {
		t.Fatalf("knight shuffle should return to the starting position, got hash %d want %d", pos.Hash, startHash)
	}
}

func mustSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("failed to parse square %s: %v", s, err)
	}
	return sq
}
