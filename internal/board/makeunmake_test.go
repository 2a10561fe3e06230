package board

import "testing"

// collectPositions walks the legal-move tree to the given depth, returning
// every position reached, for use as fixtures by invariant tests that don't
// want to hand-pick FENs.
func collectPositions(t *testing.T, start *Position, depth int) []*Position {
	t.Helper()
	positions := []*Position{start.Copy()}
	if depth == 0 {
		return positions
	}

	moves := start.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := start.MakeMove(m)
		positions = append(positions, collectPositions(t, start, depth-1)...)
		start.UnmakeMove(m, undo)
	}
	return positions
}

func assertOccupancyConsistent(t *testing.T, p *Position, label string) {
	t.Helper()

	if p.Occupied[White]|p.Occupied[Black] != p.AllOccupied {
		t.Errorf("%s: AllOccupied != Occupied[White]|Occupied[Black]", label)
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 {
		t.Errorf("%s: Occupied[White] and Occupied[Black] overlap", label)
	}

	for pt := Pawn; pt <= King; pt++ {
		for otherPt := pt + 1; otherPt <= King; otherPt++ {
			if p.Pieces[White][pt]&p.Pieces[White][otherPt] != 0 {
				t.Errorf("%s: white %v and %v bitboards overlap", label, pt, otherPt)
			}
			if p.Pieces[Black][pt]&p.Pieces[Black][otherPt] != 0 {
				t.Errorf("%s: black %v and %v bitboards overlap", label, pt, otherPt)
			}
		}
	}

	if p.Pieces[White][King].PopCount() != 1 {
		t.Errorf("%s: white has %d kings, want 1", label, p.Pieces[White][King].PopCount())
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		t.Errorf("%s: black has %d kings, want 1", label, p.Pieces[Black][King].PopCount())
	}
}

// TestMakeUnmakeRoundTrip is invariant 1: makeMove followed by unmakeMove
// must restore the position byte-for-byte, including the Zobrist hash.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	positions := collectPositions(t, NewPosition(), 2)

	for _, pos := range positions {
		before := *pos
		moves := pos.GenerateLegalMoves()

		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)
			pos.UnmakeMove(m, undo)

			if *pos != before {
				t.Fatalf("position changed after make/unmake of %v from %s", m, before.ToFEN())
			}
		}
	}
}

// TestIncrementalHashMatchesRecomputed is invariant 2.
func TestIncrementalHashMatchesRecomputed(t *testing.T) {
	positions := collectPositions(t, NewPosition(), 3)

	for _, pos := range positions {
		if pos.Hash != pos.ComputeHash() {
			t.Errorf("incremental hash %d != recomputed hash %d for %s", pos.Hash, pos.ComputeHash(), pos.ToFEN())
		}
	}
}

// TestOccupancyConsistency is invariant 3, checked after every make and
// every unmake along several move sequences.
func TestOccupancyConsistency(t *testing.T) {
	pos := NewPosition()
	assertOccupancyConsistent(t, pos, "start")

	var walk func(depth int)
	walk = func(depth int) {
		if depth == 0 {
			return
		}
		moves := pos.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)
			assertOccupancyConsistent(t, pos, "after make "+m.String())
			walk(depth - 1)
			pos.UnmakeMove(m, undo)
			assertOccupancyConsistent(t, pos, "after unmake "+m.String())
		}
	}
	walk(3)
}

// TestLegalMovesMatchIndependentAttackTest is invariant 4: every generated
// legal move must leave the mover's own king un-attacked, checked by
// re-deriving attackers on the king's square after playing the move rather
// than trusting the generator's own bookkeeping.
func TestLegalMovesMatchIndependentAttackTest(t *testing.T) {
	positions := collectPositions(t, NewPosition(), 2)

	for _, pos := range positions {
		moves := pos.GenerateLegalMoves()
		mover := pos.SideToMove

		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)

			kingSq := pos.KingSquare[mover]
			if pos.IsSquareAttacked(kingSq, mover.Other()) {
				t.Errorf("legal move %v leaves %v king attacked", m, mover)
			}

			pos.UnmakeMove(m, undo)
		}
	}
}

// TestSingleUndoRestoresExactly is the board-level half of invariant 8: a
// single undo must restore the position exactly. The other half (a second,
// history-less undo failing cleanly) is a property of the move history
// game.Controller keeps, not of Position itself, and is covered by
// game.TestUndoLastMoveFailsOnEmptyHistory.
func TestSingleUndoRestoresExactly(t *testing.T) {
	pos, err := ParseFEN("6k1/6pp/8/8/8/8/8/K6R b - - 0 1")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		t.Fatal("fixture position has no legal moves")
	}

	m := moves.Get(0)
	before := *pos

	undo := pos.MakeMove(m)
	pos.UnmakeMove(m, undo)

	if *pos != before {
		t.Fatal("first undo did not restore the position")
	}
	if *pos != before {
		t.Fatal("state changed unexpectedly before second undo attempt")
	}
}
