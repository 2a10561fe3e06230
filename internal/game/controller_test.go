package game

import (
	"testing"
	"time"

	"github.com/hailam/chessplay-core/internal/board"
)

func newCoopController(t *testing.T) *Controller {
	t.Helper()
	c := NewController()
	if !c.InitializeGame(Configuration{Mode: LocalCoop}) {
		t.Fatal("InitializeGame returned false")
	}
	return c
}

func mustSquare(t *testing.T, s string) board.Square {
	t.Helper()
	sq, err := board.ParseSquare(s)
	if err != nil {
		t.Fatalf("failed to parse square %s: %v", s, err)
	}
	return sq
}

func TestExecuteMoveRejectsIllegalMove(t *testing.T) {
	c := newCoopController(t)

	bogus, _ := c.FindMove(mustSquare(t, "a1"), mustSquare(t, "a5"), board.NoPieceType)
	if bogus != board.NoMove {
		t.Fatalf("expected no move a1a5 from the starting position, got %v", bogus)
	}
	if c.ExecuteMove(board.NewQuietMove(mustSquare(t, "a1"), mustSquare(t, "a5")), false) {
		t.Fatal("ExecuteMove accepted a1a5 from the starting position")
	}
	if c.CurrentSide() != board.White {
		t.Fatalf("expected white still to move after a rejected move, got %v", c.CurrentSide())
	}
}

func TestExecuteMoveAndUndo(t *testing.T) {
	c := newCoopController(t)

	move, ok := c.FindMove(mustSquare(t, "e2"), mustSquare(t, "e4"), board.NoPieceType)
	if !ok {
		t.Fatal("expected e2e4 to be a legal move from the starting position")
	}
	if !c.ExecuteMove(move, false) {
		t.Fatal("ExecuteMove returned false for a legal move")
	}
	if c.CurrentSide() != board.Black {
		t.Fatalf("expected black to move after 1.e4, got %v", c.CurrentSide())
	}

	if !c.UndoLastMove() {
		t.Fatal("UndoLastMove returned false")
	}
	if c.CurrentSide() != board.White {
		t.Fatalf("expected white to move again after undo, got %v", c.CurrentSide())
	}
}

// TestUndoLastMoveFailsOnEmptyHistory is invariant 8's NoHistory half: a
// second undo call with no move left to undo fails cleanly.
func TestUndoLastMoveFailsOnEmptyHistory(t *testing.T) {
	c := newCoopController(t)

	move, _ := c.FindMove(mustSquare(t, "e2"), mustSquare(t, "e4"), board.NoPieceType)
	c.ExecuteMove(move, false)

	if !c.UndoLastMove() {
		t.Fatal("first undo should succeed")
	}
	if c.UndoLastMove() {
		t.Fatal("second undo with empty history should fail")
	}
}

func TestCheckEndGameDetectsScholarsMateCheckmate(t *testing.T) {
	c := newCoopController(t)

	for _, uci := range []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"} {
		from, err := board.ParseSquare(uci[0:2])
		if err != nil {
			t.Fatalf("bad uci %q: %v", uci, err)
		}
		to, err := board.ParseSquare(uci[2:4])
		if err != nil {
			t.Fatalf("bad uci %q: %v", uci, err)
		}

		move, ok := c.FindMove(from, to, board.NoPieceType)
		if !ok {
			t.Fatalf("expected %s to be legal", uci)
		}
		if !c.ExecuteMove(move, false) {
			t.Fatalf("ExecuteMove failed for %s", uci)
		}
	}

	if state := c.CheckEndGame(); state != Checkmate {
		t.Fatalf("expected Checkmate after Qxf7#, got %v", state)
	}
}

// TestCheckEndGameThreefoldRepetition is scenario F at the controller level.
func TestCheckEndGameThreefoldRepetition(t *testing.T) {
	c := newCoopController(t)

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	// The starting position already counts as one occurrence; two more
	// full shuffles bring it to three.
	for rep := 0; rep < 2; rep++ {
		for _, uci := range shuffle {
			from, err := board.ParseSquare(uci[0:2])
			if err != nil {
				t.Fatalf("bad uci %q: %v", uci, err)
			}
			to, err := board.ParseSquare(uci[2:4])
			if err != nil {
				t.Fatalf("bad uci %q: %v", uci, err)
			}
			move, ok := c.FindMove(from, to, board.NoPieceType)
			if !ok {
				t.Fatalf("expected %s to be legal", uci)
			}
			if !c.ExecuteMove(move, false) {
				t.Fatalf("ExecuteMove failed for %s", uci)
			}
		}
	}

	if state := c.CheckEndGame(); state != Draw {
		t.Fatalf("expected Draw by threefold repetition, got %v", state)
	}
}

func TestIsCPUTurnOnlyInVsCPUMode(t *testing.T) {
	c := NewController()
	c.InitializeGame(Configuration{Mode: LocalCoop})
	if c.IsCPUTurn() {
		t.Fatal("LocalCoop mode should never report a CPU turn")
	}

	c.InitializeGame(Configuration{Mode: VsCPU, LocalPlayerSide: board.White, CPUDifficulty: Random})
	if c.IsCPUTurn() {
		t.Fatal("expected the local (white) player to move first, not the CPU")
	}
}

func TestRequestCPUMoveAsyncDeliversAMove(t *testing.T) {
	c := NewController()
	c.InitializeGame(Configuration{Mode: VsCPU, LocalPlayerSide: board.White, CPUDifficulty: Random})

	moves, _ := c.FindMove(mustSquare(t, "e2"), mustSquare(t, "e4"), board.NoPieceType)
	c.ExecuteMove(moves, false)

	received := make(chan board.Move, 1)
	c.SetCPUMoveCallback(func(m board.Move) { received <- m })

	c.RequestCPUMoveAsync()

	select {
	case m := <-received:
		if m == board.NoMove {
			t.Fatal("expected a real move from the CPU callback")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the CPU move callback")
	}
}
