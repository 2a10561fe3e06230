// Command perft is a headless move-generation correctness harness: it runs
// Perft (optionally divide) from a starting FEN and prints deterministic
// node counts, the same numbers internal/board's own perft tests assert.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hailam/chessplay-core/internal/board"
)

var (
	fen    = flag.String("fen", "", "starting position FEN (default: standard starting position)")
	depth  = flag.Int("depth", 5, "search depth in plies")
	divide = flag.Bool("divide", false, "print per-root-move subtree counts instead of a single total")
)

func main() {
	flag.Parse()

	pos := board.NewPosition()
	if *fen != "" {
		p, err := board.ParseFEN(*fen)
		if err != nil {
			log.Fatalf("invalid FEN: %v", err)
		}
		pos = p
	}

	if *depth < 0 {
		log.Fatalf("depth must be non-negative, got %d", *depth)
	}

	start := time.Now()

	if *divide {
		if *depth == 0 {
			log.Fatal("-divide requires depth >= 1")
		}
		entries := board.PerftDivide(pos, *depth)
		var total int64
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
			total += e.Nodes
		}
		elapsed := time.Since(start)
		fmt.Printf("\nMoves: %d\n", len(entries))
		fmt.Printf("Nodes: %d\n", total)
		fmt.Printf("Time: %s\n", elapsed)
		return
	}

	nodes := board.Perft(pos, *depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %s\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
