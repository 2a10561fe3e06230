// Package game provides the controller façade and event-driven state
// machine that sit between a front-end and the board/search/eval packages.
package game

import "github.com/hailam/chessplay-core/internal/board"

// Mode selects who plays which side.
type Mode int

const (
	LocalCoop Mode = iota
	VsCPU
	Multiplayer
)

// Difficulty maps to a search depth and to whether move selection is
// randomised among near-equal candidates.
type Difficulty int

const (
	Random Difficulty = iota
	Easy
	Medium
	Hard
)

// Configuration is passed to Controller.InitializeGame.
type Configuration struct {
	Mode            Mode
	LocalPlayerSide board.Color
	CPUDifficulty   Difficulty
}

// EndGameState is the result of Controller.CheckEndGame.
type EndGameState int

const (
	OnGoing EndGameState = iota
	Checkmate
	Stalemate
	Draw
)

func (s EndGameState) String() string {
	switch s {
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case Draw:
		return "Draw"
	default:
		return "OnGoing"
	}
}

// depthForDifficulty maps a difficulty tier to an iterative-deepening depth
// limit for the CPU's search.
func depthForDifficulty(d Difficulty) int {
	switch d {
	case Random:
		return 1
	case Easy:
		return 2
	case Medium:
		return 4
	case Hard:
		return 6
	default:
		return 2
	}
}

// randomizationFactor returns the softmax sharpness used to weight
// near-best root moves against the best one; 0 disables randomisation
// entirely (the engine always plays its top choice).
func randomizationFactor(d Difficulty) float64 {
	switch d {
	case Random:
		return 0.01
	case Easy:
		return 0.03
	case Medium:
		return 0.08
	default: // Hard
		return 0
	}
}

// candidateMoveCount bounds how many top-scored root moves are eligible
// for randomised selection.
func candidateMoveCount(d Difficulty) int {
	switch d {
	case Random:
		return 8
	case Easy:
		return 5
	case Medium:
		return 3
	default:
		return 1
	}
}
