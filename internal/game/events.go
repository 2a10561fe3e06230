package game

import "github.com/hailam/chessplay-core/internal/board"

// State is a state of the game state machine.
type State int

const (
	Init State = iota
	WaitingForInput
	WaitingForTarget
	PawnPromotion
	WaitingForRemote
	WaitingForCPU
	GameOver
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case WaitingForInput:
		return "WaitingForInput"
	case WaitingForTarget:
		return "WaitingForTarget"
	case PawnPromotion:
		return "PawnPromotion"
	case WaitingForRemote:
		return "WaitingForRemote"
	case WaitingForCPU:
		return "WaitingForCPU"
	case GameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// Phase is the front-end-facing projection of a State, named by what the
// user is waiting on rather than by the state machine's internal shape.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhasePlayerTurn
	PhaseOpponentTurn
	PhasePromotionDialog
	PhaseGameEnded
)

func phaseFor(s State) Phase {
	switch s {
	case Init:
		return PhaseInitializing
	case WaitingForInput, WaitingForTarget:
		return PhasePlayerTurn
	case PawnPromotion:
		return PhasePromotionDialog
	case WaitingForRemote, WaitingForCPU:
		return PhaseOpponentTurn
	case GameOver:
		return PhaseGameEnded
	default:
		return PhaseInitializing
	}
}

// eventType identifies the kind of payload an InputEvent carries.
type eventType int

const (
	evSquareSelected eventType = iota
	evPromotionChosen
	evRemoteMove
	evCPUMove
	evUndoRequested
	evGameStart
	evGameReset
)

// InputEvent is a single posted event consumed by the state machine's run
// loop. Exactly one of its payload fields is meaningful, selected by typ.
type InputEvent struct {
	typ       eventType
	square    board.Square
	promotion board.PieceType
	move      board.Move
	config    Configuration
}

func SquareSelectedEvent(sq board.Square) InputEvent {
	return InputEvent{typ: evSquareSelected, square: sq}
}

func PromotionChosenEvent(piece board.PieceType) InputEvent {
	return InputEvent{typ: evPromotionChosen, promotion: piece}
}

func RemoteMoveEvent(move board.Move) InputEvent {
	return InputEvent{typ: evRemoteMove, move: move}
}

func CPUMoveEvent(move board.Move) InputEvent {
	return InputEvent{typ: evCPUMove, move: move}
}

func UndoRequestedEvent() InputEvent {
	return InputEvent{typ: evUndoRequested}
}

func GameStartEvent(config Configuration) InputEvent {
	return InputEvent{typ: evGameStart, config: config}
}

func GameResetEvent() InputEvent {
	return InputEvent{typ: evGameReset}
}

// Observer receives notifications from the state machine. All methods are
// called synchronously on the state machine's run-loop goroutine, so an
// observer must not block for long; a UI observer typically only enqueues
// a redraw or repost to its own event loop.
type Observer interface {
	OnGameStateChanged(phase Phase)
	OnLegalMovesAvailable(from board.Square, moves []board.Move)
	OnMoveExecuted(move board.Move, fromRemote bool)
	OnMoveUndone()
	OnPromotionRequired()
	OnGameEnded(state EndGameState, winner board.Color, hasWinner bool)
	OnBoardStateChanged()
}
