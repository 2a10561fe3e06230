package game

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/chessplay-core/internal/board"
)

// moveIntent tracks the in-progress selection between WaitingForInput and
// a completed move: the origin square chosen, the legal destinations from
// it, and (once a promotion move is picked) the destination and chosen
// promotion piece.
type moveIntent struct {
	fromSquare board.Square
	toSquare   board.Square
	promotion  board.PieceType
	legalMoves []board.Move
}

func (mi *moveIntent) clear() {
	*mi = moveIntent{fromSquare: board.NoSquare, toSquare: board.NoSquare, promotion: board.NoPieceType}
}

// StateMachine is a pure event-driven coordinator: it owns no board state
// itself, driving a Controller and notifying an Observer as it consumes
// events from its queue. Events may be posted from any goroutine; they are
// processed one at a time, in order, on the state machine's own run-loop
// goroutine.
type StateMachine struct {
	state atomic.Int32

	controller *Controller
	observer   Observer

	isMultiplayer bool
	isVsCPU       bool

	intent       moveIntent
	endgameState EndGameState

	events chan InputEvent
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewStateMachine creates a state machine bound to controller, starting in
// Init. The caller must call Start before posting events and SetObserver
// before (or soon after) to receive notifications.
func NewStateMachine(controller *Controller) *StateMachine {
	sm := &StateMachine{
		controller: controller,
		events:     make(chan InputEvent, 32),
		done:       make(chan struct{}),
	}
	sm.intent.clear()
	controller.SetCPUMoveCallback(func(move board.Move) {
		sm.postEvent(CPUMoveEvent(move))
	})
	return sm
}

// SetObserver installs the single notification sink; passing nil detaches
// the previous one.
func (sm *StateMachine) SetObserver(o Observer) {
	sm.observer = o
}

// State returns the current state. Safe to call from any goroutine.
func (sm *StateMachine) State() State {
	return State(sm.state.Load())
}

// Start launches the run loop goroutine that consumes posted events.
func (sm *StateMachine) Start() {
	sm.wg.Add(1)
	go sm.run()
}

// Stop signals the run loop to exit and waits for it to do so; events still
// queued at that moment may be left unprocessed. Posting further events
// after Stop is not supported.
func (sm *StateMachine) Stop() {
	close(sm.done)
	sm.wg.Wait()
}

func (sm *StateMachine) postEvent(event InputEvent) {
	sm.events <- event
}

// OnSquareSelected posts a SquareSelected event.
func (sm *StateMachine) OnSquareSelected(sq board.Square) { sm.postEvent(SquareSelectedEvent(sq)) }

// OnPromotionChosen posts a PromotionChosen event.
func (sm *StateMachine) OnPromotionChosen(piece board.PieceType) {
	sm.postEvent(PromotionChosenEvent(piece))
}

// OnRemoteMoveReceived posts a RemoteMoveReceived event.
func (sm *StateMachine) OnRemoteMoveReceived(move board.Move) { sm.postEvent(RemoteMoveEvent(move)) }

// OnUndoRequested posts an UndoRequested event.
func (sm *StateMachine) OnUndoRequested() { sm.postEvent(UndoRequestedEvent()) }

// OnGameStart posts a GameStart event carrying the initial configuration.
func (sm *StateMachine) OnGameStart(config Configuration) { sm.postEvent(GameStartEvent(config)) }

// OnGameReset posts a GameReset event.
func (sm *StateMachine) OnGameReset() { sm.postEvent(GameResetEvent()) }

func (sm *StateMachine) run() {
	defer sm.wg.Done()
	for {
		select {
		case event := <-sm.events:
			sm.processEvent(event)
		case <-sm.done:
			return
		}
	}
}

func (sm *StateMachine) processEvent(event InputEvent) {
	current := sm.State()
	var next State

	switch current {
	case Init:
		next = sm.handleInit(event)
	case WaitingForInput:
		next = sm.handleWaitingForInput(event)
	case WaitingForTarget:
		next = sm.handleWaitingForTarget(event)
	case PawnPromotion:
		next = sm.handlePawnPromotion(event)
	case WaitingForRemote:
		next = sm.handleWaitingForRemote(event)
	case WaitingForCPU:
		next = sm.handleWaitingForCPU(event)
	case GameOver:
		next = sm.handleGameOver(event)
	default:
		next = current
	}

	if next != current {
		sm.transitionTo(next)
	}
}

func (sm *StateMachine) transitionTo(newState State) {
	sm.state.Store(int32(newState))

	if sm.observer != nil {
		sm.observer.OnGameStateChanged(phaseFor(newState))
	}

	// WaitingForCPU has no triggering event of its own: the search must be
	// kicked off the instant the state is entered, not on the next posted
	// event.
	if newState == WaitingForCPU {
		sm.controller.RequestCPUMoveAsync()
	}
}

func (sm *StateMachine) handleInit(event InputEvent) State {
	if event.typ == evGameReset {
		return sm.resetToInit()
	}

	if event.typ != evGameStart {
		return Init
	}

	sm.isMultiplayer = event.config.Mode == Multiplayer
	sm.isVsCPU = event.config.Mode == VsCPU

	if !sm.controller.InitializeGame(event.config) {
		return Init
	}

	sm.intent.clear()
	sm.endgameState = OnGoing

	return sm.determineNextTurnState()
}

func (sm *StateMachine) handleWaitingForInput(event InputEvent) State {
	switch event.typ {
	case evSquareSelected:
		moves := sm.controller.GetLegalMovesFromSquare(event.square)
		if len(moves) > 0 {
			sm.intent.clear()
			sm.intent.fromSquare = event.square
			sm.intent.legalMoves = moves

			if sm.observer != nil {
				sm.observer.OnLegalMovesAvailable(event.square, moves)
			}
			return WaitingForTarget
		}

	case evUndoRequested:
		if sm.controller.UndoLastMove() {
			if sm.observer != nil {
				sm.observer.OnMoveUndone()
				sm.observer.OnBoardStateChanged()
			}
		}

	case evGameReset:
		return sm.resetToInit()
	}

	return WaitingForInput
}

func (sm *StateMachine) handleWaitingForTarget(event InputEvent) State {
	if event.typ == evGameReset {
		return sm.resetToInit()
	}

	if event.typ != evSquareSelected {
		return WaitingForTarget
	}

	sq := event.square

	if sq == sm.intent.fromSquare {
		sm.intent.clear()
		return WaitingForInput
	}

	if newMoves := sm.controller.GetLegalMovesFromSquare(sq); len(newMoves) > 0 {
		sm.intent.clear()
		sm.intent.fromSquare = sq
		sm.intent.legalMoves = newMoves

		if sm.observer != nil {
			sm.observer.OnLegalMovesAvailable(sq, newMoves)
		}
		return WaitingForTarget
	}

	sm.intent.toSquare = sq

	if sm.controller.IsPromotionMove(sm.intent.fromSquare, sm.intent.toSquare) {
		if sm.observer != nil {
			sm.observer.OnPromotionRequired()
		}
		return PawnPromotion
	}

	if move, ok := sm.controller.FindMove(sm.intent.fromSquare, sm.intent.toSquare, board.NoPieceType); ok {
		if sm.tryExecuteMove(move, false) {
			return sm.determineNextTurnState()
		}
	}

	sm.intent.clear()
	return WaitingForInput
}

func (sm *StateMachine) handlePawnPromotion(event InputEvent) State {
	if event.typ == evGameReset {
		return sm.resetToInit()
	}

	if event.typ != evPromotionChosen {
		return PawnPromotion
	}

	sm.intent.promotion = event.promotion

	if move, ok := sm.controller.FindMove(sm.intent.fromSquare, sm.intent.toSquare, sm.intent.promotion); ok {
		if sm.tryExecuteMove(move, false) {
			return sm.determineNextTurnState()
		}
	}

	sm.intent.clear()
	return WaitingForInput
}

func (sm *StateMachine) handleWaitingForRemote(event InputEvent) State {
	if event.typ == evGameReset {
		return sm.resetToInit()
	}
	if event.typ == evRemoteMove {
		if sm.tryExecuteMove(event.move, true) {
			return sm.determineNextTurnState()
		}
	}
	return WaitingForRemote
}

func (sm *StateMachine) handleWaitingForCPU(event InputEvent) State {
	if event.typ == evGameReset {
		// ResetGame cancels the in-flight background search before this
		// returns, so no stray CPU move can land after the reset.
		return sm.resetToInit()
	}
	if event.typ == evCPUMove {
		if sm.tryExecuteMove(event.move, false) {
			return sm.determineNextTurnState()
		}
		return GameOver
	}
	return WaitingForCPU
}

func (sm *StateMachine) handleGameOver(event InputEvent) State {
	if event.typ == evGameReset {
		return sm.resetToInit()
	}
	return GameOver
}

// resetToInit is the universal GameReset transition available from any
// state: it resets the controller (cancelling any in-flight CPU search),
// clears in-progress selection state, and returns to Init.
func (sm *StateMachine) resetToInit() State {
	sm.controller.ResetGame()
	sm.intent.clear()
	sm.endgameState = OnGoing
	return Init
}

func (sm *StateMachine) determineNextTurnState() State {
	sm.endgameState = sm.controller.CheckEndGame()

	if sm.endgameState != OnGoing {
		var winner board.Color
		hasWinner := sm.endgameState == Checkmate
		if hasWinner {
			winner = sm.controller.CurrentSide().Other()
		}

		if sm.observer != nil {
			sm.observer.OnGameEnded(sm.endgameState, winner, hasWinner)
		}
		return GameOver
	}

	if sm.isMultiplayer && !sm.controller.IsLocalPlayerTurn() {
		return WaitingForRemote
	}
	if sm.isVsCPU && sm.controller.IsCPUTurn() {
		return WaitingForCPU
	}
	return WaitingForInput
}

func (sm *StateMachine) tryExecuteMove(move board.Move, fromRemote bool) bool {
	if !sm.controller.ExecuteMove(move, fromRemote) {
		return false
	}

	if sm.observer != nil {
		sm.observer.OnMoveExecuted(move, fromRemote)
		sm.observer.OnBoardStateChanged()
	}

	sm.controller.SwitchTurns()
	sm.intent.clear()
	return true
}
