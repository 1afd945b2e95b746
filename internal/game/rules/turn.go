package rules

import (
	"fmt"
	"strings"
)

// Phase represents one phase of a Frontline turn.
type Phase int

const (
	PhaseStartTurn Phase = iota
	PhaseMain
	PhaseCombat
	PhaseResponse
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseStartTurn: "START_TURN",
	PhaseMain:      "MAIN",
	PhaseCombat:    "COMBAT",
	PhaseResponse:  "RESPONSE",
	PhaseEnd:       "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// phaseSequence is the fixed phase order of a single turn.
var phaseSequence = []Phase{
	PhaseStartTurn,
	PhaseMain,
	PhaseCombat,
	PhaseResponse,
	PhaseEnd,
}

// TurnManager tracks the current phase, turn number and whose turn it is.
// Phase progression only happens through explicit AdvancePhase/EndTurn calls;
// there are no timers.
type TurnManager struct {
	orderIndex    int
	turnNumber    int
	currentPlayer string
}

// NewTurnManager creates a turn manager initialized at turn 1, start phase.
func NewTurnManager(firstPlayer string) *TurnManager {
	return &TurnManager{
		orderIndex:    0,
		turnNumber:    1,
		currentPlayer: strings.TrimSpace(firstPlayer),
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return phaseSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based, monotonic).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// CurrentPlayer returns the player whose turn it is.
func (tm *TurnManager) CurrentPlayer() string {
	return tm.currentPlayer
}

// AdvancePhase moves to the next phase within the current turn. When called
// during the end phase it wraps the turn: the turn number is incremented and
// the current player rotates to nextPlayer.
func (tm *TurnManager) AdvancePhase(nextPlayer string) Phase {
	tm.orderIndex++
	if tm.orderIndex >= len(phaseSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if next := strings.TrimSpace(nextPlayer); next != "" {
			tm.currentPlayer = next
		}
	}
	return tm.CurrentPhase()
}

// EndTurn jumps directly to the start phase of the next turn, regardless of
// the current phase.
func (tm *TurnManager) EndTurn(nextPlayer string) Phase {
	tm.orderIndex = len(phaseSequence) - 1
	return tm.AdvancePhase(nextPlayer)
}
