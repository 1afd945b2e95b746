package game

import "github.com/frontline-tcg/frontline-server/internal/catalog"

// Ability is the runtime usage state of one ability on one card instance.
// An ability is either idle or activatable; execution is atomic within a
// single engine step, so there is no mid-execution state.
type Ability struct {
	Type          *catalog.AbilityType
	UsesThisTurn  int
	TotalUses     int
	TurnsSinceUse int
}

func newAbility(abilityType *catalog.AbilityType) *Ability {
	// Start off cooldown so the ability is usable on its first eligible turn.
	return &Ability{
		Type:          abilityType,
		TurnsSinceUse: abilityType.CooldownTurns,
	}
}

// OffCooldown reports whether enough turns have passed since the last use.
func (a *Ability) OffCooldown() bool {
	return a.TurnsSinceUse >= a.Type.CooldownTurns
}

// UsesAvailable reports whether per-turn and per-match limits permit a use.
func (a *Ability) UsesAvailable() bool {
	if a.Type.UsesPerTurn > 0 && a.UsesThisTurn >= a.Type.UsesPerTurn {
		return false
	}
	if a.Type.UsesPerMatch > 0 && a.TotalUses >= a.Type.UsesPerMatch {
		return false
	}
	return true
}

// markUsed records an execution: counters advance and the cooldown restarts.
func (a *Ability) markUsed() {
	a.UsesThisTurn++
	a.TotalUses++
	a.TurnsSinceUse = 0
}

// tickTurn advances the per-turn state at end of turn.
func (a *Ability) tickTurn() {
	a.UsesThisTurn = 0
	a.TurnsSinceUse++
}
