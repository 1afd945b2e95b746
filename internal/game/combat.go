package game

import (
	"strconv"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// AttackOutcome summarizes one resolved attack.
type AttackOutcome struct {
	AttackerID        string
	DefenderID        string
	DamageDealt       int
	CounterDamage     int
	DefenderDestroyed bool
	AttackerDestroyed bool
}

// checkAttack validates an attack declaration against the battlefield.
// Headquarters may only be struck once the defending battlefield is empty.
func (e *Engine) checkAttack(m *matchState, playerID string, attacker, defender *Card) error {
	if attacker.ControllerID != playerID {
		return validationErr(CodeInvalidTarget, "%s is not controlled by %s", attacker.Type.Name, playerID)
	}
	controller := m.players[playerID]
	if controller.SlotOf(attacker) < 0 {
		return validationErr(CodeInvalidTarget, "%s is not on the battlefield", attacker.Type.Name)
	}
	if attacker.FaceDown {
		return validationErr(CodeNotFaceUp, "%s is face down", attacker.Type.Name)
	}
	if attacker.HasAttacked {
		return validationErr(CodeAlreadyAttacked, "%s already attacked this turn", attacker.Type.Name)
	}

	opponent := m.opponentOf(playerID)
	if defender.ControllerID == playerID {
		return validationErr(CodeInvalidTarget, "cannot attack a friendly card")
	}
	if defender == opponent.Headquarters {
		if len(opponent.BattlefieldCards()) > 0 {
			return validationErr(CodeInvalidTarget, "headquarters is protected while units hold the battlefield")
		}
		return nil
	}
	if opponent.SlotOf(defender) < 0 {
		return validationErr(CodeInvalidTarget, "%s is not on the battlefield", defender.Type.Name)
	}
	return nil
}

// resolveAttack runs one attack to completion. The ordering is fixed: the
// defender takes the attacker's full attack first, the counter-attack lands
// only if the defender's defense is still above zero after that damage, and
// destruction checks for both cards happen only after both damage
// applications.
func (e *Engine) resolveAttack(m *matchState, playerID string, attacker, defender *Card) AttackOutcome {
	outcome := AttackOutcome{
		AttackerID: attacker.InstanceID,
		DefenderID: defender.InstanceID,
	}

	attacker.HasAttacked = true

	declared := rules.NewEvent(rules.EventAttackDeclared, m.id, playerID, attacker.InstanceID)
	declared.TargetIDs = []string{defender.InstanceID}
	m.emit(declared)

	e.fireTriggers(m, catalog.TriggerOnAttack, attacker)
	if !defender.FaceDown {
		e.fireTriggers(m, catalog.TriggerOnDefend, defender)
	}
	if m.result != nil {
		return outcome
	}

	outcome.DamageDealt = defender.TakeDamage(attacker.EffectiveAttack())
	damage := rules.NewEvent(rules.EventCardDamaged, m.id, m.controllerOf(defender).ID, defender.InstanceID)
	damage.Amount = outcome.DamageDealt
	damage.SourceID = attacker.InstanceID
	damage.Metadata["combat"] = "true"
	m.emit(damage)

	if defender.CurrentDefense > 0 {
		outcome.CounterDamage = attacker.TakeDamage(defender.EffectiveCounterAttack())
		if outcome.CounterDamage > 0 {
			counter := rules.NewEvent(rules.EventCardDamaged, m.id, playerID, attacker.InstanceID)
			counter.Amount = outcome.CounterDamage
			counter.SourceID = defender.InstanceID
			counter.Metadata["combat"] = "true"
			m.emit(counter)
		}
	}

	// Damage triggers fire only after both applications so a heal cannot
	// rescue the defender between the strike and the counter.
	if outcome.DamageDealt > 0 {
		e.fireTriggers(m, catalog.TriggerOnDamaged, defender)
		e.fireTriggers(m, catalog.TriggerOnCombatDamage, attacker)
	}
	if outcome.CounterDamage > 0 {
		e.fireTriggers(m, catalog.TriggerOnDamaged, attacker)
		e.fireTriggers(m, catalog.TriggerOnCombatDamage, defender)
	}

	outcome.DefenderDestroyed = defender.Destroyed()
	outcome.AttackerDestroyed = attacker.Destroyed()
	if outcome.DefenderDestroyed {
		m.queueDestroy(defender)
	}
	if outcome.AttackerDestroyed {
		m.queueDestroy(attacker)
	}

	resolved := rules.NewEvent(rules.EventAttackResolved, m.id, playerID, attacker.InstanceID)
	resolved.TargetIDs = []string{defender.InstanceID}
	resolved.Amount = outcome.DamageDealt
	resolved.Metadata["counter_damage"] = strconv.Itoa(outcome.CounterDamage)
	resolved.Metadata["defender_destroyed"] = strconv.FormatBool(outcome.DefenderDestroyed)
	m.emit(resolved)

	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	return outcome
}
