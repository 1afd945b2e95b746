package game

import (
	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// DeployCard moves a unit or countermeasure from the current player's hand
// onto an empty battlefield slot, paying its deploy cost. Countermeasures
// enter face down and reveal themselves when one of their abilities fires.
func (e *Engine) DeployCard(matchID, playerID, cardID string, slot int) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return err
	}
	if err := m.checkPhase(rules.PhaseMain); err != nil {
		return err
	}

	card, ok := m.card(cardID)
	if !ok || card.OwnerID != playerID {
		return validationErr(CodeCardNotFound, "card %s not found", cardID)
	}
	switch card.Type.Category {
	case catalog.CategoryUnit, catalog.CategoryCountermeasure:
	default:
		return validationErr(CodeWrongCategory, "%s cards cannot be deployed", card.Type.Category)
	}

	p := m.players[playerID]
	if err := p.DeployCard(card, slot); err != nil {
		return err
	}
	card.FaceDown = card.Type.Category == catalog.CategoryCountermeasure
	card.reclampDefense() // board-wide modifiers may lower its maximum

	event := rules.NewEvent(rules.EventCardDeployed, m.id, playerID, card.InstanceID)
	event.Slot = slot
	m.emit(event)
	e.logger.Debug("card deployed",
		zap.String("match_id", m.id),
		zap.String("player_id", playerID),
		zap.String("card", card.Type.Name),
		zap.Int("slot", slot),
	)

	// Face-down cards keep their deploy triggers until revealed.
	if !card.FaceDown {
		e.fireTriggers(m, catalog.TriggerOnDeploy, card)
	}
	e.frontlineChanged(m, playerID)
	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	return nil
}

// PlayOrder resolves an order card from the hand. The order's own on-play
// abilities execute immediately, the card goes to the discard pile and
// battlefield cards listening for order play react afterwards. Validation
// happens before the cost is paid, so a failed play mutates nothing.
func (e *Engine) PlayOrder(matchID, playerID, cardID, targetID string) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return err
	}
	if err := m.checkPhase(rules.PhaseMain); err != nil {
		return err
	}

	card, ok := m.card(cardID)
	if !ok || card.OwnerID != playerID {
		return validationErr(CodeCardNotFound, "card %s not found", cardID)
	}
	if card.Type.Category != catalog.CategoryOrder {
		return validationErr(CodeWrongCategory, "%s is not an order", card.Type.Name)
	}

	p := m.players[playerID]
	if !p.HoldsInHand(card) {
		return validationErr(CodeCardNotInHand, "card %s is not in hand", cardID)
	}
	if !p.canAfford(card.Type.DeployCost) {
		return validationErr(CodeInsufficientCredits, "%s costs %d, have %d",
			card.Type.Name, card.Type.DeployCost, p.Credits)
	}

	var plays []abilityRef
	for _, ability := range card.Abilities {
		if ability.Type.Trigger == catalog.TriggerOnOrderPlay {
			plays = append(plays, abilityRef{card: card, ability: ability})
		}
	}
	for _, ref := range plays {
		if err := e.checkActivation(m, ref.card, ref.ability); err != nil {
			return err
		}
		if _, err := e.resolveTargets(m, ref.card, ref.ability.Type, targetID); err != nil {
			return err
		}
	}

	p.SpendCredits(card.Type.DeployCost)
	p.removeFromHand(card)

	event := rules.NewEvent(rules.EventOrderPlayed, m.id, playerID, card.InstanceID)
	m.emit(event)

	for _, ref := range plays {
		// Re-resolve: an earlier ability on the same order may have
		// changed the board.
		targets, err := e.resolveTargets(m, ref.card, ref.ability.Type, targetID)
		if err != nil {
			continue
		}
		if err := e.executeAbility(m, ref.card, ref.ability, targets); err != nil {
			e.logger.Warn("order ability failed",
				zap.String("match_id", m.id),
				zap.String("ability", ref.ability.Type.ID),
				zap.Error(err),
			)
		}
	}

	p.addToDiscard(card)
	m.emit(rules.NewEvent(rules.EventCardDiscarded, m.id, playerID, card.InstanceID))

	e.fireTriggers(m, catalog.TriggerOnOrderPlay, nil)
	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	return nil
}

// Attack declares and fully resolves one attack during the combat phase.
func (e *Engine) Attack(matchID, playerID, attackerID, defenderID string) (AttackOutcome, error) {
	m, err := e.match(matchID)
	if err != nil {
		return AttackOutcome{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return AttackOutcome{}, err
	}
	if err := m.checkPhase(rules.PhaseCombat); err != nil {
		return AttackOutcome{}, err
	}

	attacker, ok := m.card(attackerID)
	if !ok {
		return AttackOutcome{}, validationErr(CodeCardNotFound, "card %s not found", attackerID)
	}
	defender, ok := m.card(defenderID)
	if !ok {
		return AttackOutcome{}, validationErr(CodeCardNotFound, "card %s not found", defenderID)
	}
	if err := e.checkAttack(m, playerID, attacker, defender); err != nil {
		return AttackOutcome{}, err
	}
	return e.resolveAttack(m, playerID, attacker, defender), nil
}

// ActivateAbility fires a manual ability. The current player may activate
// during the main and combat phases; the opposing player may activate only
// during the response phase.
func (e *Engine) ActivateAbility(matchID, playerID, cardID, abilityID, targetID string) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.result != nil {
		return validationErr(CodeMatchOver, "match %s is over", m.id)
	}
	if _, ok := m.players[playerID]; !ok {
		return validationErr(CodeMatchNotFound, "player %s is not in match %s", playerID, m.id)
	}
	if m.turns.CurrentPlayer() == playerID {
		if err := m.checkPhase(rules.PhaseMain, rules.PhaseCombat); err != nil {
			return err
		}
	} else {
		if err := m.checkPhase(rules.PhaseResponse); err != nil {
			return err
		}
	}

	card, ok := m.card(cardID)
	if !ok || card.ControllerID != playerID {
		return validationErr(CodeCardNotFound, "card %s not found", cardID)
	}
	if !m.onBattlefield(card) && !m.isHeadquarters(card) {
		return validationErr(CodeInvalidTarget, "%s is not in play", card.Type.Name)
	}

	var ability *Ability
	for _, a := range card.Abilities {
		if a.Type.ID == abilityID {
			ability = a
			break
		}
	}
	if ability == nil {
		return validationErr(CodeAbilityNotFound, "ability %s not found on %s", abilityID, card.Type.Name)
	}
	if ability.Type.Trigger != catalog.TriggerManual {
		return validationErr(CodeAbilityNotFound, "%s is not manually activated", ability.Type.Name)
	}

	if err := e.checkActivation(m, card, ability); err != nil {
		return err
	}
	targets, err := e.resolveTargets(m, card, ability.Type, targetID)
	if err != nil {
		return err
	}
	return e.executeAbility(m, card, ability, targets)
}

// DrawCard draws one card for the current player during the main phase.
func (e *Engine) DrawCard(matchID, playerID string) (string, error) {
	m, err := e.match(matchID)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return "", err
	}
	if err := m.checkPhase(rules.PhaseMain); err != nil {
		return "", err
	}

	p := m.players[playerID]
	card, err := p.DrawCard(false)
	if err != nil {
		return "", err
	}
	m.emit(rules.NewEvent(rules.EventCardDrawn, m.id, playerID, card.InstanceID))
	e.fireTriggers(m, catalog.TriggerOnDraw, card)
	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	return card.InstanceID, nil
}

// DiscardCard discards a chosen hand card during the main phase.
func (e *Engine) DiscardCard(matchID, playerID, cardID string) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return err
	}
	if err := m.checkPhase(rules.PhaseMain); err != nil {
		return err
	}

	p := m.players[playerID]
	card, ok := m.card(cardID)
	if !ok || !p.HoldsInHand(card) {
		return validationErr(CodeCardNotInHand, "card %s is not in hand", cardID)
	}
	p.DiscardFromHand(card)
	m.emit(rules.NewEvent(rules.EventCardDiscarded, m.id, playerID, card.InstanceID))
	e.fireTriggers(m, catalog.TriggerOnDiscard, card)
	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	return nil
}
