package game

import (
	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/modifiers"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// abilityRef pairs a card instance with one of its abilities during trigger
// collection.
type abilityRef struct {
	card    *Card
	ability *Ability
}

// fireTriggers finds every ability listening for the trigger and executes
// the eligible ones. For subject-scoped triggers (deploy, damaged,
// destroyed, draw, discard, attack, defend, combat damage) only the subject
// card's own abilities fire, wherever the card now is: a destroyed or
// discarded card reacts to its own demise. Board-wide triggers (turn
// boundaries, order play, battlefield changes) pass a nil subject and sweep
// every card in play.
//
// Board-wide collection order is fixed so cascades replay identically: the
// current player's cards in battlefield-slot order, then headquarters,
// followed by the opponent's in the same order. Eligibility is re-checked
// per ability at execution time because earlier executions in the same
// cascade may have changed the board.
func (e *Engine) fireTriggers(m *matchState, trigger catalog.TriggerKind, subject *Card) {
	if m.result != nil {
		return
	}

	var refs []abilityRef
	if subject != nil {
		for _, ability := range subject.Abilities {
			if ability.Type.Trigger == trigger {
				refs = append(refs, abilityRef{card: subject, ability: ability})
			}
		}
	} else {
		currentID := m.turns.CurrentPlayer()
		seats := []string{currentID, m.opponentOf(currentID).ID}
		for _, seat := range seats {
			for _, card := range m.players[seat].allCardsInTriggerOrder() {
				// Board-wide triggers only reach cards in play; a card
				// sitting in hand reacts solely to its own events.
				if !m.onBattlefield(card) && !m.isHeadquarters(card) {
					continue
				}
				for _, ability := range card.Abilities {
					if ability.Type.Trigger == trigger {
						refs = append(refs, abilityRef{card: card, ability: ability})
					}
				}
			}
		}
	}

	for _, ref := range refs {
		if ref.card != subject && !m.onBattlefield(ref.card) && !m.isHeadquarters(ref.card) {
			continue // left play before its turn in the cascade
		}
		if err := e.checkActivation(m, ref.card, ref.ability); err != nil {
			continue
		}
		targets, err := e.resolveTargets(m, ref.card, ref.ability.Type, "")
		if err != nil {
			continue
		}
		if err := e.executeAbility(m, ref.card, ref.ability, targets); err != nil && e.logger != nil {
			e.logger.Warn("triggered ability failed",
				zap.String("match_id", m.id),
				zap.String("ability", ref.ability.Type.ID),
				zap.Error(err),
			)
		}
	}
}

// checkActivation validates everything about an activation except target
// legality. The checks run in a fixed order so callers always see the most
// specific rejection first.
func (e *Engine) checkActivation(m *matchState, caster *Card, ability *Ability) error {
	if ability.Type.RequiresFaceUp && caster.FaceDown {
		return validationErr(CodeNotFaceUp, "%s is face down", caster.Type.Name)
	}
	if !ability.OffCooldown() {
		return validationErr(CodeOnCooldown, "%s needs %d more turn(s)",
			ability.Type.Name, ability.Type.CooldownTurns-ability.TurnsSinceUse)
	}
	if !ability.UsesAvailable() {
		return validationErr(CodeUsesExhausted, "%s has no uses left", ability.Type.Name)
	}
	controller := m.controllerOf(caster)
	if !controller.canAfford(ability.Type.OperationCost) {
		return validationErr(CodeInsufficientCredits, "%s costs %d, have %d",
			ability.Type.Name, ability.Type.OperationCost, controller.Credits)
	}
	for _, cond := range ability.Type.Conditions {
		if !e.conditionHolds(m, caster, cond) {
			return validationErr(CodeConditionFailed, "condition %s(%d) not met", cond.Kind, cond.Value)
		}
	}
	return nil
}

func (e *Engine) conditionHolds(m *matchState, caster *Card, cond catalog.Condition) bool {
	controller := m.controllerOf(caster)
	opponent := m.opponentOf(controller.ID)
	switch cond.Kind {
	case catalog.CondCreditsAtLeast:
		return controller.Credits >= cond.Value
	case catalog.CondTurnAtLeast:
		return m.turns.TurnNumber() >= cond.Value
	case catalog.CondCasterDamaged:
		return caster.CurrentDefense < caster.EffectiveMaxDefense()
	case catalog.CondAllyCountAtLeast:
		return len(controller.BattlefieldCards()) >= cond.Value
	case catalog.CondEnemyCountAtLeast:
		return len(opponent.BattlefieldCards()) >= cond.Value
	case catalog.CondHandSizeAtMost:
		return len(controller.Hand) <= cond.Value
	}
	return false
}

// resolveTargets builds the target set for one activation. explicitTargetID
// is only meaningful for the single-target kinds; when empty those kinds
// auto-select the first legal card in slot order, which keeps triggered
// activations deterministic.
func (e *Engine) resolveTargets(m *matchState, caster *Card, at *catalog.AbilityType, explicitTargetID string) ([]*Card, error) {
	controller := m.controllerOf(caster)
	opponent := m.opponentOf(controller.ID)

	pick := func(pool []*Card) ([]*Card, error) {
		if len(pool) == 0 {
			return nil, validationErr(CodeNoValidTarget, "no legal target for %s", at.Name)
		}
		if explicitTargetID == "" {
			return []*Card{pool[0]}, nil
		}
		for _, c := range pool {
			if c.InstanceID == explicitTargetID {
				return []*Card{c}, nil
			}
		}
		return nil, validationErr(CodeInvalidTarget, "%s is not a legal target for %s", explicitTargetID, at.Name)
	}

	all := func(pool []*Card) ([]*Card, error) {
		if len(pool) == 0 {
			return nil, validationErr(CodeNoValidTarget, "no legal target for %s", at.Name)
		}
		return pool, nil
	}

	switch at.Targeting {
	case catalog.TargetNone:
		return nil, nil
	case catalog.TargetSelf:
		return []*Card{caster}, nil
	case catalog.TargetSingleAlly:
		return pick(controller.BattlefieldCards())
	case catalog.TargetSingleEnemy:
		return pick(opponent.BattlefieldCards())
	case catalog.TargetAllAllies:
		return all(controller.BattlefieldCards())
	case catalog.TargetAllEnemies:
		return all(opponent.BattlefieldCards())
	case catalog.TargetRow:
		// The whole line: every battlefield card on both sides.
		pool := append(controller.BattlefieldCards(), opponent.BattlefieldCards()...)
		return all(pool)
	case catalog.TargetColumn:
		slot := controller.SlotOf(caster)
		if slot < 0 {
			return nil, validationErr(CodeNoValidTarget, "%s occupies no battlefield slot", caster.Type.Name)
		}
		var pool []*Card
		if c := controller.Battlefield[slot]; c != nil {
			pool = append(pool, c)
		}
		if c := opponent.Battlefield[slot]; c != nil {
			pool = append(pool, c)
		}
		return all(pool)
	case catalog.TargetRandomEnemy:
		enemies := opponent.BattlefieldCards()
		if len(enemies) == 0 {
			return nil, validationErr(CodeNoValidTarget, "no legal target for %s", at.Name)
		}
		return []*Card{enemies[m.rng.Intn(len(enemies))]}, nil
	case catalog.TargetFrontlineUnit:
		slot := controller.SlotOf(caster)
		if slot < 0 || opponent.Battlefield[slot] == nil {
			return nil, validationErr(CodeNoValidTarget, "no unit opposite %s", caster.Type.Name)
		}
		return []*Card{opponent.Battlefield[slot]}, nil
	case catalog.TargetHQ:
		if opponent.Headquarters == nil {
			return nil, validationErr(CodeNoValidTarget, "opponent has no headquarters")
		}
		return []*Card{opponent.Headquarters}, nil
	case catalog.TargetSameNation:
		var pool []*Card
		for _, c := range append(controller.BattlefieldCards(), opponent.BattlefieldCards()...) {
			if c.Type.Faction == caster.Type.Faction {
				pool = append(pool, c)
			}
		}
		return all(pool)
	}
	return nil, validationErr(CodeNoValidTarget, "unsupported targeting %s", at.Targeting)
}

// evalAmount evaluates the effect magnitude formula with the caster and,
// when present, the target bound into the environment.
func evalAmount(ability *Ability, caster, target *Card) (int, error) {
	env := catalog.Env{
		Caster:    caster.attrValue,
		Constants: ability.Type.Constants,
	}
	if target != nil {
		env.Target = target.attrValue
	}
	return ability.Type.Effect.Amount.Eval(env)
}

// checkAmounts dry-runs the effect formula against every binding execution
// will use. Formulas are pure, so a clean pass here guarantees the evaluation
// inside applyEffect cannot fail (division by zero is the only runtime
// failure left after load validation).
func checkAmounts(ability *Ability, caster *Card, targets []*Card) error {
	if ability.Type.Effect.Amount == nil {
		return nil
	}
	if len(targets) == 0 {
		_, err := evalAmount(ability, caster, nil)
		return err
	}
	for _, t := range targets {
		if _, err := evalAmount(ability, caster, t); err != nil {
			return err
		}
	}
	return nil
}

// executeAbility applies one ability atomically: pay cost, flip the caster
// face up if needed, apply the effect to every target, mark the use and emit
// the execution event. Cascaded destructions are drained before returning.
// The formula dry-run comes first so a rejected activation spends nothing.
func (e *Engine) executeAbility(m *matchState, caster *Card, ability *Ability, targets []*Card) error {
	controller := m.controllerOf(caster)
	spec := ability.Type.Effect

	if err := checkAmounts(ability, caster, targets); err != nil {
		return err
	}

	if cost := ability.Type.OperationCost; cost > 0 {
		if !controller.SpendCredits(cost) {
			return validationErr(CodeInsufficientCredits, "%s costs %d, have %d",
				ability.Type.Name, cost, controller.Credits)
		}
		event := rules.NewEvent(rules.EventCreditsChanged, m.id, controller.ID, caster.InstanceID)
		event.Amount = -cost
		m.emit(event)
	}

	if caster.FaceDown {
		caster.FaceDown = false
		m.emit(rules.NewEvent(rules.EventCardFlippedUp, m.id, controller.ID, caster.InstanceID))
	}

	if err := e.applyEffect(m, caster, ability, spec, targets); err != nil {
		return err
	}

	ability.markUsed()
	caster.HasUsedAbility = true

	event := rules.NewEvent(rules.EventAbilityExecuted, m.id, controller.ID, caster.InstanceID)
	event.SourceID = ability.Type.ID
	for _, t := range targets {
		event.TargetIDs = append(event.TargetIDs, t.InstanceID)
	}
	m.emit(event)

	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	return nil
}

func (e *Engine) applyEffect(m *matchState, caster *Card, ability *Ability, spec catalog.EffectSpec, targets []*Card) error {
	controller := m.controllerOf(caster)
	opponent := m.opponentOf(controller.ID)

	switch spec.Kind {
	case catalog.EffectDamage:
		for _, t := range targets {
			amount, err := evalAmount(ability, caster, t)
			if err != nil {
				return err
			}
			e.dealDamage(m, caster, t, amount)
		}

	case catalog.EffectHeal:
		for _, t := range targets {
			amount, err := evalAmount(ability, caster, t)
			if err != nil {
				return err
			}
			if healed := t.Heal(amount); healed > 0 {
				event := rules.NewEvent(rules.EventCardHealed, m.id, m.controllerOf(t).ID, t.InstanceID)
				event.Amount = healed
				event.SourceID = caster.InstanceID
				m.emit(event)
			}
		}

	case catalog.EffectBuff, catalog.EffectDebuff, catalog.EffectModifier, catalog.EffectCounter:
		return e.applyModifierEffect(m, caster, ability, spec, targets)

	case catalog.EffectDraw:
		amount, err := evalAmount(ability, caster, nil)
		if err != nil {
			return err
		}
		for i := 0; i < amount; i++ {
			card, err := controller.DrawCard(false)
			if err != nil {
				break
			}
			m.emit(rules.NewEvent(rules.EventCardDrawn, m.id, controller.ID, card.InstanceID))
			e.fireTriggers(m, catalog.TriggerOnDraw, card)
		}

	case catalog.EffectDiscard:
		amount, err := evalAmount(ability, caster, nil)
		if err != nil {
			return err
		}
		for i := 0; i < amount && len(opponent.Hand) > 0; i++ {
			card := opponent.Hand[0]
			opponent.DiscardFromHand(card)
			m.emit(rules.NewEvent(rules.EventCardDiscarded, m.id, opponent.ID, card.InstanceID))
			e.fireTriggers(m, catalog.TriggerOnDiscard, card)
		}

	case catalog.EffectMove:
		for _, t := range targets {
			holder := m.controllerOf(t)
			from := holder.SlotOf(t)
			to := holder.FirstEmptySlot()
			if from < 0 || to < 0 {
				continue
			}
			holder.Battlefield[from] = nil
			holder.Battlefield[to] = t
			event := rules.NewEvent(rules.EventCardMoved, m.id, holder.ID, t.InstanceID)
			event.Slot = to
			m.emit(event)
			e.frontlineChanged(m, holder.ID)
		}

	case catalog.EffectSummon:
		cardType, ok := e.catalog.Card(spec.CardTypeID)
		if !ok {
			return validationErr(CodeCardNotFound, "unknown card type %s", spec.CardTypeID)
		}
		slot := controller.FirstEmptySlot()
		if slot < 0 {
			return nil // battlefield full, the summon fizzles
		}
		summoned := newCard(cardType, resolveAbilities(e.catalog, cardType), controller.ID)
		m.registerCard(summoned)
		controller.Battlefield[slot] = summoned
		summoned.reclampDefense()
		event := rules.NewEvent(rules.EventCardSummoned, m.id, controller.ID, summoned.InstanceID)
		event.Slot = slot
		event.SourceID = caster.InstanceID
		m.emit(event)
		e.fireTriggers(m, catalog.TriggerOnDeploy, summoned)
		e.frontlineChanged(m, controller.ID)

	case catalog.EffectTransform:
		cardType, ok := e.catalog.Card(spec.CardTypeID)
		if !ok {
			return validationErr(CodeCardNotFound, "unknown card type %s", spec.CardTypeID)
		}
		for _, t := range targets {
			t.Type = cardType
			t.CurrentDefense = cardType.Defense
			t.Mods = modifiers.NewSet()
			t.Abilities = nil
			for _, at := range resolveAbilities(e.catalog, cardType) {
				t.Abilities = append(t.Abilities, newAbility(at))
			}
			t.reclampDefense()
			m.emit(rules.NewEvent(rules.EventCardTransformed, m.id, m.controllerOf(t).ID, t.InstanceID))
		}

	case catalog.EffectDestroy:
		for _, t := range targets {
			if m.isHeadquarters(t) {
				continue // headquarters only fall to damage
			}
			m.queueDestroy(t)
		}

	case catalog.EffectReturnToHand:
		for _, t := range targets {
			holder := m.controllerOf(t)
			if !holder.RemoveFromBattlefield(t) {
				continue
			}
			t.CurrentDefense = t.Type.Defense
			t.FaceDown = false
			t.Mods = modifiers.NewSet()
			for i, a := range t.Abilities {
				t.Abilities[i] = newAbility(a.Type)
			}
			t.resetTurnFlags()
			owner := m.players[t.OwnerID]
			event := rules.NewEvent(rules.EventCardReturned, m.id, owner.ID, t.InstanceID)
			if !owner.returnToHand(t) {
				event.Metadata["zone"] = "discard"
			}
			m.emit(event)
			e.frontlineChanged(m, holder.ID)
		}

	case catalog.EffectCopyCard:
		for _, t := range targets {
			if len(controller.Hand) >= HandLimit {
				break
			}
			var abilityTypes []*catalog.AbilityType
			for _, a := range t.Abilities {
				abilityTypes = append(abilityTypes, a.Type)
			}
			dup := newCard(t.Type, abilityTypes, controller.ID)
			m.registerCard(dup)
			controller.Hand = append(controller.Hand, dup)
			event := rules.NewEvent(rules.EventCardSummoned, m.id, controller.ID, dup.InstanceID)
			event.SourceID = t.InstanceID
			event.Metadata["zone"] = "hand"
			m.emit(event)
		}

	case catalog.EffectGainOperation:
		amount, err := evalAmount(ability, caster, nil)
		if err != nil {
			return err
		}
		if gained := controller.AddCredits(amount); gained > 0 {
			event := rules.NewEvent(rules.EventCreditsChanged, m.id, controller.ID, caster.InstanceID)
			event.Amount = gained
			m.emit(event)
		}

	case catalog.EffectSpecial:
		handler, ok := e.specials[spec.SpecialID]
		if !ok {
			return validationErr(CodeCardNotFound, "unregistered special %s", spec.SpecialID)
		}
		return handler(&SpecialContext{engine: e, match: m, Caster: caster, Targets: targets})
	}

	return nil
}

// applyModifierEffect covers the four modifier-producing effect kinds.
// BUFF forces a positive delta and DEBUFF a negative one; MODIFIER and
// COUNTER keep the formula's sign. A MODIFIER with NONE targeting becomes a
// board-wide modifier affecting every card.
func (e *Engine) applyModifierEffect(m *matchState, caster *Card, ability *Ability, spec catalog.EffectSpec, targets []*Card) error {
	attribute := modifiers.Attribute(spec.Attribute)
	kind := modifiers.KindStatus
	if spec.Kind == catalog.EffectCounter {
		attribute = modifiers.AttrCounterAttack
	}

	build := func(amount int) modifiers.Modifier {
		delta := amount
		switch spec.Kind {
		case catalog.EffectBuff:
			kind = modifiers.KindBuff
			if delta < 0 {
				delta = -delta
			}
		case catalog.EffectDebuff:
			kind = modifiers.KindDebuff
			if delta > 0 {
				delta = -delta
			}
		}
		return modifiers.Modifier{
			SourceID:       ability.Type.ID,
			Attribute:      attribute,
			Delta:          delta,
			Kind:           kind,
			RemainingTurns: spec.DurationTurns,
		}
	}

	if spec.Kind == catalog.EffectModifier && ability.Type.Targeting == catalog.TargetNone {
		amount, err := evalAmount(ability, caster, nil)
		if err != nil {
			return err
		}
		m.globalMods.Add(build(amount))
		m.reclampAllDefense()
		event := rules.NewEvent(rules.EventModifierAdded, m.id, m.controllerOf(caster).ID, "")
		event.SourceID = ability.Type.ID
		event.Amount = amount
		m.emit(event)
		return nil
	}

	for _, t := range targets {
		amount, err := evalAmount(ability, caster, t)
		if err != nil {
			return err
		}
		t.AddModifier(build(amount))
		event := rules.NewEvent(rules.EventModifierAdded, m.id, m.controllerOf(t).ID, t.InstanceID)
		event.SourceID = ability.Type.ID
		event.Amount = amount
		m.emit(event)
	}
	return nil
}

// dealDamage applies ability damage to one card, emits the damage event,
// fires the victim's damage trigger and queues destruction when defense
// reaches zero. Headquarters loss is checked by the caller's drain.
func (e *Engine) dealDamage(m *matchState, source, target *Card, amount int) int {
	applied := target.TakeDamage(amount)
	event := rules.NewEvent(rules.EventCardDamaged, m.id, m.controllerOf(target).ID, target.InstanceID)
	event.Amount = applied
	if source != nil {
		event.SourceID = source.InstanceID
	}
	m.emit(event)

	if applied > 0 {
		e.fireTriggers(m, catalog.TriggerOnDamaged, target)
	}
	if target.Destroyed() {
		m.queueDestroy(target)
	}
	return applied
}
