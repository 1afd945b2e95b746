package game

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/modifiers"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// MatchResult records the outcome of a finished match.
type MatchResult struct {
	WinnerID string
	Turn     int
}

// matchState is the authoritative state of one match. The engine processes
// one command against it to completion (including all cascading trigger
// resolution) before accepting the next; the mutex only exists so external
// readers can take consistent views.
type matchState struct {
	id   string
	seed int64
	rng  *rand.Rand

	players map[string]*Player
	order   [2]string // seat order; order[0] takes the first turn

	turns      *rules.TurnManager
	bus        *rules.EventBus
	globalMods *modifiers.Set // board-wide, time-boxed modifiers
	cards      map[string]*Card

	destroyQueue []*Card
	result       *MatchResult

	mu sync.RWMutex
}

func (m *matchState) player(id string) (*Player, bool) {
	p, ok := m.players[id]
	return p, ok
}

func (m *matchState) opponentOf(playerID string) *Player {
	if m.order[0] == playerID {
		return m.players[m.order[1]]
	}
	return m.players[m.order[0]]
}

func (m *matchState) card(instanceID string) (*Card, bool) {
	c, ok := m.cards[instanceID]
	return c, ok
}

// controllerOf returns the player currently controlling the card.
func (m *matchState) controllerOf(card *Card) *Player {
	if p, ok := m.players[card.ControllerID]; ok {
		return p
	}
	return m.players[card.OwnerID]
}

// onBattlefield reports whether the card occupies a battlefield slot of any
// player.
func (m *matchState) onBattlefield(card *Card) bool {
	for _, p := range m.players {
		if p.SlotOf(card) >= 0 {
			return true
		}
	}
	return false
}

func (m *matchState) isHeadquarters(card *Card) bool {
	for _, p := range m.players {
		if p.Headquarters == card {
			return true
		}
	}
	return false
}

func (m *matchState) registerCard(card *Card) {
	card.globalMods = m.globalMods
	m.cards[card.InstanceID] = card
}

// reclampAllDefense re-clamps the current defense of every card in play
// after the board-wide modifier set changed the effective maximums. Cards in
// hand or deck are left alone; they re-clamp when they enter play.
func (m *matchState) reclampAllDefense() {
	for _, seat := range m.order {
		p := m.players[seat]
		for _, card := range p.BattlefieldCards() {
			card.reclampDefense()
		}
		if p.Headquarters != nil {
			p.Headquarters.reclampDefense()
		}
	}
}

func (m *matchState) emit(event rules.Event) {
	event.MatchID = m.id
	event.Turn = m.turns.TurnNumber()
	m.bus.Publish(event)
}

func (m *matchState) queueDestroy(card *Card) {
	for _, queued := range m.destroyQueue {
		if queued == card {
			return
		}
	}
	m.destroyQueue = append(m.destroyQueue, card)
}

// processDestroyQueue removes every queued card from the battlefield, fires
// its destruction trigger, moves it to its owner's discard pile and emits
// the destruction event. Triggers may queue further destructions; the loop
// drains until stable.
func (e *Engine) processDestroyQueue(m *matchState) {
	for len(m.destroyQueue) > 0 {
		card := m.destroyQueue[0]
		m.destroyQueue = m.destroyQueue[1:]

		if m.isHeadquarters(card) {
			// Headquarters never move to the discard pile; their
			// destruction ends the match instead.
			e.checkHeadquarters(m)
			continue
		}

		holder := m.controllerOf(card)
		if holder == nil || !holder.RemoveFromBattlefield(card) {
			continue // already left the battlefield
		}

		e.fireTriggers(m, catalog.TriggerOnDestroyed, card)

		owner := m.players[card.OwnerID]
		owner.addToDiscard(card)

		event := rules.NewEvent(rules.EventCardDestroyed, m.id, holder.ID, card.InstanceID)
		m.emit(event)
		e.frontlineChanged(m, holder.ID)

		if e.logger != nil {
			e.logger.Debug("card destroyed",
				zap.String("match_id", m.id),
				zap.String("card", card.Type.Name),
				zap.String("instance_id", card.InstanceID),
			)
		}
	}
}

// checkHeadquarters ends the match the instant a headquarters card's defense
// reaches zero. It runs after every damage-applying operation. MatchEnded is
// emitted exactly once.
func (e *Engine) checkHeadquarters(m *matchState) {
	if m.result != nil {
		return
	}
	for _, seat := range m.order {
		p := m.players[seat]
		if p.Headquarters != nil && p.Headquarters.Destroyed() {
			winner := m.opponentOf(seat)
			e.endMatch(m, winner.ID)
			return
		}
	}
}

func (e *Engine) endMatch(m *matchState, winnerID string) {
	if m.result != nil {
		return
	}
	m.result = &MatchResult{WinnerID: winnerID, Turn: m.turns.TurnNumber()}

	event := rules.NewEvent(rules.EventMatchEnded, m.id, winnerID, "")
	m.emit(event)

	if e.logger != nil {
		e.logger.Info("match ended",
			zap.String("match_id", m.id),
			zap.String("winner", winnerID),
			zap.Int("turn", m.turns.TurnNumber()),
		)
	}
}

// startTurn runs the start-of-turn duties for the current player: credit
// income, the turn draw and start-of-turn triggers.
func (e *Engine) startTurn(m *matchState) {
	playerID := m.turns.CurrentPlayer()
	p := m.players[playerID]

	gained := p.AddCredits(e.rules.CreditIncome)
	if gained > 0 {
		event := rules.NewEvent(rules.EventCreditsChanged, m.id, playerID, "")
		event.Amount = gained
		m.emit(event)
	}

	// The turn draw is best-effort: an empty deck or full hand skips it
	// rather than failing the turn.
	if card, err := p.DrawCard(false); err == nil {
		event := rules.NewEvent(rules.EventCardDrawn, m.id, playerID, card.InstanceID)
		m.emit(event)
		e.fireTriggers(m, catalog.TriggerOnDraw, card)
	}

	event := rules.NewEvent(rules.EventTurnStarted, m.id, playerID, "")
	m.emit(event)

	for _, card := range p.BattlefieldCards() {
		e.fireTriggers(m, catalog.TriggerOnTurnStart, card)
	}
	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
}

// finishTurn runs the end-phase duties, wraps the turn and starts the next
// one. Expired modifiers must be gone the same tick their countdown hits
// zero, so ticking and clearing happen back to back for every card.
func (e *Engine) finishTurn(m *matchState) {
	currentID := m.turns.CurrentPlayer()
	current := m.players[currentID]

	for _, card := range current.BattlefieldCards() {
		e.fireTriggers(m, catalog.TriggerOnTurnEnd, card)
	}
	e.processDestroyQueue(m)
	e.checkHeadquarters(m)
	if m.result != nil {
		return
	}

	for _, seat := range m.order {
		p := m.players[seat]
		for _, card := range m.allPlayerCards(p) {
			card.Mods.Tick()
			for _, expired := range card.ClearExpiredModifiers() {
				event := rules.NewEvent(rules.EventModifierExpired, m.id, seat, card.InstanceID)
				event.SourceID = expired.SourceID
				m.emit(event)
			}
		}
	}
	m.globalMods.Tick()
	if expired := m.globalMods.ClearExpired(); len(expired) > 0 {
		m.reclampAllDefense()
	}

	for _, seat := range m.order {
		for _, card := range m.allPlayerCards(m.players[seat]) {
			card.resetTurnFlags()
		}
	}

	endedTurn := m.turns.TurnNumber()
	event := rules.NewEvent(rules.EventTurnEnded, m.id, currentID, "")
	event.Amount = endedTurn
	m.emit(event)

	next := m.opponentOf(currentID)
	m.turns.EndTurn(next.ID)

	phaseEvent := rules.NewEvent(rules.EventPhaseChanged, m.id, next.ID, "")
	phaseEvent.Metadata["phase"] = m.turns.CurrentPhase().String()
	m.emit(phaseEvent)

	e.startTurn(m)
}

// allPlayerCards returns every card instance currently associated with the
// player, across all zones.
func (m *matchState) allPlayerCards(p *Player) []*Card {
	var cards []*Card
	cards = append(cards, p.BattlefieldCards()...)
	if p.Headquarters != nil {
		cards = append(cards, p.Headquarters)
	}
	cards = append(cards, p.Hand...)
	return cards
}

// frontlineChanged emits the battlefield-composition event and fires the
// matching triggers board-wide.
func (e *Engine) frontlineChanged(m *matchState, playerID string) {
	event := rules.NewEvent(rules.EventFrontlineChanged, m.id, playerID, "")
	m.emit(event)
	e.fireTriggers(m, catalog.TriggerOnFrontlineChange, nil)
}
