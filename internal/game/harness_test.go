package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

const testCardsYAML = `
cards:
  - id: hq_alpha
    name: Coalition Command Bunker
    category: HEADQUARTERS
    faction: coalition
    defense: 20
    rarity: fixed
    abilities: [ability_orbital]

  - id: hq_bravo
    name: Dominion War Room
    category: HEADQUARTERS
    faction: dominion
    defense: 20
    rarity: fixed

  - id: unit_grunt
    name: Grunt
    category: UNIT
    faction: coalition
    deploy_cost: 2
    attack: 3
    defense: 4
    counter_attack: 2
    rarity: common

  - id: unit_brute
    name: Brute
    category: UNIT
    faction: dominion
    deploy_cost: 2
    attack: 3
    defense: 4
    counter_attack: 2
    rarity: common

  - id: unit_scout
    name: Scout
    category: UNIT
    faction: coalition
    deploy_cost: 1
    attack: 2
    defense: 2
    counter_attack: 1
    rarity: common
    abilities: [ability_recon]

  - id: unit_sniper
    name: Sniper
    category: UNIT
    faction: coalition
    deploy_cost: 3
    attack: 4
    defense: 3
    counter_attack: 0
    rarity: uncommon
    abilities: [ability_snipe]

  - id: unit_medic
    name: Field Medic
    category: UNIT
    faction: coalition
    deploy_cost: 2
    attack: 1
    defense: 3
    counter_attack: 1
    rarity: uncommon
    abilities: [ability_patch]

  - id: unit_captain
    name: Captain
    category: UNIT
    faction: coalition
    deploy_cost: 3
    attack: 2
    defense: 3
    counter_attack: 1
    rarity: rare
    abilities: [ability_rally]

  - id: unit_veteran
    name: Veteran
    category: UNIT
    faction: coalition
    deploy_cost: 2
    attack: 2
    defense: 5
    counter_attack: 2
    rarity: uncommon
    abilities: [ability_last_stand]

  - id: unit_martyr
    name: Martyr
    category: UNIT
    faction: dominion
    deploy_cost: 2
    attack: 2
    defense: 2
    counter_attack: 0
    rarity: uncommon
    abilities: [ability_deathburst]

  - id: unit_avenger
    name: Avenger
    category: UNIT
    faction: coalition
    deploy_cost: 2
    attack: 2
    defense: 2
    counter_attack: 1
    rarity: uncommon
    abilities: [ability_payback]

  - id: cm_tripwire
    name: Tripwire
    category: COUNTERMEASURE
    faction: coalition
    deploy_cost: 1
    defense: 2
    rarity: common
    abilities: [ability_tripwire]

  - id: order_barrage
    name: Artillery Barrage
    category: ORDER
    faction: coalition
    deploy_cost: 2
    rarity: rare
    abilities: [ability_barrage]

  - id: order_requisition
    name: Requisition
    category: ORDER
    faction: coalition
    deploy_cost: 1
    rarity: common
    abilities: [ability_requisition]

  - id: order_smoke
    name: Smoke Screen
    category: ORDER
    faction: coalition
    deploy_cost: 1
    rarity: uncommon
    abilities: [ability_smoke]

  - id: order_emp
    name: EMP Pulse
    category: ORDER
    faction: coalition
    deploy_cost: 1
    rarity: uncommon
    abilities: [ability_emp]
`

const testAbilitiesYAML = `
abilities:
  - id: ability_orbital
    name: Orbital Scan
    trigger: MANUAL
    targeting: NONE
    effect:
      kind: SPECIAL
      special_id: orbital_scan
    operation_cost: 1

  - id: ability_recon
    name: Recon Report
    trigger: ON_DEPLOY
    targeting: NONE
    effect:
      kind: DRAW
      amount: "1"

  - id: ability_snipe
    name: Snipe
    trigger: MANUAL
    targeting: SINGLE_ENEMY
    effect:
      kind: DAMAGE
      amount: "caster.attack"
    operation_cost: 2
    uses_per_turn: 1
    requires_face_up: true

  - id: ability_patch
    name: Patch Up
    trigger: MANUAL
    targeting: SINGLE_ALLY
    effect:
      kind: HEAL
      amount: "field_kit"
    constants: {field_kit: 3}
    uses_per_turn: 1
    requires_face_up: true

  - id: ability_rally
    name: Rally
    trigger: MANUAL
    targeting: ALL_ALLIES
    effect:
      kind: BUFF
      attribute: attack
      amount: "2"
      duration_turns: 1
    uses_per_turn: 1
    requires_face_up: true

  - id: ability_last_stand
    name: Last Stand
    trigger: MANUAL
    targeting: SELF
    effect:
      kind: BUFF
      attribute: attack
      amount: "3"
      duration_turns: -1
    conditions: [{kind: CASTER_DAMAGED, value: 1}]
    uses_per_turn: 1
    requires_face_up: true

  - id: ability_deathburst
    name: Death Burst
    trigger: ON_DESTROYED
    targeting: ALL_ENEMIES
    effect:
      kind: DAMAGE
      amount: "2"

  - id: ability_payback
    name: Payback
    trigger: ON_DISCARD
    targeting: HQ
    effect:
      kind: DAMAGE
      amount: "1"

  - id: ability_tripwire
    name: Triggered Charge
    trigger: ON_DAMAGED
    targeting: SINGLE_ENEMY
    effect:
      kind: DAMAGE
      amount: "2"

  - id: ability_barrage
    name: Barrage
    trigger: ON_ORDER_PLAY
    targeting: ALL_ENEMIES
    effect:
      kind: DAMAGE
      amount: "2"

  - id: ability_requisition
    name: Emergency Requisition
    trigger: ON_ORDER_PLAY
    targeting: NONE
    effect:
      kind: GAIN_OPERATION
      amount: "3"

  - id: ability_smoke
    name: Smoke Screen
    trigger: ON_ORDER_PLAY
    targeting: NONE
    effect:
      kind: MODIFIER
      attribute: attack
      amount: "-1"
      duration_turns: 1

  - id: ability_emp
    name: EMP Pulse
    trigger: ON_ORDER_PLAY
    targeting: NONE
    effect:
      kind: MODIFIER
      attribute: defense
      amount: "-2"
      duration_turns: 1
`

const testDecksYAML = `
decks:
  - id: deck_alpha
    faction: coalition
    headquarters: hq_alpha
    cards:
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt
      - unit_grunt

  - id: deck_bravo
    faction: dominion
    headquarters: hq_bravo
    cards:
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
      - unit_brute
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse(
		[]byte(testCardsYAML),
		[]byte(testAbilitiesYAML),
		[]byte(testDecksYAML),
		[]string{"orbital_scan"},
	)
	require.NoError(t, err)
	return cat
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	registry := NewSpecialRegistry()
	registry.Register("orbital_scan", func(ctx *SpecialContext) error {
		ctx.DealDamage(ctx.Opponent().Headquarters, 2)
		return nil
	})
	return NewEngine(testCatalog(t), registry, DefaultRules(), zaptest.NewLogger(t))
}

// startTestMatch starts a two-player match and returns the engine together
// with its internal state for direct inspection.
func startTestMatch(t *testing.T) (*Engine, *matchState) {
	t.Helper()
	e := newTestEngine(t)
	err := e.StartMatch("m1",
		PlayerSetup{PlayerID: "alice", DeckID: "deck_alpha"},
		PlayerSetup{PlayerID: "bob", DeckID: "deck_bravo"},
		42,
	)
	require.NoError(t, err)
	return e, e.matches["m1"]
}

// giveCard puts a fresh instance of the card type into the player's hand,
// bypassing the deck.
func giveCard(t *testing.T, e *Engine, m *matchState, p *Player, typeID string) *Card {
	t.Helper()
	cardType, ok := e.catalog.Card(typeID)
	require.True(t, ok, "unknown card type %s", typeID)
	card := newCard(cardType, resolveAbilities(e.catalog, cardType), p.ID)
	m.registerCard(card)
	p.Hand = append(p.Hand, card)
	return card
}

// placeCard puts a fresh instance of the card type directly onto the
// player's battlefield slot.
func placeCard(t *testing.T, e *Engine, m *matchState, p *Player, typeID string, slot int) *Card {
	t.Helper()
	cardType, ok := e.catalog.Card(typeID)
	require.True(t, ok, "unknown card type %s", typeID)
	require.Nil(t, m.players[p.ID].Battlefield[slot], "slot %d occupied", slot)
	card := newCard(cardType, resolveAbilities(e.catalog, cardType), p.ID)
	m.registerCard(card)
	p.Battlefield[slot] = card
	return card
}

// toPhase advances the current turn until it reaches the target phase.
func toPhase(t *testing.T, e *Engine, m *matchState, target rules.Phase) {
	t.Helper()
	for i := 0; m.turns.CurrentPhase() != target; i++ {
		require.Less(t, i, int(rules.PhaseEnd)+1, "phase %s never reached", target)
		_, err := e.AdvancePhase(m.id, m.turns.CurrentPlayer())
		require.NoError(t, err)
	}
}
