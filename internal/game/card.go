package game

import (
	"github.com/google/uuid"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/modifiers"
)

// Card is a mutable runtime instance of a card template. A card is owned by
// exactly one zone at a time; zone membership is managed by Player and the
// match controller, never by the card itself.
type Card struct {
	InstanceID     string
	Type           *catalog.CardType
	OwnerID        string
	ControllerID   string // may differ from OwnerID under control effects
	CurrentDefense int
	FaceDown       bool
	Mods           *modifiers.Set
	Abilities      []*Ability

	// per-turn action flags
	HasAttacked    bool
	HasUsedAbility bool

	// globalMods points at the board-wide modifier set shared by every card
	// in the match; nil outside a match (unit tests on bare cards).
	globalMods *modifiers.Set
}

func newCard(cardType *catalog.CardType, abilityTypes []*catalog.AbilityType, ownerID string) *Card {
	card := &Card{
		InstanceID:     uuid.NewString(),
		Type:           cardType,
		OwnerID:        ownerID,
		ControllerID:   ownerID,
		CurrentDefense: cardType.Defense,
		Mods:           modifiers.NewSet(),
	}
	for _, abilityType := range abilityTypes {
		card.Abilities = append(card.Abilities, newAbility(abilityType))
	}
	return card
}

func (c *Card) attrSum(attr modifiers.Attribute) int {
	total := c.Mods.Sum(attr)
	if c.globalMods != nil {
		total += c.globalMods.Sum(attr)
	}
	return total
}

// EffectiveAttack returns base attack plus all active modifier deltas,
// clamped at zero.
func (c *Card) EffectiveAttack() int {
	return clampMin(c.Type.Attack+c.attrSum(modifiers.AttrAttack), 0)
}

// EffectiveCounterAttack returns base counter-attack plus modifier deltas,
// clamped at zero.
func (c *Card) EffectiveCounterAttack() int {
	return clampMin(c.Type.CounterAttack+c.attrSum(modifiers.AttrCounterAttack), 0)
}

// EffectiveMaxDefense returns base defense plus modifier deltas, clamped at
// zero. CurrentDefense is always within [0, EffectiveMaxDefense].
func (c *Card) EffectiveMaxDefense() int {
	return clampMin(c.Type.Defense+c.attrSum(modifiers.AttrDefense), 0)
}

// TakeDamage reduces current defense by amount (clamped at zero) and returns
// the damage actually applied. A card at zero defense is destroyed by the
// match controller, not here.
func (c *Card) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	applied := amount
	if applied > c.CurrentDefense {
		applied = c.CurrentDefense
	}
	c.CurrentDefense -= applied
	return applied
}

// Heal raises current defense by amount, clamped to the effective maximum,
// and returns the amount actually restored. No-op for amount <= 0.
func (c *Card) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	max := c.EffectiveMaxDefense()
	restored := amount
	if c.CurrentDefense+restored > max {
		restored = max - c.CurrentDefense
	}
	if restored < 0 {
		restored = 0
	}
	c.CurrentDefense += restored
	return restored
}

// Destroyed reports whether the card's defense has been exhausted.
func (c *Card) Destroyed() bool {
	return c.CurrentDefense <= 0
}

// AddModifier attaches a modifier and re-clamps current defense against the
// recomputed maximum.
func (c *Card) AddModifier(m modifiers.Modifier) {
	c.Mods.Add(m)
	c.reclampDefense()
}

// RemoveModifier detaches a modifier; returns false if it was not present.
func (c *Card) RemoveModifier(m modifiers.Modifier) bool {
	ok := c.Mods.Remove(m)
	if ok {
		c.reclampDefense()
	}
	return ok
}

// ClearExpiredModifiers removes every modifier whose countdown reached zero.
func (c *Card) ClearExpiredModifiers() []modifiers.Modifier {
	expired := c.Mods.ClearExpired()
	if len(expired) > 0 {
		c.reclampDefense()
	}
	return expired
}

func (c *Card) reclampDefense() {
	if max := c.EffectiveMaxDefense(); c.CurrentDefense > max {
		c.CurrentDefense = max
	}
}

// resetTurnFlags clears the per-turn action flags and advances ability
// cooldown/use counters. Called once per end of turn.
func (c *Card) resetTurnFlags() {
	c.HasAttacked = false
	c.HasUsedAbility = false
	for _, ability := range c.Abilities {
		ability.tickTurn()
	}
}

// attrValue resolves a formula attribute reference against this card.
func (c *Card) attrValue(name string) (int, bool) {
	switch name {
	case "attack":
		return c.EffectiveAttack(), true
	case "defense":
		return c.CurrentDefense, true
	case "counter_attack":
		return c.EffectiveCounterAttack(), true
	case "max_defense":
		return c.EffectiveMaxDefense(), true
	case "deploy_cost":
		return c.Type.DeployCost, true
	case "operation_cost":
		return c.Type.OperationCost, true
	}
	return 0, false
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
