package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontline-tcg/frontline-server/internal/game/modifiers"
)

func grunt(t *testing.T) *Card {
	t.Helper()
	cat := testCatalog(t)
	cardType, ok := cat.Card("unit_grunt")
	require.True(t, ok)
	return newCard(cardType, nil, "alice")
}

func TestCardEffectiveAttributes(t *testing.T) {
	card := grunt(t)
	assert.Equal(t, 3, card.EffectiveAttack())
	assert.Equal(t, 2, card.EffectiveCounterAttack())
	assert.Equal(t, 4, card.EffectiveMaxDefense())

	card.AddModifier(modifiers.Modifier{
		SourceID:       "test",
		Attribute:      modifiers.AttrAttack,
		Delta:          2,
		Kind:           modifiers.KindBuff,
		RemainingTurns: modifiers.Permanent,
	})
	card.AddModifier(modifiers.Modifier{
		SourceID:       "test",
		Attribute:      modifiers.AttrCounterAttack,
		Delta:          -5,
		Kind:           modifiers.KindDebuff,
		RemainingTurns: modifiers.Permanent,
	})

	assert.Equal(t, 5, card.EffectiveAttack())
	assert.Equal(t, 0, card.EffectiveCounterAttack(), "attributes clamp at zero")
}

func TestCardTakeDamageClamps(t *testing.T) {
	card := grunt(t)

	assert.Equal(t, 3, card.TakeDamage(3))
	assert.Equal(t, 1, card.CurrentDefense)

	assert.Equal(t, 1, card.TakeDamage(10), "overkill reports only applied damage")
	assert.Equal(t, 0, card.CurrentDefense)
	assert.True(t, card.Destroyed())

	assert.Equal(t, 0, card.TakeDamage(-4), "negative damage is a no-op")
}

func TestCardHealBounded(t *testing.T) {
	card := grunt(t)
	card.TakeDamage(3)

	assert.Equal(t, 2, card.Heal(2))
	assert.Equal(t, 1, card.Heal(10), "heal stops at max defense")
	assert.Equal(t, 4, card.CurrentDefense)
	assert.Equal(t, 0, card.Heal(-1))
}

func TestCardDefenseReclampsOnModifierExpiry(t *testing.T) {
	card := grunt(t)
	card.AddModifier(modifiers.Modifier{
		SourceID:       "test",
		Attribute:      modifiers.AttrDefense,
		Delta:          3,
		Kind:           modifiers.KindBuff,
		RemainingTurns: 1,
	})
	assert.Equal(t, 7, card.EffectiveMaxDefense())
	assert.Equal(t, 3, card.Heal(3))
	assert.Equal(t, 7, card.CurrentDefense)

	card.Mods.Tick()
	expired := card.ClearExpiredModifiers()
	require.Len(t, expired, 1)
	assert.Equal(t, 4, card.CurrentDefense, "current defense re-clamps when the max drops")
}

func TestCardHealUsesBuffedMax(t *testing.T) {
	card := grunt(t)
	card.TakeDamage(4)
	card.AddModifier(modifiers.Modifier{
		SourceID:       "test",
		Attribute:      modifiers.AttrDefense,
		Delta:          2,
		Kind:           modifiers.KindBuff,
		RemainingTurns: modifiers.Permanent,
	})
	assert.Equal(t, 6, card.Heal(20))
	assert.Equal(t, 6, card.CurrentDefense)
}

func TestAbilityCooldownAndUses(t *testing.T) {
	cat := testCatalog(t)
	abilityType, ok := cat.Ability("ability_snipe")
	require.True(t, ok)

	ability := newAbility(abilityType)
	assert.True(t, ability.OffCooldown(), "fresh ability is usable immediately")
	assert.True(t, ability.UsesAvailable())

	ability.markUsed()
	assert.False(t, ability.UsesAvailable(), "uses_per_turn 1 exhausts after one use")

	ability.tickTurn()
	assert.True(t, ability.UsesAvailable())
	assert.True(t, ability.OffCooldown())
}

func TestAttrValueBindsCardAttributes(t *testing.T) {
	card := grunt(t)
	card.TakeDamage(1)

	for name, want := range map[string]int{
		"attack":         3,
		"defense":        3,
		"counter_attack": 2,
		"max_defense":    4,
		"deploy_cost":    2,
	} {
		got, ok := card.attrValue(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := card.attrValue("morale")
	assert.False(t, ok)
}
