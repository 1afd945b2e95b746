package catalog

import (
	"errors"
	"path/filepath"
	"testing"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadFiles(
		filepath.Join("testdata", "cards.yaml"),
		filepath.Join("testdata", "abilities.yaml"),
		filepath.Join("testdata", "decks.yaml"),
		nil,
	)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestLoadFiles(t *testing.T) {
	c := loadTestCatalog(t)

	card, ok := c.Card("unit_rifleman")
	if !ok {
		t.Fatal("unit_rifleman not found")
	}
	if card.Category != CategoryUnit || card.DeployCost != 2 || card.Attack != 3 {
		t.Fatalf("unexpected card template: %+v", card)
	}
	if len(card.AbilityIDs) != 1 || card.AbilityIDs[0] != "ability_focus_fire" {
		t.Fatalf("unexpected ability refs: %v", card.AbilityIDs)
	}

	ability, ok := c.Ability("ability_focus_fire")
	if !ok {
		t.Fatal("ability_focus_fire not found")
	}
	if ability.Trigger != TriggerManual || ability.Targeting != TargetSingleEnemy {
		t.Fatalf("unexpected ability template: %+v", ability)
	}
	if ability.Effect.Kind != EffectDamage || ability.Effect.Amount == nil {
		t.Fatalf("unexpected effect spec: %+v", ability.Effect)
	}

	deck, ok := c.Deck("coalition_starter")
	if !ok {
		t.Fatal("coalition_starter not found")
	}
	if deck.HeadquartersID != "hq_coalition" || len(deck.Cards) != 4 {
		t.Fatalf("unexpected deck: %+v", deck)
	}
}

const minimalCards = `
cards:
  - id: hq_a
    name: HQ
    category: HEADQUARTERS
    faction: alpha
    defense: 10
  - id: unit_a
    name: Grunt
    category: UNIT
    faction: alpha
    deploy_cost: 1
    attack: 1
    defense: 1
`

func TestParseRejectsDanglingAbilityReference(t *testing.T) {
	cards := minimalCards + `
  - id: unit_b
    name: Broken
    category: UNIT
    faction: alpha
    deploy_cost: 1
    attack: 1
    defense: 1
    abilities: [no_such_ability]
`
	_, err := Parse([]byte(cards), []byte("abilities: []"), nil, nil)
	assertConfigError(t, err, "unit_b")
}

func TestParseRejectsUnknownSpecial(t *testing.T) {
	abilities := `
abilities:
  - id: ability_x
    trigger: MANUAL
    targeting: SELF
    effect:
      kind: SPECIAL
      special_id: not_registered
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, []string{"registered"})
	assertConfigError(t, err, "ability_x")
}

func TestParseAcceptsRegisteredSpecial(t *testing.T) {
	abilities := `
abilities:
  - id: ability_x
    trigger: MANUAL
    targeting: SELF
    effect:
      kind: SPECIAL
      special_id: registered
`
	if _, err := Parse([]byte(minimalCards), []byte(abilities), nil, []string{"registered"}); err != nil {
		t.Fatalf("expected registered special to pass validation: %v", err)
	}
}

func TestParseRejectsMalformedFormula(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: MANUAL
    targeting: SINGLE_ENEMY
    effect:
      kind: DAMAGE
      amount: "caster.attack +"
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	if err == nil {
		t.Fatal("expected error for malformed formula")
	}
}

func TestParseRejectsUndeclaredConstant(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: MANUAL
    targeting: SINGLE_ENEMY
    effect:
      kind: DAMAGE
      amount: "base + caster.attack"
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	assertConfigError(t, err, "ability_bad")
}

func TestParseRejectsBuffWithoutAttribute(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: MANUAL
    targeting: SINGLE_ALLY
    effect:
      kind: BUFF
      amount: "2"
      duration_turns: 2
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	assertConfigError(t, err, "ability_bad")
}

func TestParseRejectsZeroDurationModifier(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: MANUAL
    targeting: SINGLE_ALLY
    effect:
      kind: BUFF
      amount: "2"
      attribute: attack
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	assertConfigError(t, err, "ability_bad")
}

func TestParseRejectsTargetReferenceWithoutTargeting(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: MANUAL
    targeting: NONE
    effect:
      kind: DAMAGE
      amount: "target.attack"
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	assertConfigError(t, err, "ability_bad")
}

func TestParseRejectsTargetReferenceInCasterScopedEffect(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: MANUAL
    targeting: SINGLE_ALLY
    effect:
      kind: DRAW
      amount: "target.defense"
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	assertConfigError(t, err, "ability_bad")
}

func TestParseRejectsDeckWithNonHQHeadquarters(t *testing.T) {
	decks := `
decks:
  - id: deck_bad
    faction: alpha
    headquarters: unit_a
    cards: [unit_a]
`
	_, err := Parse([]byte(minimalCards), []byte("abilities: []"), []byte(decks), nil)
	assertConfigError(t, err, "deck_bad")
}

func TestParseRejectsUnknownTrigger(t *testing.T) {
	abilities := `
abilities:
  - id: ability_bad
    trigger: ON_FULL_MOON
    targeting: SELF
    effect:
      kind: DESTROY
`
	_, err := Parse([]byte(minimalCards), []byte(abilities), nil, nil)
	assertConfigError(t, err, "ability_bad")
}

func assertConfigError(t *testing.T, err error, entity string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected configuration error")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Entity != entity {
		t.Fatalf("expected error for %q, got %q (%v)", entity, cfgErr.Entity, err)
	}
}
