package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/frontline-tcg/frontline-server/internal/game/modifiers"
)

// Catalog holds the immutable card, ability and deck definitions for a
// process. It is fully validated at construction; the engine trusts it.
type Catalog struct {
	cards     map[string]*CardType
	abilities map[string]*AbilityType
	decks     map[string]*Deck
}

type cardFile struct {
	Cards []cardDef `yaml:"cards"`
}

type cardDef struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Category      CardCategory   `yaml:"category"`
	Faction       string         `yaml:"faction"`
	DeployCost    int            `yaml:"deploy_cost"`
	OperationCost int            `yaml:"operation_cost"`
	Attack        int            `yaml:"attack"`
	Defense       int            `yaml:"defense"`
	CounterAttack int            `yaml:"counter_attack"`
	Rarity        string         `yaml:"rarity"`
	Abilities     []string       `yaml:"abilities"`
	Attributes    map[string]int `yaml:"attributes"`
}

type abilityFile struct {
	Abilities []abilityDef `yaml:"abilities"`
}

type abilityDef struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Trigger        TriggerKind    `yaml:"trigger"`
	Targeting      TargetingKind  `yaml:"targeting"`
	Effect         EffectSpec     `yaml:"effect"`
	Conditions     []Condition    `yaml:"conditions"`
	Constants      map[string]int `yaml:"constants"`
	OperationCost  int            `yaml:"operation_cost"`
	CooldownTurns  int            `yaml:"cooldown_turns"`
	UsesPerTurn    int            `yaml:"uses_per_turn"`
	UsesPerMatch   int            `yaml:"uses_per_match"`
	RequiresFaceUp bool           `yaml:"requires_face_up"`
}

type deckFile struct {
	Decks []deckDef `yaml:"decks"`
}

type deckDef struct {
	ID           string   `yaml:"id"`
	Faction      string   `yaml:"faction"`
	Headquarters string   `yaml:"headquarters"`
	Cards        []string `yaml:"cards"`
}

// LoadFiles reads and validates the card, ability and deck definition files.
// knownSpecials lists every registered special-effect handler ID; a SPECIAL
// effect referencing anything else fails here, not at execution time.
func LoadFiles(cardsPath, abilitiesPath, decksPath string, knownSpecials []string) (*Catalog, error) {
	cardsData, err := os.ReadFile(cardsPath)
	if err != nil {
		return nil, fmt.Errorf("read cards: %w", err)
	}
	abilitiesData, err := os.ReadFile(abilitiesPath)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	decksData, err := os.ReadFile(decksPath)
	if err != nil {
		return nil, fmt.Errorf("read decks: %w", err)
	}
	return Parse(cardsData, abilitiesData, decksData, knownSpecials)
}

// Parse builds a catalog from raw YAML definition data.
func Parse(cardsData, abilitiesData, decksData []byte, knownSpecials []string) (*Catalog, error) {
	var cf cardFile
	if err := yaml.Unmarshal(cardsData, &cf); err != nil {
		return nil, configErr("", "cards: %v", err)
	}
	var af abilityFile
	if err := yaml.Unmarshal(abilitiesData, &af); err != nil {
		return nil, configErr("", "abilities: %v", err)
	}
	var df deckFile
	if len(decksData) > 0 {
		if err := yaml.Unmarshal(decksData, &df); err != nil {
			return nil, configErr("", "decks: %v", err)
		}
	}

	specials := make(map[string]bool, len(knownSpecials))
	for _, id := range knownSpecials {
		specials[id] = true
	}

	c := &Catalog{
		cards:     make(map[string]*CardType),
		abilities: make(map[string]*AbilityType),
		decks:     make(map[string]*Deck),
	}

	for _, def := range af.Abilities {
		if def.ID == "" {
			return nil, configErr("", "ability with empty id")
		}
		if _, dup := c.abilities[def.ID]; dup {
			return nil, configErr(def.ID, "duplicate ability id")
		}
		ability := &AbilityType{
			ID:             def.ID,
			Name:           def.Name,
			Trigger:        def.Trigger,
			Targeting:      def.Targeting,
			Effect:         def.Effect,
			Conditions:     def.Conditions,
			Constants:      def.Constants,
			OperationCost:  def.OperationCost,
			CooldownTurns:  def.CooldownTurns,
			UsesPerTurn:    def.UsesPerTurn,
			UsesPerMatch:   def.UsesPerMatch,
			RequiresFaceUp: def.RequiresFaceUp,
		}
		if ability.Constants == nil {
			ability.Constants = map[string]int{}
		}
		c.abilities[def.ID] = ability
	}

	for _, def := range cf.Cards {
		if def.ID == "" {
			return nil, configErr("", "card with empty id")
		}
		if _, dup := c.cards[def.ID]; dup {
			return nil, configErr(def.ID, "duplicate card id")
		}
		c.cards[def.ID] = &CardType{
			ID:            def.ID,
			Name:          def.Name,
			Category:      def.Category,
			Faction:       def.Faction,
			DeployCost:    def.DeployCost,
			OperationCost: def.OperationCost,
			Attack:        def.Attack,
			Defense:       def.Defense,
			CounterAttack: def.CounterAttack,
			Rarity:        def.Rarity,
			AbilityIDs:    def.Abilities,
			Attributes:    def.Attributes,
		}
	}

	for _, def := range df.Decks {
		if def.ID == "" {
			return nil, configErr("", "deck with empty id")
		}
		if _, dup := c.decks[def.ID]; dup {
			return nil, configErr(def.ID, "duplicate deck id")
		}
		c.decks[def.ID] = &Deck{
			ID:             def.ID,
			Faction:        def.Faction,
			HeadquartersID: def.Headquarters,
			Cards:          def.Cards,
		}
	}

	if err := c.validate(specials); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate(specials map[string]bool) error {
	for _, ability := range c.abilities {
		if !validTriggers[ability.Trigger] {
			return configErr(ability.ID, "unknown trigger %q", ability.Trigger)
		}
		if !validTargetings[ability.Targeting] {
			return configErr(ability.ID, "unknown targeting %q", ability.Targeting)
		}
		if err := c.validateEffect(ability, specials); err != nil {
			return err
		}
		for _, cond := range ability.Conditions {
			if !validConditions[cond.Kind] {
				return configErr(ability.ID, "unknown condition %q", cond.Kind)
			}
		}
		if ability.OperationCost < 0 || ability.CooldownTurns < 0 ||
			ability.UsesPerTurn < 0 || ability.UsesPerMatch < 0 {
			return configErr(ability.ID, "negative cost or limit")
		}
	}

	for _, card := range c.cards {
		if !validCategories[card.Category] {
			return configErr(card.ID, "unknown category %q", card.Category)
		}
		if card.Faction == "" {
			return configErr(card.ID, "missing faction")
		}
		if card.DeployCost < 0 || card.OperationCost < 0 {
			return configErr(card.ID, "negative cost")
		}
		switch card.Category {
		case CategoryUnit, CategoryHeadquarters:
			if card.Defense <= 0 {
				return configErr(card.ID, "%s must have positive defense", card.Category)
			}
		}
		for _, abilityID := range card.AbilityIDs {
			if _, ok := c.abilities[abilityID]; !ok {
				return configErr(card.ID, "dangling ability reference %q", abilityID)
			}
		}
	}

	for _, deck := range c.decks {
		if deck.Faction == "" {
			return configErr(deck.ID, "missing faction")
		}
		hq, ok := c.cards[deck.HeadquartersID]
		if !ok {
			return configErr(deck.ID, "unknown headquarters %q", deck.HeadquartersID)
		}
		if hq.Category != CategoryHeadquarters {
			return configErr(deck.ID, "headquarters %q is a %s", hq.ID, hq.Category)
		}
		if len(deck.Cards) == 0 {
			return configErr(deck.ID, "deck has no cards")
		}
		for _, cardID := range deck.Cards {
			card, ok := c.cards[cardID]
			if !ok {
				return configErr(deck.ID, "unknown card %q", cardID)
			}
			if card.Category == CategoryHeadquarters {
				return configErr(deck.ID, "headquarters %q listed as a deck card", cardID)
			}
		}
	}

	return nil
}

func (c *Catalog) validateEffect(ability *AbilityType, specials map[string]bool) error {
	effect := ability.Effect
	if !validEffects[effect.Kind] {
		return configErr(ability.ID, "unknown effect kind %q", effect.Kind)
	}

	needsAmount := map[EffectKind]bool{
		EffectDamage: true, EffectHeal: true, EffectBuff: true,
		EffectDebuff: true, EffectDraw: true, EffectDiscard: true,
		EffectModifier: true, EffectCounter: true, EffectGainOperation: true,
	}
	if needsAmount[effect.Kind] {
		if effect.Amount == nil {
			return configErr(ability.ID, "effect %s requires an amount formula", effect.Kind)
		}
		if err := effect.Amount.Validate(ability.Constants); err != nil {
			return configErr(ability.ID, "malformed formula %q: %v", effect.Amount.Source(), err)
		}
		// Draw, discard and credit gains always evaluate against the
		// caster alone, as does anything with no targeting; a target.*
		// reference there could never bind.
		casterOnly := effect.Kind == EffectDraw || effect.Kind == EffectDiscard ||
			effect.Kind == EffectGainOperation || ability.Targeting == TargetNone
		if casterOnly && effect.Amount.ReferencesTarget() {
			return configErr(ability.ID, "formula %q references target attributes but no target is ever bound",
				effect.Amount.Source())
		}
	}

	switch effect.Kind {
	case EffectBuff, EffectDebuff, EffectModifier:
		attr := modifiers.Attribute(effect.Attribute)
		if attr != modifiers.AttrAttack && attr != modifiers.AttrDefense && attr != modifiers.AttrCounterAttack {
			return configErr(ability.ID, "effect %s has invalid attribute %q", effect.Kind, effect.Attribute)
		}
		if effect.DurationTurns == 0 || effect.DurationTurns < modifiers.Permanent {
			return configErr(ability.ID, "effect %s has invalid duration %d", effect.Kind, effect.DurationTurns)
		}
	case EffectCounter:
		if effect.DurationTurns == 0 || effect.DurationTurns < modifiers.Permanent {
			return configErr(ability.ID, "effect %s has invalid duration %d", effect.Kind, effect.DurationTurns)
		}
	case EffectSummon, EffectTransform:
		target, ok := c.cards[effect.CardTypeID]
		if !ok {
			return configErr(ability.ID, "effect %s references unknown card %q", effect.Kind, effect.CardTypeID)
		}
		if target.Category != CategoryUnit {
			return configErr(ability.ID, "effect %s must reference a UNIT, got %s", effect.Kind, target.Category)
		}
	case EffectSpecial:
		if effect.SpecialID == "" {
			return configErr(ability.ID, "SPECIAL effect missing special_id")
		}
		if !specials[effect.SpecialID] {
			return configErr(ability.ID, "unregistered special effect %q", effect.SpecialID)
		}
	}

	return nil
}

// Card returns the card template with the given ID.
func (c *Catalog) Card(id string) (*CardType, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// Ability returns the ability template with the given ID.
func (c *Catalog) Ability(id string) (*AbilityType, bool) {
	ability, ok := c.abilities[id]
	return ability, ok
}

// Deck returns the deck list with the given ID.
func (c *Catalog) Deck(id string) (*Deck, bool) {
	deck, ok := c.decks[id]
	return deck, ok
}

// CardIDs returns all card template IDs in sorted order.
func (c *Catalog) CardIDs() []string {
	ids := make([]string, 0, len(c.cards))
	for id := range c.cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeckIDs returns all deck IDs in sorted order.
func (c *Catalog) DeckIDs() []string {
	ids := make([]string, 0, len(c.decks))
	for id := range c.decks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
