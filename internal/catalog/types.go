package catalog

import "fmt"

// CardCategory classifies a card template.
type CardCategory string

const (
	CategoryUnit           CardCategory = "UNIT"
	CategoryOrder          CardCategory = "ORDER"
	CategoryCountermeasure CardCategory = "COUNTERMEASURE"
	CategoryHeadquarters   CardCategory = "HEADQUARTERS"
)

var validCategories = map[CardCategory]bool{
	CategoryUnit:           true,
	CategoryOrder:          true,
	CategoryCountermeasure: true,
	CategoryHeadquarters:   true,
}

// TriggerKind names the game event kind that makes an ability eligible.
type TriggerKind string

const (
	TriggerManual            TriggerKind = "MANUAL"
	TriggerOnDeploy          TriggerKind = "ON_DEPLOY"
	TriggerOnTurnStart       TriggerKind = "ON_TURN_START"
	TriggerOnTurnEnd         TriggerKind = "ON_TURN_END"
	TriggerOnDamaged         TriggerKind = "ON_DAMAGED"
	TriggerOnDestroyed       TriggerKind = "ON_DESTROYED"
	TriggerOnAttack          TriggerKind = "ON_ATTACK"
	TriggerOnDefend          TriggerKind = "ON_DEFEND"
	TriggerOnDraw            TriggerKind = "ON_DRAW"
	TriggerOnDiscard         TriggerKind = "ON_DISCARD"
	TriggerOnCombatDamage    TriggerKind = "ON_COMBAT_DAMAGE"
	TriggerOnOrderPlay       TriggerKind = "ON_ORDER_PLAY"
	TriggerOnFrontlineChange TriggerKind = "ON_FRONTLINE_CHANGE"
)

var validTriggers = map[TriggerKind]bool{
	TriggerManual: true, TriggerOnDeploy: true, TriggerOnTurnStart: true,
	TriggerOnTurnEnd: true, TriggerOnDamaged: true, TriggerOnDestroyed: true,
	TriggerOnAttack: true, TriggerOnDefend: true, TriggerOnDraw: true,
	TriggerOnDiscard: true, TriggerOnCombatDamage: true, TriggerOnOrderPlay: true,
	TriggerOnFrontlineChange: true,
}

// TargetingKind names how an ability selects its targets.
type TargetingKind string

const (
	TargetNone          TargetingKind = "NONE"
	TargetSingleAlly    TargetingKind = "SINGLE_ALLY"
	TargetSingleEnemy   TargetingKind = "SINGLE_ENEMY"
	TargetAllAllies     TargetingKind = "ALL_ALLIES"
	TargetAllEnemies    TargetingKind = "ALL_ENEMIES"
	TargetRow           TargetingKind = "ROW"
	TargetColumn        TargetingKind = "COLUMN"
	TargetSelf          TargetingKind = "SELF"
	TargetRandomEnemy   TargetingKind = "RANDOM_ENEMY"
	TargetFrontlineUnit TargetingKind = "FRONTLINE_UNIT"
	TargetHQ            TargetingKind = "HQ"
	TargetSameNation    TargetingKind = "SAME_NATION"
)

var validTargetings = map[TargetingKind]bool{
	TargetNone: true, TargetSingleAlly: true, TargetSingleEnemy: true,
	TargetAllAllies: true, TargetAllEnemies: true, TargetRow: true,
	TargetColumn: true, TargetSelf: true, TargetRandomEnemy: true,
	TargetFrontlineUnit: true, TargetHQ: true, TargetSameNation: true,
}

// EffectKind names what an ability's effect does to its targets.
type EffectKind string

const (
	EffectDamage        EffectKind = "DAMAGE"
	EffectHeal          EffectKind = "HEAL"
	EffectBuff          EffectKind = "BUFF"
	EffectDebuff        EffectKind = "DEBUFF"
	EffectDraw          EffectKind = "DRAW"
	EffectDiscard       EffectKind = "DISCARD"
	EffectMove          EffectKind = "MOVE"
	EffectSummon        EffectKind = "SUMMON"
	EffectTransform     EffectKind = "TRANSFORM"
	EffectModifier      EffectKind = "MODIFIER"
	EffectCounter       EffectKind = "COUNTER"
	EffectDestroy       EffectKind = "DESTROY"
	EffectReturnToHand  EffectKind = "RETURN_TO_HAND"
	EffectCopyCard      EffectKind = "COPY_CARD"
	EffectGainOperation EffectKind = "GAIN_OPERATION"
	EffectSpecial       EffectKind = "SPECIAL"
)

var validEffects = map[EffectKind]bool{
	EffectDamage: true, EffectHeal: true, EffectBuff: true, EffectDebuff: true,
	EffectDraw: true, EffectDiscard: true, EffectMove: true, EffectSummon: true,
	EffectTransform: true, EffectModifier: true, EffectCounter: true,
	EffectDestroy: true, EffectReturnToHand: true, EffectCopyCard: true,
	EffectGainOperation: true, EffectSpecial: true,
}

// ConditionKind names an activation precondition evaluated against game state.
type ConditionKind string

const (
	CondCreditsAtLeast    ConditionKind = "CREDITS_AT_LEAST"
	CondTurnAtLeast       ConditionKind = "TURN_AT_LEAST"
	CondCasterDamaged     ConditionKind = "CASTER_DAMAGED"
	CondAllyCountAtLeast  ConditionKind = "ALLY_COUNT_AT_LEAST"
	CondEnemyCountAtLeast ConditionKind = "ENEMY_COUNT_AT_LEAST"
	CondHandSizeAtMost    ConditionKind = "HAND_SIZE_AT_MOST"
)

var validConditions = map[ConditionKind]bool{
	CondCreditsAtLeast: true, CondTurnAtLeast: true, CondCasterDamaged: true,
	CondAllyCountAtLeast: true, CondEnemyCountAtLeast: true, CondHandSizeAtMost: true,
}

// Condition is one activation precondition. Value is the threshold for the
// threshold-style kinds and ignored otherwise.
type Condition struct {
	Kind  ConditionKind `yaml:"kind"`
	Value int           `yaml:"value"`
}

// EffectSpec is the tagged-variant effect descriptor of an ability. Only the
// fields relevant to Kind are set; Validate enforces that at load time so a
// malformed definition never reaches execution.
type EffectSpec struct {
	Kind EffectKind `yaml:"kind"`

	// Amount is the effect magnitude formula. Required for DAMAGE, HEAL,
	// BUFF, DEBUFF, DRAW, DISCARD, MODIFIER, COUNTER and GAIN_OPERATION.
	Amount *Formula `yaml:"amount,omitempty"`

	// Attribute names the attribute shifted by BUFF, DEBUFF and MODIFIER.
	Attribute string `yaml:"attribute,omitempty"`

	// DurationTurns bounds modifier lifetime; -1 means permanent.
	DurationTurns int `yaml:"duration_turns,omitempty"`

	// CardTypeID identifies the template used by SUMMON and TRANSFORM.
	CardTypeID string `yaml:"card_type_id,omitempty"`

	// SpecialID keys the registered handler used by SPECIAL.
	SpecialID string `yaml:"special_id,omitempty"`
}

// CardType is an immutable card template shared by reference between all of
// its runtime instances.
type CardType struct {
	ID            string
	Name          string
	Category      CardCategory
	Faction       string
	DeployCost    int
	OperationCost int
	Attack        int
	Defense       int
	CounterAttack int
	Rarity        string
	AbilityIDs    []string
	Attributes    map[string]int
}

// AbilityType is an immutable ability template.
type AbilityType struct {
	ID             string
	Name           string
	Trigger        TriggerKind
	Targeting      TargetingKind
	Effect         EffectSpec
	Conditions     []Condition
	Constants      map[string]int
	OperationCost  int
	CooldownTurns  int
	UsesPerTurn    int // 0 = unlimited
	UsesPerMatch   int // 0 = unlimited
	RequiresFaceUp bool
}

// Deck is a named deck list referencing card templates by ID.
type Deck struct {
	ID             string
	Faction        string
	HeadquartersID string
	Cards          []string
}

// ConfigurationError reports bad definition data. It is raised once at
// catalog load time and is fatal to startup; it never occurs during play.
type ConfigurationError struct {
	Entity string // card/ability/deck ID the problem belongs to
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("catalog: %s", e.Reason)
	}
	return fmt.Sprintf("catalog: %s: %s", e.Entity, e.Reason)
}

func configErr(entity, format string, args ...any) error {
	return &ConfigurationError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}
