package game

import (
	"math/rand"
	"sort"

	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// SpecialHandler implements a scripted effect that the data-driven effect
// kinds cannot express. Handlers are registered by ID before the catalog is
// loaded; the loader rejects any SPECIAL effect referencing an unknown ID.
type SpecialHandler func(ctx *SpecialContext) error

// SpecialContext is the controlled mutation surface handed to a special
// handler. It exposes the same primitives the built-in effects use, so a
// handler cannot bypass damage clamping or event emission.
type SpecialContext struct {
	engine *Engine
	match  *matchState

	Caster  *Card
	Targets []*Card
}

// Controller returns the player controlling the casting card.
func (ctx *SpecialContext) Controller() *Player {
	return ctx.match.controllerOf(ctx.Caster)
}

// Opponent returns the player opposing the casting card's controller.
func (ctx *SpecialContext) Opponent() *Player {
	return ctx.match.opponentOf(ctx.Caster.ControllerID)
}

// Rand returns the match's seeded random source.
func (ctx *SpecialContext) Rand() *rand.Rand {
	return ctx.match.rng
}

// TurnNumber returns the current turn number.
func (ctx *SpecialContext) TurnNumber() int {
	return ctx.match.turns.TurnNumber()
}

// DealDamage applies clamped damage to the target with full event and
// trigger processing.
func (ctx *SpecialContext) DealDamage(target *Card, amount int) int {
	return ctx.engine.dealDamage(ctx.match, ctx.Caster, target, amount)
}

// HealCard heals the target up to its effective maximum defense.
func (ctx *SpecialContext) HealCard(target *Card, amount int) int {
	healed := target.Heal(amount)
	if healed > 0 {
		event := rules.NewEvent(rules.EventCardHealed, ctx.match.id, ctx.match.controllerOf(target).ID, target.InstanceID)
		event.Amount = healed
		event.SourceID = ctx.Caster.InstanceID
		ctx.match.emit(event)
	}
	return healed
}

// GainCredits adds credits to the player, honoring the credit cap.
func (ctx *SpecialContext) GainCredits(p *Player, amount int) int {
	gained := p.AddCredits(amount)
	if gained > 0 {
		event := rules.NewEvent(rules.EventCreditsChanged, ctx.match.id, p.ID, ctx.Caster.InstanceID)
		event.Amount = gained
		ctx.match.emit(event)
	}
	return gained
}

// DrawCards draws up to n cards for the player, stopping at an empty deck
// or full hand. Returns the number actually drawn.
func (ctx *SpecialContext) DrawCards(p *Player, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		card, err := p.DrawCard(false)
		if err != nil {
			break
		}
		drawn++
		ctx.match.emit(rules.NewEvent(rules.EventCardDrawn, ctx.match.id, p.ID, card.InstanceID))
	}
	return drawn
}

// SpecialRegistry holds the named handlers available to a catalog. Its ID
// list feeds catalog validation so definitions and code stay in lockstep.
type SpecialRegistry struct {
	handlers map[string]SpecialHandler
}

func NewSpecialRegistry() *SpecialRegistry {
	return &SpecialRegistry{handlers: make(map[string]SpecialHandler)}
}

// Register binds a handler to an ID. Re-registering an ID replaces the
// previous handler.
func (r *SpecialRegistry) Register(id string, handler SpecialHandler) {
	if handler == nil {
		return
	}
	r.handlers[id] = handler
}

// IDs returns the registered handler IDs in sorted order.
func (r *SpecialRegistry) IDs() []string {
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
