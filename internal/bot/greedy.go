// Package bot provides scripted players used for simulation and soak
// testing. Bots act through the same public engine commands as human
// clients and only see their own masked match view.
package bot

import (
	"sort"

	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/game"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// Greedy plays the cheapest affordable cards, fires every ready ability and
// attacks with everything. It never passes up an action it can take.
type Greedy struct {
	engine *game.Engine
	logger *zap.Logger
}

func NewGreedy(engine *game.Engine, logger *zap.Logger) *Greedy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Greedy{engine: engine, logger: logger}
}

// TakeTurn plays one full turn for the player: deploy, play orders, use
// abilities, attack, end turn. Individual command rejections are tolerated;
// the bot simply moves on.
func (b *Greedy) TakeTurn(matchID, playerID string) error {
	view, err := b.engine.MatchView(matchID, playerID)
	if err != nil {
		return err
	}
	if view.CurrentPlayer != playerID || view.WinnerID != "" {
		return nil
	}

	for view.Phase == rules.PhaseStartTurn.String() {
		if _, err := b.engine.AdvancePhase(matchID, playerID); err != nil {
			return err
		}
		view, err = b.engine.MatchView(matchID, playerID)
		if err != nil {
			return err
		}
	}

	b.playHand(matchID, playerID)
	b.useAbilities(matchID, playerID)

	if _, err := b.engine.AdvancePhase(matchID, playerID); err == nil {
		b.attackAll(matchID, playerID)
	}

	if err := b.engine.EndTurn(matchID, playerID); err != nil {
		if game.IsCode(err, game.CodeMatchOver) {
			return nil
		}
		return err
	}
	return nil
}

// playHand deploys units and plays orders from cheapest to most expensive
// while credits and battlefield slots allow.
func (b *Greedy) playHand(matchID, playerID string) {
	view, err := b.engine.MatchView(matchID, playerID)
	if err != nil {
		return
	}
	me := seat(view, playerID)
	if me == nil {
		return
	}

	hand := append([]game.CardView(nil), me.Hand...)
	sort.SliceStable(hand, func(i, j int) bool {
		return hand[i].DeployCost < hand[j].DeployCost
	})

	for _, card := range hand {
		switch card.Category {
		case "UNIT", "COUNTERMEASURE":
			slot := firstEmptySlot(me)
			if slot < 0 {
				continue
			}
			if err := b.engine.DeployCard(matchID, playerID, card.InstanceID, slot); err != nil {
				continue
			}
		case "ORDER":
			if err := b.engine.PlayOrder(matchID, playerID, card.InstanceID, ""); err != nil {
				continue
			}
		default:
			continue
		}
		view, err = b.engine.MatchView(matchID, playerID)
		if err != nil {
			return
		}
		me = seat(view, playerID)
		if me == nil {
			return
		}
	}
}

// useAbilities activates every ready manual ability with default targeting.
func (b *Greedy) useAbilities(matchID, playerID string) {
	view, err := b.engine.MatchView(matchID, playerID)
	if err != nil {
		return
	}
	me := seat(view, playerID)
	if me == nil {
		return
	}

	cards := make([]*game.CardView, 0, len(me.Battlefield)+1)
	for _, card := range me.Battlefield {
		if card != nil {
			cards = append(cards, card)
		}
	}
	if me.Headquarters != nil {
		cards = append(cards, me.Headquarters)
	}

	for _, card := range cards {
		for _, ability := range card.Abilities {
			if !ability.Ready {
				continue
			}
			if err := b.engine.ActivateAbility(matchID, playerID, card.InstanceID, ability.ID, ""); err != nil {
				b.logger.Debug("ability skipped",
					zap.String("ability", ability.ID),
					zap.String("reason", err.Error()),
				)
			}
		}
	}
}

// attackAll sends every unit that can still attack at the first enemy unit,
// or at the enemy headquarters once the field is clear.
func (b *Greedy) attackAll(matchID, playerID string) {
	for {
		view, err := b.engine.MatchView(matchID, playerID)
		if err != nil || view.WinnerID != "" {
			return
		}
		me, them := seat(view, playerID), opponentSeat(view, playerID)
		if me == nil || them == nil {
			return
		}

		attacker := nextAttacker(me)
		if attacker == nil {
			return
		}
		defender := firstDefender(them)
		if defender == "" {
			return
		}
		if _, err := b.engine.Attack(matchID, playerID, attacker.InstanceID, defender); err != nil {
			return
		}
	}
}

func seat(view game.MatchView, playerID string) *game.PlayerView {
	for i := range view.Players {
		if view.Players[i].ID == playerID {
			return &view.Players[i]
		}
	}
	return nil
}

func opponentSeat(view game.MatchView, playerID string) *game.PlayerView {
	for i := range view.Players {
		if view.Players[i].ID != playerID {
			return &view.Players[i]
		}
	}
	return nil
}

func firstEmptySlot(pv *game.PlayerView) int {
	for slot, card := range pv.Battlefield {
		if card == nil {
			return slot
		}
	}
	return -1
}

func nextAttacker(pv *game.PlayerView) *game.CardView {
	for _, card := range pv.Battlefield {
		if card != nil && !card.HasAttacked && !card.FaceDown && card.Attack > 0 {
			return card
		}
	}
	return nil
}

func firstDefender(pv *game.PlayerView) string {
	for _, card := range pv.Battlefield {
		if card != nil {
			return card.InstanceID
		}
	}
	if pv.Headquarters != nil {
		return pv.Headquarters.InstanceID
	}
	return ""
}
