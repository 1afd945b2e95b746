package game

import "github.com/frontline-tcg/frontline-server/internal/catalog"

// AbilityView is the client-facing shape of one ability on a card in play.
type AbilityView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Trigger       string `json:"trigger"`
	OperationCost int    `json:"operation_cost"`
	Ready         bool   `json:"ready"`
}

// CardView is the client-facing shape of one card instance. Face-down cards
// belonging to the opponent are masked: only the instance ID, slot and the
// face-down flag survive.
type CardView struct {
	InstanceID    string        `json:"instance_id"`
	TypeID        string        `json:"type_id,omitempty"`
	Name          string        `json:"name,omitempty"`
	Category      string        `json:"category,omitempty"`
	Faction       string        `json:"faction,omitempty"`
	DeployCost    int           `json:"deploy_cost"`
	Attack        int           `json:"attack"`
	Defense       int           `json:"defense"`
	MaxDefense    int           `json:"max_defense"`
	CounterAttack int           `json:"counter_attack"`
	FaceDown      bool          `json:"face_down"`
	HasAttacked   bool          `json:"has_attacked"`
	Abilities     []AbilityView `json:"abilities,omitempty"`
}

// PlayerView is one side of the board as seen by a particular viewer. The
// opponent's hand is reduced to a count.
type PlayerView struct {
	ID           string      `json:"id"`
	Faction      string      `json:"faction"`
	Credits      int         `json:"credits"`
	DeckCount    int         `json:"deck_count"`
	HandCount    int         `json:"hand_count"`
	Hand         []CardView  `json:"hand,omitempty"`
	Battlefield  []*CardView `json:"battlefield"`
	Discard      []CardView  `json:"discard"`
	Headquarters *CardView   `json:"headquarters,omitempty"`
}

// MatchView is a consistent snapshot of a match from one viewer's seat.
// Spectators (viewer not in the match) see both hands masked.
type MatchView struct {
	MatchID       string       `json:"match_id"`
	Turn          int          `json:"turn"`
	Phase         string       `json:"phase"`
	CurrentPlayer string       `json:"current_player"`
	WinnerID      string       `json:"winner_id,omitempty"`
	Players       []PlayerView `json:"players"`
}

// MatchView renders the match for the given viewer.
func (e *Engine) MatchView(matchID, viewerID string) (MatchView, error) {
	m, err := e.match(matchID)
	if err != nil {
		return MatchView{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	view := MatchView{
		MatchID:       m.id,
		Turn:          m.turns.TurnNumber(),
		Phase:         m.turns.CurrentPhase().String(),
		CurrentPlayer: m.turns.CurrentPlayer(),
	}
	if m.result != nil {
		view.WinnerID = m.result.WinnerID
	}

	for _, seat := range m.order {
		p := m.players[seat]
		own := seat == viewerID

		pv := PlayerView{
			ID:          p.ID,
			Faction:     p.Faction,
			Credits:     p.Credits,
			DeckCount:   len(p.Deck),
			HandCount:   len(p.Hand),
			Battlefield: make([]*CardView, BattlefieldSlots),
		}
		if own {
			for _, card := range p.Hand {
				cv := cardView(card, true)
				pv.Hand = append(pv.Hand, cv)
			}
		}
		for slot, card := range p.Battlefield {
			if card == nil {
				continue
			}
			cv := cardView(card, own)
			pv.Battlefield[slot] = &cv
		}
		for _, card := range p.Discard {
			// The discard pile is public information.
			pv.Discard = append(pv.Discard, cardView(card, true))
		}
		if p.Headquarters != nil {
			cv := cardView(p.Headquarters, own)
			pv.Headquarters = &cv
		}
		view.Players = append(view.Players, pv)
	}
	return view, nil
}

func cardView(card *Card, revealed bool) CardView {
	if card.FaceDown && !revealed {
		return CardView{
			InstanceID: card.InstanceID,
			FaceDown:   true,
		}
	}
	cv := CardView{
		InstanceID:    card.InstanceID,
		TypeID:        card.Type.ID,
		Name:          card.Type.Name,
		Category:      string(card.Type.Category),
		Faction:       card.Type.Faction,
		DeployCost:    card.Type.DeployCost,
		Attack:        card.EffectiveAttack(),
		Defense:       card.CurrentDefense,
		MaxDefense:    card.EffectiveMaxDefense(),
		CounterAttack: card.EffectiveCounterAttack(),
		FaceDown:      card.FaceDown,
		HasAttacked:   card.HasAttacked,
	}
	for _, ability := range card.Abilities {
		cv.Abilities = append(cv.Abilities, AbilityView{
			ID:            ability.Type.ID,
			Name:          ability.Type.Name,
			Trigger:       string(ability.Type.Trigger),
			OperationCost: ability.Type.OperationCost,
			Ready:         ability.Type.Trigger == catalog.TriggerManual && ability.OffCooldown() && ability.UsesAvailable(),
		})
	}
	return cv
}
