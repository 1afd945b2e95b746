package game

import "github.com/frontline-tcg/frontline-server/internal/catalog"

// Fixed rules constants. These are invariants of the game, not tunables.
const (
	// BattlefieldSlots is the number of fixed battlefield positions per player.
	BattlefieldSlots = 5
	// MaxCredits caps the spendable resource.
	MaxCredits = 9
	// HandLimit caps the hand size.
	HandLimit = 10
)

// Player owns one side's zones and resources. All zone mutation goes through
// Player methods; nothing outside this package touches the slices directly.
type Player struct {
	ID      string
	Faction string
	Credits int

	Hand         []*Card
	Battlefield  [BattlefieldSlots]*Card
	Deck         []*Card // index 0 is the top
	Discard      []*Card // newest first
	Headquarters *Card
}

// DrawCard moves the top deck card into the hand. The command is atomic: a
// full hand rejects the draw and leaves the deck untouched.
func (p *Player) DrawCard(faceDown bool) (*Card, error) {
	if len(p.Deck) == 0 {
		return nil, validationErr(CodeDeckEmpty, "player %s has no cards left", p.ID)
	}
	if len(p.Hand) >= HandLimit {
		return nil, validationErr(CodeHandFull, "player %s hand is full", p.ID)
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	card.FaceDown = faceDown
	p.Hand = append(p.Hand, card)
	return card, nil
}

// DeployCard places a hand card onto the battlefield slot, paying its deploy
// cost. On failure nothing is mutated.
func (p *Player) DeployCard(card *Card, slot int) error {
	if slot < 0 || slot >= BattlefieldSlots {
		return validationErr(CodeInvalidSlot, "slot %d out of range", slot)
	}
	if p.Battlefield[slot] != nil {
		return validationErr(CodeSlotOccupied, "slot %d is occupied", slot)
	}
	if !p.HoldsInHand(card) {
		return validationErr(CodeCardNotInHand, "card %s is not in %s's hand", card.InstanceID, p.ID)
	}
	if p.Credits < card.Type.DeployCost {
		return validationErr(CodeInsufficientCredits, "need %d credits, have %d", card.Type.DeployCost, p.Credits)
	}

	p.Credits -= card.Type.DeployCost
	p.removeFromHand(card)
	p.Battlefield[slot] = card
	return nil
}

// SpendCredits deducts amount if affordable; returns false with no mutation
// otherwise.
func (p *Player) SpendCredits(amount int) bool {
	if amount < 0 || p.Credits < amount {
		return false
	}
	p.Credits -= amount
	return true
}

// AddCredits raises credits, clamped to the cap. Negative amounts are
// ignored.
func (p *Player) AddCredits(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := p.Credits
	p.Credits += amount
	if p.Credits > MaxCredits {
		p.Credits = MaxCredits
	}
	return p.Credits - before
}

// HoldsInHand reports whether the card is in this player's hand.
func (p *Player) HoldsInHand(card *Card) bool {
	for _, c := range p.Hand {
		if c == card {
			return true
		}
	}
	return false
}

// DiscardFromHand moves a hand card to the front of the discard pile.
// Returns false if the card is not in hand.
func (p *Player) DiscardFromHand(card *Card) bool {
	if !p.HoldsInHand(card) {
		return false
	}
	p.removeFromHand(card)
	p.addToDiscard(card)
	return true
}

// RemoveFromBattlefield vacates the card's slot. Returns false if the card
// is not on this battlefield. The caller decides the destination zone.
func (p *Player) RemoveFromBattlefield(card *Card) bool {
	for i, c := range p.Battlefield {
		if c == card {
			p.Battlefield[i] = nil
			return true
		}
	}
	return false
}

// SlotOf returns the battlefield slot holding card, or -1.
func (p *Player) SlotOf(card *Card) int {
	for i, c := range p.Battlefield {
		if c == card {
			return i
		}
	}
	return -1
}

// FirstEmptySlot returns the lowest vacant slot index, or -1 if none.
func (p *Player) FirstEmptySlot() int {
	for i, c := range p.Battlefield {
		if c == nil {
			return i
		}
	}
	return -1
}

// BattlefieldCards returns the occupied slots in slot order.
func (p *Player) BattlefieldCards() []*Card {
	var cards []*Card
	for _, c := range p.Battlefield {
		if c != nil {
			cards = append(cards, c)
		}
	}
	return cards
}

func (p *Player) removeFromHand(card *Card) {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return
		}
	}
}

func (p *Player) addToDiscard(card *Card) {
	p.Discard = append([]*Card{card}, p.Discard...)
}

// returnToHand puts a battlefield card back into the hand, or into the
// discard pile when the hand is full. Effect resolution cannot fail halfway,
// so the overflow destination is fixed rather than an error.
func (p *Player) returnToHand(card *Card) bool {
	if len(p.Hand) >= HandLimit {
		p.addToDiscard(card)
		return false
	}
	p.Hand = append(p.Hand, card)
	return true
}

// allCardsInTriggerOrder yields this player's abilities' owners in the
// deterministic trigger-detection order: battlefield slots, headquarters,
// then hand order.
func (p *Player) allCardsInTriggerOrder() []*Card {
	cards := make([]*Card, 0, BattlefieldSlots+1+len(p.Hand))
	cards = append(cards, p.BattlefieldCards()...)
	if p.Headquarters != nil {
		cards = append(cards, p.Headquarters)
	}
	cards = append(cards, p.Hand...)
	return cards
}

// canAfford reports whether the player can pay an operation cost.
func (p *Player) canAfford(cost int) bool {
	return p.Credits >= cost
}

// buildDeck materializes deck instances from a deck list. Cards are created
// in list order; the match controller shuffles afterwards.
func buildDeck(cat *catalog.Catalog, deck *catalog.Deck, ownerID string) ([]*Card, *Card) {
	instances := make([]*Card, 0, len(deck.Cards))
	for _, cardID := range deck.Cards {
		cardType, _ := cat.Card(cardID)
		instances = append(instances, newCard(cardType, resolveAbilities(cat, cardType), ownerID))
	}
	hqType, _ := cat.Card(deck.HeadquartersID)
	hq := newCard(hqType, resolveAbilities(cat, hqType), ownerID)
	return instances, hq
}

func resolveAbilities(cat *catalog.Catalog, cardType *catalog.CardType) []*catalog.AbilityType {
	var abilityTypes []*catalog.AbilityType
	for _, id := range cardType.AbilityIDs {
		if abilityType, ok := cat.Ability(id); ok {
			abilityTypes = append(abilityTypes, abilityType)
		}
	}
	return abilityTypes
}
