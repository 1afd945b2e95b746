package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayer(t *testing.T, deckSize int) *Player {
	t.Helper()
	cat := testCatalog(t)
	cardType, ok := cat.Card("unit_grunt")
	require.True(t, ok)

	p := &Player{ID: "alice", Faction: "coalition"}
	for i := 0; i < deckSize; i++ {
		p.Deck = append(p.Deck, newCard(cardType, nil, p.ID))
	}
	return p
}

func TestDrawCardFromEmptyDeck(t *testing.T) {
	p := testPlayer(t, 0)
	_, err := p.DrawCard(false)
	assert.True(t, IsCode(err, CodeDeckEmpty))
}

func TestDrawCardIntoFullHandLeavesDeckUntouched(t *testing.T) {
	p := testPlayer(t, HandLimit+3)
	for i := 0; i < HandLimit; i++ {
		_, err := p.DrawCard(false)
		require.NoError(t, err)
	}
	require.Len(t, p.Hand, HandLimit)

	_, err := p.DrawCard(false)
	assert.True(t, IsCode(err, CodeHandFull))
	assert.Len(t, p.Deck, 3, "rejected draw must not consume the deck")
	assert.Len(t, p.Hand, HandLimit)
}

func TestDeployCardPaysCost(t *testing.T) {
	p := testPlayer(t, 1)
	card, err := p.DrawCard(false)
	require.NoError(t, err)

	p.Credits = 3
	require.NoError(t, p.DeployCard(card, 2))
	assert.Equal(t, 1, p.Credits, "deploy cost 2 paid from 3 credits")
	assert.Same(t, card, p.Battlefield[2])
	assert.Empty(t, p.Hand)
}

func TestDeployCardRejections(t *testing.T) {
	p := testPlayer(t, 2)
	first, err := p.DrawCard(false)
	require.NoError(t, err)
	second, err := p.DrawCard(false)
	require.NoError(t, err)
	p.Credits = 9

	require.NoError(t, p.DeployCard(first, 0))

	tests := []struct {
		name string
		run  func() error
		code Code
	}{
		{"occupied slot", func() error { return p.DeployCard(second, 0) }, CodeSlotOccupied},
		{"negative slot", func() error { return p.DeployCard(second, -1) }, CodeInvalidSlot},
		{"slot past the edge", func() error { return p.DeployCard(second, BattlefieldSlots) }, CodeInvalidSlot},
		{"card not in hand", func() error { return p.DeployCard(first, 1) }, CodeCardNotInHand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsCode(tt.run(), tt.code))
		})
	}

	p.Credits = 1
	err = p.DeployCard(second, 1)
	assert.True(t, IsCode(err, CodeInsufficientCredits))
	assert.True(t, p.HoldsInHand(second), "failed deploy leaves the hand intact")
}

func TestCreditsCap(t *testing.T) {
	p := testPlayer(t, 0)
	assert.Equal(t, 7, p.AddCredits(7))
	assert.Equal(t, 2, p.AddCredits(5), "income past the cap is forfeit")
	assert.Equal(t, MaxCredits, p.Credits)
	assert.Equal(t, 0, p.AddCredits(1))
}

func TestSpendCreditsNoMutationOnFailure(t *testing.T) {
	p := testPlayer(t, 0)
	p.Credits = 4

	assert.False(t, p.SpendCredits(5))
	assert.Equal(t, 4, p.Credits)
	assert.True(t, p.SpendCredits(4))
	assert.Equal(t, 0, p.Credits)
}

func TestReturnToHandOverflowGoesToDiscard(t *testing.T) {
	cat := testCatalog(t)
	cardType, ok := cat.Card("unit_grunt")
	require.True(t, ok)

	p := &Player{ID: "alice"}
	for i := 0; i < HandLimit; i++ {
		p.Hand = append(p.Hand, newCard(cardType, nil, p.ID))
	}
	returned := newCard(cardType, nil, p.ID)
	p.Battlefield[0] = returned
	require.True(t, p.RemoveFromBattlefield(returned))

	assert.False(t, p.returnToHand(returned), "full hand diverts the card")
	assert.Len(t, p.Hand, HandLimit)
	require.Len(t, p.Discard, 1)
	assert.Same(t, returned, p.Discard[0])
}

func TestSlotHelpers(t *testing.T) {
	cat := testCatalog(t)
	cardType, ok := cat.Card("unit_grunt")
	require.True(t, ok)

	p := &Player{ID: "alice"}
	cards := make([]*Card, 3)
	for i, slot := range []int{0, 2, 4} {
		cards[i] = newCard(cardType, nil, p.ID)
		p.Battlefield[slot] = cards[i]
	}

	assert.Equal(t, 2, p.SlotOf(cards[1]))
	assert.Equal(t, -1, p.SlotOf(newCard(cardType, nil, p.ID)))
	assert.Equal(t, 1, p.FirstEmptySlot())
	assert.Len(t, p.BattlefieldCards(), 3)

	require.True(t, p.RemoveFromBattlefield(cards[0]))
	assert.Equal(t, 0, p.FirstEmptySlot())
	assert.False(t, p.RemoveFromBattlefield(cards[0]), "double removal")
}

func TestTriggerOrderIsDeterministic(t *testing.T) {
	cat := testCatalog(t)
	cardType, ok := cat.Card("unit_grunt")
	require.True(t, ok)
	hqType, ok := cat.Card("hq_alpha")
	require.True(t, ok)

	p := &Player{ID: "alice"}
	p.Headquarters = newCard(hqType, nil, p.ID)
	p.Battlefield[1] = newCard(cardType, nil, p.ID)
	p.Battlefield[3] = newCard(cardType, nil, p.ID)
	p.Hand = append(p.Hand, newCard(cardType, nil, p.ID))

	ordered := p.allCardsInTriggerOrder()
	require.Len(t, ordered, 4)
	assert.Same(t, p.Battlefield[1], ordered[0])
	assert.Same(t, p.Battlefield[3], ordered[1])
	assert.Same(t, p.Headquarters, ordered[2])
	assert.Same(t, p.Hand[0], ordered[3])
}

func TestBuildDeckMaterializesInstances(t *testing.T) {
	cat := testCatalog(t)
	deck, ok := cat.Deck("deck_alpha")
	require.True(t, ok)

	cards, hq := buildDeck(cat, deck, "alice")
	assert.Len(t, cards, len(deck.Cards))
	require.NotNil(t, hq)
	assert.Equal(t, "hq_alpha", hq.Type.ID)
	assert.Len(t, hq.Abilities, 1)

	seen := make(map[string]bool)
	for _, card := range cards {
		assert.Equal(t, "alice", card.OwnerID)
		assert.False(t, seen[card.InstanceID], fmt.Sprintf("duplicate instance %s", card.InstanceID))
		seen[card.InstanceID] = true
	}
}
