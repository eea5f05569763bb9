package engine

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck signals a draw from an empty chance deck. The deck recycles
// every card except held release cards, so this is a configuration error.
var ErrEmptyDeck = errors.New("chance deck is empty")

// CardKind identifies the effect of a chance card
type CardKind string

const (
	CardGoToJail        CardKind = "go_to_jail"
	CardRelease         CardKind = "release"
	CardPay             CardKind = "pay"
	CardReceive         CardKind = "receive"
	CardReceiveFromEach CardKind = "receive_from_each"
)

// ValidCardKind reports whether k is a known card kind
func ValidCardKind(k CardKind) bool {
	switch k {
	case CardGoToJail, CardRelease, CardPay, CardReceive, CardReceiveFromEach:
		return true
	}
	return false
}

// Card is an immutable chance card. DisplayID only maps the card to artwork.
type Card struct {
	Kind      CardKind `json:"kind"`
	Value     int      `json:"value"`
	DisplayID int      `json:"display_id"`
}

// Deck is a queue of chance cards. Drawn cards go to the back, except
// release cards which stay with the player until returned.
type Deck struct {
	cards []Card
}

// NewDeck creates a deck holding cards in the given order
func NewDeck(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Len returns the number of cards in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the deck in draw order
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Draw removes the front card and re-enqueues it unless it is a release card
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	if card.Kind != CardRelease {
		d.cards = append(d.cards, card)
	}
	return card, nil
}

// ReturnReleaseCard puts a release card back at the bottom of the deck
func (d *Deck) ReturnReleaseCard() {
	d.cards = append(d.cards, Card{Kind: CardRelease, DisplayID: releaseCardID})
}

// Shuffle reorders the deck with the given source
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

const releaseCardID = 3

// StandardDeck returns the 30 chance cards in printed order
func StandardDeck() []Card {
	return []Card{
		{Kind: CardGoToJail, DisplayID: 1},
		{Kind: CardGoToJail, DisplayID: 2},
		{Kind: CardRelease, DisplayID: releaseCardID},
		{Kind: CardReceiveFromEach, Value: 50, DisplayID: 4},
		{Kind: CardReceive, Value: 25, DisplayID: 5},
		{Kind: CardReceive, Value: 50, DisplayID: 6},
		{Kind: CardReceive, Value: 100, DisplayID: 7},
		{Kind: CardReceive, Value: 100, DisplayID: 8},
		{Kind: CardReceive, Value: 150, DisplayID: 9},
		{Kind: CardReceive, Value: 150, DisplayID: 10},
		{Kind: CardReceive, Value: 200, DisplayID: 11},
		{Kind: CardReceive, Value: 200, DisplayID: 12},
		{Kind: CardReceive, Value: 45, DisplayID: 13},
		{Kind: CardReceive, Value: 80, DisplayID: 14},
		{Kind: CardReceive, Value: 100, DisplayID: 15},
		{Kind: CardReceive, Value: 20, DisplayID: 16},
		{Kind: CardReceive, Value: 50, DisplayID: 17},
		{Kind: CardPay, Value: 15, DisplayID: 18},
		{Kind: CardPay, Value: 25, DisplayID: 19},
		{Kind: CardPay, Value: 40, DisplayID: 20},
		{Kind: CardPay, Value: 45, DisplayID: 21},
		{Kind: CardPay, Value: 50, DisplayID: 22},
		{Kind: CardPay, Value: 50, DisplayID: 23},
		{Kind: CardPay, Value: 100, DisplayID: 24},
		{Kind: CardPay, Value: 100, DisplayID: 25},
		{Kind: CardPay, Value: 150, DisplayID: 26},
		{Kind: CardPay, Value: 200, DisplayID: 27},
		{Kind: CardPay, Value: 30, DisplayID: 28},
		{Kind: CardPay, Value: 75, DisplayID: 29},
		{Kind: CardPay, Value: 300, DisplayID: 30},
	}
}
