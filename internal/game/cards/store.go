package cards

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DeckExhaustedError reports that a sub-deck holds fewer cards than an
// exact draw requested.
type DeckExhaustedError struct {
	Deck      DeckType
	Requested int
	Available int
}

func (e *DeckExhaustedError) Error() string {
	return fmt.Sprintf("%s deck exhausted: requested %d, %d available", e.Deck, e.Requested, e.Available)
}

// Store is the authoritative card pool for one game. It tracks every
// card's location (deck, hand, figure) and the draw order of the two
// sub-decks. The store itself does no locking; the engine serializes
// access per game.
type Store struct {
	gameID string
	cards  map[string]*Card
	order  []string // creation order, for stable iteration
	rng    *rand.Rand
	// needsShuffle marks a sub-deck whose in-deck cards lost their
	// positions (figure destruction) and must be reshuffled before
	// the next draw.
	needsShuffle map[DeckType]bool
}

// NewStore creates the card pool for a game: two copies of every
// suit/rank combination in each sub-deck, all starting in-deck without
// positions. A nil rng falls back to a time-seeded source.
func NewStore(gameID string, rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Store{
		gameID:       gameID,
		cards:        make(map[string]*Card),
		order:        make([]string, 0, 104),
		rng:          rng,
		needsShuffle: make(map[DeckType]bool),
	}

	add := func(suit Suit, rank Rank, deck DeckType) {
		card := &Card{
			ID:       uuid.New().String(),
			Suit:     suit,
			Rank:     rank,
			Deck:     deck,
			Location: InDeck,
		}
		s.cards[card.ID] = card
		s.order = append(s.order, card.ID)
	}

	for _, suit := range AllSuits {
		for _, rank := range MainRanks {
			add(suit, rank, MainDeck)
			add(suit, rank, MainDeck)
		}
		for _, rank := range SideRanks {
			add(suit, rank, SideDeck)
			add(suit, rank, SideDeck)
		}
	}

	return s
}

// GameID returns the owning game's ID.
func (s *Store) GameID() string {
	return s.gameID
}

// Card looks up a card by ID.
func (s *Store) Card(id string) (*Card, bool) {
	card, ok := s.cards[id]
	return card, ok
}

// Cards returns every card in the pool in creation order.
func (s *Store) Cards() []*Card {
	all := make([]*Card, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.cards[id])
	}
	return all
}

// inDeck returns the in-deck cards of a sub-deck in creation order.
func (s *Store) inDeck(deck DeckType) []*Card {
	var result []*Card
	for _, id := range s.order {
		card := s.cards[id]
		if card.Deck == deck && card.Location == InDeck {
			result = append(result, card)
		}
	}
	return result
}

// InDeckCount returns how many cards remain in a sub-deck.
func (s *Store) InDeckCount(deck DeckType) int {
	return len(s.inDeck(deck))
}

// Shuffle assigns the in-deck cards of a sub-deck a random permutation
// of positions 1..N.
func (s *Store) Shuffle(deck DeckType) {
	inDeck := s.inDeck(deck)
	perm := s.rng.Perm(len(inDeck))
	for i, card := range inDeck {
		card.Position = perm[i] + 1
	}
	s.needsShuffle[deck] = false
}

// ShuffleAll shuffles both sub-decks.
func (s *Store) ShuffleAll() {
	s.Shuffle(MainDeck)
	s.Shuffle(SideDeck)
}

// Draw moves up to n of the lowest-position cards of a sub-deck into a
// player's hand. It returns however many cards were available; callers
// that need the full count use DrawExact.
func (s *Store) Draw(playerID string, n int, deck DeckType) []*Card {
	if n <= 0 {
		return nil
	}
	if s.needsShuffle[deck] {
		s.Shuffle(deck)
	}

	inDeck := s.inDeck(deck)
	sort.SliceStable(inDeck, func(i, j int) bool {
		return inDeck[i].Position < inDeck[j].Position
	})

	if n > len(inDeck) {
		n = len(inDeck)
	}

	drawn := inDeck[:n]
	for _, card := range drawn {
		card.Location = InHand
		card.OwnerID = playerID
		card.Position = 0
	}
	return drawn
}

// DrawExact draws exactly n cards or fails with DeckExhaustedError
// without moving any card.
func (s *Store) DrawExact(playerID string, n int, deck DeckType) ([]*Card, error) {
	if available := s.InDeckCount(deck); available < n {
		return nil, &DeckExhaustedError{Deck: deck, Requested: n, Available: available}
	}
	return s.Draw(playerID, n, deck), nil
}

// Deal draws the opening hands for every player: nMain main cards and
// nSide side cards each.
func (s *Store) Deal(playerIDs []string, nMain, nSide int) error {
	needMain := nMain * len(playerIDs)
	needSide := nSide * len(playerIDs)
	if got := s.InDeckCount(MainDeck); got < needMain {
		return &DeckExhaustedError{Deck: MainDeck, Requested: needMain, Available: got}
	}
	if got := s.InDeckCount(SideDeck); got < needSide {
		return &DeckExhaustedError{Deck: SideDeck, Requested: needSide, Available: got}
	}
	for _, playerID := range playerIDs {
		s.Draw(playerID, nMain, MainDeck)
		s.Draw(playerID, nSide, SideDeck)
	}
	return nil
}

// maxPosition returns the highest position among a sub-deck's in-deck cards.
func (s *Store) maxPosition(deck DeckType) int {
	max := 0
	for _, card := range s.inDeck(deck) {
		if card.Position > max {
			max = card.Position
		}
	}
	return max
}

// ReturnToDeck puts cards back at the end of their sub-decks in input
// order, preserving discard-pile ordering. Ownership and figure
// membership are cleared.
func (s *Store) ReturnToDeck(returned []*Card) {
	next := map[DeckType]int{
		MainDeck: s.maxPosition(MainDeck) + 1,
		SideDeck: s.maxPosition(SideDeck) + 1,
	}
	for _, card := range returned {
		card.Location = InDeck
		card.OwnerID = ""
		card.FigureID = ""
		card.Position = next[card.Deck]
		next[card.Deck]++
	}
}

// ReturnForReshuffle puts cards back with their positions cleared and
// marks the affected sub-decks for a reshuffle before the next draw.
// Figure destruction uses this path; ordinary discards use ReturnToDeck.
func (s *Store) ReturnForReshuffle(returned []*Card) {
	for _, card := range returned {
		card.Location = InDeck
		card.OwnerID = ""
		card.FigureID = ""
		card.Position = 0
		s.needsShuffle[card.Deck] = true
	}
}

// Hand returns a player's hand split into main and side cards, in
// creation order.
func (s *Store) Hand(playerID string) (main, side []*Card) {
	for _, id := range s.order {
		card := s.cards[id]
		if card.Location != InHand || card.OwnerID != playerID {
			continue
		}
		if card.Deck == MainDeck {
			main = append(main, card)
		} else {
			side = append(side, card)
		}
	}
	return main, side
}

// HandAll returns a player's full hand in creation order.
func (s *Store) HandAll(playerID string) []*Card {
	main, side := s.Hand(playerID)
	return append(main, side...)
}

// FigureCards returns the cards committed to a figure.
func (s *Store) FigureCards(figureID string) []*Card {
	var result []*Card
	for _, id := range s.order {
		card := s.cards[id]
		if card.Location == PartOfFigure && card.FigureID == figureID {
			result = append(result, card)
		}
	}
	return result
}
