package cards

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestStore() *Store {
	return NewStore("game-1", rand.New(rand.NewSource(42)))
}

func TestNewStoreCardUniverse(t *testing.T) {
	s := newTestStore()

	if got := s.InDeckCount(MainDeck); got != 64 {
		t.Fatalf("expected 64 main cards, got %d", got)
	}
	if got := s.InDeckCount(SideDeck); got != 40 {
		t.Fatalf("expected 40 side cards, got %d", got)
	}

	// Two copies of every suit/rank pairing.
	counts := make(map[string]int)
	for _, card := range s.Cards() {
		counts[card.Label()]++
		if card.Location != InDeck {
			t.Fatalf("card %s should start in deck, got %s", card.Label(), card.Location)
		}
		if card.Position != 0 {
			t.Fatalf("card %s should start without a position", card.Label())
		}
	}
	for label, n := range counts {
		if n != 2 {
			t.Fatalf("expected 2 copies of %s, got %d", label, n)
		}
	}
}

func TestRankValues(t *testing.T) {
	cases := []struct {
		rank Rank
		want int
	}{
		{Jack, 1}, {Queen, 2}, {Ace, 3}, {King, 4},
		{Two, 2}, {Seven, 7}, {Ten, 10},
	}
	for _, tc := range cases {
		if got := tc.rank.Value(); got != tc.want {
			t.Fatalf("rank %s: expected value %d, got %d", tc.rank, tc.want, got)
		}
	}
}

func TestShuffleAssignsPermutation(t *testing.T) {
	s := newTestStore()
	s.Shuffle(MainDeck)

	seen := make(map[int]bool)
	for _, card := range s.Cards() {
		if card.Deck != MainDeck {
			continue
		}
		if card.Position < 1 || card.Position > 64 {
			t.Fatalf("position %d out of range", card.Position)
		}
		if seen[card.Position] {
			t.Fatalf("duplicate position %d", card.Position)
		}
		seen[card.Position] = true
	}
}

func TestDrawLowestPositionsFirst(t *testing.T) {
	s := newTestStore()
	s.ShuffleAll()

	drawn := s.Draw("alice", 3, MainDeck)
	if len(drawn) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(drawn))
	}
	for _, card := range drawn {
		if card.Location != InHand || card.OwnerID != "alice" {
			t.Fatalf("drawn card %s not in alice's hand", card.Label())
		}
		if card.Position != 0 {
			t.Fatalf("drawn card %s kept position %d", card.Label(), card.Position)
		}
	}

	// The lowest remaining position must be higher than 3.
	for _, card := range s.Cards() {
		if card.Deck == MainDeck && card.Location == InDeck && card.Position <= 3 {
			t.Fatalf("position %d should have been drawn", card.Position)
		}
	}
}

func TestDrawDegradesOnExhaustion(t *testing.T) {
	s := newTestStore()
	s.ShuffleAll()
	s.Draw("alice", 40, SideDeck)

	if got := s.InDeckCount(SideDeck); got != 0 {
		t.Fatalf("expected empty side deck, got %d", got)
	}

	// Drawing from an empty deck returns nothing, no error.
	drawn := s.Draw("bob", 2, SideDeck)
	if len(drawn) != 0 {
		t.Fatalf("expected 0 cards from empty deck, got %d", len(drawn))
	}
	if got := s.InDeckCount(SideDeck); got != 0 {
		t.Fatalf("side deck count changed to %d", got)
	}

	_, err := s.DrawExact("bob", 2, SideDeck)
	var exhausted *DeckExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected DeckExhaustedError, got %v", err)
	}
	if exhausted.Requested != 2 || exhausted.Available != 0 {
		t.Fatalf("unexpected exhaustion detail: %+v", exhausted)
	}
}

func TestDealSplitsHands(t *testing.T) {
	s := newTestStore()
	s.ShuffleAll()

	if err := s.Deal([]string{"alice", "bob"}, 5, 4); err != nil {
		t.Fatalf("deal failed: %v", err)
	}

	for _, player := range []string{"alice", "bob"} {
		main, side := s.Hand(player)
		if len(main) != 5 || len(side) != 4 {
			t.Fatalf("%s: expected 5 main / 4 side, got %d/%d", player, len(main), len(side))
		}
	}
	if got := s.InDeckCount(MainDeck); got != 54 {
		t.Fatalf("expected 54 main cards left, got %d", got)
	}
	if got := s.InDeckCount(SideDeck); got != 32 {
		t.Fatalf("expected 32 side cards left, got %d", got)
	}
}

func TestReturnToDeckAppendsAtEnd(t *testing.T) {
	s := newTestStore()
	s.ShuffleAll()
	drawn := s.Draw("alice", 2, MainDeck)
	maxBefore := s.maxPosition(MainDeck)

	s.ReturnToDeck(drawn)

	if drawn[0].Position != maxBefore+1 || drawn[1].Position != maxBefore+2 {
		t.Fatalf("expected positions %d,%d, got %d,%d",
			maxBefore+1, maxBefore+2, drawn[0].Position, drawn[1].Position)
	}
	for _, card := range drawn {
		if card.Location != InDeck || card.OwnerID != "" {
			t.Fatalf("returned card %s not back in deck", card.Label())
		}
	}
}

func TestReturnForReshuffleClearsPositions(t *testing.T) {
	s := newTestStore()
	s.ShuffleAll()
	drawn := s.Draw("alice", 2, MainDeck)

	s.ReturnForReshuffle(drawn)

	for _, card := range drawn {
		if card.Position != 0 {
			t.Fatalf("expected cleared position, got %d", card.Position)
		}
		if card.Location != InDeck {
			t.Fatalf("card %s not back in deck", card.Label())
		}
	}

	// The next draw reshuffles: every in-deck main card must hold a
	// valid position afterwards.
	s.Draw("bob", 1, MainDeck)
	for _, card := range s.Cards() {
		if card.Deck == MainDeck && card.Location == InDeck && card.Position == 0 {
			t.Fatalf("card %s missing position after reshuffle", card.Label())
		}
	}
}

func TestCardConservation(t *testing.T) {
	s := newTestStore()
	s.ShuffleAll()
	s.Deal([]string{"alice", "bob"}, 5, 4)
	s.Draw("alice", 3, MainDeck)
	returned := s.HandAll("bob")[:2]
	s.ReturnToDeck(returned)

	total := 0
	for _, card := range s.Cards() {
		switch card.Location {
		case InDeck, InHand, PartOfFigure:
			total++
		default:
			t.Fatalf("card %s in unknown location", card.Label())
		}
	}
	if total != 104 {
		t.Fatalf("expected 104 cards in the universe, got %d", total)
	}
}
