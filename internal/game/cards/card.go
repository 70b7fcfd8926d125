package cards

import "fmt"

// Suit represents one of the four French card suits.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitNames = map[Suit]string{
	Spades:   "spades",
	Hearts:   "hearts",
	Diamonds: "diamonds",
	Clubs:    "clubs",
}

var suitSymbols = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUIT_%d", int(s))
}

// Symbol returns the one-rune suit symbol used in log messages.
func (s Suit) Symbol() string {
	if sym, ok := suitSymbols[s]; ok {
		return sym
	}
	return "?"
}

// Color represents the suit color, which keys resource categories
// (e.g. stone_black vs stone_red).
type Color int

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Color returns the color of the suit: spades and clubs are black,
// hearts and diamonds are red.
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// AllSuits lists every suit in catalog expansion order.
var AllSuits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank represents a card rank. Ranks 2-6 form the side deck,
// 7 through ace form the main deck.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankLabels = map[Rank]string{
	Two:   "2",
	Three: "3",
	Four:  "4",
	Five:  "5",
	Six:   "6",
	Seven: "7",
	Eight: "8",
	Nine:  "9",
	Ten:   "10",
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if label, ok := rankLabels[r]; ok {
		return label
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// Value returns the fixed point value of the rank: J=1, Q=2, A=3, K=4,
// numeric ranks count their face value.
func (r Rank) Value() int {
	switch r {
	case Jack:
		return 1
	case Queen:
		return 2
	case Ace:
		return 3
	case King:
		return 4
	default:
		return int(r)
	}
}

// DeckType returns which sub-deck the rank belongs to.
func (r Rank) DeckType() DeckType {
	if r <= Six {
		return SideDeck
	}
	return MainDeck
}

// MainRanks lists the ranks of the main sub-deck (7 through ace).
var MainRanks = []Rank{Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// SideRanks lists the ranks of the side sub-deck (2 through 6).
var SideRanks = []Rank{Two, Three, Four, Five, Six}

// DeckType distinguishes the two disjoint sub-decks.
type DeckType int

const (
	MainDeck DeckType = iota
	SideDeck
)

func (d DeckType) String() string {
	if d == SideDeck {
		return "side"
	}
	return "main"
}

// Location tracks where a card currently lives. A card is in exactly
// one location at a time.
type Location int

const (
	InDeck Location = iota
	InHand
	PartOfFigure
)

func (l Location) String() string {
	switch l {
	case InDeck:
		return "IN_DECK"
	case InHand:
		return "IN_HAND"
	case PartOfFigure:
		return "PART_OF_FIGURE"
	default:
		return "UNKNOWN"
	}
}

// Card is a single physical card in a game's card pool.
type Card struct {
	ID       string
	Suit     Suit
	Rank     Rank
	Deck     DeckType
	Location Location
	// Position orders in-deck cards for draws (lowest first).
	// Zero means the card has no position and the sub-deck needs a
	// shuffle before it becomes drawable in a defined order.
	Position int
	OwnerID  string
	FigureID string
}

// Value returns the card's point value.
func (c *Card) Value() int {
	return c.Rank.Value()
}

// Label returns a short human-readable form such as "J♠".
func (c *Card) Label() string {
	return c.Rank.String() + c.Suit.Symbol()
}

func (c *Card) String() string {
	return c.Label()
}
