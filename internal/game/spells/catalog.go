package spells

import (
	"fmt"

	"github.com/nepalkings/kings-server/internal/game/cards"
)

// SpellType classifies a spell family.
type SpellType int

const (
	Greed SpellType = iota
	Enchantment
	Tactics
)

func (t SpellType) String() string {
	switch t {
	case Greed:
		return "greed"
	case Enchantment:
		return "enchantment"
	case Tactics:
		return "tactics"
	default:
		return "UNKNOWN"
	}
}

// Spell family names. The engine routes effect execution on these.
const (
	CardFlood      = "Card Flood"
	SideHustle     = "Side Hustle"
	RoyalDecree    = "Royal Decree"
	DumpCards      = "Dump Cards"
	ForcedDeal     = "Forced Deal"
	AllSeeingEye   = "All Seeing Eye"
	InfiniteHammer = "Infinite Hammer"
	Explosion      = "Explosion"
	Poison         = "Poison"
	HealthBoost    = "Health Boost"
	Ceasefire      = "Ceasefire"
	CivilWar       = "Civil War"
	PeasantWar     = "Peasant War"
	Blitzkrieg     = "Blitzkrieg"
	InvaderSwap    = "Invader Swap"
	Countermagic   = "Countermagic"
)

// CardSpec names one concrete card a spell variant consumes.
type CardSpec struct {
	Suit cards.Suit
	Rank cards.Rank
}

// Label returns the short card form, e.g. "3♥".
func (c CardSpec) Label() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Family is the immutable definition of a spell: its type, counter
// rules, targeting, and one or more interchangeable card combinations.
type Family struct {
	Name        string
	Type        SpellType
	Description string
	Counterable bool
	// PossibleDuringCeasefire allows the cast while a Ceasefire
	// battle modifier is recorded.
	PossibleDuringCeasefire bool
	// NeedsTargetFigure requires a figure target at cast time.
	NeedsTargetFigure bool
	// CounterOnly families can only be played in response to a
	// pending counterable spell.
	CounterOnly bool
	CardSets    [][]CardSpec
}

// Variant is one concrete castable card multiset of a family.
type Variant struct {
	FamilyName  string
	PrimarySuit cards.Suit
	Cards       []CardSpec
}

// Key identifies a variant within the catalog.
func (v *Variant) Key() string {
	return fmt.Sprintf("%s:%s", v.FamilyName, v.PrimarySuit)
}

// Catalog holds every spell family and its expanded variants, built
// once at startup.
type Catalog struct {
	families    map[string]*Family
	familyOrder []string
	variants    map[string][]*Variant
}

// Family looks up a family by name.
func (c *Catalog) Family(name string) (*Family, bool) {
	fam, ok := c.families[name]
	return fam, ok
}

// Families returns all families in catalog order.
func (c *Catalog) Families() []*Family {
	result := make([]*Family, 0, len(c.familyOrder))
	for _, name := range c.familyOrder {
		result = append(result, c.families[name])
	}
	return result
}

// Variants returns a family's expanded variants.
func (c *Catalog) Variants(family string) []*Variant {
	return c.variants[family]
}

// Allocate maps every card a variant consumes to a distinct physical
// card in the hand, counting duplicates. The greedy first-available
// order matches figure-card allocation.
func Allocate(hand []*cards.Card, specs []CardSpec) ([]*cards.Card, bool) {
	allocated := make([]*cards.Card, len(specs))
	used := make(map[string]bool, len(specs))

	for i, spec := range specs {
		found := false
		for _, card := range hand {
			if used[card.ID] {
				continue
			}
			if card.Suit == spec.Suit && card.Rank == spec.Rank {
				allocated[i] = card
				used[card.ID] = true
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return allocated, true
}

// CastableVariants returns every variant of a family the hand can pay for.
func CastableVariants(hand []*cards.Card, cat *Catalog, familyName string) []*Variant {
	var castable []*Variant
	for _, variant := range cat.Variants(familyName) {
		if _, ok := Allocate(hand, variant.Cards); ok {
			castable = append(castable, variant)
		}
	}
	return castable
}

// perSuit expands a rank pattern into one card set per suit, all cards
// sharing the suit. Patterns never ask for more than the two physical
// copies of a rank that exist per suit.
func perSuit(ranks ...cards.Rank) [][]CardSpec {
	sets := make([][]CardSpec, 0, len(cards.AllSuits))
	for _, suit := range cards.AllSuits {
		set := make([]CardSpec, 0, len(ranks))
		for _, rank := range ranks {
			set = append(set, CardSpec{Suit: suit, Rank: rank})
		}
		sets = append(sets, set)
	}
	return sets
}

// NewCatalog builds the full spell catalog.
func NewCatalog() *Catalog {
	families := []*Family{
		{
			Name:                    CardFlood,
			Type:                    Greed,
			Description:             "Draw 3 main cards.",
			PossibleDuringCeasefire: true,
			CardSets:                perSuit(cards.Two, cards.Three),
		},
		{
			Name:                    SideHustle,
			Type:                    Greed,
			Description:             "Draw 2 side cards.",
			PossibleDuringCeasefire: true,
			CardSets:                perSuit(cards.Two, cards.Two),
		},
		{
			Name:                    RoyalDecree,
			Type:                    Greed,
			Description:             "Draw main cards until your hand holds 10.",
			PossibleDuringCeasefire: true,
			CardSets:                perSuit(cards.Four, cards.Five),
		},
		{
			Name:        DumpCards,
			Type:        Greed,
			Description: "Both hands return to the decks; each player draws a fresh hand.",
			Counterable: true,
			CardSets:    perSuit(cards.Two, cards.Three, cards.Four),
		},
		{
			Name:        ForcedDeal,
			Type:        Greed,
			Description: "Swap 2 random main cards with your opponent.",
			Counterable: true,
			CardSets:    perSuit(cards.Three, cards.Five),
		},
		{
			Name:                    AllSeeingEye,
			Type:                    Greed,
			Description:             "See the opponent's hidden board for the rest of the round.",
			PossibleDuringCeasefire: true,
			CardSets:                perSuit(cards.Two, cards.Five),
		},
		{
			Name:        InfiniteHammer,
			Type:        Greed,
			Description: "Build, upgrade and pick up without ending your turn.",
			Counterable: true,
			CardSets:    perSuit(cards.Two, cards.Four, cards.Six),
		},
		{
			Name:              Explosion,
			Type:              Greed,
			Description:       "Destroy a figure; its cards return to the decks.",
			Counterable:       true,
			NeedsTargetFigure: true,
			CardSets:          perSuit(cards.Six, cards.Six),
		},
		{
			Name:              Poison,
			Type:              Enchantment,
			Description:       "A figure fights weakened in the next battle.",
			Counterable:       true,
			NeedsTargetFigure: true,
			CardSets:          perSuit(cards.Three, cards.Three),
		},
		{
			Name:              HealthBoost,
			Type:              Enchantment,
			Description:       "A figure fights strengthened in the next battle.",
			Counterable:       true,
			NeedsTargetFigure: true,
			CardSets:          perSuit(cards.Five, cards.Five),
		},
		{
			Name:                    Ceasefire,
			Type:                    Tactics,
			Description:             "No battle this round.",
			Counterable:             true,
			PossibleDuringCeasefire: true,
			CardSets:                perSuit(cards.Two, cards.Six),
		},
		{
			Name:        CivilWar,
			Type:        Tactics,
			Description: "Castle figures join the next battle.",
			Counterable: true,
			CardSets:    perSuit(cards.Three, cards.Six),
		},
		{
			Name:        PeasantWar,
			Type:        Tactics,
			Description: "Village figures join the next battle.",
			Counterable: true,
			CardSets:    perSuit(cards.Four, cards.Six),
		},
		{
			Name:        Blitzkrieg,
			Type:        Tactics,
			Description: "The next battle resolves immediately.",
			Counterable: true,
			CardSets:    perSuit(cards.Five, cards.Six),
		},
		{
			Name:        InvaderSwap,
			Type:        Tactics,
			Description: "Attacker and defender switch roles.",
			Counterable: true,
			CardSets:    perSuit(cards.Two, cards.Three, cards.Six),
		},
		{
			Name:        Countermagic,
			Type:        Greed,
			Description: "Cancel the opponent's pending spell.",
			CounterOnly: true,
			CardSets:    perSuit(cards.Three, cards.Four),
		},
	}

	cat := &Catalog{
		families: make(map[string]*Family, len(families)),
		variants: make(map[string][]*Variant, len(families)),
	}
	for _, fam := range families {
		cat.families[fam.Name] = fam
		cat.familyOrder = append(cat.familyOrder, fam.Name)
		for _, set := range fam.CardSets {
			cat.variants[fam.Name] = append(cat.variants[fam.Name], &Variant{
				FamilyName:  fam.Name,
				PrimarySuit: set[0].Suit,
				Cards:       set,
			})
		}
	}
	return cat
}
