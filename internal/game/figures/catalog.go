package figures

import (
	"fmt"

	"github.com/nepalkings/kings-server/internal/game/cards"
)

// FigureColor classifies a family as offensive or defensive.
type FigureColor int

const (
	Offensive FigureColor = iota
	Defensive
)

func (c FigureColor) String() string {
	if c == Offensive {
		return "offensive"
	}
	return "defensive"
}

// Field is the board zone a figure occupies.
type Field int

const (
	Castle Field = iota
	Village
	Military
)

func (f Field) String() string {
	switch f {
	case Castle:
		return "castle"
	case Village:
		return "village"
	case Military:
		return "military"
	default:
		return "UNKNOWN"
	}
}

// Role tags a card's function within a figure's required set.
type Role string

const (
	RoleKey       Role = "key"
	RoleNumber    Role = "number"
	RoleUpgrade   Role = "upgrade"
	RoleExtension Role = "extension"
)

// Skills is the fixed-shape capability record every variant carries.
// No runtime probing: absent skills are simply false.
type Skills struct {
	CannotAttack   bool
	BuffsAllies    bool
	Indestructible bool
}

// AmountSpec is a data-driven production/requirement formula. The
// resolved amount for a variant is Base + PerNumber*numberValue, keyed
// by resource name and the variant suit's color.
type AmountSpec struct {
	Resource  string
	Base      int
	PerNumber int
}

// Resource base names used by the catalog.
const (
	ResourceFood     = "food"
	ResourceStone    = "stone"
	ResourceVillager = "villager"
	ResourceMaterial = "material"
	ResourceArmor    = "armor"
	ResourceWarrior  = "warrior"
)

// NumberRanks are the ranks usable as a figure's number card.
var NumberRanks = []cards.Rank{cards.Seven, cards.Eight, cards.Nine, cards.Ten}

// Family is the immutable catalog template a figure is built from.
// One family expands into a Variant per legal suit (and per number
// card value where the family takes a number card).
type Family struct {
	Name        string
	Color       FigureColor
	Field       Field
	Description string
	// Suits restricts which suits the family can be built in.
	Suits []cards.Suit
	// Keys are the key-card ranks, all on the variant suit. Duplicate
	// ranks mean two physically distinct cards of that rank.
	Keys []cards.Rank
	// HasNumber adds one number card (7-10, variant suit) per variant.
	HasNumber bool
	// CarryUpgrade/CarryExtension are ranks present in the required
	// set of upgrade-only and extension-only families.
	CarryUpgrade   cards.Rank
	CarryExtension cards.Rank
	// UpgradeRank consumes a card of this rank (variant suit) to
	// upgrade into UpgradeTarget. Zero when the family has no upgrade.
	UpgradeRank   cards.Rank
	UpgradeTarget string
	// ExtensionRank/ExtensionTarget are the analogous extension chain.
	ExtensionRank   cards.Rank
	ExtensionTarget string
	// UpgradeOnly families cannot be built from hand directly.
	UpgradeOnly bool
	Produces    []AmountSpec
	Requires    []AmountSpec
	Skills      Skills
}

// RequiredCard is one concrete card a variant needs.
type RequiredCard struct {
	Suit cards.Suit
	Rank cards.Rank
	Role Role
}

// Label returns the short card form, e.g. "J♠".
func (r RequiredCard) Label() string {
	return r.Rank.String() + r.Suit.Symbol()
}

// Variant is a concrete buildable expansion of a family: a fixed suit,
// an optional number value, and fully resolved card and resource sets.
type Variant struct {
	FamilyName  string
	Color       FigureColor
	Field       Field
	Suit        cards.Suit
	NumberValue int // 0 when the family takes no number card
	Name        string
	Required    []RequiredCard
	Produces    map[string]int
	Requires    map[string]int
	Skills      Skills
	UpgradeOnly bool
}

// Key identifies a variant within the catalog.
func (v *Variant) Key() string {
	if v.NumberValue > 0 {
		return fmt.Sprintf("%s:%s:%d", v.FamilyName, v.Suit, v.NumberValue)
	}
	return fmt.Sprintf("%s:%s", v.FamilyName, v.Suit)
}

// ResourceKey builds the color-qualified resource identifier, e.g.
// "stone_black" for a spades variant.
func ResourceKey(resource string, suit cards.Suit) string {
	return resource + "_" + suit.Color().String()
}

// Catalog holds every family and its expanded variants. It is built
// once at startup and never mutated afterwards.
type Catalog struct {
	families    map[string]*Family
	familyOrder []string
	variants    map[string][]*Variant
	byKey       map[string]*Variant
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

// VariantByKey looks up a variant by its key.
func (c *Catalog) VariantByKey(key string) (*Variant, bool) {
	v, ok := c.byKey[key]
	return v, ok
}

// AllVariants returns every variant in the catalog.
func (c *Catalog) AllVariants() []*Variant {
	result := make([]*Variant, 0, len(c.byKey))
	for _, name := range c.familyOrder {
		result = append(result, c.variants[name]...)
	}
	return result
}

// expand generates the variants of a family: one per legal suit, times
// one per number value when the family takes a number card.
func expand(fam *Family) []*Variant {
	var variants []*Variant

	numbers := []int{0}
	if fam.HasNumber {
		numbers = numbers[:0]
		for _, rank := range NumberRanks {
			numbers = append(numbers, rank.Value())
		}
	}

	for _, suit := range fam.Suits {
		for _, number := range numbers {
			variants = append(variants, buildVariant(fam, suit, number))
		}
	}
	return variants
}

func buildVariant(fam *Family, suit cards.Suit, number int) *Variant {
	required := make([]RequiredCard, 0, len(fam.Keys)+3)
	for _, rank := range fam.Keys {
		required = append(required, RequiredCard{Suit: suit, Rank: rank, Role: RoleKey})
	}
	if number > 0 {
		required = append(required, RequiredCard{Suit: suit, Rank: cards.Rank(number), Role: RoleNumber})
	}
	if fam.CarryUpgrade != 0 {
		required = append(required, RequiredCard{Suit: suit, Rank: fam.CarryUpgrade, Role: RoleUpgrade})
	}
	if fam.CarryExtension != 0 {
		required = append(required, RequiredCard{Suit: suit, Rank: fam.CarryExtension, Role: RoleExtension})
	}

	name := fam.Name + " " + suit.Symbol()
	if number > 0 {
		name = fmt.Sprintf("%s%d", name, number)
	}

	return &Variant{
		FamilyName:  fam.Name,
		Color:       fam.Color,
		Field:       fam.Field,
		Suit:        suit,
		NumberValue: number,
		Name:        name,
		Required:    required,
		Produces:    resolveAmounts(fam.Produces, suit, number),
		Requires:    resolveAmounts(fam.Requires, suit, number),
		Skills:      fam.Skills,
		UpgradeOnly: fam.UpgradeOnly,
	}
}

func resolveAmounts(specs []AmountSpec, suit cards.Suit, number int) map[string]int {
	resolved := make(map[string]int, len(specs))
	for _, spec := range specs {
		amount := spec.Base + spec.PerNumber*number
		if amount == 0 {
			continue
		}
		resolved[ResourceKey(spec.Resource, suit)] += amount
	}
	return resolved
}

var blackSuits = []cards.Suit{cards.Spades, cards.Clubs}
var redSuits = []cards.Suit{cards.Hearts, cards.Diamonds}

// NewCatalog builds the full figure catalog.
func NewCatalog() *Catalog {
	families := []*Family{
		{
			Name:        "Maharaja",
			Color:       Defensive,
			Field:       Castle,
			Description: "The castle leader. Cannot be destroyed by spells.",
			Suits:       cards.AllSuits,
			Keys:        []cards.Rank{cards.King, cards.Queen},
			Produces:    []AmountSpec{{Resource: ResourceVillager, Base: 2}},
			Requires:    []AmountSpec{{Resource: ResourceFood, Base: 2}},
			Skills:      Skills{CannotAttack: true, Indestructible: true},
		},
		{
			Name:          "Stone Mason I",
			Color:         Defensive,
			Field:         Castle,
			Description:   "Quarries stone for the castle walls.",
			Suits:         cards.AllSuits,
			Keys:          []cards.Rank{cards.Jack},
			HasNumber:     true,
			UpgradeRank:   cards.Queen,
			UpgradeTarget: "Stone Mason II",
			Produces:      []AmountSpec{{Resource: ResourceStone, PerNumber: 1}},
			Requires:      []AmountSpec{{Resource: ResourceFood, Base: 1}},
			Skills:        Skills{CannotAttack: true},
		},
		{
			Name:         "Stone Mason II",
			Color:        Defensive,
			Field:        Castle,
			Description:  "A master mason with a royal charter.",
			Suits:        cards.AllSuits,
			Keys:         []cards.Rank{cards.Jack},
			HasNumber:    true,
			CarryUpgrade: cards.Queen,
			UpgradeOnly:  true,
			Produces:     []AmountSpec{{Resource: ResourceStone, PerNumber: 2}},
			Requires:     []AmountSpec{{Resource: ResourceFood, Base: 2}},
			Skills:       Skills{CannotAttack: true},
		},
		{
			Name:            "Court Keeper",
			Color:           Defensive,
			Field:           Castle,
			Description:     "Runs the royal household.",
			Suits:           cards.AllSuits,
			Keys:            []cards.Rank{cards.Queen, cards.Jack},
			ExtensionRank:   cards.King,
			ExtensionTarget: "Royal Court",
			Produces:        []AmountSpec{{Resource: ResourceVillager, Base: 1}},
			Requires:        []AmountSpec{{Resource: ResourceFood, Base: 1}},
			Skills:          Skills{CannotAttack: true},
		},
		{
			Name:           "Royal Court",
			Color:          Defensive,
			Field:          Castle,
			Description:    "A full court drawing villagers to the castle.",
			Suits:          cards.AllSuits,
			Keys:           []cards.Rank{cards.Queen, cards.Jack},
			CarryExtension: cards.King,
			UpgradeOnly:    true,
			Produces:       []AmountSpec{{Resource: ResourceVillager, Base: 3}},
			Requires:       []AmountSpec{{Resource: ResourceFood, Base: 2}},
			Skills:         Skills{CannotAttack: true, BuffsAllies: true},
		},
		{
			Name:          "Farmer I",
			Color:         Defensive,
			Field:         Village,
			Description:   "Works the terraced fields.",
			Suits:         cards.AllSuits,
			Keys:          []cards.Rank{cards.King},
			HasNumber:     true,
			UpgradeRank:   cards.Ace,
			UpgradeTarget: "Farmer II",
			Produces:      []AmountSpec{{Resource: ResourceFood, PerNumber: 1}},
			Requires:      []AmountSpec{{Resource: ResourceVillager, Base: 1}},
			Skills:        Skills{CannotAttack: true},
		},
		{
			Name:         "Farmer II",
			Color:        Defensive,
			Field:        Village,
			Description:  "An estate farm feeding the whole valley.",
			Suits:        cards.AllSuits,
			Keys:         []cards.Rank{cards.King},
			HasNumber:    true,
			CarryUpgrade: cards.Ace,
			UpgradeOnly:  true,
			Produces:     []AmountSpec{{Resource: ResourceFood, PerNumber: 2}},
			Requires:     []AmountSpec{{Resource: ResourceVillager, Base: 1}},
			Skills:       Skills{CannotAttack: true},
		},
		{
			Name:        "Miller",
			Color:       Defensive,
			Field:       Village,
			Description: "Grinds grain by the river.",
			Suits:       redSuits,
			Keys:        []cards.Rank{cards.Queen, cards.Seven},
			Produces:    []AmountSpec{{Resource: ResourceFood, Base: 3}},
			Requires:    []AmountSpec{{Resource: ResourceVillager, Base: 1}},
			Skills:      Skills{CannotAttack: true},
		},
		{
			Name:        "Blacksmith",
			Color:       Offensive,
			Field:       Village,
			Description: "Forges armor and tools.",
			Suits:       blackSuits,
			Keys:        []cards.Rank{cards.Jack, cards.Eight},
			Produces: []AmountSpec{
				{Resource: ResourceArmor, Base: 2},
				{Resource: ResourceMaterial, Base: 1},
			},
			Requires: []AmountSpec{
				{Resource: ResourceFood, Base: 1},
				{Resource: ResourceVillager, Base: 1},
			},
		},
		{
			Name:        "Warrior",
			Color:       Offensive,
			Field:       Military,
			Description: "Twin blades sworn to the kingdom.",
			Suits:       cards.AllSuits,
			Keys:        []cards.Rank{cards.Jack, cards.Jack},
			Produces:    []AmountSpec{{Resource: ResourceWarrior, Base: 2}},
			Requires: []AmountSpec{
				{Resource: ResourceFood, Base: 2},
				{Resource: ResourceArmor, Base: 1},
			},
		},
		{
			Name:        "Archer",
			Color:       Offensive,
			Field:       Military,
			Description: "Watches the passes from the towers.",
			Suits:       cards.AllSuits,
			Keys:        []cards.Rank{cards.Ten, cards.Jack},
			Produces:    []AmountSpec{{Resource: ResourceWarrior, Base: 1}},
			Requires: []AmountSpec{
				{Resource: ResourceFood, Base: 1},
				{Resource: ResourceMaterial, Base: 1},
			},
		},
		{
			Name:          "Horseman",
			Color:         Offensive,
			Field:         Military,
			Description:   "Fast riders of the lowlands.",
			Suits:         cards.AllSuits,
			Keys:          []cards.Rank{cards.King, cards.Nine},
			UpgradeRank:   cards.Ace,
			UpgradeTarget: "Knight",
			Produces:      []AmountSpec{{Resource: ResourceWarrior, Base: 2}},
			Requires:      []AmountSpec{{Resource: ResourceFood, Base: 2}},
		},
		{
			Name:         "Knight",
			Color:        Offensive,
			Field:        Military,
			Description:  "Armored cavalry leading the charge.",
			Suits:        cards.AllSuits,
			Keys:         []cards.Rank{cards.King, cards.Nine},
			CarryUpgrade: cards.Ace,
			UpgradeOnly:  true,
			Produces:     []AmountSpec{{Resource: ResourceWarrior, Base: 3}},
			Requires: []AmountSpec{
				{Resource: ResourceFood, Base: 2},
				{Resource: ResourceArmor, Base: 1},
			},
			Skills: Skills{BuffsAllies: true},
		},
	}

	cat := &Catalog{
		families: make(map[string]*Family, len(families)),
		variants: make(map[string][]*Variant, len(families)),
		byKey:    make(map[string]*Variant),
	}
	for _, fam := range families {
		cat.families[fam.Name] = fam
		cat.familyOrder = append(cat.familyOrder, fam.Name)
		expanded := expand(fam)
		cat.variants[fam.Name] = expanded
		for _, v := range expanded {
			cat.byKey[v.Key()] = v
		}
	}
	return cat
}
