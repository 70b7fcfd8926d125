package figures

import (
	"github.com/nepalkings/kings-server/internal/game/cards"
)

// Allocate maps every required card of a variant to a distinct physical
// card in the hand. Allocation is greedy and stable: requirements are
// satisfied in their declared order by the first unconsumed matching
// card in hand order, so duplicate requirements never double-allocate
// the same card. The returned slice is aligned with required; ok is
// false when any requirement has no card left.
func Allocate(hand []*cards.Card, required []RequiredCard) ([]*cards.Card, bool) {
	allocated := make([]*cards.Card, len(required))
	used := make(map[string]bool, len(required))

	for i, req := range required {
		found := false
		for _, card := range hand {
			if used[card.ID] {
				continue
			}
			if card.Suit == req.Suit && card.Rank == req.Rank {
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

// BuildableVariants returns every variant of a family the hand can
// build, counting duplicates. Upgrade-only families are never
// buildable from hand.
func BuildableVariants(hand []*cards.Card, cat *Catalog, familyName string) []*Variant {
	fam, ok := cat.Family(familyName)
	if !ok || fam.UpgradeOnly {
		return nil
	}

	var buildable []*Variant
	for _, variant := range cat.Variants(fam.Name) {
		if _, ok := Allocate(hand, variant.Required); ok {
			buildable = append(buildable, variant)
		}
	}
	return buildable
}

// AllBuildable returns the buildable variants of every family, keyed
// by family name. Families with no buildable variant are omitted.
func AllBuildable(hand []*cards.Card, cat *Catalog) map[string][]*Variant {
	result := make(map[string][]*Variant)
	for _, fam := range cat.Families() {
		if variants := BuildableVariants(hand, cat, fam.Name); len(variants) > 0 {
			result[fam.Name] = variants
		}
	}
	return result
}

// MatchExact finds the single variant whose required card set equals
// the given cards exactly, with no superset tolerance. Retained for
// tooling; the build path goes through BuildableVariants.
func MatchExact(set []*cards.Card, cat *Catalog) (*Variant, bool) {
	for _, variant := range cat.AllVariants() {
		if len(variant.Required) != len(set) {
			continue
		}
		if _, ok := Allocate(set, variant.Required); ok {
			return variant, true
		}
	}
	return nil, false
}

// UpgradeRequirement returns the concrete card an existing figure of
// the family needs for its upgrade, or false when the family has no
// upgrade chain.
func UpgradeRequirement(fam *Family, suit cards.Suit) (RequiredCard, bool) {
	if fam.UpgradeRank == 0 {
		return RequiredCard{}, false
	}
	return RequiredCard{Suit: suit, Rank: fam.UpgradeRank, Role: RoleUpgrade}, true
}

// ExtensionRequirement is the extension-chain analogue of
// UpgradeRequirement.
func ExtensionRequirement(fam *Family, suit cards.Suit) (RequiredCard, bool) {
	if fam.ExtensionRank == 0 {
		return RequiredCard{}, false
	}
	return RequiredCard{Suit: suit, Rank: fam.ExtensionRank, Role: RoleExtension}, true
}
