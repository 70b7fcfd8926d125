// Package resources aggregates what a player's board figures produce
// and require. The ledger is purely informational: a deficit warns the
// player but never blocks a figure from operating.
package resources

import "sort"

// Producer is the board-figure surface the ledger reads. Both live
// figures and catalog variants satisfy it via their resolved maps.
type Producer interface {
	ProducedResources() map[string]int
	RequiredResources() map[string]int
}

// Summary holds the aggregated production and requirement totals for
// one player, keyed by color-qualified resource identifiers such as
// "food_red" or "stone_black".
type Summary struct {
	Produces map[string]int
	Requires map[string]int
}

// NewSummary returns an empty summary.
func NewSummary() Summary {
	return Summary{
		Produces: make(map[string]int),
		Requires: make(map[string]int),
	}
}

// Calculate walks the given figures and sums their production and
// requirement entries. Keys are created on first occurrence.
func Calculate(figures []Producer) Summary {
	summary := NewSummary()
	for _, figure := range figures {
		for resource, amount := range figure.ProducedResources() {
			summary.Produces[resource] += amount
		}
		for resource, amount := range figure.RequiredResources() {
			summary.Requires[resource] += amount
		}
	}
	return summary
}

// Add merges another summary into this one entrywise.
func (s Summary) Add(other Summary) Summary {
	for resource, amount := range other.Produces {
		s.Produces[resource] += amount
	}
	for resource, amount := range other.Requires {
		s.Requires[resource] += amount
	}
	return s
}

// Deficit reports whether more of a resource is required than produced.
func (s Summary) Deficit(resource string) bool {
	return s.Requires[resource] > s.Produces[resource]
}

// Deficits returns all deficit resources in sorted order.
func (s Summary) Deficits() []string {
	var deficits []string
	for resource := range s.Requires {
		if s.Deficit(resource) {
			deficits = append(deficits, resource)
		}
	}
	sort.Strings(deficits)
	return deficits
}
