package resources

import (
	"reflect"
	"testing"
)

type fakeFigure struct {
	produces map[string]int
	requires map[string]int
}

func (f fakeFigure) ProducedResources() map[string]int { return f.produces }
func (f fakeFigure) RequiredResources() map[string]int { return f.requires }

func TestCalculateSums(t *testing.T) {
	figs := []Producer{
		fakeFigure{
			produces: map[string]int{"food_red": 3},
			requires: map[string]int{"villager_black": 1},
		},
		fakeFigure{
			produces: map[string]int{"food_red": 2, "stone_black": 7},
			requires: map[string]int{"villager_black": 1, "food_red": 1},
		},
	}

	summary := Calculate(figs)

	wantProduces := map[string]int{"food_red": 5, "stone_black": 7}
	wantRequires := map[string]int{"villager_black": 2, "food_red": 1}
	if !reflect.DeepEqual(summary.Produces, wantProduces) {
		t.Fatalf("produces: expected %v, got %v", wantProduces, summary.Produces)
	}
	if !reflect.DeepEqual(summary.Requires, wantRequires) {
		t.Fatalf("requires: expected %v, got %v", wantRequires, summary.Requires)
	}
}

func TestCalculateIsAdditive(t *testing.T) {
	a := fakeFigure{
		produces: map[string]int{"warrior_red": 2},
		requires: map[string]int{"food_red": 2, "armor_red": 1},
	}
	b := fakeFigure{
		produces: map[string]int{"armor_red": 2, "material_red": 1},
		requires: map[string]int{"food_red": 1},
	}

	combined := Calculate([]Producer{a, b})
	split := Calculate([]Producer{a}).Add(Calculate([]Producer{b}))

	if !reflect.DeepEqual(combined.Produces, split.Produces) {
		t.Fatalf("produces not additive: %v vs %v", combined.Produces, split.Produces)
	}
	if !reflect.DeepEqual(combined.Requires, split.Requires) {
		t.Fatalf("requires not additive: %v vs %v", combined.Requires, split.Requires)
	}
}

func TestDeficits(t *testing.T) {
	summary := Calculate([]Producer{
		fakeFigure{
			produces: map[string]int{"food_red": 1},
			requires: map[string]int{"food_red": 2, "armor_black": 1},
		},
	})

	if !summary.Deficit("food_red") {
		t.Fatal("expected food_red deficit")
	}
	if !summary.Deficit("armor_black") {
		t.Fatal("expected armor_black deficit")
	}
	if summary.Deficit("stone_black") {
		t.Fatal("unrequired resource must not be a deficit")
	}

	want := []string{"armor_black", "food_red"}
	if !reflect.DeepEqual(summary.Deficits(), want) {
		t.Fatalf("expected deficits %v, got %v", want, summary.Deficits())
	}
}

func TestEmptyBoard(t *testing.T) {
	summary := Calculate(nil)
	if len(summary.Produces) != 0 || len(summary.Requires) != 0 {
		t.Fatalf("expected empty summary, got %v / %v", summary.Produces, summary.Requires)
	}
	if len(summary.Deficits()) != 0 {
		t.Fatal("empty board has no deficits")
	}
}
