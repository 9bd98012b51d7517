package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{ID: "parsnip", Category: 1, ListPrice: 35, DisplayGroup: "produce"},
		{ID: "berry", Category: 2, ListPrice: 100, DisplayGroup: "produce"},
		{ID: "trout", Category: 3, ListPrice: 65, DisplayGroup: "catch"},
		{ID: "junk", Category: 9, ListPrice: 1},
		{ID: "preserve", Category: 4, ListPrice: 250, KindName: "artisan", Ingredient: "berry"},
	}
}

func TestTradableFiltersIgnoredAndInvalid(t *testing.T) {
	c, err := New(testEntries(), []int{1, 2, 3, 4}, []string{"trout"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := map[string]bool{}
	for _, e := range c.Tradable() {
		got[e.ID] = true
	}
	for _, want := range []string{"parsnip", "berry", "preserve"} {
		if !got[want] {
			t.Errorf("Tradable missing %q", want)
		}
	}
	if got["trout"] {
		t.Error("ignored item is tradable")
	}
	if got["junk"] {
		t.Error("invalid-category item is tradable")
	}
}

func TestAliasMapFirstCategoryIsPrimary(t *testing.T) {
	c, err := New(testEntries(), []int{1, 2, 3, 4}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	aliases := c.AliasMap()
	// Categories 1 and 2 share the "produce" display group; 1 appears
	// first in entry order, so it is primary.
	got, ok := aliases[1]
	if !ok || len(got) != 1 || got[0] != 2 {
		t.Errorf("aliases[1] = %v, want [2]", got)
	}
	if _, ok := aliases[2]; ok {
		t.Error("alias category 2 also listed as primary")
	}
	if _, ok := aliases[3]; ok {
		t.Error("solo display group produced aliases")
	}
}

func TestArtisanValidation(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
	}{
		{
			"unknown ingredient",
			[]Entry{{ID: "x", Category: 1, KindName: "artisan", Ingredient: "nope"}},
		},
		{
			"artisan ingredient",
			[]Entry{
				{ID: "a", Category: 1, KindName: "artisan", Ingredient: "b"},
				{ID: "b", Category: 1, KindName: "artisan", Ingredient: "a"},
			},
		},
		{
			"duplicate id",
			[]Entry{{ID: "a", Category: 1}, {ID: "a", Category: 2}},
		},
		{
			"bad kind",
			[]Entry{{ID: "a", Category: 1, KindName: "composite"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.entries, []int{1, 2}, nil); err == nil {
				t.Error("New accepted invalid catalog")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
categories: [1, 4]
ignore: [skip_me]
items:
  - { id: parsnip, name: Parsnip, category: 1, list_price: 35, display_group: produce }
  - { id: skip_me, category: 1, list_price: 5 }
  - { id: preserve, category: 4, list_price: 250, kind: artisan, ingredient: parsnip }
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(c.Tradable()) != 2 {
		t.Errorf("tradable = %d, want 2", len(c.Tradable()))
	}
	e, ok := c.Find("preserve")
	if !ok || e.Kind != KindArtisan || e.Ingredient != "parsnip" {
		t.Errorf("preserve = %+v, %v", e, ok)
	}
	if !c.Ignored("skip_me") {
		t.Error("ignore list not honored")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile accepted a missing file")
	}
}

func TestArtisanWithoutIngredientAllowed(t *testing.T) {
	c, err := New([]Entry{{ID: "a", Category: 1, KindName: "artisan"}}, []int{1}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e, _ := c.Find("a")
	if e.Kind != KindArtisan {
		t.Errorf("Kind = %v, want KindArtisan", e.Kind)
	}
}
