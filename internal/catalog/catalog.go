// Package catalog provides the host item catalog the economy engine is
// generated from: item identities, categories, list prices, and the
// artisan-good ingredient relation. The catalog is read-only ground truth
// at generation and reconciliation time.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/agora/internal/econ"
)

// Kind distinguishes how an item is priced.
type Kind int

const (
	// KindSimple items are priced off their own supply curve.
	KindSimple Kind = iota
	// KindArtisan items are priced relative to a base ingredient.
	KindArtisan
)

// Entry describes one catalog item.
type Entry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Category     int    `yaml:"category"`
	ListPrice    int    `yaml:"list_price"`
	Kind         Kind   `yaml:"-"`
	KindName     string `yaml:"kind,omitempty"` // "simple" (default) or "artisan"
	Ingredient   string `yaml:"ingredient,omitempty"`
	DisplayGroup string `yaml:"display_group,omitempty"`
}

// Catalog is the full set of host items plus the ignore list and the
// valid-category set. Items outside the valid categories, and ignored
// items, never receive economic records.
type Catalog struct {
	Entries    []Entry
	categories map[int]bool
	ignore     map[string]bool
	byID       map[string]*Entry
}

type catalogFile struct {
	Categories []int    `yaml:"categories"`
	Ignore     []string `yaml:"ignore"`
	Items      []Entry  `yaml:"items"`
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(file.Items, file.Categories, file.Ignore)
}

// New builds and validates a catalog from parsed entries.
func New(entries []Entry, categories []int, ignore []string) (*Catalog, error) {
	c := &Catalog{
		Entries:    entries,
		categories: make(map[int]bool, len(categories)),
		ignore:     make(map[string]bool, len(ignore)),
		byID:       make(map[string]*Entry, len(entries)),
	}
	for _, cat := range categories {
		c.categories[cat] = true
	}
	for _, id := range ignore {
		c.ignore[id] = true
	}
	for i := range c.Entries {
		e := &c.Entries[i]
		switch e.KindName {
		case "", "simple":
			e.Kind = KindSimple
		case "artisan":
			e.Kind = KindArtisan
		default:
			return nil, fmt.Errorf("item %q: unknown kind %q", e.ID, e.KindName)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", e.ID)
		}
		c.byID[e.ID] = e
	}
	// Artisan ingredients are resolved once here, not re-derived per price
	// call. An ingredient must exist and must not itself be artisan, which
	// rules out recursion cycles up front.
	for i := range c.Entries {
		e := &c.Entries[i]
		if e.Kind != KindArtisan {
			continue
		}
		if e.Ingredient == "" {
			continue // priced off its own curve as a fallback
		}
		ing, ok := c.byID[e.Ingredient]
		if !ok {
			return nil, fmt.Errorf("item %q: unknown ingredient %q", e.ID, e.Ingredient)
		}
		if ing.Kind == KindArtisan {
			return nil, fmt.Errorf("item %q: ingredient %q is itself artisan", e.ID, e.Ingredient)
		}
	}
	return c, nil
}

// Find returns the catalog entry for an item id.
func (c *Catalog) Find(itemID string) (*Entry, bool) {
	e, ok := c.byID[itemID]
	return e, ok
}

// Ignored reports whether an item is on the ignore list.
func (c *Catalog) Ignored(itemID string) bool {
	return c.ignore[itemID]
}

// ValidCategory reports whether a category participates in the economy.
func (c *Catalog) ValidCategory(category int) bool {
	return c.categories[category]
}

// Tradable returns the entries that receive economic records: not ignored,
// category in the valid set. Order follows the catalog entry order.
func (c *Catalog) Tradable() []*Entry {
	var out []*Entry
	for i := range c.Entries {
		e := &c.Entries[i]
		if c.ignore[e.ID] || !c.categories[e.Category] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AliasMap groups valid categories that share a display group. The first
// category encountered in entry order becomes the primary; the rest become
// its aliases in encounter order.
func (c *Catalog) AliasMap() econ.AliasMap {
	aliases := make(econ.AliasMap)
	primaryByGroup := make(map[string]int)
	seen := make(map[int]bool)
	for _, e := range c.Tradable() {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		if e.DisplayGroup == "" {
			continue
		}
		primary, ok := primaryByGroup[e.DisplayGroup]
		if !ok {
			primaryByGroup[e.DisplayGroup] = e.Category
			continue
		}
		aliases[primary] = append(aliases[primary], e.Category)
	}
	return aliases
}
