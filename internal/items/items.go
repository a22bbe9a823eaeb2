// Package items resolves market item IDs to display names.
package items

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownName is returned for IDs missing from the catalog.
const UnknownName = "Unknown Item"

// Resolver maps an item ID to its display name.
type Resolver interface {
	Name(itemID int) (name string, ok bool)
}

// Catalog is an in-memory ID to name table.
type Catalog struct {
	names map[int]string
}

// NewCatalog builds a catalog from a map. Blank names are ignored.
func NewCatalog(names map[int]string) *Catalog {
	c := &Catalog{names: make(map[int]string, len(names))}
	for id, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || name == UnknownName {
			continue
		}
		c.names[id] = name
	}
	return c
}

// LoadCatalog reads a YAML (or JSON) mapping of item ID to name:
//
//	1: Copper Ore
//	2: Iron Ore
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item catalog: %w", err)
	}

	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse item catalog: %w", err)
	}

	names := make(map[int]string, len(raw))
	for key, name := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parse item catalog: invalid item id %q", key)
		}
		names[id] = name
	}
	return NewCatalog(names), nil
}

// Name returns the display name for itemID, or UnknownName and false.
func (c *Catalog) Name(itemID int) (string, bool) {
	if c == nil {
		return UnknownName, false
	}
	name, ok := c.names[itemID]
	if !ok {
		return UnknownName, false
	}
	return name, true
}

// Len returns the number of named items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// IDs returns every known item ID in ascending order.
func (c *Catalog) IDs() []int {
	if c == nil {
		return nil
	}
	ids := make([]int, 0, len(c.names))
	for id := range c.names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Fallback resolves every ID to "Item <id>". Used when no catalog is configured.
type Fallback struct{}

func (Fallback) Name(itemID int) (string, bool) {
	return fmt.Sprintf("Item %d", itemID), true
}
