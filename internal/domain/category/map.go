// Package category maps supplier-reported category paths onto the configured
// canonical taxonomy.
package category

import "strings"

// Entry is one canonical taxonomy node: its full root-to-leaf path and, once
// resolved against the inventory system, its category ID there. ID is zero
// until resolved.
type Entry struct {
	Path []string
	ID   int
}

// Map is a read-only lookup from lower-cased category name to its canonical
// path. It is built once per (re)load and never mutated during an import.
type Map struct {
	entries map[string]Entry
}

// NewMap creates an empty category map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Entry)}
}

// Add registers a category name for the given canonical path. Names are
// matched case-insensitively.
func (m *Map) Add(name string, path []string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || len(path) == 0 {
		return
	}
	entry := m.entries[key]
	entry.Path = append([]string(nil), path...)
	m.entries[key] = entry
}

// SetID records the inventory-system category ID for a known name.
func (m *Map) SetID(name string, id int) {
	key := strings.ToLower(strings.TrimSpace(name))
	if entry, ok := m.entries[key]; ok {
		entry.ID = id
		m.entries[key] = entry
	}
}

// Lookup returns the entry registered for a single category name.
func (m *Map) Lookup(name string) (Entry, bool) {
	entry, ok := m.entries[strings.ToLower(strings.TrimSpace(name))]
	return entry, ok
}

// Match finds the canonical category for a supplier category path (ordered
// root-to-leaf). The path is walked from most specific to least specific so
// the supplier's leaf category wins when mapped, with broader ancestors as
// fallback. Returns false when no segment is mapped.
func (m *Map) Match(path []string) (Entry, bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if entry, ok := m.Lookup(path[i]); ok {
			return entry, true
		}
	}
	return Entry{}, false
}

// Len returns the number of registered names.
func (m *Map) Len() int {
	return len(m.entries)
}

// Names returns all registered lower-cased names. Order is unspecified.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	return names
}
