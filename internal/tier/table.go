package tier

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table resolves a CSR to a tier label. Thresholds are held highest bound
// first and the first one the CSR reaches wins. A Table is read-only after
// construction and safe for concurrent use.
type Table struct {
	floor      string
	thresholds []Threshold
}

// Default returns the built-in Halo ranked table.
func Default() *Table {
	t, err := New(Document{
		Floor: "Bronze",
		Tiers: []Threshold{
			{Name: "Onyx", Min: 1800},
			{Name: "Diamond", Min: 1500},
			{Name: "Platinum", Min: 1300},
			{Name: "Gold", Min: 1100},
			{Name: "Silver", Min: 900},
		},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// New validates doc and builds a Table from it.
func New(doc Document) (*Table, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	thresholds := slices.Clone(doc.Tiers)
	for i := range thresholds {
		thresholds[i].Name = strings.TrimSpace(thresholds[i].Name)
	}
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].Min > thresholds[j].Min
	})

	return &Table{
		floor:      strings.TrimSpace(doc.Floor),
		thresholds: thresholds,
	}, nil
}

// Parse decodes a YAML tier table document.
func Parse(data []byte) (*Table, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tier table: %w", err)
	}
	return New(doc)
}

// Lookup returns the tier for csr.
func (t *Table) Lookup(csr int) string {
	for _, th := range t.thresholds {
		if csr >= th.Min {
			return th.Name
		}
	}
	return t.floor
}

// Rank returns the position of name from the bottom of the table (floor is 0),
// or -1 when the table has no such tier.
func (t *Table) Rank(name string) int {
	if name == t.floor {
		return 0
	}
	for i, th := range t.thresholds {
		if th.Name == name {
			return len(t.thresholds) - i
		}
	}
	return -1
}

// Names lists the tiers from lowest to highest.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.thresholds)+1)
	names = append(names, t.floor)
	for i := len(t.thresholds) - 1; i >= 0; i-- {
		names = append(names, t.thresholds[i].Name)
	}
	return names
}

// validate checks that:
// - the floor tier is named
// - every tier name is non-empty and unique, floor included
// - no two tiers share a lower bound.
func validate(doc Document) error {
	if strings.TrimSpace(doc.Floor) == "" {
		return &InvalidTableError{Reason: "floor tier has empty name"}
	}

	seenNames := map[string]bool{strings.TrimSpace(doc.Floor): true}
	seenMins := make(map[int]bool)

	for i, th := range doc.Tiers {
		name := strings.TrimSpace(th.Name)
		if name == "" {
			return &InvalidTableError{Reason: fmt.Sprintf("tier at index %d has empty name", i)}
		}
		if seenNames[name] {
			return &InvalidTableError{Reason: fmt.Sprintf("duplicate tier name %q", name)}
		}
		seenNames[name] = true

		if seenMins[th.Min] {
			return &InvalidTableError{Reason: fmt.Sprintf("tier %q repeats lower bound %d", th.Name, th.Min)}
		}
		seenMins[th.Min] = true
	}

	return nil
}
