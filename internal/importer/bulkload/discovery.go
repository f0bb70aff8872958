package bulkload

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cardvault/cardvault/internal/domain"
	"github.com/cardvault/cardvault/internal/scryfall"
)

// legalityFallback stands in for formats a record's legalities object omits.
const legalityFallback = "not_legal"

type groupKey struct {
	set             string
	collectorNumber string
}

// setInfo is what a card record reveals about its set. The sets listing, when
// provided, supersedes these with full metadata.
type setInfo struct {
	id      uuid.UUID
	name    string
	setType string
}

// discovery is the first pass over the card feed. It collects every distinct
// dimension value, the sets referenced by cards, and per printing group the
// number of versions marked default. Cards are inserted only on the second
// pass, once all the surrogate ids exist.
type discovery struct {
	dims   map[domain.Dimension]map[string]struct{}
	sets   map[string]setInfo
	groups map[groupKey]int
	cards  int
}

func newDiscovery() *discovery {
	dims := make(map[domain.Dimension]map[string]struct{}, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		dims[d] = make(map[string]struct{})
	}
	return &discovery{
		dims:   dims,
		sets:   make(map[string]setInfo),
		groups: make(map[groupKey]int),
	}
}

func (d *discovery) observe(c *scryfall.Card, isDefault bool) error {
	if err := c.Validate(); err != nil {
		return err
	}

	setID, err := uuid.Parse(c.SetID)
	if err != nil {
		return fmt.Errorf("card %q (%s): bad set_id %q", c.Name, c.ID, c.SetID)
	}

	d.add(domain.DimensionLang, c.Lang)
	d.add(domain.DimensionLayout, c.Layout)
	d.add(domain.DimensionImageStatus, c.ImageStatus)
	d.add(domain.DimensionSetType, c.SetType)
	d.add(domain.DimensionRarity, c.Rarity)
	d.add(domain.DimensionBorderColor, c.BorderColor)
	d.add(domain.DimensionFrame, c.Frame)

	for _, f := range domain.Formats {
		v, ok := c.Legalities[string(f)]
		if !ok {
			v = legalityFallback
		}
		d.add(domain.DimensionLegality, v)
	}
	for _, v := range c.Colors {
		d.add(domain.DimensionColor, v)
	}
	for _, v := range c.ColorIdentity {
		d.add(domain.DimensionColor, v)
	}
	for _, v := range c.Keywords {
		d.add(domain.DimensionKeyword, v)
	}
	for _, v := range c.Games {
		d.add(domain.DimensionGame, v)
	}
	for _, v := range c.Finishes {
		d.add(domain.DimensionFinish, v)
	}

	if _, ok := d.sets[c.Set]; !ok {
		d.sets[c.Set] = setInfo{id: setID, name: c.SetName, setType: c.SetType}
	}

	d.cards++
	key := groupKey{set: c.Set, collectorNumber: c.CollectorNumber}
	if isDefault {
		d.groups[key]++
	} else if _, ok := d.groups[key]; !ok {
		// Register the group so a missing default is still caught.
		d.groups[key] = 0
	}
	return nil
}

func (d *discovery) add(dim domain.Dimension, value string) {
	d.dims[dim][value] = struct{}{}
}

// checkGroups enforces the exactly-one-default invariant on every printing
// group. Violations make language resolution ambiguous downstream, so a load
// with any violation is aborted before touching the database.
func (d *discovery) checkGroups() error {
	var bad []string
	for key, n := range d.groups {
		if n != 1 {
			bad = append(bad, fmt.Sprintf("%s:%s has %d default versions", key.set, key.collectorNumber, n))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	if len(bad) > 10 {
		bad = append(bad[:10], fmt.Sprintf("and %d more", len(bad)-10))
	}
	return fmt.Errorf("default version invariant violated: %v", bad)
}

// dimValues returns the sorted distinct values of a dimension.
func (d *discovery) dimValues(dim domain.Dimension) []string {
	values := make([]string, 0, len(d.dims[dim]))
	for v := range d.dims[dim] {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
