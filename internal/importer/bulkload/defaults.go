package bulkload

import (
	"fmt"
	"io"

	"github.com/cardvault/cardvault/internal/scryfall"
)

// readDefaultIDs streams the curated feed and returns the set of card ids it
// contains. The curated feed holds one printing per card, so a duplicate id
// means the file is corrupt.
func readDefaultIDs(r io.Reader) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	_, err := scryfall.ForEachCard(r, func(c *scryfall.Card) error {
		if c.ID == "" {
			return fmt.Errorf("curated feed: record %q has no id", c.Name)
		}
		if _, ok := ids[c.ID]; ok {
			return fmt.Errorf("curated feed: duplicate id %s (%q)", c.ID, c.Name)
		}
		ids[c.ID] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
