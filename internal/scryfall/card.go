// Package scryfall models the provider's bulk-data card and set records and
// decodes them from the multi-hundred-megabyte JSON array files without
// loading a file into memory.
package scryfall

import (
	"fmt"
	"time"
)

// ImageURIs carries the subset of image links the catalog keeps.
type ImageURIs struct {
	Normal string `json:"normal"`
}

// Face is one face of a multi-faced card as it appears in the feed.
type Face struct {
	Name           string     `json:"name"`
	ManaCost       string     `json:"mana_cost"`
	TypeLine       *string    `json:"type_line"`
	OracleText     *string    `json:"oracle_text"`
	FlavorText     *string    `json:"flavor_text"`
	Artist         *string    `json:"artist"`
	ArtistID       *string    `json:"artist_id"`
	IllustrationID *string    `json:"illustration_id"`
	OracleID       *string    `json:"oracle_id"`
	ImageURIs      *ImageURIs `json:"image_uris"`
}

// Card is one record of the bulk card feed. Pointer fields are absent for
// some layouts (multi-faced cards carry text on their faces instead).
type Card struct {
	ID              string            `json:"id"`
	OracleID        *string           `json:"oracle_id"`
	Name            string            `json:"name"`
	Lang            string            `json:"lang"`
	ReleasedAt      string            `json:"released_at"`
	Layout          string            `json:"layout"`
	HighresImage    bool              `json:"highres_image"`
	ImageStatus     string            `json:"image_status"`
	ImageURIs       *ImageURIs        `json:"image_uris"`
	ManaCost        *string           `json:"mana_cost"`
	CMC             *float64          `json:"cmc"`
	TypeLine        *string           `json:"type_line"`
	OracleText      *string           `json:"oracle_text"`
	Power           *string           `json:"power"`
	Toughness       *string           `json:"toughness"`
	Colors          []string          `json:"colors"`
	ColorIdentity   []string          `json:"color_identity"`
	Keywords        []string          `json:"keywords"`
	Legalities      map[string]string `json:"legalities"`
	Games           []string          `json:"games"`
	Finishes        []string          `json:"finishes"`
	Reserved        bool              `json:"reserved"`
	Oversized       bool              `json:"oversized"`
	Promo           bool              `json:"promo"`
	Reprint         bool              `json:"reprint"`
	Variation       bool              `json:"variation"`
	SetID           string            `json:"set_id"`
	Set             string            `json:"set"`
	SetName         string            `json:"set_name"`
	SetType         string            `json:"set_type"`
	CollectorNumber string            `json:"collector_number"`
	Digital         bool              `json:"digital"`
	Rarity          string            `json:"rarity"`
	FlavorText      *string           `json:"flavor_text"`
	Artist          *string           `json:"artist"`
	IllustrationID  *string           `json:"illustration_id"`
	BorderColor     string            `json:"border_color"`
	Frame           string            `json:"frame"`
	FullArt         bool              `json:"full_art"`
	Textless        bool              `json:"textless"`
	Booster         bool              `json:"booster"`
	StorySpotlight  bool              `json:"story_spotlight"`
	CardFaces       []Face            `json:"card_faces"`
}

// Set is one record of the provider's sets listing.
type Set struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	SetType       string  `json:"set_type"`
	ReleasedAt    *string `json:"released_at"`
	BlockCode     *string `json:"block_code"`
	Block         *string `json:"block"`
	ParentSetCode *string `json:"parent_set_code"`
	CardCount     int32   `json:"card_count"`
	PrintedSize   *int32  `json:"printed_size"`
	Digital       bool    `json:"digital"`
	FoilOnly      bool    `json:"foil_only"`
	NonfoilOnly   bool    `json:"nonfoil_only"`
	IconSVGURI    *string `json:"icon_svg_uri"`
}

const dateLayout = "2006-01-02"

// EffectiveOracleID returns the record's oracle id, falling back to the
// first face for layouts where the top level omits it (reversible promos).
func (c *Card) EffectiveOracleID() string {
	if c.OracleID != nil && *c.OracleID != "" {
		return *c.OracleID
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].OracleID != nil {
		return *c.CardFaces[0].OracleID
	}
	return ""
}

// ReleaseDate parses the record's released_at date.
func (c *Card) ReleaseDate() (time.Time, error) {
	return time.Parse(dateLayout, c.ReleasedAt)
}

// NormalImageURI returns the normal-size image link, or nil when the record
// has no top-level images.
func (c *Card) NormalImageURI() *string {
	if c.ImageURIs == nil || c.ImageURIs.Normal == "" {
		return nil
	}
	uri := c.ImageURIs.Normal
	return &uri
}

// Validate checks the fields every catalog row requires. A record failing
// this check makes the whole feed unusable, so callers treat it as fatal.
func (c *Card) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"id", c.ID},
		{"name", c.Name},
		{"lang", c.Lang},
		{"released_at", c.ReleasedAt},
		{"layout", c.Layout},
		{"image_status", c.ImageStatus},
		{"set", c.Set},
		{"set_name", c.SetName},
		{"set_type", c.SetType},
		{"set_id", c.SetID},
		{"collector_number", c.CollectorNumber},
		{"rarity", c.Rarity},
		{"border_color", c.BorderColor},
		{"frame", c.Frame},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("card %q (%s): missing %s", c.Name, c.ID, r.field)
		}
	}
	if c.EffectiveOracleID() == "" {
		return fmt.Errorf("card %q (%s): missing oracle_id", c.Name, c.ID)
	}
	if _, err := c.ReleaseDate(); err != nil {
		return fmt.Errorf("card %q (%s): bad released_at %q", c.Name, c.ID, c.ReleasedAt)
	}
	return nil
}
