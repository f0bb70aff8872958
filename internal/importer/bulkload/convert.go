package bulkload

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cardvault/cardvault/internal/domain"
	"github.com/cardvault/cardvault/internal/scryfall"
)

// resolver maps dimension values to the surrogate ids assigned during the
// load. Every value was collected in the discovery pass, so a miss here is a
// programming error, not bad input.
type resolver struct {
	ids map[domain.Dimension]map[string]int32
}

func newResolver() *resolver {
	return &resolver{ids: make(map[domain.Dimension]map[string]int32, len(domain.Dimensions))}
}

func (r *resolver) put(dim domain.Dimension, ids map[string]int32) {
	r.ids[dim] = ids
}

func (r *resolver) lookup(dim domain.Dimension, value string) (int32, error) {
	id, ok := r.ids[dim][value]
	if !ok {
		return 0, fmt.Errorf("%s value %q not discovered", dim, value)
	}
	return id, nil
}

// linkSet collects the junction rows of one card, appended to the loader's
// accumulators after the card row itself is produced.
type linkSet struct {
	colors          []domain.CardLink
	colorIdentities []domain.CardLink
	keywords        []domain.CardLink
	games           []domain.CardLink
	finishes        []domain.CardLink
}

// buildCard converts a feed record into the normalized card row plus its face
// and junction rows.
func buildCard(c *scryfall.Card, res *resolver, isDefault bool) (*domain.Card, []domain.Face, linkSet, error) {
	var links linkSet

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, nil, links, fmt.Errorf("card %q: bad id %q", c.Name, c.ID)
	}
	oracleID, err := uuid.Parse(c.EffectiveOracleID())
	if err != nil {
		return nil, nil, links, fmt.Errorf("card %q (%s): bad oracle_id %q", c.Name, c.ID, c.EffectiveOracleID())
	}
	setID, err := uuid.Parse(c.SetID)
	if err != nil {
		return nil, nil, links, fmt.Errorf("card %q (%s): bad set_id %q", c.Name, c.ID, c.SetID)
	}
	releasedAt, err := c.ReleaseDate()
	if err != nil {
		return nil, nil, links, fmt.Errorf("card %q (%s): %w", c.Name, c.ID, err)
	}
	illustrationID, err := parseUUIDPtr(c.IllustrationID)
	if err != nil {
		return nil, nil, links, fmt.Errorf("card %q (%s): bad illustration_id: %w", c.Name, c.ID, err)
	}

	card := &domain.Card{
		ID:              id,
		OracleID:        oracleID,
		Name:            c.Name,
		DefaultLang:     isDefault,
		ReleasedAt:      releasedAt,
		HighresImage:    c.HighresImage,
		NormalImageURI:  c.NormalImageURI(),
		ManaCost:        c.ManaCost,
		CMC:             c.CMC,
		TypeLine:        c.TypeLine,
		OracleText:      c.OracleText,
		Power:           c.Power,
		Toughness:       c.Toughness,
		Legalities:      make(map[domain.Format]int32, len(domain.Formats)),
		Reserved:        c.Reserved,
		Oversized:       c.Oversized,
		Promo:           c.Promo,
		Reprint:         c.Reprint,
		Variation:       c.Variation,
		Digital:         c.Digital,
		FullArt:         c.FullArt,
		Textless:        c.Textless,
		Booster:         c.Booster,
		StorySpotlight:  c.StorySpotlight,
		SetID:           setID,
		CollectorNumber: c.CollectorNumber,
		FlavorText:      c.FlavorText,
		Artist:          c.Artist,
		IllustrationID:  illustrationID,
	}

	if card.LangID, err = res.lookup(domain.DimensionLang, c.Lang); err != nil {
		return nil, nil, links, err
	}
	if card.LayoutID, err = res.lookup(domain.DimensionLayout, c.Layout); err != nil {
		return nil, nil, links, err
	}
	if card.ImageStatusID, err = res.lookup(domain.DimensionImageStatus, c.ImageStatus); err != nil {
		return nil, nil, links, err
	}
	if card.RarityID, err = res.lookup(domain.DimensionRarity, c.Rarity); err != nil {
		return nil, nil, links, err
	}
	if card.BorderColorID, err = res.lookup(domain.DimensionBorderColor, c.BorderColor); err != nil {
		return nil, nil, links, err
	}
	if card.FrameID, err = res.lookup(domain.DimensionFrame, c.Frame); err != nil {
		return nil, nil, links, err
	}
	for _, f := range domain.Formats {
		v, ok := c.Legalities[string(f)]
		if !ok {
			v = legalityFallback
		}
		if card.Legalities[f], err = res.lookup(domain.DimensionLegality, v); err != nil {
			return nil, nil, links, err
		}
	}

	if links.colors, err = buildLinks(res, domain.DimensionColor, id, c.Colors); err != nil {
		return nil, nil, links, err
	}
	if links.colorIdentities, err = buildLinks(res, domain.DimensionColor, id, c.ColorIdentity); err != nil {
		return nil, nil, links, err
	}
	if links.keywords, err = buildLinks(res, domain.DimensionKeyword, id, c.Keywords); err != nil {
		return nil, nil, links, err
	}
	if links.games, err = buildLinks(res, domain.DimensionGame, id, c.Games); err != nil {
		return nil, nil, links, err
	}
	if links.finishes, err = buildLinks(res, domain.DimensionFinish, id, c.Finishes); err != nil {
		return nil, nil, links, err
	}

	faces, err := buildFaces(c, id)
	if err != nil {
		return nil, nil, links, err
	}
	return card, faces, links, nil
}

func buildLinks(res *resolver, dim domain.Dimension, cardID uuid.UUID, values []string) ([]domain.CardLink, error) {
	if len(values) == 0 {
		return nil, nil
	}
	links := make([]domain.CardLink, 0, len(values))
	for _, v := range values {
		id, err := res.lookup(dim, v)
		if err != nil {
			return nil, err
		}
		links = append(links, domain.CardLink{CardID: cardID, DimID: id})
	}
	return links, nil
}

// faceKey identifies a face within its owning card. Reversible layouts repeat
// the same half with different images; only one row per distinct face is kept.
type faceKey struct {
	name           string
	manaCost       string
	oracleText     string
	illustrationID string
}

func buildFaces(c *scryfall.Card, cardID uuid.UUID) ([]domain.Face, error) {
	if len(c.CardFaces) == 0 {
		return nil, nil
	}

	seen := make(map[faceKey]struct{}, len(c.CardFaces))
	faces := make([]domain.Face, 0, len(c.CardFaces))
	for _, f := range c.CardFaces {
		oracleText := ""
		if f.OracleText != nil {
			oracleText = *f.OracleText
		}
		key := faceKey{name: f.Name, manaCost: f.ManaCost, oracleText: oracleText}
		if f.IllustrationID != nil {
			key.illustrationID = *f.IllustrationID
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		artistID, err := parseUUIDPtr(f.ArtistID)
		if err != nil {
			return nil, fmt.Errorf("card %q (%s): face %q: bad artist_id: %w", c.Name, c.ID, f.Name, err)
		}
		illustrationID, err := parseUUIDPtr(f.IllustrationID)
		if err != nil {
			return nil, fmt.Errorf("card %q (%s): face %q: bad illustration_id: %w", c.Name, c.ID, f.Name, err)
		}

		face := domain.Face{
			CardID:         cardID,
			Name:           f.Name,
			ManaCost:       f.ManaCost,
			TypeLine:       f.TypeLine,
			OracleText:     oracleText,
			FlavorText:     f.FlavorText,
			Artist:         f.Artist,
			ArtistID:       artistID,
			IllustrationID: illustrationID,
		}
		if f.ImageURIs != nil && f.ImageURIs.Normal != "" {
			uri := f.ImageURIs.Normal
			face.NormalImageURI = &uri
		}
		faces = append(faces, face)
	}
	return faces, nil
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
