package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	postgres "github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/domain"
)

// cardColumns is the COPY column order; cardValues must match it.
var cardColumns = buildCardColumns()

func buildCardColumns() []string {
	cols := []string{
		"id", "oracle_id", "name", "lang_id", "default_lang", "released_at",
		"layout_id", "highres_image", "image_status_id", "normal_image_uri",
		"mana_cost", "cmc", "type_line", "oracle_text", "power", "toughness",
	}
	for _, f := range domain.Formats {
		cols = append(cols, "legal_"+string(f)+"_id")
	}
	return append(cols,
		"reserved", "oversized", "promo", "reprint", "variation", "digital",
		"full_art", "textless", "booster", "story_spotlight",
		"set_id", "collector_number", "rarity_id", "flavor_text", "artist",
		"illustration_id", "border_color_id", "frame_id",
	)
}

func cardValues(c *domain.Card) []any {
	vals := []any{
		c.ID, c.OracleID, c.Name, c.LangID, c.DefaultLang, c.ReleasedAt,
		c.LayoutID, c.HighresImage, c.ImageStatusID, c.NormalImageURI,
		c.ManaCost, c.CMC, c.TypeLine, c.OracleText, c.Power, c.Toughness,
	}
	for _, f := range domain.Formats {
		vals = append(vals, c.Legalities[f])
	}
	return append(vals,
		c.Reserved, c.Oversized, c.Promo, c.Reprint, c.Variation, c.Digital,
		c.FullArt, c.Textless, c.Booster, c.StorySpotlight,
		c.SetID, c.CollectorNumber, c.RarityID, c.FlavorText, c.Artist,
		c.IllustrationID, c.BorderColorID, c.FrameID,
	)
}

// CopyCards streams card rows into the cards table via COPY. next returns
// one card per call and nil when the stream is exhausted, so the caller can
// feed rows straight from the decoder without buffering the feed.
func (r *Repo) CopyCards(ctx context.Context, next func() (*domain.Card, error)) (int64, error) {
	q := postgres.CopierFromCtx(ctx, r.pool)

	src := pgx.CopyFromFunc(func() ([]any, error) {
		c, err := next()
		if err != nil || c == nil {
			return nil, err
		}
		return cardValues(c), nil
	})

	n, err := q.CopyFrom(ctx, pgx.Identifier{"cards"}, cardColumns, src)
	if err != nil {
		return n, fmt.Errorf("copy cards: %w", err)
	}
	return n, nil
}

// CopyFaces bulk-inserts face rows via COPY.
func (r *Repo) CopyFaces(ctx context.Context, faces []domain.Face) (int64, error) {
	if len(faces) == 0 {
		return 0, nil
	}

	q := postgres.CopierFromCtx(ctx, r.pool)

	columns := []string{
		"card_id", "name", "mana_cost", "type_line", "oracle_text",
		"flavor_text", "artist", "artist_id", "illustration_id", "normal_image_uri",
	}
	n, err := q.CopyFrom(ctx, pgx.Identifier{"faces"}, columns,
		pgx.CopyFromSlice(len(faces), func(i int) ([]any, error) {
			f := faces[i]
			return []any{
				f.CardID, f.Name, f.ManaCost, f.TypeLine, f.OracleText,
				f.FlavorText, f.Artist, f.ArtistID, f.IllustrationID, f.NormalImageURI,
			}, nil
		}))
	if err != nil {
		return n, fmt.Errorf("copy faces: %w", err)
	}
	return n, nil
}

// CopyColorLinks bulk-inserts card-color junction rows.
func (r *Repo) CopyColorLinks(ctx context.Context, links []domain.CardLink) (int64, error) {
	return r.copyLinks(ctx, "color_cards", "color_id", links)
}

// CopyColorIdentityLinks bulk-inserts card-color-identity junction rows.
func (r *Repo) CopyColorIdentityLinks(ctx context.Context, links []domain.CardLink) (int64, error) {
	return r.copyLinks(ctx, "color_identity_cards", "color_id", links)
}

// CopyKeywordLinks bulk-inserts card-keyword junction rows.
func (r *Repo) CopyKeywordLinks(ctx context.Context, links []domain.CardLink) (int64, error) {
	return r.copyLinks(ctx, "keyword_cards", "keyword_id", links)
}

// CopyGameLinks bulk-inserts card-game junction rows.
func (r *Repo) CopyGameLinks(ctx context.Context, links []domain.CardLink) (int64, error) {
	return r.copyLinks(ctx, "game_cards", "game_id", links)
}

// CopyFinishLinks bulk-inserts card-finish junction rows.
func (r *Repo) CopyFinishLinks(ctx context.Context, links []domain.CardLink) (int64, error) {
	return r.copyLinks(ctx, "finish_cards", "finish_id", links)
}

func (r *Repo) copyLinks(ctx context.Context, table, dimColumn string, links []domain.CardLink) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}

	q := postgres.CopierFromCtx(ctx, r.pool)
	n, err := q.CopyFrom(ctx, pgx.Identifier{table}, []string{"card_id", dimColumn},
		pgx.CopyFromSlice(len(links), func(i int) ([]any, error) {
			return []any{links[i].CardID, links[i].DimID}, nil
		}))
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", table, err)
	}
	return n, nil
}
