// Package catalog is the PostgreSQL repository for the normalized card
// catalog: dimension tables, sets, cards, faces and the card-dimension
// junctions. Writes are designed for the full-reload path and run inside
// the caller's transaction (TxManager context pattern).
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/domain"
)

// Repo provides catalog storage operations.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates a catalog repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// dimTable maps a dimension to its table and value column. Identifiers are
// compile-time constants, never caller input.
var dimTable = map[domain.Dimension]struct{ table, column string }{
	domain.DimensionLang:        {"langs", "lang"},
	domain.DimensionLayout:      {"layouts", "layout"},
	domain.DimensionImageStatus: {"image_statuses", "image_status"},
	domain.DimensionLegality:    {"legalities", "legality"},
	domain.DimensionSetType:     {"set_types", "set_type"},
	domain.DimensionRarity:      {"rarities", "rarity"},
	domain.DimensionBorderColor: {"border_colors", "border_color"},
	domain.DimensionFrame:       {"frames", "frame"},
	domain.DimensionColor:       {"colors", "color"},
	domain.DimensionKeyword:     {"keywords", "keyword"},
	domain.DimensionGame:        {"games", "game"},
	domain.DimensionFinish:      {"finishes", "finish"},
}

// deleteOrder lists every catalog table, children before parents, for the
// full-reload wipe. Collection rows are carried separately by the loader and
// must be moved aside before finish_cards go.
var deleteOrder = []string{
	"finish_cards",
	"game_cards",
	"keyword_cards",
	"color_identity_cards",
	"color_cards",
	"faces",
	"cards",
	"sets",
	"finishes",
	"games",
	"keywords",
	"colors",
	"frames",
	"border_colors",
	"rarities",
	"set_types",
	"legalities",
	"image_statuses",
	"layouts",
	"langs",
}

// DeleteAll removes every catalog row. Meant to run inside the reload
// transaction so a failed load leaves the previous catalog intact.
func (r *Repo) DeleteAll(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	for _, table := range deleteOrder {
		if _, err := q.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// InsertDimensionValues inserts the given values into a dimension table and
// returns the value → id mapping. Values must be distinct; the caller
// collects them into a set during discovery.
func (r *Repo) InsertDimensionValues(ctx context.Context, dim domain.Dimension, values []string) (map[string]int32, error) {
	spec, ok := dimTable[dim]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}
	ids := make(map[string]int32, len(values))
	if len(values) == 0 {
		return ids, nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1) RETURNING id", spec.table, spec.column)

	batch := &pgx.Batch{}
	for _, v := range values {
		batch.Queue(query, v)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for _, v := range values {
		var id int32
		if err := results.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("insert %s value %q: %w", dim, v, err)
		}
		ids[v] = id
	}
	return ids, nil
}

// ResolveValue returns the id for a single dimension value, inserting it if
// absent. The incremental counterpart to InsertDimensionValues.
func (r *Repo) ResolveValue(ctx context.Context, dim domain.Dimension, value string) (int32, error) {
	spec, ok := dimTable[dim]
	if !ok {
		return 0, fmt.Errorf("unknown dimension %q", dim)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ($1) ON CONFLICT (%s) DO NOTHING RETURNING id",
		spec.table, spec.column, spec.column)

	var id int32
	err := q.QueryRow(ctx, insert, value).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("insert %s value %q: %w", dim, value, err)
	}

	// Row already existed; the insert returned nothing.
	sel := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1", spec.table, spec.column)
	if err := q.QueryRow(ctx, sel, value).Scan(&id); err != nil {
		return 0, fmt.Errorf("select %s value %q: %w", dim, value, err)
	}
	return id, nil
}

// InsertSets inserts set rows using pgx.Batch.
func (r *Repo) InsertSets(ctx context.Context, sets []domain.Set) (int, error) {
	if len(sets) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, s := range sets {
		batch.Queue(
			`INSERT INTO sets (id, code, name, set_type_id, released_at, block_code, block,
			                   parent_set_code, card_count, printed_size, digital, foil_only,
			                   nonfoil_only, icon_svg_uri)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			s.ID, s.Code, s.Name, s.TypeID, s.ReleasedAt, s.BlockCode, s.Block,
			s.ParentSetCode, s.CardCount, s.PrintedSize, s.Digital, s.FoilOnly,
			s.NonfoilOnly, s.IconSVGURI,
		)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert set: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
