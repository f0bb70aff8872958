// Package collection is the PostgreSQL repository for users and their owned
// cards. An owned item is identified by its six-field key (user, printing,
// condition, signed, altered, notes); quantity is the only mutable column.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides collection storage operations.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates a collection repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// UserByUsername returns the user with the given username.
// Returns domain.ErrNotFound if no such user exists.
func (r *Repo) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	user := domain.User{Username: username}
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&user.ID)
	if err != nil {
		return nil, mapError(err, "user", username)
	}
	return &user, nil
}

// GetOrCreateUser returns the user with the given username, creating it if
// absent.
func (r *Repo) GetOrCreateUser(ctx context.Context, username string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	user := domain.User{Username: username}
	// DO UPDATE instead of DO NOTHING so RETURNING always yields the row.
	err := q.QueryRow(ctx,
		`INSERT INTO users (username) VALUES ($1)
		 ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		 RETURNING id`,
		username,
	).Scan(&user.ID)
	if err != nil {
		return nil, mapError(err, "user", username)
	}
	return &user, nil
}

// MergeItems upserts owned items by their identity key in one batch, summing
// quantities with rows that already exist. Re-running an import therefore
// adds to a holding instead of failing on the unique constraint.
func (r *Repo) MergeItems(ctx context.Context, items []domain.OwnedItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		if !it.Condition.IsValid() {
			return 0, domain.NewInputError("condition", string(it.Condition), "unknown condition")
		}
		if it.Quantity <= 0 {
			return 0, domain.NewValidationError("quantity", "must be positive")
		}
		batch.Queue(
			`INSERT INTO collections (user_id, finish_card_id, condition, signed, altered, notes, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (user_id, finish_card_id, condition, signed, altered, notes)
			 DO UPDATE SET quantity = collections.quantity + EXCLUDED.quantity`,
			it.UserID, it.FinishCardID, string(it.Condition),
			it.Signed, it.Altered, it.Notes, it.Quantity,
		)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var n int64
	for i := range items {
		tag, err := results.Exec()
		if err != nil {
			return n, mapError(err, "collection item", itemKey(items[i].UserID, items[i].FinishCardID))
		}
		n += tag.RowsAffected()
	}
	return n, nil
}

// SnapshotHoldings returns every collection row keyed by printing value
// identity. Runs inside the reload transaction, before the catalog wipe.
func (r *Repo) SnapshotHoldings(ctx context.Context) ([]domain.HoldingSnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT col.user_id, s.code, c.collector_number, l.lang, f.finish,
		        col.condition, col.signed, col.altered, col.notes, col.quantity
		 FROM collections col
		 JOIN finish_cards fc ON fc.id = col.finish_card_id
		 JOIN finishes f ON f.id = fc.finish_id
		 JOIN cards c ON c.id = fc.card_id
		 JOIN sets s ON s.id = c.set_id
		 JOIN langs l ON l.id = c.lang_id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.HoldingSnapshot
	for rows.Next() {
		var h domain.HoldingSnapshot
		var condition string
		err := rows.Scan(&h.UserID, &h.SetCode, &h.CollectorNumber, &h.Lang, &h.Finish,
			&condition, &h.Signed, &h.Altered, &h.Notes, &h.Quantity)
		if err != nil {
			return nil, fmt.Errorf("scan holding snapshot: %w", err)
		}
		h.Condition = domain.Condition(condition)
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// DeleteAllItems removes every collection row. Only the reload path uses it,
// after snapshotting, so the catalog wipe does not trip the finish-card FK.
func (r *Repo) DeleteAllItems(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM collections`); err != nil {
		return fmt.Errorf("delete collection items: %w", err)
	}
	return nil
}

// RestoreHoldings re-links snapshotted holdings to the freshly loaded
// catalog by printing value identity. A holding whose printing no longer
// exists fails the restore, and with it the reload transaction.
func (r *Repo) RestoreHoldings(ctx context.Context, holdings []domain.HoldingSnapshot) (int64, error) {
	if len(holdings) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, h := range holdings {
		batch.Queue(
			`INSERT INTO collections (user_id, finish_card_id, condition, signed, altered, notes, quantity)
			 SELECT $1, fc.id, $2, $3, $4, $5, $6
			 FROM finish_cards fc
			 JOIN finishes f ON f.id = fc.finish_id
			 JOIN cards c ON c.id = fc.card_id
			 JOIN sets s ON s.id = c.set_id
			 JOIN langs l ON l.id = c.lang_id
			 WHERE s.code = $7 AND c.collector_number = $8 AND l.lang = $9 AND f.finish = $10`,
			h.UserID, string(h.Condition), h.Signed, h.Altered, h.Notes, h.Quantity,
			h.SetCode, h.CollectorNumber, h.Lang, h.Finish,
		)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var n int64
	for _, h := range holdings {
		tag, err := results.Exec()
		if err != nil {
			return n, mapError(err, "holding", holdingKey(h))
		}
		if tag.RowsAffected() == 0 {
			return n, fmt.Errorf("holding %s: printing gone from the catalog: %w",
				holdingKey(h), domain.ErrNotFound)
		}
		n += tag.RowsAffected()
	}
	return n, nil
}

// Add upserts an owned item by its key, summing quantities when the row
// already exists. Returns the stored row.
func (r *Repo) Add(ctx context.Context, item domain.OwnedItem) (*domain.OwnedItem, error) {
	if !item.Condition.IsValid() {
		return nil, domain.NewInputError("condition", string(item.Condition), "unknown condition")
	}
	if item.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	err := q.QueryRow(ctx,
		`INSERT INTO collections (user_id, finish_card_id, condition, signed, altered, notes, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, finish_card_id, condition, signed, altered, notes)
		 DO UPDATE SET quantity = collections.quantity + EXCLUDED.quantity
		 RETURNING id, quantity`,
		item.UserID, item.FinishCardID, string(item.Condition),
		item.Signed, item.Altered, item.Notes, item.Quantity,
	).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, mapError(err, "collection item", itemKey(item.UserID, item.FinishCardID))
	}
	return &item, nil
}

// SetQuantity sets the quantity of the row identified by key. Quantity 0
// deletes the row. Returns domain.ErrNotFound when no row matches.
func (r *Repo) SetQuantity(ctx context.Context, key domain.OwnedItemKey, quantity int32) error {
	if quantity < 0 {
		return domain.NewValidationError("quantity", "must not be negative")
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	keyWhere := `user_id = $1 AND finish_card_id = $2 AND condition = $3
	             AND signed = $4 AND altered = $5 AND notes = $6`
	keyArgs := []any{
		key.UserID, key.FinishCardID, string(key.Condition),
		key.Signed, key.Altered, key.Notes,
	}

	if quantity == 0 {
		tag, err := q.Exec(ctx, `DELETE FROM collections WHERE `+keyWhere, keyArgs...)
		if err != nil {
			return mapError(err, "collection item", itemKey(key.UserID, key.FinishCardID))
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("collection item %s: %w", itemKey(key.UserID, key.FinishCardID), domain.ErrNotFound)
		}
		return nil
	}

	args := append([]any{}, keyArgs...)
	args = append(args, quantity)
	tag, err := q.Exec(ctx, `UPDATE collections SET quantity = $7 WHERE `+keyWhere, args...)
	if err != nil {
		return mapError(err, "collection item", itemKey(key.UserID, key.FinishCardID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("collection item %s: %w", itemKey(key.UserID, key.FinishCardID), domain.ErrNotFound)
	}
	return nil
}

// Get returns the owned item identified by key.
// Returns domain.ErrNotFound if no row matches.
func (r *Repo) Get(ctx context.Context, key domain.OwnedItemKey) (*domain.OwnedItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	item := domain.OwnedItem{
		UserID:       key.UserID,
		FinishCardID: key.FinishCardID,
		Condition:    key.Condition,
		Signed:       key.Signed,
		Altered:      key.Altered,
		Notes:        key.Notes,
	}
	err := q.QueryRow(ctx,
		`SELECT id, quantity FROM collections
		 WHERE user_id = $1 AND finish_card_id = $2 AND condition = $3
		   AND signed = $4 AND altered = $5 AND notes = $6`,
		key.UserID, key.FinishCardID, string(key.Condition),
		key.Signed, key.Altered, key.Notes,
	).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, mapError(err, "collection item", itemKey(key.UserID, key.FinishCardID))
	}
	return &item, nil
}

// ListByUser returns a page of the user's collection joined with catalog
// context, ordered by card name. search filters by card name substring when
// non-empty.
func (r *Repo) ListByUser(ctx context.Context, userID int64, search string, limit, offset uint64) ([]domain.CollectionListItem, error) {
	query := psql.Select(
		"col.id", "col.user_id", "col.finish_card_id", "col.condition",
		"col.signed", "col.altered", "col.notes", "col.quantity",
		"c.name", "s.code", "c.collector_number", "l.lang", "f.finish",
	).
		From("collections col").
		Join("finish_cards fc ON fc.id = col.finish_card_id").
		Join("finishes f ON f.id = fc.finish_id").
		Join("cards c ON c.id = fc.card_id").
		Join("sets s ON s.id = c.set_id").
		Join("langs l ON l.id = c.lang_id").
		Where(squirrel.Eq{"col.user_id": userID}).
		OrderBy("c.name", "s.code", "c.collector_number", "col.id")
	if search != "" {
		query = query.Where(squirrel.ILike{"c.name": "%" + search + "%"})
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	defer rows.Close()

	var items []domain.CollectionListItem
	for rows.Next() {
		var it domain.CollectionListItem
		var condition string
		err := rows.Scan(
			&it.ID, &it.UserID, &it.FinishCardID, &condition,
			&it.Signed, &it.Altered, &it.Notes, &it.Quantity,
			&it.CardName, &it.SetCode, &it.CollectorNumber, &it.Lang, &it.Finish,
		)
		if err != nil {
			return nil, fmt.Errorf("scan collection item: %w", err)
		}
		it.Condition = domain.Condition(condition)
		items = append(items, it)
	}
	return items, rows.Err()
}

// itemKey names a collection row in error messages.
func itemKey(userID, finishCardID int64) string {
	return fmt.Sprintf("user %d finish-card %d", userID, finishCardID)
}

// holdingKey names a snapshotted holding in error messages.
func holdingKey(h domain.HoldingSnapshot) string {
	return fmt.Sprintf("user %d %s:%s (%s, %s)", h.UserID, h.SetCode, h.CollectorNumber, h.Lang, h.Finish)
}

// mapError converts pgx/pgconn errors to domain errors.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, key, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, key, err)
}
