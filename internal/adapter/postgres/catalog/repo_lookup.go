package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	postgres "github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// CollectorNumbersByName returns the collector numbers of every printing of
// the named card in a set. Name matching is case-insensitive.
func (r *Repo) CollectorNumbersByName(ctx context.Context, name, setCode string) ([]string, error) {
	query := psql.Select("c.collector_number").
		From("cards c").
		Join("sets s ON s.id = c.set_id").
		Where(squirrel.Eq{"lower(c.name)": strings.ToLower(name), "s.code": setCode})

	return r.queryStrings(ctx, query, "collector numbers by name")
}

// CollectorNumbersByFaceName is the fallback for multi-faced cards whose
// inventory rows carry a single face's name.
func (r *Repo) CollectorNumbersByFaceName(ctx context.Context, faceName, setCode string) ([]string, error) {
	query := psql.Select("DISTINCT c.collector_number").
		From("faces f").
		Join("cards c ON c.id = f.card_id").
		Join("sets s ON s.id = c.set_id").
		Where(squirrel.Eq{"lower(f.name)": strings.ToLower(faceName), "s.code": setCode})

	return r.queryStrings(ctx, query, "collector numbers by face name")
}

// FinishCandidates returns the finish-card rows for one printing group
// member: (set, collector number) narrowed by language when lang is
// non-empty.
func (r *Repo) FinishCandidates(ctx context.Context, setCode, collectorNumber, lang string) ([]domain.FinishCard, error) {
	query := psql.Select("fc.id", "fc.card_id", "fc.finish_id", "f.finish").
		From("finish_cards fc").
		Join("finishes f ON f.id = fc.finish_id").
		Join("cards c ON c.id = fc.card_id").
		Join("sets s ON s.id = c.set_id").
		Where(squirrel.Eq{"s.code": setCode, "c.collector_number": collectorNumber}).
		OrderBy("f.finish")
	if lang != "" {
		query = query.
			Join("langs l ON l.id = c.lang_id").
			Where(squirrel.Eq{"l.lang": lang})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build finish candidates query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("finish candidates %s:%s: %w", setCode, collectorNumber, err)
	}
	defer rows.Close()

	var candidates []domain.FinishCard
	for rows.Next() {
		var fc domain.FinishCard
		if err := rows.Scan(&fc.ID, &fc.CardID, &fc.FinishID, &fc.Finish); err != nil {
			return nil, fmt.Errorf("scan finish candidate: %w", err)
		}
		candidates = append(candidates, fc)
	}
	return candidates, rows.Err()
}

// LanguagesFor returns the languages a printing group exists in.
func (r *Repo) LanguagesFor(ctx context.Context, setCode, collectorNumber string) ([]string, error) {
	query := psql.Select("l.lang").
		From("cards c").
		Join("sets s ON s.id = c.set_id").
		Join("langs l ON l.id = c.lang_id").
		Where(squirrel.Eq{"s.code": setCode, "c.collector_number": collectorNumber}).
		OrderBy("l.lang")

	return r.queryStrings(ctx, query, "languages for printing")
}

// AvailableLanguages returns the language options for a printing group with
// the default-language entry first.
func (r *Repo) AvailableLanguages(ctx context.Context, setCode, collectorNumber string) ([]domain.LanguageOption, error) {
	query := psql.Select("l.lang", "c.default_lang").
		From("cards c").
		Join("sets s ON s.id = c.set_id").
		Join("langs l ON l.id = c.lang_id").
		Where(squirrel.Eq{"s.code": setCode, "c.collector_number": collectorNumber}).
		OrderBy("c.default_lang DESC", "l.lang")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build available languages query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("available languages %s:%s: %w", setCode, collectorNumber, err)
	}
	defer rows.Close()

	var options []domain.LanguageOption
	for rows.Next() {
		var opt domain.LanguageOption
		if err := rows.Scan(&opt.Lang, &opt.Default); err != nil {
			return nil, fmt.Errorf("scan language option: %w", err)
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (r *Repo) queryStrings(ctx context.Context, query squirrel.SelectBuilder, op string) ([]string, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
