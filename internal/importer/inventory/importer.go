// Package inventory resolves a user's exported card list against the
// normalized catalog and writes the owned-item rows. The export and the
// catalog disagree on names, set codes, collector numbers and language
// availability; each correction stage is a separate function and the
// correction tables live in tables.go as data.
package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cardvault/cardvault/internal/domain"
)

// Catalog is the read side of identity resolution. Implemented by
// catalog.Repo.
type Catalog interface {
	CollectorNumbersByName(ctx context.Context, name, setCode string) ([]string, error)
	CollectorNumbersByFaceName(ctx context.Context, faceName, setCode string) ([]string, error)
	FinishCandidates(ctx context.Context, setCode, collectorNumber, lang string) ([]domain.FinishCard, error)
	LanguagesFor(ctx context.Context, setCode, collectorNumber string) ([]string, error)
}

// Collection is the write side. Implemented by collection.Repo.
type Collection interface {
	GetOrCreateUser(ctx context.Context, username string) (*domain.User, error)
	MergeItems(ctx context.Context, items []domain.OwnedItem) (int64, error)
}

// TxRunner runs a function inside a database transaction. Implemented by
// postgres.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Report summarizes a finished inventory import.
type Report struct {
	Rows     int
	Resolved int
	Skipped  int
	Items    int64
	Quantity int64
}

// Importer resolves export rows to finish-card identities and upserts the
// owner's collection.
type Importer struct {
	log        *slog.Logger
	catalog    Catalog
	collection Collection
	txm        TxRunner
	keepGoing  bool
}

// NewImporter creates an inventory importer. With keepGoing, a row that fails
// to resolve is reported and skipped instead of aborting the run.
func NewImporter(log *slog.Logger, catalog Catalog, collection Collection, txm TxRunner, keepGoing bool) *Importer {
	return &Importer{log: log, catalog: catalog, collection: collection, txm: txm, keepGoing: keepGoing}
}

// Run reads the export from r and imports it for owner. Resolved rows are
// aggregated by identity key and written in one transaction.
func (i *Importer) Run(ctx context.Context, r io.Reader, owner string) (*Report, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	user, err := i.collection.GetOrCreateUser(ctx, owner)
	if err != nil {
		return nil, err
	}

	report := &Report{Rows: len(rows)}
	byKey := make(map[domain.OwnedItemKey]*domain.OwnedItem)
	var order []domain.OwnedItemKey

	for _, row := range rows {
		item, err := i.resolveRow(ctx, user.ID, row)
		if err != nil {
			err = fmt.Errorf("line %d (%s %s:%s): %w", row.Line, row.Name, row.SetCode, row.Variation, err)
			if !i.keepGoing {
				return nil, err
			}
			i.log.Error("skipping unresolved row", slog.Any("error", err))
			report.Skipped++
			continue
		}

		// The export can list the same holding on several lines; sum them
		// here so the report counts holdings, not lines.
		key := item.Key()
		if existing, ok := byKey[key]; ok {
			existing.Quantity += item.Quantity
		} else {
			byKey[key] = item
			order = append(order, key)
		}
		report.Resolved++
		report.Quantity += int64(item.Quantity)
	}

	items := make([]domain.OwnedItem, 0, len(order))
	for _, key := range order {
		items = append(items, *byKey[key])
	}

	err = i.txm.RunInTx(ctx, func(ctx context.Context) error {
		n, err := i.collection.MergeItems(ctx, items)
		report.Items = n
		return err
	})
	if err != nil {
		return nil, err
	}

	i.log.Info("inventory import finished",
		slog.String("owner", owner),
		slog.Int("rows", report.Rows),
		slog.Int("resolved", report.Resolved),
		slog.Int("skipped", report.Skipped),
		slog.Int64("items", report.Items),
		slog.Int64("quantity", report.Quantity),
	)
	return report, nil
}

// resolveRow runs one export row through the correction pipeline and returns
// the owned item it describes.
func (i *Importer) resolveRow(ctx context.Context, userID int64, row Row) (*domain.OwnedItem, error) {
	condition, ok := conditionMap[row.Condition]
	if !ok {
		return nil, domain.NewInputError("condition", row.Condition, "unknown condition label")
	}

	name := normalizeName(row.Name)

	setCode, variation, err := remapSet(name, row.SetCode, row.Variation)
	if err != nil {
		return nil, err
	}

	flags, language := decodeMarker(row.Marker, row.Language)
	if language == "" || language == "-" {
		language = "en"
	}

	collectorNumber, err := i.resolveCollectorNumber(ctx, name, setCode, variation, &flags)
	if err != nil {
		return nil, err
	}
	collectorNumber = fixCollectorNumber(name, setCode, collectorNumber)

	setCode, collectorNumber = applyMarkers(setCode, collectorNumber, flags)

	if language == "zh" {
		// The export only offers one Chinese option.
		i.log.Warn("language zh assumed to mean Chinese Simplified",
			slog.String("name", name),
			slog.String("set", setCode),
			slog.String("collector_number", collectorNumber),
		)
		language = "zhs"
	}

	finishCard, err := i.lookupFinishCard(ctx, name, setCode, collectorNumber, language, flags.foil)
	if err != nil {
		return nil, err
	}

	return &domain.OwnedItem{
		UserID:       userID,
		FinishCardID: finishCard,
		Condition:    condition,
		Signed:       row.Signed,
		Altered:      row.Altered,
		Notes:        "",
		Quantity:     row.Quantity,
	}, nil
}

// resolveCollectorNumber interprets the variation column: a literal value is
// the collector number, PromoPack marks the default printing's promo-pack
// version, and dash or empty means the default printing.
func (i *Importer) resolveCollectorNumber(ctx context.Context, name, setCode, variation string, flags *markerFlags) (string, error) {
	switch variation {
	case "", "-":
		return i.deriveCollectorNumber(ctx, name, setCode)
	case "PromoPack":
		flags.promoPack = true
		return i.deriveCollectorNumber(ctx, name, setCode)
	default:
		return variation, nil
	}
}

// lookupFinishCard finds the finish-card row for the resolved identity. Two
// retries cover known export defects: a language the printing doesn't come in
// (substituted when exactly one alternative exists) and a collector number
// the catalog splits into versions the export doesn't differentiate.
func (i *Importer) lookupFinishCard(ctx context.Context, name, setCode, collectorNumber, language string, foil bool) (int64, error) {
	candidates, err := i.catalog.FinishCandidates(ctx, setCode, collectorNumber, language)
	if err != nil {
		return 0, err
	}

	if len(candidates) == 0 {
		language, err = i.substituteLanguage(ctx, name, setCode, collectorNumber, language)
		if err != nil {
			return 0, err
		}
		if candidates, err = i.catalog.FinishCandidates(ctx, setCode, collectorNumber, language); err != nil {
			return 0, err
		}
	}

	if len(candidates) == 0 {
		if collectorNumber, err = i.deriveCollectorNumber(ctx, name, setCode); err != nil {
			return 0, err
		}
		if candidates, err = i.catalog.FinishCandidates(ctx, setCode, collectorNumber, language); err != nil {
			return 0, err
		}
	}

	switch len(candidates) {
	case 0:
		return 0, fmt.Errorf("printing %s:%s (%s): %w", setCode, collectorNumber, language, domain.ErrNotFound)
	case 1:
		return candidates[0].ID, nil
	}

	return i.chooseFinish(name, setCode, collectorNumber, language, foil, candidates)
}

// substituteLanguage checks whether the language column is the reason a
// lookup came up empty. One available alternative is substituted with a
// warning; several is an ambiguity the operator must resolve in the source.
func (i *Importer) substituteLanguage(ctx context.Context, name, setCode, collectorNumber, language string) (string, error) {
	available, err := i.catalog.LanguagesFor(ctx, setCode, collectorNumber)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return language, nil
	}
	for _, l := range available {
		if l == language {
			return language, nil
		}
	}

	if len(available) > 1 {
		return "", &domain.AmbiguousError{
			SetCode:         setCode,
			CollectorNumber: collectorNumber,
			Lang:            language,
			Candidates:      available,
		}
	}

	i.log.Warn("printing not available in requested language, substituting the only option",
		slog.String("name", name),
		slog.String("set", setCode),
		slog.String("collector_number", collectorNumber),
		slog.String("requested", language),
		slog.String("substituted", available[0]),
	)
	return available[0], nil
}

// chooseFinish disambiguates multiple finish candidates by the requested
// foil flag. The export has no etched notion, so etched availability gets a
// warning either way.
func (i *Importer) chooseFinish(name, setCode, collectorNumber, language string, foil bool, candidates []domain.FinishCard) (int64, error) {
	want := "nonfoil"
	if foil {
		want = "foil"
	}

	var chosen []domain.FinishCard
	finishes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		finishes = append(finishes, c.Finish)
		if c.Finish == "etched" {
			i.log.Info("printing also available in etched, verify the source data",
				slog.String("name", name),
				slog.String("set", setCode),
				slog.String("collector_number", collectorNumber),
			)
		}
		if c.Finish == want {
			chosen = append(chosen, c)
		}
	}

	if len(chosen) != 1 {
		return 0, &domain.AmbiguousError{
			SetCode:         setCode,
			CollectorNumber: collectorNumber,
			Lang:            language,
			Candidates:      finishes,
		}
	}
	return chosen[0].ID, nil
}
