// Package bulkload rebuilds the card catalog from the provider's bulk feeds.
// The load is a full replace: the complete feed supplies every printed
// version, the curated feed marks the default version of each printing group,
// and the optional sets listing enriches set metadata. Owned items are
// snapshotted by printing value identity and re-linked to the new catalog at
// the end. Everything happens in one transaction so a failed load leaves the
// previous catalog and collections intact.
package bulkload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/cardvault/cardvault/internal/domain"
	"github.com/cardvault/cardvault/internal/scryfall"
)

// Config holds the loader inputs.
type Config struct {
	AllPath     string // complete feed: every version of every card
	DefaultPath string // curated feed: one version per card
	SetsPath    string // sets listing, optional
	BatchSize   int    // rows per COPY batch for faces and junction rows
}

// Stats summarizes a finished load.
type Stats struct {
	DefaultVersions int
	DimensionValues int
	Sets            int
	Cards           int64
	Faces           int64
	Colors          int64
	ColorIdentities int64
	Keywords        int64
	Games           int64
	Finishes        int64
	Holdings        int64
	Duration        time.Duration
}

// Loader orchestrates the two-pass catalog load.
type Loader struct {
	log      *slog.Logger
	repo     CatalogRepo
	holdings HoldingsRepo
	txm      TxRunner
	cfg      Config
}

// NewLoader creates a catalog loader.
func NewLoader(log *slog.Logger, repo CatalogRepo, holdings HoldingsRepo, txm TxRunner, cfg Config) *Loader {
	return &Loader{log: log, repo: repo, holdings: holdings, txm: txm, cfg: cfg}
}

// Run performs the load: a discovery pass over the complete feed, the
// invariant checks, then the transactional rebuild with cards streamed
// straight from the decoder into COPY.
func (l *Loader) Run(ctx context.Context) (*Stats, error) {
	started := time.Now()
	stats := &Stats{}

	defaults, err := l.readDefaults()
	if err != nil {
		return nil, err
	}
	stats.DefaultVersions = len(defaults)

	disc, err := l.discover(defaults)
	if err != nil {
		return nil, err
	}

	// A curated feed with more records than the complete feed means the two
	// file arguments were swapped.
	if len(defaults) > disc.cards {
		return nil, fmt.Errorf("curated feed has %d records but complete feed has %d: are the feeds swapped?",
			len(defaults), disc.cards)
	}
	if err := disc.checkGroups(); err != nil {
		return nil, err
	}

	setTypes, setsListing, err := l.readSetsListing()
	if err != nil {
		return nil, err
	}
	for _, v := range setTypes {
		disc.add(domain.DimensionSetType, v)
	}

	err = l.txm.RunInTx(ctx, func(ctx context.Context) error {
		// Owned items must survive the reload. They reference printings by
		// value identity, so snapshot them in that form, move them aside,
		// and re-link them once the new catalog is in place.
		snapshot, err := l.holdings.SnapshotHoldings(ctx)
		if err != nil {
			return err
		}
		if err := l.holdings.DeleteAllItems(ctx); err != nil {
			return err
		}

		if err := l.repo.DeleteAll(ctx); err != nil {
			return err
		}
		l.log.Info("catalog wiped", slog.Int("holdings_carried", len(snapshot)))

		res := newResolver()
		for _, dim := range domain.Dimensions {
			values := disc.dimValues(dim)
			ids, err := l.repo.InsertDimensionValues(ctx, dim, values)
			if err != nil {
				return err
			}
			res.put(dim, ids)
			stats.DimensionValues += len(ids)
		}
		l.log.Info("dimensions loaded", slog.Int("values", stats.DimensionValues))

		sets, err := buildSets(disc, setsListing, res)
		if err != nil {
			return err
		}
		if stats.Sets, err = l.repo.InsertSets(ctx, sets); err != nil {
			return err
		}
		l.log.Info("sets loaded", slog.Int("sets", stats.Sets))

		if err := l.loadCards(ctx, res, defaults, stats); err != nil {
			return err
		}

		if stats.Holdings, err = l.holdings.RestoreHoldings(ctx, snapshot); err != nil {
			return err
		}
		l.log.Info("holdings re-linked", slog.Int64("holdings", stats.Holdings))
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.Duration = time.Since(started)
	l.log.Info("catalog load finished",
		slog.Int64("cards", stats.Cards),
		slog.Int64("faces", stats.Faces),
		slog.Int("sets", stats.Sets),
		slog.Int("default_versions", stats.DefaultVersions),
		slog.Int64("holdings", stats.Holdings),
		slog.Duration("duration", stats.Duration),
	)
	return stats, nil
}

func (l *Loader) readDefaults() (map[string]struct{}, error) {
	f, err := os.Open(l.cfg.DefaultPath)
	if err != nil {
		return nil, fmt.Errorf("open curated feed: %w", err)
	}
	defer f.Close()

	defaults, err := readDefaultIDs(f)
	if err != nil {
		return nil, err
	}
	l.log.Info("curated feed read", slog.Int("default_versions", len(defaults)))
	return defaults, nil
}

func (l *Loader) discover(defaults map[string]struct{}) (*discovery, error) {
	f, err := os.Open(l.cfg.AllPath)
	if err != nil {
		return nil, fmt.Errorf("open complete feed: %w", err)
	}
	defer f.Close()

	disc := newDiscovery()
	_, err = scryfall.ForEachCard(f, func(c *scryfall.Card) error {
		_, isDefault := defaults[c.ID]
		return disc.observe(c, isDefault)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("discovery pass finished",
		slog.Int("cards", disc.cards),
		slog.Int("sets", len(disc.sets)),
		slog.Int("groups", len(disc.groups)),
	)
	return disc, nil
}

// readSetsListing returns the listing's set types and records. Without a
// listing both are empty and sets fall back to what the card feed reveals.
func (l *Loader) readSetsListing() ([]string, map[string]scryfall.Set, error) {
	if l.cfg.SetsPath == "" {
		return nil, nil, nil
	}

	f, err := os.Open(l.cfg.SetsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sets listing: %w", err)
	}
	defer f.Close()

	records, err := scryfall.DecodeSets(f)
	if err != nil {
		return nil, nil, err
	}

	types := make([]string, 0, 8)
	seen := make(map[string]struct{})
	byCode := make(map[string]scryfall.Set, len(records))
	for _, s := range records {
		byCode[s.Code] = s
		if _, ok := seen[s.SetType]; !ok {
			seen[s.SetType] = struct{}{}
			types = append(types, s.SetType)
		}
	}
	l.log.Info("sets listing read", slog.Int("sets", len(records)))
	return types, byCode, nil
}

// buildSets merges the card-feed set info with the listing. Only sets that
// cards reference are inserted; the listing contributes the extended fields.
func buildSets(disc *discovery, listing map[string]scryfall.Set, res *resolver) ([]domain.Set, error) {
	codes := make([]string, 0, len(disc.sets))
	for code := range disc.sets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	sets := make([]domain.Set, 0, len(codes))
	for _, code := range codes {
		info := disc.sets[code]
		set := domain.Set{ID: info.id, Code: code, Name: info.name}

		setType := info.setType
		if rec, ok := listing[code]; ok {
			setType = rec.SetType
			set.Name = rec.Name
			set.BlockCode = rec.BlockCode
			set.Block = rec.Block
			set.ParentSetCode = rec.ParentSetCode
			set.CardCount = rec.CardCount
			set.PrintedSize = rec.PrintedSize
			set.Digital = rec.Digital
			set.FoilOnly = rec.FoilOnly
			set.NonfoilOnly = rec.NonfoilOnly
			set.IconSVGURI = rec.IconSVGURI
			if rec.ReleasedAt != nil {
				t, err := time.Parse("2006-01-02", *rec.ReleasedAt)
				if err != nil {
					return nil, fmt.Errorf("set %s: bad released_at %q", code, *rec.ReleasedAt)
				}
				set.ReleasedAt = &t
			}
		}

		typeID, err := res.lookup(domain.DimensionSetType, setType)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", code, err)
		}
		set.TypeID = typeID
		sets = append(sets, set)
	}
	return sets, nil
}

// loadCards is the second pass: cards stream from the decoder into COPY while
// face and junction rows accumulate, then those are copied in batches.
func (l *Loader) loadCards(ctx context.Context, res *resolver, defaults map[string]struct{}, stats *Stats) error {
	f, err := os.Open(l.cfg.AllPath)
	if err != nil {
		return fmt.Errorf("open complete feed: %w", err)
	}
	defer f.Close()

	dec := scryfall.NewCardDecoder(f)

	var (
		faces []domain.Face
		links linkSet
	)
	next := func() (*domain.Card, error) {
		c, err := dec.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		_, isDefault := defaults[c.ID]
		card, cardFaces, cardLinks, err := buildCard(c, res, isDefault)
		if err != nil {
			return nil, err
		}
		faces = append(faces, cardFaces...)
		links.colors = append(links.colors, cardLinks.colors...)
		links.colorIdentities = append(links.colorIdentities, cardLinks.colorIdentities...)
		links.keywords = append(links.keywords, cardLinks.keywords...)
		links.games = append(links.games, cardLinks.games...)
		links.finishes = append(links.finishes, cardLinks.finishes...)
		return card, nil
	}

	if stats.Cards, err = l.repo.CopyCards(ctx, next); err != nil {
		return err
	}
	l.log.Info("cards loaded", slog.Int64("cards", stats.Cards))

	size := l.cfg.BatchSize
	if stats.Faces, err = copyBatched(ctx, faces, size, l.repo.CopyFaces); err != nil {
		return err
	}
	if stats.Colors, err = copyBatched(ctx, links.colors, size, l.repo.CopyColorLinks); err != nil {
		return err
	}
	if stats.ColorIdentities, err = copyBatched(ctx, links.colorIdentities, size, l.repo.CopyColorIdentityLinks); err != nil {
		return err
	}
	if stats.Keywords, err = copyBatched(ctx, links.keywords, size, l.repo.CopyKeywordLinks); err != nil {
		return err
	}
	if stats.Games, err = copyBatched(ctx, links.games, size, l.repo.CopyGameLinks); err != nil {
		return err
	}
	if stats.Finishes, err = copyBatched(ctx, links.finishes, size, l.repo.CopyFinishLinks); err != nil {
		return err
	}
	l.log.Info("faces and links loaded",
		slog.Int64("faces", stats.Faces),
		slog.Int64("finishes", stats.Finishes),
	)
	return nil
}

func copyBatched[T any](ctx context.Context, rows []T, size int, copyFn func(context.Context, []T) (int64, error)) (int64, error) {
	if size <= 0 {
		size = len(rows)
	}
	var total int64
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		n, err := copyFn(ctx, rows[start:end])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
