package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	postgres "github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/adapter/postgres/catalog"
	"github.com/cardvault/cardvault/internal/adapter/postgres/testhelper"
	"github.com/cardvault/cardvault/internal/domain"
)

// errRollback aborts a RunInTx block so full-reload tests never leak into the
// shared test database.
var errRollback = errors.New("rollback test transaction")

func TestResolveValue_Idempotent(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := catalog.NewRepo(pool)
	ctx := context.Background()

	value := "kw-" + uuid.New().String()[:8]

	first, err := repo.ResolveValue(ctx, domain.DimensionKeyword, value)
	if err != nil {
		t.Fatalf("first ResolveValue: %v", err)
	}
	second, err := repo.ResolveValue(ctx, domain.DimensionKeyword, value)
	if err != nil {
		t.Fatalf("second ResolveValue: %v", err)
	}
	if first != second {
		t.Errorf("ids differ: %d vs %d", first, second)
	}
}

func TestResolveValue_UnknownDimension(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := catalog.NewRepo(pool)

	if _, err := repo.ResolveValue(context.Background(), domain.Dimension("bogus"), "x"); err == nil {
		t.Error("expected error for unknown dimension")
	}
}

func TestFullReloadRoundTrip(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := catalog.NewRepo(pool)
	txm := postgres.NewTxManager(pool)

	err := txm.RunInTx(context.Background(), func(ctx context.Context) error {
		// Holdings move aside before the wipe, the way the loader does it;
		// otherwise finish_cards rows they reference cannot be deleted.
		q := postgres.QuerierFromCtx(ctx, pool)
		if _, err := q.Exec(ctx, `DELETE FROM collections`); err != nil {
			t.Fatalf("clear collections: %v", err)
		}

		if err := repo.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll: %v", err)
		}

		dims := map[domain.Dimension][]string{
			domain.DimensionLang:        {"en", "ja"},
			domain.DimensionLayout:      {"normal"},
			domain.DimensionImageStatus: {"highres_scan"},
			domain.DimensionLegality:    {"not_legal"},
			domain.DimensionSetType:     {"expansion"},
			domain.DimensionRarity:      {"common"},
			domain.DimensionBorderColor: {"black"},
			domain.DimensionFrame:       {"2015"},
			domain.DimensionColor:       {"G"},
			domain.DimensionKeyword:     {"Flying"},
			domain.DimensionGame:        {"paper"},
			domain.DimensionFinish:      {"nonfoil", "foil"},
		}
		ids := make(map[domain.Dimension]map[string]int32, len(dims))
		for dim, values := range dims {
			m, err := repo.InsertDimensionValues(ctx, dim, values)
			if err != nil {
				t.Fatalf("InsertDimensionValues %s: %v", dim, err)
			}
			if len(m) != len(values) {
				t.Fatalf("dimension %s: got %d ids, want %d", dim, len(m), len(values))
			}
			ids[dim] = m
		}

		setID := uuid.New()
		inserted, err := repo.InsertSets(ctx, []domain.Set{{
			ID:     setID,
			Code:   "tst",
			Name:   "Test Set",
			TypeID: ids[domain.DimensionSetType]["expansion"],
		}})
		if err != nil || inserted != 1 {
			t.Fatalf("InsertSets: inserted=%d err=%v", inserted, err)
		}

		legalities := make(map[domain.Format]int32, len(domain.Formats))
		for _, f := range domain.Formats {
			legalities[f] = ids[domain.DimensionLegality]["not_legal"]
		}
		newCard := func(name, cn, lang string, def bool) *domain.Card {
			return &domain.Card{
				ID:              uuid.New(),
				OracleID:        uuid.New(),
				Name:            name,
				LangID:          ids[domain.DimensionLang][lang],
				DefaultLang:     def,
				ReleasedAt:      time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC),
				LayoutID:        ids[domain.DimensionLayout]["normal"],
				ImageStatusID:   ids[domain.DimensionImageStatus]["highres_scan"],
				Legalities:      legalities,
				SetID:           setID,
				CollectorNumber: cn,
				RarityID:        ids[domain.DimensionRarity]["common"],
				BorderColorID:   ids[domain.DimensionBorderColor]["black"],
				FrameID:         ids[domain.DimensionFrame]["2015"],
			}
		}
		cards := []*domain.Card{
			newCard("Turn // Burn", "134", "en", true),
			newCard("Turn // Burn", "134", "ja", false),
		}

		i := 0
		n, err := repo.CopyCards(ctx, func() (*domain.Card, error) {
			if i == len(cards) {
				return nil, nil
			}
			i++
			return cards[i-1], nil
		})
		if err != nil || n != 2 {
			t.Fatalf("CopyCards: n=%d err=%v", n, err)
		}

		if _, err := repo.CopyFaces(ctx, []domain.Face{
			{CardID: cards[0].ID, Name: "Turn", ManaCost: "{2}{U}", OracleText: "x"},
			{CardID: cards[0].ID, Name: "Burn", ManaCost: "{1}{R}", OracleText: "y"},
		}); err != nil {
			t.Fatalf("CopyFaces: %v", err)
		}

		links := []domain.CardLink{
			{CardID: cards[0].ID, DimID: ids[domain.DimensionFinish]["nonfoil"]},
			{CardID: cards[0].ID, DimID: ids[domain.DimensionFinish]["foil"]},
			{CardID: cards[1].ID, DimID: ids[domain.DimensionFinish]["nonfoil"]},
		}
		if _, err := repo.CopyFinishLinks(ctx, links); err != nil {
			t.Fatalf("CopyFinishLinks: %v", err)
		}

		// Lookups observe the uncommitted load through the tx context.
		numbers, err := repo.CollectorNumbersByName(ctx, "TURN // burn", "tst")
		if err != nil {
			t.Fatalf("CollectorNumbersByName: %v", err)
		}
		if len(numbers) != 2 || numbers[0] != "134" {
			t.Errorf("collector numbers: %v", numbers)
		}

		faceNumbers, err := repo.CollectorNumbersByFaceName(ctx, "turn", "tst")
		if err != nil {
			t.Fatalf("CollectorNumbersByFaceName: %v", err)
		}
		if len(faceNumbers) != 1 || faceNumbers[0] != "134" {
			t.Errorf("face collector numbers: %v", faceNumbers)
		}

		candidates, err := repo.FinishCandidates(ctx, "tst", "134", "en")
		if err != nil {
			t.Fatalf("FinishCandidates: %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("en candidates: %v", candidates)
		}
		// Ordered by finish name.
		if candidates[0].Finish != "foil" || candidates[1].Finish != "nonfoil" {
			t.Errorf("candidate order: %v", candidates)
		}

		all, err := repo.FinishCandidates(ctx, "tst", "134", "")
		if err != nil {
			t.Fatalf("FinishCandidates all langs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("unfiltered candidates: %v", all)
		}

		langs, err := repo.LanguagesFor(ctx, "tst", "134")
		if err != nil {
			t.Fatalf("LanguagesFor: %v", err)
		}
		if len(langs) != 2 || langs[0] != "en" || langs[1] != "ja" {
			t.Errorf("languages: %v", langs)
		}

		options, err := repo.AvailableLanguages(ctx, "tst", "134")
		if err != nil {
			t.Fatalf("AvailableLanguages: %v", err)
		}
		if len(options) != 2 || !options[0].Default || options[0].Lang != "en" {
			t.Errorf("default language must sort first: %v", options)
		}

		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("expected rollback sentinel, got %v", err)
	}
}

func TestLookups_SeededPrintings(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := catalog.NewRepo(pool)
	ctx := context.Background()

	code := "s" + uuid.New().String()[:4]
	testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Storm Crow",
		SetCode:         code,
		CollectorNumber: "95",
		DefaultLang:     true,
		Finishes:        []string{"nonfoil"},
	})
	testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Storm Crow",
		SetCode:         code,
		CollectorNumber: "95★",
		Finishes:        []string{"foil"},
	})

	numbers, err := repo.CollectorNumbersByName(ctx, "storm crow", code)
	if err != nil {
		t.Fatalf("CollectorNumbersByName: %v", err)
	}
	if len(numbers) != 2 {
		t.Errorf("collector numbers: %v", numbers)
	}

	candidates, err := repo.FinishCandidates(ctx, code, "95★", "en")
	if err != nil {
		t.Fatalf("FinishCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Finish != "foil" {
		t.Errorf("candidates: %v", candidates)
	}

	if numbers, _ := repo.CollectorNumbersByName(ctx, "storm crow", "zzz"); len(numbers) != 0 {
		t.Errorf("wrong set must not match: %v", numbers)
	}
}
