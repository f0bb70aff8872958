package collection_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	postgres "github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/adapter/postgres/collection"
	"github.com/cardvault/cardvault/internal/adapter/postgres/testhelper"
	"github.com/cardvault/cardvault/internal/domain"
)

// errRollback aborts a RunInTx block so reload-style tests never leak into
// the shared test database.
var errRollback = errors.New("rollback test transaction")

func TestGetOrCreateUser(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	username := "owner-" + uuid.New().String()[:8]

	first, err := repo.GetOrCreateUser(ctx, username)
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	second, err := repo.GetOrCreateUser(ctx, username)
	if err != nil {
		t.Fatalf("second GetOrCreateUser: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}

	got, err := repo.UserByUsername(ctx, username)
	if err != nil {
		t.Fatalf("UserByUsername: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("UserByUsername id: got %d, want %d", got.ID, first.ID)
	}
}

func TestUserByUsername_NotFound(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)

	_, err := repo.UserByUsername(context.Background(), "nobody-"+uuid.New().String()[:8])
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestAdd_SumsQuantities(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	printing := testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Lightning Helix",
		SetCode:         "s" + uuid.New().String()[:4],
		CollectorNumber: "125",
		DefaultLang:     true,
	})

	item := domain.OwnedItem{
		UserID:       user.ID,
		FinishCardID: printing.FinishCards["nonfoil"],
		Condition:    domain.ConditionNearMint,
		Quantity:     2,
	}

	first, err := repo.Add(ctx, item)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if first.Quantity != 2 {
		t.Errorf("quantity after first add: %d", first.Quantity)
	}

	second, err := repo.Add(ctx, item)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("same key must hit the same row: %d vs %d", second.ID, first.ID)
	}
	if second.Quantity != 4 {
		t.Errorf("quantity after second add: got %d, want 4", second.Quantity)
	}

	// A different condition is a different holding.
	item.Condition = domain.ConditionHeavilyPlayed
	third, err := repo.Add(ctx, item)
	if err != nil {
		t.Fatalf("third Add: %v", err)
	}
	if third.ID == first.ID {
		t.Error("different condition must create a new row")
	}
}

func TestAdd_Validation(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	_, err := repo.Add(ctx, domain.OwnedItem{Condition: "Mint", Quantity: 1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("unknown condition: got %v", err)
	}

	_, err = repo.Add(ctx, domain.OwnedItem{Condition: domain.ConditionNearMint, Quantity: 0})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero quantity: got %v", err)
	}
}

func TestSetQuantity(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	printing := testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Storm Crow",
		SetCode:         "s" + uuid.New().String()[:4],
		CollectorNumber: "95",
		DefaultLang:     true,
	})

	item := domain.OwnedItem{
		UserID:       user.ID,
		FinishCardID: printing.FinishCards["nonfoil"],
		Condition:    domain.ConditionNearMint,
		Quantity:     3,
	}
	if _, err := repo.Add(ctx, item); err != nil {
		t.Fatalf("Add: %v", err)
	}

	key := item.Key()
	if err := repo.SetQuantity(ctx, key, 7); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Quantity != 7 {
		t.Errorf("quantity: got %d, want 7", got.Quantity)
	}

	// Zero deletes the row.
	if err := repo.SetQuantity(ctx, key, 0); err != nil {
		t.Fatalf("SetQuantity to zero: %v", err)
	}
	if _, err := repo.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted holding: got %v, want not-found", err)
	}

	// And a second zeroing has nothing left to delete.
	if err := repo.SetQuantity(ctx, key, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing holding: got %v, want not-found", err)
	}

	if err := repo.SetQuantity(ctx, key, -1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative quantity: got %v, want validation error", err)
	}
}

func TestMergeItems_And_ListByUser(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	code := "s" + uuid.New().String()[:4]
	helix := testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Lightning Helix",
		SetCode:         code,
		CollectorNumber: "125",
		DefaultLang:     true,
		Finishes:        []string{"nonfoil", "foil"},
	})
	crow := testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Storm Crow",
		SetCode:         code,
		CollectorNumber: "95",
		DefaultLang:     true,
	})

	n, err := repo.MergeItems(ctx, []domain.OwnedItem{
		{UserID: user.ID, FinishCardID: helix.FinishCards["foil"], Condition: domain.ConditionNearMint, Quantity: 1},
		{UserID: user.ID, FinishCardID: crow.FinishCards["nonfoil"], Condition: domain.ConditionLightlyPlayed, Quantity: 4},
	})
	if err != nil || n != 2 {
		t.Fatalf("MergeItems: n=%d err=%v", n, err)
	}

	items, err := repo.ListByUser(ctx, user.ID, "", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items: got %d, want 2", len(items))
	}
	// Ordered by card name.
	if items[0].CardName != "Lightning Helix" || items[1].CardName != "Storm Crow" {
		t.Errorf("order: %q, %q", items[0].CardName, items[1].CardName)
	}
	if items[0].Finish != "foil" || items[0].SetCode != code || items[0].CollectorNumber != "125" {
		t.Errorf("catalog context: %+v", items[0])
	}

	filtered, err := repo.ListByUser(ctx, user.ID, "crow", 0, 0)
	if err != nil {
		t.Fatalf("filtered ListByUser: %v", err)
	}
	if len(filtered) != 1 || filtered[0].CardName != "Storm Crow" {
		t.Errorf("filter: %+v", filtered)
	}

	paged, err := repo.ListByUser(ctx, user.ID, "", 1, 1)
	if err != nil {
		t.Fatalf("paged ListByUser: %v", err)
	}
	if len(paged) != 1 || paged[0].CardName != "Storm Crow" {
		t.Errorf("page: %+v", paged)
	}
}

func TestMergeItems_ReimportSumsQuantities(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	printing := testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Lightning Helix",
		SetCode:         "s" + uuid.New().String()[:4],
		CollectorNumber: "125",
		DefaultLang:     true,
	})

	item := domain.OwnedItem{
		UserID:       user.ID,
		FinishCardID: printing.FinishCards["nonfoil"],
		Condition:    domain.ConditionNearMint,
		Quantity:     2,
	}

	// The same file imported twice must sum into one row, not abort on the
	// unique constraint.
	for run := 0; run < 2; run++ {
		if _, err := repo.MergeItems(ctx, []domain.OwnedItem{item}); err != nil {
			t.Fatalf("MergeItems run %d: %v", run, err)
		}
	}

	got, err := repo.Get(ctx, item.Key())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Quantity != 4 {
		t.Errorf("quantity after re-import: got %d, want 4", got.Quantity)
	}

	// And it merges with holdings added through Add.
	if _, err := repo.Add(ctx, item); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.MergeItems(ctx, []domain.OwnedItem{item}); err != nil {
		t.Fatalf("MergeItems after Add: %v", err)
	}
	got, err = repo.Get(ctx, item.Key())
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if got.Quantity != 8 {
		t.Errorf("quantity: got %d, want 8", got.Quantity)
	}
}

func TestGet_ErrorNamesHolding(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)

	key := domain.OwnedItemKey{UserID: 41, FinishCardID: 97, Condition: domain.ConditionNearMint}
	_, err := repo.Get(context.Background(), key)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if want := "user 41 finish-card 97"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q must name the holding %q", err, want)
	}
}

// Owned items persist across a catalog reload even though every finish_cards
// row is replaced. The snapshot/restore pair carries them by printing value
// identity; here the finish_cards row is swapped for one with a fresh id and
// the holding must follow it.
func TestHoldingsSurviveCatalogSwap(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	txm := postgres.NewTxManager(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	code := "s" + uuid.New().String()[:4]
	printing := testhelper.SeedPrinting(t, pool, testhelper.PrintingSpec{
		Name:            "Lightning Helix",
		SetCode:         code,
		CollectorNumber: "125",
		DefaultLang:     true,
	})
	oldID := printing.FinishCards["nonfoil"]

	item := domain.OwnedItem{
		UserID:       user.ID,
		FinishCardID: oldID,
		Condition:    domain.ConditionLightlyPlayed,
		Signed:       true,
		Notes:        "prerelease stamp",
		Quantity:     3,
	}
	if _, err := repo.Add(ctx, item); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := txm.RunInTx(ctx, func(ctx context.Context) error {
		snapshot, err := repo.SnapshotHoldings(ctx)
		if err != nil {
			t.Fatalf("SnapshotHoldings: %v", err)
		}
		var mine *domain.HoldingSnapshot
		for i := range snapshot {
			if snapshot[i].UserID == user.ID {
				mine = &snapshot[i]
			}
		}
		if mine == nil {
			t.Fatal("seeded holding missing from snapshot")
		}
		if mine.SetCode != code || mine.CollectorNumber != "125" || mine.Lang != "en" || mine.Finish != "nonfoil" {
			t.Fatalf("snapshot identity: %+v", *mine)
		}
		if mine.Quantity != 3 || !mine.Signed || mine.Notes != "prerelease stamp" {
			t.Fatalf("snapshot key fields: %+v", *mine)
		}

		if err := repo.DeleteAllItems(ctx); err != nil {
			t.Fatalf("DeleteAllItems: %v", err)
		}

		// Replace the finish_cards row the way a reload does: same printing,
		// new surrogate id.
		q := postgres.QuerierFromCtx(ctx, pool)
		var finishID int32
		if err := q.QueryRow(ctx, `SELECT finish_id FROM finish_cards WHERE id = $1`, oldID).Scan(&finishID); err != nil {
			t.Fatalf("read finish id: %v", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM finish_cards WHERE id = $1`, oldID); err != nil {
			t.Fatalf("delete finish_card: %v", err)
		}
		var newID int64
		err = q.QueryRow(ctx,
			`INSERT INTO finish_cards (card_id, finish_id) VALUES ($1, $2) RETURNING id`,
			printing.CardID, finishID,
		).Scan(&newID)
		if err != nil {
			t.Fatalf("reinsert finish_card: %v", err)
		}
		if newID == oldID {
			t.Fatalf("expected a fresh finish_card id, got %d again", newID)
		}

		restored, err := repo.RestoreHoldings(ctx, snapshot)
		if err != nil {
			t.Fatalf("RestoreHoldings: %v", err)
		}
		if restored != int64(len(snapshot)) {
			t.Errorf("restored %d of %d holdings", restored, len(snapshot))
		}

		got, err := repo.Get(ctx, domain.OwnedItemKey{
			UserID:       user.ID,
			FinishCardID: newID,
			Condition:    domain.ConditionLightlyPlayed,
			Signed:       true,
			Notes:        "prerelease stamp",
		})
		if err != nil {
			t.Fatalf("Get after restore: %v", err)
		}
		if got.Quantity != 3 {
			t.Errorf("quantity after restore: got %d, want 3", got.Quantity)
		}
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("RunInTx: %v", err)
	}
}

// A snapshot row whose printing no longer exists must fail the restore so
// the surrounding reload rolls back instead of silently dropping holdings.
func TestRestoreHoldings_MissingPrinting(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	txm := postgres.NewTxManager(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)

	err := txm.RunInTx(ctx, func(ctx context.Context) error {
		_, err := repo.RestoreHoldings(ctx, []domain.HoldingSnapshot{{
			UserID:          user.ID,
			SetCode:         "zzz" + uuid.New().String()[:4],
			CollectorNumber: "1",
			Lang:            "en",
			Finish:          "nonfoil",
			Condition:       domain.ConditionNearMint,
			Quantity:        1,
		}})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("missing printing: got %v, want not-found", err)
		}
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("RunInTx: %v", err)
	}
}

func TestMergeItems_Validation(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := collection.NewRepo(pool)
	ctx := context.Background()

	_, err := repo.MergeItems(ctx, []domain.OwnedItem{{Condition: "Mint", Quantity: 1}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("unknown condition: got %v", err)
	}

	_, err = repo.MergeItems(ctx, []domain.OwnedItem{{Condition: domain.ConditionNearMint, Quantity: 0}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero quantity: got %v", err)
	}
}
