package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardvault/cardvault/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with a unique username. Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	user := domain.User{Username: "testuser-" + uniqueSuffix()}

	err := pool.QueryRow(ctx,
		`INSERT INTO users (username) VALUES ($1) RETURNING id`,
		user.Username,
	).Scan(&user.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// PrintingSpec describes one catalog printing to seed.
type PrintingSpec struct {
	Name            string
	SetCode         string
	CollectorNumber string
	Lang            string   // defaults to "en"
	DefaultLang     bool
	Finishes        []string // defaults to ["nonfoil"]
	FaceNames       []string // optional; creates face rows
}

// Printing is a seeded catalog printing with the ids tests need.
type Printing struct {
	CardID      uuid.UUID
	SetID       uuid.UUID
	FinishCards map[string]int64 // finish name -> finish_cards.id
}

// SeedPrinting inserts a card (with all its dimension values) and one
// finish_cards row per finish. Dimension and set rows are shared between
// calls, so several printings of one set can be seeded independently.
func SeedPrinting(t *testing.T, pool *pgxpool.Pool, spec PrintingSpec) Printing {
	t.Helper()
	ctx := context.Background()

	if spec.Lang == "" {
		spec.Lang = "en"
	}
	if len(spec.Finishes) == 0 {
		spec.Finishes = []string{"nonfoil"}
	}

	langID := dimValue(t, pool, "langs", "lang", spec.Lang)
	layoutID := dimValue(t, pool, "layouts", "layout", "normal")
	imageStatusID := dimValue(t, pool, "image_statuses", "image_status", "highres_scan")
	legalityID := dimValue(t, pool, "legalities", "legality", "not_legal")
	setTypeID := dimValue(t, pool, "set_types", "set_type", "expansion")
	rarityID := dimValue(t, pool, "rarities", "rarity", "common")
	borderColorID := dimValue(t, pool, "border_colors", "border_color", "black")
	frameID := dimValue(t, pool, "frames", "frame", "2015")

	p := Printing{FinishCards: make(map[string]int64, len(spec.Finishes))}

	err := pool.QueryRow(ctx,
		`INSERT INTO sets (id, code, name, set_type_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		 RETURNING id`,
		uuid.New(), spec.SetCode, "Set "+spec.SetCode, setTypeID,
	).Scan(&p.SetID)
	if err != nil {
		t.Fatalf("testhelper: SeedPrinting insert set %q: %v", spec.SetCode, err)
	}

	p.CardID = uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO cards (
			id, oracle_id, name, lang_id, default_lang, released_at,
			layout_id, highres_image, image_status_id,
			legal_standard_id, legal_future_id, legal_historic_id, legal_gladiator_id,
			legal_pioneer_id, legal_explorer_id, legal_modern_id, legal_legacy_id,
			legal_pauper_id, legal_vintage_id, legal_penny_id, legal_commander_id,
			legal_brawl_id, legal_historicbrawl_id, legal_alchemy_id,
			legal_paupercommander_id, legal_duel_id, legal_oldschool_id, legal_premodern_id,
			reserved, oversized, promo, reprint, variation, digital,
			full_art, textless, booster, story_spotlight,
			set_id, collector_number, rarity_id, border_color_id, frame_id
		 ) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, true, $8,
			$9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9, $9,
			false, false, false, false, false, false,
			false, false, true, false,
			$10, $11, $12, $13, $14
		 )`,
		p.CardID, uuid.New(), spec.Name, langID, spec.DefaultLang,
		time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC),
		layoutID, imageStatusID, legalityID,
		p.SetID, spec.CollectorNumber, rarityID, borderColorID, frameID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPrinting insert card %q: %v", spec.Name, err)
	}

	for _, finish := range spec.Finishes {
		finishID := dimValue(t, pool, "finishes", "finish", finish)
		var fcID int64
		err := pool.QueryRow(ctx,
			`INSERT INTO finish_cards (card_id, finish_id) VALUES ($1, $2) RETURNING id`,
			p.CardID, finishID,
		).Scan(&fcID)
		if err != nil {
			t.Fatalf("testhelper: SeedPrinting insert finish_card %q: %v", finish, err)
		}
		p.FinishCards[finish] = fcID
	}

	for _, faceName := range spec.FaceNames {
		_, err := pool.Exec(ctx,
			`INSERT INTO faces (card_id, name, mana_cost, oracle_text)
			 VALUES ($1, $2, '', '')`,
			p.CardID, faceName,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedPrinting insert face %q: %v", faceName, err)
		}
	}

	return p
}

// dimValue upserts a dimension value and returns its id.
func dimValue(t *testing.T, pool *pgxpool.Pool, table, column, value string) int32 {
	t.Helper()

	// DO UPDATE instead of DO NOTHING so RETURNING always yields the row.
	query := `INSERT INTO ` + table + ` (` + column + `) VALUES ($1)
	          ON CONFLICT (` + column + `) DO UPDATE SET ` + column + ` = EXCLUDED.` + column + `
	          RETURNING id`

	var id int32
	if err := pool.QueryRow(context.Background(), query, value).Scan(&id); err != nil {
		t.Fatalf("testhelper: dimValue %s=%q: %v", table, value, err)
	}
	return id
}
