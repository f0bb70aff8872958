package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is one printed version of a card in the normalized catalog. Dimension
// values (language, layout, rarity and so on) are carried as surrogate ids
// resolved during the load.
type Card struct {
	ID              uuid.UUID
	OracleID        uuid.UUID
	Name            string
	LangID          int32
	DefaultLang     bool
	ReleasedAt      time.Time
	LayoutID        int32
	HighresImage    bool
	ImageStatusID   int32
	NormalImageURI  *string
	ManaCost        *string
	CMC             *float64
	TypeLine        *string
	OracleText      *string
	Power           *string
	Toughness       *string
	Legalities      map[Format]int32
	Reserved        bool
	Oversized       bool
	Promo           bool
	Reprint         bool
	Variation       bool
	Digital         bool
	FullArt         bool
	Textless        bool
	Booster         bool
	StorySpotlight  bool
	SetID           uuid.UUID
	CollectorNumber string
	RarityID        int32
	FlavorText      *string
	Artist          *string
	IllustrationID  *uuid.UUID
	BorderColorID   int32
	FrameID         int32
}

// Face is one side or half of a multi-part card. Single-faced cards have no
// face rows.
type Face struct {
	CardID         uuid.UUID
	Name           string
	ManaCost       string
	TypeLine       *string
	OracleText     string
	FlavorText     *string
	Artist         *string
	ArtistID       *uuid.UUID
	IllustrationID *uuid.UUID
	NormalImageURI *string
}

// Set is a printing group (expansion, promo set, token set).
type Set struct {
	ID            uuid.UUID
	Code          string
	Name          string
	TypeID        int32
	ReleasedAt    *time.Time
	BlockCode     *string
	Block         *string
	ParentSetCode *string
	CardCount     int32
	PrintedSize   *int32
	Digital       bool
	FoilOnly      bool
	NonfoilOnly   bool
	IconSVGURI    *string
}

// CardLink is a card-to-dimension junction row.
type CardLink struct {
	CardID uuid.UUID
	DimID  int32
}

// FinishCard identifies one purchasable printing: a card in a specific
// finish. Inventory rows reference these.
type FinishCard struct {
	ID       int64
	CardID   uuid.UUID
	FinishID int32
	Finish   string
}

// LanguageOption is one language a printing group is available in.
type LanguageOption struct {
	Lang    string
	Default bool
}
