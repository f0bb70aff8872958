package domain

// Condition represents the physical grade of an owned card.
type Condition string

const (
	ConditionDamaged          Condition = "Damaged"
	ConditionHeavilyPlayed    Condition = "Heavily Played"
	ConditionModeratelyPlayed Condition = "Moderately Played"
	ConditionLightlyPlayed    Condition = "Lightly Played"
	ConditionNearMint         Condition = "Near Mint"
)

func (c Condition) String() string { return string(c) }

func (c Condition) IsValid() bool {
	switch c {
	case ConditionDamaged, ConditionHeavilyPlayed, ConditionModeratelyPlayed,
		ConditionLightlyPlayed, ConditionNearMint:
		return true
	}
	return false
}

// Rank orders conditions from worst (0) to best. Used for sorting only;
// the stored value is the string itself.
func (c Condition) Rank() int {
	switch c {
	case ConditionDamaged:
		return 0
	case ConditionHeavilyPlayed:
		return 1
	case ConditionModeratelyPlayed:
		return 2
	case ConditionLightlyPlayed:
		return 3
	case ConditionNearMint:
		return 4
	}
	return -1
}

// Dimension names one of the catalog's lookup-value kinds. Each dimension
// holds the distinct strings the feed uses for that attribute.
type Dimension string

const (
	DimensionLang        Dimension = "lang"
	DimensionLayout      Dimension = "layout"
	DimensionImageStatus Dimension = "image_status"
	DimensionLegality    Dimension = "legality"
	DimensionSetType     Dimension = "set_type"
	DimensionRarity      Dimension = "rarity"
	DimensionBorderColor Dimension = "border_color"
	DimensionFrame       Dimension = "frame"
	DimensionColor       Dimension = "color"
	DimensionKeyword     Dimension = "keyword"
	DimensionGame        Dimension = "game"
	DimensionFinish      Dimension = "finish"
)

// Dimensions lists every dimension in load order.
var Dimensions = []Dimension{
	DimensionLang, DimensionLayout, DimensionImageStatus, DimensionLegality,
	DimensionSetType, DimensionRarity, DimensionBorderColor, DimensionFrame,
	DimensionColor, DimensionKeyword, DimensionGame, DimensionFinish,
}

func (d Dimension) String() string { return string(d) }

func (d Dimension) IsValid() bool {
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Format is a constructed-play format a card can be legal in. The catalog
// stores one legality per format per card.
type Format string

const (
	FormatStandard        Format = "standard"
	FormatFuture          Format = "future"
	FormatHistoric        Format = "historic"
	FormatGladiator       Format = "gladiator"
	FormatPioneer         Format = "pioneer"
	FormatExplorer        Format = "explorer"
	FormatModern          Format = "modern"
	FormatLegacy          Format = "legacy"
	FormatPauper          Format = "pauper"
	FormatVintage         Format = "vintage"
	FormatPenny           Format = "penny"
	FormatCommander       Format = "commander"
	FormatBrawl           Format = "brawl"
	FormatHistoricBrawl   Format = "historicbrawl"
	FormatAlchemy         Format = "alchemy"
	FormatPauperCommander Format = "paupercommander"
	FormatDuel            Format = "duel"
	FormatOldschool       Format = "oldschool"
	FormatPremodern       Format = "premodern"
)

// Formats lists every tracked format in card-row column order.
var Formats = []Format{
	FormatStandard, FormatFuture, FormatHistoric, FormatGladiator,
	FormatPioneer, FormatExplorer, FormatModern, FormatLegacy,
	FormatPauper, FormatVintage, FormatPenny, FormatCommander,
	FormatBrawl, FormatHistoricBrawl, FormatAlchemy, FormatPauperCommander,
	FormatDuel, FormatOldschool, FormatPremodern,
}

func (f Format) String() string { return string(f) }

func (f Format) IsValid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
