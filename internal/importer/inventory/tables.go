package inventory

import "github.com/cardvault/cardvault/internal/domain"

// The export source and the catalog disagree on a handful of names, set
// codes and collector numbers. All corrections live in these tables so a new
// divergence is an added entry, not new logic.

// nameFixes corrects known spelling divergences in the export source.
var nameFixes = map[string]string{
	"Psuedodragon Familiar": "Pseudodragon Familiar",
	"Robo-Pinata":           "Robo-Piñata",
}

// setRemaps translates export set codes to catalog set codes.
var setRemaps = map[string]string{
	"mys1": "mb1",
	"eo2":  "e02",
	"pfl":  "pd2",
}

// conditionalSetRemaps lists per-card exceptions where the export set code is
// plain wrong for specific cards.
var conditionalSetRemaps = map[string]map[string]string{
	"tsb": {
		"Swamp":           "clb",
		"Aarakocra Sneak": "clb",
	},
}

// placeholderSet is the export's stand-in code for promos it cannot place.
const placeholderSet = "000"

// placeholderFix resolves one card filed under the placeholder set. When
// variation is non-empty the fix only applies to that variation; when
// collectorNumber is non-empty it replaces the row's variation (30th
// Anniversary promos have no derivable collector number).
type placeholderFix struct {
	variation       string
	set             string
	collectorNumber string
}

var placeholderFixes = map[string]placeholderFix{
	"Arbor Elf":          {set: "pw21"},
	"Archfiend of Ifnir": {set: "pakh"},
	"Archmage's Charm":   {set: "sch"},
	"Ball Lightning":     {variation: "2", set: "p30a", collectorNumber: "2"},
	"Ember Swallower":    {set: "pths"},
	"Fyndhorn Elves":     {set: "p30a", collectorNumber: "3"},
	"Mind Stone":         {set: "pw21"},
	"Goblin Guide":       {set: "plg21"},
	"Selfless Spirit":    {set: "prcq"},
	"Serra Angel":        {variation: "5", set: "p30a", collectorNumber: "1"},
	"Swiftfoot Boots":    {set: "pw22"},
	"Thraben Inspector":  {set: "prcq"},
	"Wall of Roots":      {variation: "2", set: "p30a", collectorNumber: "4"},
}

// collectorFix corrects a collector number the export gets wrong. onlyWhen
// restricts the fix to a specific derived number (several versions of Wastes
// exist in ogw and only one is misfiled).
type collectorFix struct {
	name     string
	set      string
	onlyWhen string
	number   string
}

var collectorFixes = []collectorFix{
	{name: "Armored Cancrix", set: "m14", number: "44"},
	{name: "Cancel", set: "m14", number: "45"},
	{name: "Keepsake Gorgon", set: "ths", number: "93"},
	{name: "Map the Wastes", set: "frf", number: "134"},
	{name: "Nyxborn Eidolon", set: "bng", number: "78"},
	{name: "Prying Questions", set: "emn", number: "101"},
	{name: "Resolute Veggiesaur", set: "unf", number: "153"},
	{name: "Wastes", set: "ogw", onlyWhen: "134", number: "184"},
}

// markerFlags is the decoded meaning of the export's finish-column token.
// The combinations are independent; foil promo-pack cards exist.
type markerFlags struct {
	foil       bool
	theList    bool
	promoPack  bool
	prerelease bool
}

// markerTable decodes the known finish-column tokens. Any other token is a
// language code.
var markerTable = map[string]markerFlags{
	"f":     {foil: true},
	"list":  {theList: true},
	"pp":    {promoPack: true},
	"f-pp":  {foil: true, promoPack: true},
	"f-pre": {foil: true, prerelease: true},
}

// conditionMap translates the export's condition labels to the catalog enum.
var conditionMap = map[string]domain.Condition{
	"NM": domain.ConditionNearMint,
	"SL": domain.ConditionLightlyPlayed,
	"MP": domain.ConditionModeratelyPlayed,
	"HP": domain.ConditionHeavilyPlayed,
}
