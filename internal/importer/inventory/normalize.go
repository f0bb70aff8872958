package inventory

import (
	"regexp"
	"strings"

	"github.com/cardvault/cardvault/internal/domain"
)

// underscoreRun matches the export's variable-width blank placeholder. The
// catalog always prints five underscores.
var underscoreRun = regexp.MustCompile(`___+`)

// normalizeName rewrites an export card name into catalog form: split cards
// use a double slash, blank-name placeholders are fixed width, and known
// spelling divergences are corrected.
func normalizeName(name string) string {
	if strings.Contains(name, "/") && !strings.Contains(name, "//") {
		name = strings.ReplaceAll(name, "/", "//")
	}
	name = underscoreRun.ReplaceAllString(name, "_____")
	if fixed, ok := nameFixes[name]; ok {
		name = fixed
	}
	return name
}

// remapSet resolves the placeholder set and applies the set-code translation
// tables. Returns the catalog set code and possibly a rewritten variation.
func remapSet(name, setCode, variation string) (string, string, error) {
	if setCode == placeholderSet {
		fix, ok := placeholderFixes[name]
		if !ok || (fix.variation != "" && fix.variation != variation) {
			return "", "", domain.NewInputError("set", placeholderSet, "unhandled placeholder set for "+name)
		}
		setCode = fix.set
		if fix.collectorNumber != "" {
			variation = fix.collectorNumber
		}
		return setCode, variation, nil
	}

	if mapped, ok := setRemaps[setCode]; ok {
		return mapped, variation, nil
	}
	if byName, ok := conditionalSetRemaps[setCode]; ok {
		if mapped, ok := byName[name]; ok {
			return mapped, variation, nil
		}
	}
	return setCode, variation, nil
}

// fixCollectorNumber applies the per-card collector-number corrections.
func fixCollectorNumber(name, setCode, number string) string {
	for _, fix := range collectorFixes {
		if fix.name != name || fix.set != setCode {
			continue
		}
		if fix.onlyWhen != "" && fix.onlyWhen != number {
			continue
		}
		return fix.number
	}
	return number
}

// decodeMarker interprets the finish-column token. Tokens outside the marker
// vocabulary are language codes and override the language column.
func decodeMarker(token, language string) (markerFlags, string) {
	if token == "" || token == "-" {
		return markerFlags{}, language
	}
	if flags, ok := markerTable[token]; ok {
		return flags, language
	}
	return markerFlags{}, strings.ToLower(token)
}

// applyMarkers rewrites set code and collector number for list, promo-pack
// and prerelease printings, which the catalog files under dedicated sets.
// pths predates the promo-set convention and keeps its own code.
func applyMarkers(setCode, collectorNumber string, flags markerFlags) (string, string) {
	if flags.theList {
		setCode = "plist"
	}
	if (flags.promoPack || flags.prerelease) && setCode != "pths" {
		setCode = "p" + setCode
		if flags.promoPack {
			collectorNumber += "p"
		}
		if flags.prerelease {
			collectorNumber += "s"
		}
	}
	return setCode, collectorNumber
}
