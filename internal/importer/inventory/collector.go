package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cardvault/cardvault/internal/domain"
)

// pickDefaultNumber selects the default printing's collector number from the
// numbers a (name, set) pair has in the catalog. Numeric numbers win, ordered
// by value rather than lexically ("9" before "125"). When only non-numeric
// numbers exist the lexical minimum is a heuristic and the second return is
// true so the caller can warn.
func pickDefaultNumber(numbers []string) (string, bool) {
	best := ""
	bestVal := 0
	for _, n := range numbers {
		v, err := strconv.Atoi(n)
		if err != nil {
			continue
		}
		if best == "" || v < bestVal {
			best, bestVal = n, v
		}
	}
	if best != "" {
		return best, false
	}

	for _, n := range numbers {
		if best == "" || n < best {
			best = n
		}
	}
	return best, len(numbers) > 1
}

// deriveCollectorNumber looks up the default printing's collector number for
// a normalized name within a set, falling back to face names for multi-faced
// cards the export files under a single face.
func (i *Importer) deriveCollectorNumber(ctx context.Context, name, setCode string) (string, error) {
	numbers, err := i.catalog.CollectorNumbersByName(ctx, name, setCode)
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		if numbers, err = i.catalog.CollectorNumbersByFaceName(ctx, name, setCode); err != nil {
			return "", err
		}
	}
	if len(numbers) == 0 {
		return "", fmt.Errorf("card %q in set %s: %w", name, setCode, domain.ErrNotFound)
	}

	number, heuristic := pickDefaultNumber(numbers)
	if heuristic {
		i.log.Warn("export may not differentiate versions, defaulting to lexical minimum",
			slog.String("name", name),
			slog.String("set", setCode),
			slog.String("collector_number", number),
		)
	}
	return number, nil
}
