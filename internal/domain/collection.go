package domain

// User owns collection rows. Credentials live elsewhere.
type User struct {
	ID       int64
	Username string
}

// OwnedItemKey is the six-field identity of a collection row. Two physical
// piles of the same printing merge only when every field matches.
type OwnedItemKey struct {
	UserID       int64
	FinishCardID int64
	Condition    Condition
	Signed       bool
	Altered      bool
	Notes        string
}

// OwnedItem is one collection row: a quantity of a specific printing in a
// specific physical state.
type OwnedItem struct {
	ID           int64
	UserID       int64
	FinishCardID int64
	Condition    Condition
	Signed       bool
	Altered      bool
	Notes        string
	Quantity     int32
}

// Key returns the row's identity key.
func (i *OwnedItem) Key() OwnedItemKey {
	return OwnedItemKey{
		UserID:       i.UserID,
		FinishCardID: i.FinishCardID,
		Condition:    i.Condition,
		Signed:       i.Signed,
		Altered:      i.Altered,
		Notes:        i.Notes,
	}
}

// HoldingSnapshot is an owned item keyed by printing value identity (set
// code, collector number, language, finish) instead of a finish-card id.
// A catalog reload replaces every finish_cards row, so holdings are carried
// across it in this form and re-linked afterwards.
type HoldingSnapshot struct {
	UserID          int64
	SetCode         string
	CollectorNumber string
	Lang            string
	Finish          string
	Condition       Condition
	Signed          bool
	Altered         bool
	Notes           string
	Quantity        int32
}

// CollectionListItem is an owned item joined with enough catalog context to
// render a listing.
type CollectionListItem struct {
	OwnedItem
	CardName        string
	SetCode         string
	CollectorNumber string
	Lang            string
	Finish          string
}
