package bulkload

import (
	"context"

	"github.com/cardvault/cardvault/internal/domain"
)

// CatalogRepo defines the batch repository contract consumed by the loader.
// All methods use only domain types. Implemented by catalog.Repo.
type CatalogRepo interface {
	DeleteAll(ctx context.Context) error
	InsertDimensionValues(ctx context.Context, dim domain.Dimension, values []string) (map[string]int32, error)
	InsertSets(ctx context.Context, sets []domain.Set) (int, error)
	CopyCards(ctx context.Context, next func() (*domain.Card, error)) (int64, error)
	CopyFaces(ctx context.Context, faces []domain.Face) (int64, error)
	CopyColorLinks(ctx context.Context, links []domain.CardLink) (int64, error)
	CopyColorIdentityLinks(ctx context.Context, links []domain.CardLink) (int64, error)
	CopyKeywordLinks(ctx context.Context, links []domain.CardLink) (int64, error)
	CopyGameLinks(ctx context.Context, links []domain.CardLink) (int64, error)
	CopyFinishLinks(ctx context.Context, links []domain.CardLink) (int64, error)
}

// HoldingsRepo carries owned items across the reload: snapshot by printing
// value identity before the wipe, re-link after the catalog is rebuilt.
// Implemented by collection.Repo.
type HoldingsRepo interface {
	SnapshotHoldings(ctx context.Context) ([]domain.HoldingSnapshot, error)
	DeleteAllItems(ctx context.Context) error
	RestoreHoldings(ctx context.Context, holdings []domain.HoldingSnapshot) (int64, error)
}

// TxRunner runs a function inside a database transaction. Implemented by
// postgres.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
