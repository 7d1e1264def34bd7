// Package backend defines the abstract STAC data source the server API
// composes into HTTP endpoints, plus an in-memory reference implementation.
// Concrete production backends (PostgreSQL/pgstac, DuckDB-over-parquet) are
// out of scope per spec.md; only the trait surface and one reference
// implementation are specified.
package backend

import (
	"context"

	"github.com/stac-utils/stac-go/internal/stac"
)

// Backend is the abstract data source named in spec.md §4.8.
type Backend interface {
	Collections(ctx context.Context) ([]*stac.Collection, error)
	Collection(ctx context.Context, id string) (*stac.Collection, error)
	AddCollection(ctx context.Context, c *stac.Collection) error

	Items(ctx context.Context, collectionID string, req stac.Items) (*stac.ItemCollection, error)
	Item(ctx context.Context, collectionID, id string) (*stac.Item, error)
	AddItem(ctx context.Context, item *stac.Item) error
	AddItems(ctx context.Context, items []*stac.Item) error

	Search(ctx context.Context, req stac.Search) (*stac.ItemCollection, error)

	HasItemSearch() bool
	HasFilter() bool
}
