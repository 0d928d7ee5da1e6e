// Package storage is the persistence gateway for captured post records: a
// keyed store with a small query surface plus the export transforms.
package storage

import (
	"context"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// Gateway is the durable keyed store of post records the crawl loop writes
// through. Put has insert-or-update semantics: an id conflict means the post
// was re-observed (metrics drift) and the record is replaced, never errors.
type Gateway interface {
	// Put inserts or replaces a record by id.
	Put(ctx context.Context, rec *types.PostRecord) error

	// Get returns the record with the given id, or types.ErrNotFound.
	Get(ctx context.Context, id string) (*types.PostRecord, error)

	// GetAll returns every stored record.
	GetAll(ctx context.Context) ([]*types.PostRecord, error)

	// GetAllByPlatform returns every stored record for one platform. The
	// crawl loop bootstraps its seen set from this.
	GetAllByPlatform(ctx context.Context, p types.Platform) ([]*types.PostRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes all records.
	DeleteAll(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
