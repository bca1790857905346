// Package docstore is a small schemaless document store keyed by an
// application-assigned integer id. Filters and updates are interpreted by a
// single matcher shared by every adapter, so the in-memory and SQLite stores
// answer the same query the same way.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNoDocument  = errors.New("no document matches filter")
	ErrDuplicateID = errors.New("document id already exists")
	ErrInvalidID   = errors.New("document id must be a positive integer")
	ErrImmutableID = errors.New("document id cannot be updated")
	ErrBadQuery    = errors.New("invalid query")
)

// Doc is a JSON-shaped document. Numbers are float64 once stored.
type Doc map[string]any

// ID returns the document's integer id.
func (d Doc) ID() (int, error) {
	switch v := d[IDField].(type) {
	case float64:
		if v < 1 || v != float64(int(v)) {
			return 0, ErrInvalidID
		}
		return int(v), nil
	case int:
		if v < 1 {
			return 0, ErrInvalidID
		}
		return v, nil
	case int64:
		if v < 1 {
			return 0, ErrInvalidID
		}
		return int(v), nil
	default:
		return 0, ErrInvalidID
	}
}

// IDField is the field holding the application-assigned id.
const IDField = "id"

type Store interface {
	FindOne(ctx context.Context, collection string, filter Filter) (Doc, error)
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Doc, error)
	Count(ctx context.Context, collection string, filter Filter) (int, error)
	InsertOne(ctx context.Context, collection string, doc Doc) error
	// UpdateOne applies u to the lowest-id matching document and reports
	// whether one matched.
	UpdateOne(ctx context.Context, collection string, filter Filter, u Update) (bool, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int, error)
	// NextID returns max(id)+1 for the collection, or 1 when it is empty.
	NextID(ctx context.Context, collection string) (int, error)
}
