package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
)

func toDoc(v any) (docstore.Doc, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var d docstore.Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return d, nil
}

func fromDoc[T any](d docstore.Doc) (T, error) {
	var out T
	raw, err := json.Marshal(d)
	if err != nil {
		return out, fmt.Errorf("encoding document: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding document: %w", err)
	}
	return out, nil
}

func fromDocs[T any](docs []docstore.Doc) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := fromDoc[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func byID(id int) docstore.Filter {
	return docstore.Where(docstore.Eq(docstore.IDField, id))
}

// insert assigns the next id when *id is zero and stores v.
func insert(ctx context.Context, store docstore.Store, collection string, id *int, v any) error {
	if *id == 0 {
		next, err := store.NextID(ctx, collection)
		if err != nil {
			return fmt.Errorf("allocating %s id: %w", collection, err)
		}
		*id = next
	}
	d, err := toDoc(v)
	if err != nil {
		return err
	}
	if err := store.InsertOne(ctx, collection, d); err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

// getOne loads a single document, mapping a miss to domain.ErrNotFound.
func getOne[T any](ctx context.Context, store docstore.Store, collection string, id int) (*T, error) {
	d, err := store.FindOne(ctx, collection, byID(id))
	if errors.Is(err, docstore.ErrNoDocument) {
		return nil, fmt.Errorf("%s %d: %w", collection, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s %d: %w", collection, id, err)
	}
	v, err := fromDoc[T](d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// updateOne applies u to the document with id, mapping a miss to domain.ErrNotFound.
func updateOne(ctx context.Context, store docstore.Store, collection string, id int, u docstore.Update) error {
	ok, err := store.UpdateOne(ctx, collection, byID(id), u)
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", collection, id, err)
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

func nowIfZero(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}
