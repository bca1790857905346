package docstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps documents in process memory. Stored and returned
// documents are copies, so callers may mutate what they get back.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[int]Doc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[int]Doc)}
}

var _ Store = (*MemoryStore)(nil)

// scan returns copies of the matching documents in id order.
func (s *MemoryStore) scan(collection string, filter Filter) ([]Doc, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	coll := s.collections[collection]
	var out []Doc
	for _, id := range slices.Sorted(maps.Keys(coll)) {
		if !matches(coll[id], f) {
			continue
		}
		cp, err := normalizeDoc(coll[id])
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *MemoryStore) FindOne(_ context.Context, collection string, filter Filter) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, err := s.scan(collection, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocument
	}
	return docs[0], nil
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter, opts FindOptions) ([]Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, err := s.scan(collection, filter)
	if err != nil {
		return nil, err
	}
	sortDocs(docs, opts.Sort)
	return limitDocs(docs, opts.Limit), nil
}

func (s *MemoryStore) Count(_ context.Context, collection string, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, err := s.scan(collection, filter)
	return len(docs), err
}

func (s *MemoryStore) InsertOne(_ context.Context, collection string, doc Doc) error {
	d, err := normalizeDoc(doc)
	if err != nil {
		return err
	}
	id, err := d.ID()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[int]Doc)
		s.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return fmt.Errorf("%s/%d: %w", collection, id, ErrDuplicateID)
	}
	coll[id] = d
	return nil
}

func (s *MemoryStore) UpdateOne(_ context.Context, collection string, filter Filter, u Update) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.scan(collection, filter)
	if err != nil || len(docs) == 0 {
		return false, err
	}
	d := docs[0]
	if err := applyUpdate(d, u); err != nil {
		return false, err
	}
	id, _ := d.ID()
	s.collections[collection][id] = d
	return true, nil
}

func (s *MemoryStore) DeleteMany(_ context.Context, collection string, filter Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.scan(collection, filter)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		id, _ := d.ID()
		delete(s.collections[collection], id)
	}
	return len(docs), nil
}

func (s *MemoryStore) NextID(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	maxID := 0
	for id := range s.collections[collection] {
		maxID = max(maxID, id)
	}
	return maxID + 1, nil
}
