package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/polylearner/internal/db"
)

// SQLiteStore keeps each document as a JSON body in the documents table.
// Filtering happens in Go with the shared matcher; an id equality condition
// is pushed down to SQL.
type SQLiteStore struct {
	db db.DBTX
}

func NewSQLiteStore(conn db.DBTX) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) scan(ctx context.Context, collection string, filter Filter) ([]Doc, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT body FROM documents WHERE collection = ?`
	args := []any{collection}
	if id, ok := idEq(f); ok {
		query += ` AND id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", collection, err)
		}
		var d Doc
		if err := json.Unmarshal([]byte(body), &d); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", collection, err)
		}
		if matches(d, f) {
			out = append(out, d)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindOne(ctx context.Context, collection string, filter Filter) (Doc, error) {
	docs, err := s.scan(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocument
	}
	return docs[0], nil
}

func (s *SQLiteStore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Doc, error) {
	docs, err := s.scan(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	sortDocs(docs, opts.Sort)
	return limitDocs(docs, opts.Limit), nil
}

func (s *SQLiteStore) Count(ctx context.Context, collection string, filter Filter) (int, error) {
	if len(filter) == 0 {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("counting %s: %w", collection, err)
		}
		return n, nil
	}
	docs, err := s.scan(ctx, collection, filter)
	return len(docs), err
}

func (s *SQLiteStore) InsertOne(ctx context.Context, collection string, doc Doc) error {
	d, err := normalizeDoc(doc)
	if err != nil {
		return err
	}
	id, err := d.ID()
	if err != nil {
		return err
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%s/%d: %w", collection, id, ErrDuplicateID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking %s/%d: %w", collection, id, err)
	}

	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding %s/%d: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)`,
		collection, id, string(body), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting %s/%d: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateOne(ctx context.Context, collection string, filter Filter, u Update) (bool, error) {
	docs, err := s.scan(ctx, collection, filter)
	if err != nil || len(docs) == 0 {
		return false, err
	}
	d := docs[0]
	if err := applyUpdate(d, u); err != nil {
		return false, err
	}
	id, err := d.ID()
	if err != nil {
		return false, err
	}
	body, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("encoding %s/%d: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(body), nowUTC(), collection, id)
	if err != nil {
		return false, fmt.Errorf("updating %s/%d: %w", collection, id, err)
	}
	return true, nil
}

func (s *SQLiteStore) DeleteMany(ctx context.Context, collection string, filter Filter) (int, error) {
	docs, err := s.scan(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		id, err := d.ID()
		if err != nil {
			return 0, err
		}
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
			return 0, fmt.Errorf("deleting %s/%d: %w", collection, id, err)
		}
	}
	return len(docs), nil
}

func (s *SQLiteStore) NextID(ctx context.Context, collection string) (int, error) {
	var maxID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(id) FROM documents WHERE collection = ?`, collection).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("reading max id of %s: %w", collection, err)
	}
	return int(maxID.Int64) + 1, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
