package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Document is the unit of persistence: a JSON payload keyed by
// (userID, key) with a type discriminator for queries.
type Document struct {
	Key       string    `db:"key"`
	Type      string    `db:"doc_type"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DocumentStore is the key-value collaborator the lifecycle engine writes
// through. Batch is the atomic multi-document primitive backing dual
// writes and rollover commits; InsertIfAbsent backs write-once archives.
type DocumentStore interface {
	Get(ctx context.Context, userID, key string) (*Document, error)
	Upsert(ctx context.Context, userID string, doc Document) error
	// InsertIfAbsent writes the document only if the key does not exist
	// yet. Returns false (and no error) when the key was already present.
	InsertIfAbsent(ctx context.Context, userID string, doc Document) (bool, error)
	// Batch deletes and upserts in a single transaction.
	Batch(ctx context.Context, userID string, deleteKeys []string, upserts []Document) error
	Query(ctx context.Context, userID, docType string) ([]Document, error)
	Delete(ctx context.Context, userID, key string) error
	// Users lists every user id with at least one document, for
	// background sweeps.
	Users(ctx context.Context) ([]string, error)
}

type documentStore struct {
	db *sqlx.DB
}

func NewDocumentStore(db *sqlx.DB) DocumentStore {
	return &documentStore{db: db}
}

func (s *documentStore) Get(ctx context.Context, userID, key string) (*Document, error) {
	doc := &Document{}
	query := `SELECT key, doc_type, data, updated_at FROM documents WHERE user_id = $1 AND key = $2`

	err := s.db.GetContext(ctx, doc, query, userID, key)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *documentStore) Upsert(ctx context.Context, userID string, doc Document) error {
	query := `INSERT INTO documents (user_id, key, doc_type, data, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (user_id, key)
	          DO UPDATE SET doc_type = excluded.doc_type, data = excluded.data, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, userID, doc.Key, doc.Type, doc.Data, time.Now())
	return err
}

func (s *documentStore) InsertIfAbsent(ctx context.Context, userID string, doc Document) (bool, error) {
	query := `INSERT INTO documents (user_id, key, doc_type, data, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (user_id, key) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, userID, doc.Key, doc.Type, doc.Data, time.Now())
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (s *documentStore) Batch(ctx context.Context, userID string, deleteKeys []string, upserts []Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM documents WHERE user_id = $1 AND key = $2`
	for _, key := range deleteKeys {
		_, err := tx.ExecContext(ctx, deleteQuery, userID, key)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	upsertQuery := `INSERT INTO documents (user_id, key, doc_type, data, created_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $5)
	                ON CONFLICT (user_id, key)
	                DO UPDATE SET doc_type = excluded.doc_type, data = excluded.data, updated_at = excluded.updated_at`

	now := time.Now()
	for _, doc := range upserts {
		_, err := tx.ExecContext(ctx, upsertQuery, userID, doc.Key, doc.Type, doc.Data, now)
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", doc.Key, err)
		}
	}

	return tx.Commit()
}

func (s *documentStore) Query(ctx context.Context, userID, docType string) ([]Document, error) {
	var docs []Document
	query := `SELECT key, doc_type, data, updated_at FROM documents
	          WHERE user_id = $1 AND doc_type = $2 ORDER BY key ASC`

	err := s.db.SelectContext(ctx, &docs, query, userID, docType)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *documentStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	query := `SELECT DISTINCT user_id FROM documents ORDER BY user_id ASC`

	err := s.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *documentStore) Delete(ctx context.Context, userID, key string) error {
	query := `DELETE FROM documents WHERE user_id = $1 AND key = $2`
	result, err := s.db.ExecContext(ctx, query, userID, key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
