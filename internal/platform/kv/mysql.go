package kv

import (
	"context"
	"database/sql"
	"errors"

	"care-attendance/internal/platform/db"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv_documents (
	doc_key    VARCHAR(64) NOT NULL PRIMARY KEY,
	body       LONGTEXT    NOT NULL,
	updated_at DATETIME(6) NOT NULL
)`

// MySQLStore keeps every dataset as one row of kv_documents.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(conn *sql.DB) *MySQLStore { return &MySQLStore{db: conn} }

// Migrate creates the table when missing.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL)
	return err
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM kv_documents WHERE doc_key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (s *MySQLStore) Set(ctx context.Context, key string, value []byte) error {
	return upsertDoc(ctx, s.db, key, value)
}

func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_documents WHERE doc_key = ?`, key)
	return err
}

func (s *MySQLStore) SetAll(ctx context.Context, docs map[string][]byte) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		for k, v := range docs {
			if err := upsertDoc(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertDoc(ctx context.Context, q db.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
	INSERT INTO kv_documents (doc_key, body, updated_at)
	VALUES (?, ?, UTC_TIMESTAMP(6))
	ON DUPLICATE KEY UPDATE
	body       = VALUES(body),
	updated_at = VALUES(updated_at)`, key, string(value))
	return err
}
