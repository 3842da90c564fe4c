package audit

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const table = "audit_log"

const schema = `CREATE TABLE IF NOT EXISTS audit_log (
	id         BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	actor_id   TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	details    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at);`

// PGStore persists entries in Postgres.
type PGStore struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// Open connects with the pgx stdlib driver and pings.
func Open(dsn string) (*PGStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit db: %w", err)
	}
	db.SetMaxOpenConns(5)
	return NewPGStore(db), nil
}

func NewPGStore(db *sqlx.DB) *PGStore {
	return &PGStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	q := s.sb.Insert(table).
		Columns("actor_id", "action", "details", "created_at").
		Values(e.ActorID, e.Action, e.Details, e.CreatedAt)
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *PGStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := s.sb.Select("id", "created_at", "actor_id", "action", "details").
		From(table).
		OrderBy("id DESC").
		Limit(uint64(limit))
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	out := []Entry{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := s.sb.Delete(table).Where(sq.Lt{"created_at": before}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
