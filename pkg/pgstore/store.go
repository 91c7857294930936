package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/pgsession/pkg/logger"
	"github.com/dmitrymomot/pgsession/pkg/pg"
	"github.com/dmitrymomot/pgsession/pkg/session"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements session.Store on a single PostgreSQL table. Every
// operation is one parameterized statement on a pooled connection.
type Store struct {
	db      DB
	table   string
	log     *slog.Logger
	queries queries
}

var _ session.Store = (*Store)(nil)

// New creates a store on top of db. The table defaults to "sessions".
func New(db DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		table: DefaultTable,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("pgstore"))
	s.queries = buildQueries(s.table)
	return s
}

// NewFromConfig creates a store with the table name from cfg.
func NewFromConfig(db DB, cfg Config, opts ...Option) *Store {
	return New(db, append([]Option{WithTable(cfg.Table)}, opts...)...)
}

// EnsureSchema creates the sessions table and its expiry index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{s.queries.createTable, s.queries.createIndex} {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return errors.Join(ErrSchema, err)
		}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, sess *session.Session) error {
	data, err := session.EncodeData(sess.Data)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}

	_, err = s.db.Exec(ctx, s.queries.insert,
		sess.Token,
		nullable(sess.UserID),
		sess.Created.Unix(),
		sess.Updated.Unix(),
		int64(sess.Idle/time.Second),
		nullable(data),
		nullable(sess.IPAddress),
		nullable(sess.UserAgent),
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrInsert, session.ErrDuplicateToken, err)
		}
		return errors.Join(ErrInsert, err)
	}
	return nil
}

// Update writes userid, updated, idle and data. No existence check is made:
// an unknown token updates zero rows and is reported only at debug level.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	data, err := session.EncodeData(sess.Data)
	if err != nil {
		return errors.Join(ErrUpdate, err)
	}

	tag, err := s.db.Exec(ctx, s.queries.update,
		nullable(sess.UserID),
		sess.Updated.Unix(),
		int64(sess.Idle/time.Second),
		nullable(data),
		sess.Token,
	)
	if err != nil {
		return errors.Join(ErrUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		s.log.DebugContext(ctx, "update matched no session", logger.Token(sess.Token))
	}
	return nil
}

func (s *Store) SelectByToken(ctx context.Context, token string) (*session.Session, error) {
	var (
		tok                         string
		created, updated, idleSecs  int64
		userID, data, ip, userAgent *string
	)

	err := s.db.QueryRow(ctx, s.queries.selectByToken, token).Scan(
		&tok, &userID, &created, &updated, &idleSecs, &data, &ip, &userAgent,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, errors.Join(ErrSelect, err)
	}

	decoded, err := session.DecodeData(deref(data))
	if err != nil {
		// A broken blob must not cost the user the session.
		s.log.WarnContext(ctx, "malformed session data, using empty data", logger.Token(token), logger.Error(err))
	}

	return &session.Session{
		Token:     tok,
		UserID:    deref(userID),
		Created:   time.Unix(created, 0),
		Updated:   time.Unix(updated, 0),
		Idle:      time.Duration(idleSecs) * time.Second,
		Data:      decoded,
		IPAddress: deref(ip),
		UserAgent: deref(userAgent),
	}, nil
}

func (s *Store) DeleteByToken(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, s.queries.deleteByToken, token); err != nil {
		return errors.Join(ErrDelete, err)
	}
	return nil
}

func (s *Store) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, s.queries.deleteExpired, cutoff.Unix())
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	return tag.RowsAffected(), nil
}

// Table returns the quoted table identifier used in statements.
func (s *Store) Table() string {
	return pgx.Identifier{s.table}.Sanitize()
}

type queries struct {
	createTable   string
	createIndex   string
	insert        string
	update        string
	selectByToken string
	deleteByToken string
	deleteExpired string
}

func buildQueries(table string) queries {
	t := pgx.Identifier{table}.Sanitize()
	idx := pgx.Identifier{table + "_expiry_idx"}.Sanitize()

	return queries{
		createTable: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"token" varchar NOT NULL,
	"userid" varchar,
	"created" int8 NOT NULL DEFAULT 0,
	"updated" int8 NOT NULL DEFAULT 0,
	"idle" int4 NOT NULL DEFAULT 0,
	"data" text,
	"ipaddress" varchar,
	"useragent" text,
	PRIMARY KEY ("token")
)`, t),
		createIndex:   fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (("updated" + "idle"))`, idx, t),
		insert:        fmt.Sprintf(`INSERT INTO %s (token, userid, created, updated, idle, data, ipaddress, useragent) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, t),
		update:        fmt.Sprintf(`UPDATE %s SET userid = $1, updated = $2, idle = $3, data = $4 WHERE token = $5`, t),
		selectByToken: fmt.Sprintf(`SELECT token, userid, created, updated, idle, data, ipaddress, useragent FROM %s WHERE token = $1`, t),
		deleteByToken: fmt.Sprintf(`DELETE FROM %s WHERE token = $1`, t),
		deleteExpired: fmt.Sprintf(`DELETE FROM %s WHERE updated + idle < $1`, t),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
