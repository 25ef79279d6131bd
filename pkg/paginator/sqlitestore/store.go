// Package sqlitestore provides the durable SQLite-backed paginator session store.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harun/pagina/pkg/paginator"
	"github.com/harun/pagina/pkg/paginator/sqlitestore/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists paginator sessions in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to compute expiry instants.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

var _ paginator.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writers and keeps every read consistent
	// with the latest committed index.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a session row with current_page 0.
func (s *Store) Create(ctx context.Context, params paginator.CreateParams) (*paginator.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	messageID := strings.TrimSpace(params.Ref.MessageID)
	if messageID == "" {
		return nil, fmt.Errorf("message id is required")
	}
	if len(params.Pages) == 0 {
		return nil, fmt.Errorf("%w: session has no pages", paginator.ErrInvalidArgument)
	}

	pages, err := encodePages(params.Pages)
	if err != nil {
		return nil, err
	}
	expireAt := s.now().Add(params.TTL).Truncate(time.Second)

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO paginator (
		   message_id, channel_id, guild_id, user_id, delete_ts, pages, current_page
		 ) VALUES (?, ?, ?, ?, ?, ?, 0)`,
		messageID,
		params.Ref.ChannelID,
		params.Ref.GuildID,
		params.OwnerID,
		expireAt.Unix(),
		pages,
	); err != nil {
		return nil, fmt.Errorf("create paginator session: %w", err)
	}

	return &paginator.Session{
		Ref:      params.Ref,
		OwnerID:  params.OwnerID,
		Pages:    params.Pages,
		ExpireAt: expireAt,
	}, nil
}

// Get loads the session of a message.
func (s *Store) Get(ctx context.Context, messageID string) (*paginator.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT message_id, channel_id, guild_id, user_id, delete_ts, pages, current_page
		   FROM paginator
		  WHERE message_id = ?`,
		messageID,
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, paginator.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get paginator session: %w", err)
	}
	return session, nil
}

// UpdateIndex sets current_page of an existing row.
func (s *Store) UpdateIndex(ctx context.Context, messageID string, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE paginator SET current_page = ? WHERE message_id = ?`,
		index,
		messageID,
	)
	if err != nil {
		return fmt.Errorf("update paginator index: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update paginator index: %w", err)
	}
	if affected == 0 {
		return paginator.ErrSessionNotFound
	}
	return nil
}

// Delete removes a row. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM paginator WHERE message_id = ?`, messageID); err != nil {
		return fmt.Errorf("delete paginator session: %w", err)
	}
	return nil
}

// ListExpired returns sessions whose expiry is strictly before the instant.
func (s *Store) ListExpired(ctx context.Context, before time.Time) ([]*paginator.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.query(
		ctx,
		`SELECT message_id, channel_id, guild_id, user_id, delete_ts, pages, current_page
		   FROM paginator
		  WHERE delete_ts < ?
		  ORDER BY delete_ts ASC, message_id ASC`,
		before.Unix(),
	)
}

// ListByOwner returns the sessions opened by ownerID, soonest expiry first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*paginator.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.query(
		ctx,
		`SELECT message_id, channel_id, guild_id, user_id, delete_ts, pages, current_page
		   FROM paginator
		  WHERE user_id = ?
		  ORDER BY delete_ts ASC, message_id ASC`,
		ownerID,
	)
}

// List returns every stored session, soonest expiry first.
func (s *Store) List(ctx context.Context) ([]*paginator.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.query(
		ctx,
		`SELECT message_id, channel_id, guild_id, user_id, delete_ts, pages, current_page
		   FROM paginator
		  ORDER BY delete_ts ASC, message_id ASC`,
	)
}

// DeleteExpired removes expired rows without touching their messages and
// returns how many were deleted.
func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM paginator WHERE delete_ts < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired paginator sessions: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*paginator.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list paginator sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*paginator.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paginator session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paginator sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*paginator.Session, error) {
	var (
		session  paginator.Session
		deleteTS int64
		pages    string
	)
	if err := row.Scan(
		&session.Ref.MessageID,
		&session.Ref.ChannelID,
		&session.Ref.GuildID,
		&session.OwnerID,
		&deleteTS,
		&pages,
		&session.CurrentIndex,
	); err != nil {
		return nil, err
	}

	decoded, err := decodePages(pages)
	if err != nil {
		return nil, err
	}
	session.Pages = decoded
	session.ExpireAt = time.Unix(deleteTS, 0)
	return &session, nil
}
