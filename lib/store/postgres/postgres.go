// Package postgres implements the store interface for PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" //nolint:gci // load the postgres driver that is used by the system

	"github.com/jelilat/hellonear/lib/store"
)

const schema = `CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL DEFAULT '',
	public_key  TEXT NOT NULL DEFAULT '',
	private_key TEXT NOT NULL DEFAULT '',
	pending     BOOLEAN NOT NULL DEFAULT FALSE,
	created     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Postgres struct {
	db *sql.DB
}

// New returns a postgres client connection to the specified database in 'connection' and creates the sessions table
// if it does not exist.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("cannot create sessions table: %w", err)
	}

	return &Postgres{db: db}, nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// SaveSession inserts the session or updates the stored one with the same id.
func (p *Postgres) SaveSession(ctx context.Context, s store.Session) error {
	if s.ID == "" {
		return store.ErrNoID
	}

	_, err := p.db.ExecContext(ctx, `INSERT INTO sessions (id, account_id, public_key, private_key, pending, created)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET account_id = $2, public_key = $3, private_key = $4, pending = $5`,
		s.ID, s.AccountID, s.PublicKey, s.PrivateKey, s.Pending, s.Created)
	if err != nil {
		return fmt.Errorf("could not save session in db: %w", err)
	}

	return nil
}

// LoadSession loads from db the session with the given id.
func (p *Postgres) LoadSession(ctx context.Context, id string) (s store.Session, err error) {
	err = p.db.QueryRowContext(ctx, `SELECT id, account_id, public_key, private_key, pending, created
		FROM sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.AccountID, &s.PublicKey, &s.PrivateKey, &s.Pending, &s.Created)
	if errors.Is(err, sql.ErrNoRows) {
		err = store.ErrSessionNotFound
	}

	return
}

// DeleteSession deletes the session from the database.
func (p *Postgres) DeleteSession(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if n, errN := res.RowsAffected(); errN == nil && n != 1 {
		return store.ErrSessionNotFound
	}

	return nil
}
