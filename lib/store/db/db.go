// Package db implements the opening and graceful closing of database connections.
package db

import (
	"fmt"

	"github.com/jelilat/hellonear/lib/config"
	"github.com/jelilat/hellonear/lib/store"
	"github.com/jelilat/hellonear/lib/store/memory"
	"github.com/jelilat/hellonear/lib/store/mongo"
	"github.com/jelilat/hellonear/lib/store/postgres"
)

const (
	MEMORY   string = "memory"
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
)

// New returns a new database connection according to the options (database type).
func New(options, connection string) (store.DB, error) {
	switch options {
	case MEMORY:
		return memory.New(), nil
	case MONGODB:
		return mongo.New(connection)
	case POSTGRES:
		return postgres.New(connection)
	}

	return nil, fmt.Errorf("dbtype %q: %w", options, config.ErrBadValue)
}

// Close gracefully closes the database connection.
func Close(options string, dh store.DB) error {
	switch options {
	case MONGODB:
		return dh.(*mongo.Mongo).CloseMongo()
	case POSTGRES:
		return dh.(*postgres.Postgres).ClosePostgres()
	}

	return nil
}
