// Package mongo implements the store interface for MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jelilat/hellonear/lib/store"
)

// Database and collection holding the sessions.
const (
	Database   = "hellonear"
	Collection = "sessions"
)

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c *mgo.Client
}

// New returns a Mongo client connection to the specified MongoDB database uri.
func New(uri string) (*Mongo, error) {
	// get a client
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}
	// connect client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	err = c.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

func (m *Mongo) col() *mgo.Collection {
	return m.c.Database(Database).Collection(Collection)
}

// SaveSession inserts the session or replaces the stored one with the same id.
func (m *Mongo) SaveSession(ctx context.Context, s store.Session) error {
	if s.ID == "" {
		return store.ErrNoID
	}

	_, err := m.col().ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("could not save session in db: %w", err)
	}

	return nil
}

// LoadSession loads from db the session with the given id.
func (m *Mongo) LoadSession(ctx context.Context, id string) (s store.Session, err error) {
	if err = m.col().FindOne(ctx, bson.M{"_id": id}).Decode(&s); errors.Is(err, mgo.ErrNoDocuments) {
		err = store.ErrSessionNotFound
	}

	return
}

// DeleteSession deletes the session from the database.
func (m *Mongo) DeleteSession(ctx context.Context, id string) error {
	res, err := m.col().DeleteOne(ctx, bson.M{"_id": id})
	if err == nil && res.DeletedCount != 1 {
		err = store.ErrSessionNotFound
	}

	return err
}
