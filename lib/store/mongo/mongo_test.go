//go:build integration
// +build integration

package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelilat/hellonear/lib/store"
)

// This test requires an available MongoDB server at localhost:27017.
var uri string = "mongodb://localhost:27017"

func TestSessions(t *testing.T) {
	ctx := context.Background()

	m, err := New(uri)
	require.NoError(t, err)

	defer m.CloseMongo()

	s := store.Session{ID: "mongo-test", PublicKey: "ed25519:pub", PrivateKey: "ed25519:priv", Pending: true,
		Created: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, m.SaveSession(ctx, s))

	s.Pending, s.AccountID = false, "alice.testnet"
	require.NoError(t, m.SaveSession(ctx, s))

	got, err := m.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, m.DeleteSession(ctx, s.ID))

	_, err = m.LoadSession(ctx, s.ID)
	assert.True(t, errors.Is(err, store.ErrSessionNotFound))
	assert.True(t, errors.Is(m.DeleteSession(ctx, s.ID), store.ErrSessionNotFound))
}
