package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelilat/hellonear/lib/store"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := New()

	_, err := m.LoadSession(ctx, "s1")
	assert.True(t, errors.Is(err, store.ErrSessionNotFound))

	assert.True(t, errors.Is(m.SaveSession(ctx, store.Session{}), store.ErrNoID))

	s := store.Session{ID: "s1", PublicKey: "ed25519:pub", PrivateKey: "ed25519:priv", Pending: true, Created: time.Now()}
	require.NoError(t, m.SaveSession(ctx, s))

	got, err := m.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.SignedIn())

	s.Pending, s.AccountID = false, "alice.testnet"
	require.NoError(t, m.SaveSession(ctx, s))

	got, err = m.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.SignedIn())
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.DeleteSession(ctx, "s1"))
	assert.True(t, errors.Is(m.DeleteSession(ctx, "s1"), store.ErrSessionNotFound))
	assert.Equal(t, 0, m.Len())
}
