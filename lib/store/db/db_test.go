package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelilat/hellonear/lib/config"
	"github.com/jelilat/hellonear/lib/store/memory"
)

func TestNew(t *testing.T) {
	s, err := New(MEMORY, "")
	require.NoError(t, err)
	assert.IsType(t, &memory.Memory{}, s)
	assert.NoError(t, Close(MEMORY, s))

	_, err = New("redis", "redis://localhost")
	assert.True(t, errors.Is(err, config.ErrBadValue))
}
