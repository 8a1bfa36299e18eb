package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleLoggers(t *testing.T) {
	var buf bytes.Buffer

	SetOutput(&buf, FormatJSON)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, FormatJSON) })

	require.NoError(t, SetLevel("debug"))

	cases := []struct {
		l   zerolog.Logger
		mod string
	}{
		{Web(), ModuleWeb},
		{View(), ModuleView},
		{Contract(), ModuleContract},
		{Store(), ModuleStore},
		{Broker(), ModuleBroker},
	}

	for _, c := range cases {
		buf.Reset()
		c.l.Info().Str("account", "alice.testnet").Msg("hello")

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line), c.mod)
		assert.Equal(t, c.mod, line[KeyModule])
		assert.Equal(t, "info", line["level"])
		assert.Equal(t, "hello", line["message"])
		assert.Equal(t, "alice.testnet", line["account"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer

	SetOutput(&buf, FormatJSON)
	t.Cleanup(func() {
		SetOutput(&bytes.Buffer{}, FormatJSON)
		_ = SetLevel("info")
	})

	require.NoError(t, SetLevel("warn"))

	l := Web()
	l.Info().Msg("dropped")
	assert.Equal(t, 0, buf.Len())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")

	assert.Error(t, SetLevel("loud"))
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer

	SetOutput(&buf, FormatConsole)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, FormatJSON) })

	require.NoError(t, SetLevel("info"))

	l := Store()
	l.Info().Msg("connected")

	assert.Contains(t, buf.String(), "connected")
	assert.NotContains(t, buf.String(), "{")
}
