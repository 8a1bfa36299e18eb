package block

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelilat/hellonear/lib/block/types"
	"github.com/jelilat/hellonear/lib/config"
)

var errDown = errors.New("node down")

type fakeContract struct {
	fail bool
}

func (f *fakeContract) ContractID() string { return "hellonear.testnet" }
func (f *fakeContract) Close()             {}

func (f *fakeContract) GetName(context.Context, types.NameQuery) (string, error) {
	if f.fail {
		return "", errDown
	}

	return "Alice", nil
}

func (f *fakeContract) SetName(context.Context, types.Signer, types.SetNamePayload) (types.Outcome, error) {
	if f.fail {
		return types.Outcome{}, errDown
	}

	return types.Outcome{Hash: "tx"}, nil
}

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := &fakeContract{}
	c := Instrument(f, reg)

	_, err := c.GetName(context.Background(), types.NameQuery{AccountID: "alice.testnet"})
	require.NoError(t, err)

	f.fail = true
	_, err = c.GetName(context.Background(), types.NameQuery{AccountID: "alice.testnet"})
	assert.True(t, errors.Is(err, errDown))
	_, err = c.SetName(context.Background(), nil, types.SetNamePayload{Message: "Bob"})
	assert.True(t, errors.Is(err, errDown))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Calls(types.MethodGetName, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Calls(types.MethodGetName, OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Calls(types.MethodSetName, OutcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Calls(types.MethodSetName, OutcomeOK)))

	// a second wrapper in the same registry shares the collectors
	c2 := Instrument(&fakeContract{}, reg)
	_, _ = c2.GetName(context.Background(), types.NameQuery{})
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Calls(types.MethodGetName, OutcomeOK)))
}

func TestInit(t *testing.T) {
	conf, err := config.ExtractConfiguration("")
	require.NoError(t, err)

	c, n, err := Init(conf)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "testnet", n.NetworkID)
	assert.Equal(t, config.ContractDefault, c.ContractID())

	conf.Env = "nowhere"
	_, _, err = Init(conf)
	assert.True(t, errors.Is(err, config.ErrUnknownEnv))
}

// TestSchemas pins the JSON argument schemas of the contract methods.
func TestSchemas(t *testing.T) {
	b, _ := json.Marshal(types.NameQuery{AccountID: "alice.testnet"})
	assert.Equal(t, `{"account_id":"alice.testnet"}`, string(b))

	b, _ = json.Marshal(types.SetNamePayload{Message: "Bob"})
	assert.Equal(t, `{"message":"Bob"}`, string(b))
}
