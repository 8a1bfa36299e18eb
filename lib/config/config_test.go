// config_test.go tests config files
package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileToTest is a relative path to the configuration file to test (ie. hellonear/cmd/conf.json)
var fileToTest string = "../../cmd/conf.json"

// TestConfig extracts config from a file and checks values loaded
func TestConfig(t *testing.T) {
	conf, err := ExtractConfiguration(fileToTest)
	require.NoError(t, err)

	assert.Equal(t, "3030", conf.Port)
	assert.Equal(t, "development", conf.Env)
	assert.Equal(t, "hellonear.testnet", conf.Contract)
	assert.Equal(t, 1500, conf.MountWait)

	n, err := conf.Network()
	require.NoError(t, err)
	assert.Equal(t, "testnet", n.NetworkID)
	assert.Equal(t, "https://rpc.testnet.near.org", n.NodeURL)
}

func TestConfigDefaults(t *testing.T) {
	conf, err := ExtractConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, DBTypeDefault, conf.DBType)
	assert.Equal(t, ViewsDefault, conf.Views)
	assert.Equal(t, RPCTimeoutDefault, conf.RPCTimeout)
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("HELLONEAR_ENV", "production")
	t.Setenv("HELLONEAR_NODE", "http://127.0.0.1:3030")
	t.Setenv("HELLONEAR_VIEWS", "10")

	conf, err := ExtractConfiguration(fileToTest)
	require.NoError(t, err)
	assert.Equal(t, "production", conf.Env)
	assert.Equal(t, 10, conf.Views)

	n, err := conf.Network()
	require.NoError(t, err)
	assert.Equal(t, "mainnet", n.NetworkID)
	assert.Equal(t, "http://127.0.0.1:3030", n.NodeURL)
}

func TestConfigErrors(t *testing.T) {
	_, err := ExtractConfiguration("does-not-exist.json")
	assert.Error(t, err)

	t.Setenv("HELLONEAR_VIEWS", "many")
	_, err = ExtractConfiguration("")
	assert.Error(t, err)

	t.Setenv("HELLONEAR_VIEWS", "")
	t.Setenv("HELLONEAR_DBTYPE", "redis")
	_, err = ExtractConfiguration("")
	assert.True(t, errors.Is(err, ErrBadValue))

	t.Setenv("HELLONEAR_DBTYPE", "")
	t.Setenv("HELLONEAR_ENV", "staging")
	_, err = ExtractConfiguration("")
	assert.True(t, errors.Is(err, ErrUnknownEnv))
}

func TestGetNetwork(t *testing.T) {
	cases := []struct {
		env, id, node string
	}{
		{"production", "mainnet", "https://rpc.mainnet.near.org"},
		{"mainnet", "mainnet", "https://rpc.mainnet.near.org"},
		{"development", "testnet", "https://rpc.testnet.near.org"},
		{"testnet", "testnet", "https://rpc.testnet.near.org"},
		{"betanet", "betanet", "https://rpc.betanet.near.org"},
		{"local", "local", "http://localhost:3030"},
		{"test", "shared-test", "https://rpc.ci-testnet.near.org"},
		{"ci", "shared-test", "https://rpc.ci-testnet.near.org"},
		{"ci-betanet", "shared-test-staging", "https://rpc.ci-betanet.near.org"},
	}

	for _, c := range cases {
		n, err := GetNetwork(c.env)
		if assert.NoError(t, err, c.env) {
			assert.Equal(t, c.id, n.NetworkID, c.env)
			assert.Equal(t, c.node, n.NodeURL, c.env)
		}
	}

	_, err := GetNetwork("")
	assert.True(t, errors.Is(err, ErrUnknownEnv))
}

func TestAccountURL(t *testing.T) {
	cases := []struct {
		env, exp string
	}{
		{"development", "https://explorer.testnet.near.org/accounts/alice.testnet"},
		{"production", "https://explorer.mainnet.near.org/accounts/alice.testnet"},
		{"ci", "https://explorer.shared-test.near.org/accounts/alice.testnet"},
	}

	for _, c := range cases {
		n, err := GetNetwork(c.env)
		require.NoError(t, err)
		assert.Equal(t, c.exp, n.AccountURL("alice.testnet"), c.env)
	}

	n := Network{NetworkID: "testnet", ExplorerURL: "https://nearblocks.example"}
	assert.Equal(t, "https://nearblocks.example/accounts/alice.testnet", n.AccountURL("alice.testnet"))
}
