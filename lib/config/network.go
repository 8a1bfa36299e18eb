package config

import (
	"errors"
	"fmt"
)

// ErrUnknownEnv is returned by GetNetwork for environments without a network definition.
var ErrUnknownEnv = errors.New("unconfigured environment")

// Network describes the NEAR network an environment is deployed to.
type Network struct {
	NetworkID   string `json:"networkId"`
	NodeURL     string `json:"nodeUrl"`
	WalletURL   string `json:"walletUrl,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// GetNetwork returns the network for a deployment environment name such as "production" or "development".
func GetNetwork(env string) (Network, error) {
	switch env {
	case "production", "mainnet":
		return Network{
			NetworkID:   "mainnet",
			NodeURL:     "https://rpc.mainnet.near.org",
			WalletURL:   "https://wallet.near.org",
			ExplorerURL: "https://explorer.mainnet.near.org",
		}, nil
	case "development", "testnet":
		return Network{
			NetworkID:   "testnet",
			NodeURL:     "https://rpc.testnet.near.org",
			WalletURL:   "https://wallet.testnet.near.org",
			ExplorerURL: "https://explorer.testnet.near.org",
		}, nil
	case "betanet":
		return Network{
			NetworkID:   "betanet",
			NodeURL:     "https://rpc.betanet.near.org",
			WalletURL:   "https://wallet.betanet.near.org",
			ExplorerURL: "https://explorer.betanet.near.org",
		}, nil
	case "local":
		return Network{
			NetworkID: "local",
			NodeURL:   "http://localhost:3030",
			WalletURL: "http://localhost:4000/wallet",
		}, nil
	case "test", "ci":
		return Network{
			NetworkID: "shared-test",
			NodeURL:   "https://rpc.ci-testnet.near.org",
		}, nil
	case "ci-betanet":
		return Network{
			NetworkID: "shared-test-staging",
			NodeURL:   "https://rpc.ci-betanet.near.org",
		}, nil
	}

	return Network{}, fmt.Errorf("%w %q", ErrUnknownEnv, env)
}

// AccountURL builds the explorer link for an account or contract id. Networks without an explorer entry get the
// explorer.<networkId>.near.org form.
func (n Network) AccountURL(id string) string {
	base := n.ExplorerURL
	if base == "" {
		base = "https://explorer." + n.NetworkID + ".near.org"
	}

	return base + "/accounts/" + id
}
