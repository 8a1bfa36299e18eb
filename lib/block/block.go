// Package block defines the interface required for smart contract connections.
package block

import (
	"context"
	"time"

	"github.com/jelilat/hellonear/lib/block/near"
	"github.com/jelilat/hellonear/lib/block/types"
	"github.com/jelilat/hellonear/lib/config"
)

// Contract is the interface to the greeting contract deployed on a network. Reads need no credentials; writes are
// signed by the given signer.
type Contract interface {
	ContractID() string
	Close()
	GetName(ctx context.Context, q types.NameQuery) (string, error)
	SetName(ctx context.Context, s types.Signer, p types.SetNamePayload) (types.Outcome, error)
}

// Init connects to the contract named in the configuration on the network of its environment.
func Init(conf config.ServiceConfig) (Contract, config.Network, error) {
	n, err := conf.Network()
	if err != nil {
		return nil, n, err
	}

	c, err := near.Init(n.NodeURL, conf.Contract, time.Duration(conf.RPCTimeout)*time.Second)
	if err != nil {
		return nil, n, err
	}

	return c, n, nil
}
