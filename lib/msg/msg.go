// Package msg defines the interface for different message brokers.
package msg

import (
	"sync"

	"github.com/jelilat/hellonear/lib/msg/types"
)

// Exchange receiving greeting events.
const Exchange = "ge"

// MsgBroker is implemented by the message brokers the greeter service can publish its events to.
type MsgBroker interface {
	Setup() error
	Close() error

	SendEvent(net string, e types.NameEvent) error
	GetEvents(net string, mut *sync.Mutex) (<-chan types.NameEvent, <-chan error, error)
}
