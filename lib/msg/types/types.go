// Package types defines the messages exchanged through the message broker.
package types

// NameEvent is published every time an account saved a new name in the contract.
type NameEvent struct {
	Net      string `json:"net"`
	Account  string `json:"account"`
	Contract string `json:"contract"`
	Method   string `json:"method"`
	Name     string `json:"name"`
	Tx       string `json:"tx,omitempty"`
	TS       int64  `json:"ts"` // unix seconds
}
