// Package types common contract types.
package types

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

// Contract method names. They are dictated by the deployed contract.
const (
	MethodGetName = "get_name"
	MethodSetName = "set_name"
)

// NameQuery is the argument of the get_name view method.
type NameQuery struct {
	AccountID string `json:"account_id"`
}

// SetNamePayload is the argument of the set_name change method.
type SetNamePayload struct {
	Message string `json:"message"`
}

// Outcome is the result of a change call once the transaction has been executed.
type Outcome struct {
	Hash       string   `json:"hash"`
	SignerID   string   `json:"signerId"`
	ReceiverID string   `json:"receiverId"`
	GasBurnt   uint64   `json:"gasBurnt"`
	Logs       []string `json:"logs,omitempty"`
}

// RPCError is an error reported by the node, either at the JSON-RPC level or as a transaction Failure.
type RPCError struct {
	Name    string // ie. HANDLER_ERROR
	Cause   string // ie. UNKNOWN_ACCOUNT, InvalidNonce
	Message string
}

func (e *RPCError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("near rpc %s: %s: %s", e.Name, e.Cause, e.Message)
	}

	return fmt.Sprintf("near rpc %s: %s", e.Name, e.Message)
}

// Error codes.
var (
	ErrNoResult      = errors.New("rpc response does not contain a result")
	ErrBadResult     = errors.New("malformed rpc result")
	ErrNoAccessKey   = errors.New("access key is not registered for the account")
	ErrBadKey        = errors.New("malformed ed25519 key")
	ErrBadBlockHash  = errors.New("malformed block hash")
	ErrTxFailed      = errors.New("transaction failed")
	ErrNotSignedIn   = errors.New("session is not signed in")
	ErrEmptyContract = errors.New("contract id is empty")
)

// Signer signs transactions on behalf of an account with one of its ed25519 access keys.
type Signer interface {
	AccountID() string
	PublicKey() ed25519.PublicKey
	Sign(message []byte) []byte
}
