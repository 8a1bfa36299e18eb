package near

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/near/borsh-go"
)

const keyTypeED25519 uint8 = 0

// Action kinds, in protocol order.
const (
	ActionCreateAccount borsh.Enum = iota
	ActionDeployContract
	ActionFunctionCall
)

// PublicKey is a NEAR public key as it is borsh encoded.
type PublicKey struct {
	KeyType uint8
	Data    [ed25519.PublicKeySize]byte
}

// Signature is a NEAR signature as it is borsh encoded.
type Signature struct {
	KeyType uint8
	Data    [ed25519.SignatureSize]byte
}

// FunctionCall calls a method of the receiver contract.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    [16]byte // u128, little endian
}

// DeployContract is only declared so that FunctionCall sits at its protocol index.
type DeployContract struct {
	Code []byte
}

// Action is the enum of transaction actions. The client only builds FunctionCall.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  struct{}
	DeployContract DeployContract
	FunctionCall   FunctionCall
}

// Transaction is an unsigned NEAR transaction.
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []Action
}

// SignedTransaction is a transaction with its signature, ready for broadcast.
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

// NewPublicKey returns the borsh form of an ed25519 public key.
func NewPublicKey(pub ed25519.PublicKey) PublicKey {
	k := PublicKey{KeyType: keyTypeED25519}
	copy(k.Data[:], pub)

	return k
}

// NewFunctionCall returns an action calling method with args, no deposit attached.
func NewFunctionCall(method string, args []byte, gas uint64) Action {
	return Action{
		Enum:         ActionFunctionCall,
		FunctionCall: FunctionCall{MethodName: method, Args: args, Gas: gas},
	}
}

// Serialize returns the borsh encoding of the transaction.
func (t *Transaction) Serialize() ([]byte, error) {
	return borsh.Serialize(*t)
}

// Hash returns sha256 of the serialized transaction, which is both the signed message and the transaction hash.
func (t *Transaction) Hash() ([32]byte, error) {
	b, err := t.Serialize()
	if err != nil {
		return [32]byte{}, err
	}

	return sha256.Sum256(b), nil
}

// Sign signs the transaction hash with sign and returns the signed transaction and the hash.
func (t *Transaction) Sign(sign func([]byte) []byte) (SignedTransaction, [32]byte, error) {
	hash, err := t.Hash()
	if err != nil {
		return SignedTransaction{}, hash, err
	}

	st := SignedTransaction{Transaction: *t, Signature: Signature{KeyType: keyTypeED25519}}
	copy(st.Signature.Data[:], sign(hash[:]))

	return st, hash, nil
}

// Serialize returns the borsh encoding of the signed transaction.
func (s *SignedTransaction) Serialize() ([]byte, error) {
	return borsh.Serialize(*s)
}
