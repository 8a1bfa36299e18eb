package near

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/jelilat/hellonear/lib/block/types"
)

// keyPrefix is the curve prefix NEAR uses in the textual form of keys.
const keyPrefix = "ed25519:"

// KeyPair is an ed25519 access key bound to an account. It implements types.Signer.
type KeyPair struct {
	account string
	priv    ed25519.PrivateKey
}

// GenerateKey creates a new random key pair. The account may be empty, as it is only known once the wallet has
// authorised the key; the stored secret is then parsed again with ParseKeyPair.
func GenerateKey(account string) (*KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cannot generate ed25519 key: %w", err)
	}

	return &KeyPair{account: account, priv: priv}, nil
}

// ParseKeyPair decodes a private key in NEAR's "ed25519:<base58>" form. Both the 64 byte (seed + public key) and the
// 32 byte seed encodings are accepted.
func ParseKeyPair(account, secret string) (*KeyPair, error) {
	raw := base58.Decode(strings.TrimPrefix(secret, keyPrefix))

	switch len(raw) {
	case ed25519.PrivateKeySize:
		return &KeyPair{account: account, priv: ed25519.PrivateKey(raw)}, nil
	case ed25519.SeedSize:
		return &KeyPair{account: account, priv: ed25519.NewKeyFromSeed(raw)}, nil
	}

	return nil, fmt.Errorf("private key of %d bytes: %w", len(raw), types.ErrBadKey)
}

// AccountID returns the account the key belongs to.
func (k *KeyPair) AccountID() string { return k.account }

// PublicKey returns the public half of the key.
func (k *KeyPair) PublicKey() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// Sign signs message with the private key.
func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// Secret returns the private key in "ed25519:<base58>" form.
func (k *KeyPair) Secret() string {
	return keyPrefix + base58.Encode(k.priv)
}

// String returns the public key in "ed25519:<base58>" form.
func (k *KeyPair) String() string {
	return EncodePublicKey(k.PublicKey())
}

// EncodePublicKey returns the "ed25519:<base58>" form of pub.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return keyPrefix + base58.Encode(pub)
}

// DecodePublicKey parses an "ed25519:<base58>" public key. The prefix is optional.
func DecodePublicKey(s string) (ed25519.PublicKey, error) {
	raw := base58.Decode(strings.TrimPrefix(s, keyPrefix))
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key %q: %w", s, types.ErrBadKey)
	}

	return ed25519.PublicKey(raw), nil
}
