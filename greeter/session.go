package greeter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jelilat/hellonear/lib/block/near"
	"github.com/jelilat/hellonear/lib/block/types"
	"github.com/jelilat/hellonear/lib/log"
	"github.com/jelilat/hellonear/lib/store"
)

// storeTimeout bounds the store lookups made while rendering, which have no request context.
const storeTimeout = 5 * time.Second

// walletSession is the session collaborator of a view. It is backed by the store record of the browser session, read
// on every call so a sign out in another tab is seen by the next render.
type walletSession struct {
	g    *Greeter
	id   string
	base string // external base url of the service, ie. https://hello.example.com
}

func (s *walletSession) load() (store.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	return s.g.db.LoadSession(ctx, s.id)
}

// IsSignedIn reports whether the wallet authorised the key of the session.
func (s *walletSession) IsSignedIn() bool {
	rec, err := s.load()
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			l := log.Store()
			l.Error().Err(err).Str("session", s.id).Msg("Cannot load session")
		}

		return false
	}

	return rec.SignedIn()
}

// AccountID returns the signed in account, "" otherwise.
func (s *walletSession) AccountID() string {
	rec, err := s.load()
	if err != nil || !rec.SignedIn() {
		return ""
	}

	return rec.AccountID
}

// Login creates a new function-call key, stores it as pending and returns the wallet url asking the user to authorise
// it for the contract.
func (s *walletSession) Login(ctx context.Context) (string, error) {
	if s.g.net.WalletURL == "" {
		return "", ErrNoWallet
	}

	k, err := near.GenerateKey("")
	if err != nil {
		return "", err
	}

	rec := store.Session{
		ID:         s.id,
		PublicKey:  k.String(),
		PrivateKey: k.Secret(),
		Pending:    true,
		Created:    time.Now().UTC(),
	}
	if err = s.g.db.SaveSession(ctx, rec); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("success_url", s.base+"/login/callback")
	q.Set("failure_url", s.base+"/login/callback")
	q.Set("contract_id", s.g.contract.ContractID())
	q.Set("public_key", rec.PublicKey)

	return s.g.net.WalletURL + "/login/?" + q.Encode(), nil
}

// Logout forgets the session and its key.
func (s *walletSession) Logout(ctx context.Context) error {
	if err := s.g.db.DeleteSession(ctx, s.id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return err
	}

	return nil
}

// complete finishes the wallet sign in. The wallet returns the account and the public key it added; the key must be
// the pending one of the session, compared as decoded keys.
func (s *walletSession) complete(ctx context.Context, account, publicKey string) error {
	rec, err := s.g.db.LoadSession(ctx, s.id)
	if err != nil {
		return err
	}

	if account == "" {
		return ErrNoAccount
	}

	pub, err := near.DecodePublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeyMismatch, err)
	}

	k, err := near.ParseKeyPair(account, rec.PrivateKey)
	if err != nil {
		return err
	}

	if !rec.Pending || !k.PublicKey().Equal(pub) {
		return ErrKeyMismatch
	}

	rec.AccountID = account
	rec.Pending = false

	return s.g.db.SaveSession(ctx, rec)
}

// sessionContract is the contract collaborator of a view: reads go straight to the contract, writes are signed with
// the key of the session.
type sessionContract struct {
	g  *Greeter
	id string

	mu     sync.Mutex
	lastTx string
}

func (c *sessionContract) ContractID() string {
	return c.g.contract.ContractID()
}

func (c *sessionContract) Get(ctx context.Context, q types.NameQuery) (string, error) {
	return c.g.contract.GetName(ctx, q)
}

func (c *sessionContract) Set(ctx context.Context, p types.SetNamePayload) error {
	rec, err := c.g.db.LoadSession(ctx, c.id)
	if err != nil {
		return err
	}

	if !rec.SignedIn() {
		return types.ErrNotSignedIn
	}

	k, err := near.ParseKeyPair(rec.AccountID, rec.PrivateKey)
	if err != nil {
		return err
	}

	o, err := c.g.contract.SetName(ctx, k, p)
	if err != nil {
		return err
	}

	l := log.Contract()
	l.Info().Str("tx", o.Hash).Str("account", o.SignerID).Uint64("gas", o.GasBurnt).Msg("Name saved")

	c.mu.Lock()
	c.lastTx = o.Hash
	c.mu.Unlock()

	return nil
}

func (c *sessionContract) tx() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastTx
}
