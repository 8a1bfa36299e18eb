package store

import "time"

// Session contains the fields of a browser session saved to DB. PrivateKey holds the function-call access key the
// wallet authorised for the account, in "ed25519:<base58>" form.
type Session struct {
	ID         string    `json:"id" bson:"_id"`
	AccountID  string    `json:"accountId" bson:"accountId"`
	PublicKey  string    `json:"publicKey" bson:"publicKey"`
	PrivateKey string    `json:"-" bson:"privateKey"`
	Pending    bool      `json:"pending" bson:"pending"`
	Created    time.Time `json:"created" bson:"created"`
}

// SignedIn returns true when the wallet has authorised the session key for an account.
func (s Session) SignedIn() bool {
	return !s.Pending && s.AccountID != "" && s.PrivateKey != ""
}
