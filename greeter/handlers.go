package greeter

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/jelilat/hellonear/greeter/view"
	"github.com/jelilat/hellonear/lib/block/types"
	"github.com/jelilat/hellonear/lib/log"
)

// Cookie holding the browser session id.
const (
	cookieName = "hellonear"
	cookieSID  = "sid"
)

// Response defines the data structure returned to the client making an api request.
type Response struct {
	Body  string `json:"body"`
	Error string `json:"error,omitempty"`
}

// inputReq is the body of /api/input.
type inputReq struct {
	Value string `json:"value"`
}

// page is the data rendered by index.html.
type page struct {
	view.Model
	NetworkID     string
	WalletURL     string
	AccountURL    string
	ContractURL   string
	FallbackLabel string
}

// baseURL returns the external url of the service as seen by the client.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}

	return scheme + "://" + r.Host
}

// sessionID returns the id of the browser session, creating and setting the cookie if it does not exist yet.
func (g *Greeter) sessionID(rw http.ResponseWriter, r *http.Request) (string, error) {
	// a cookie that cannot be decoded (ie. secret rotated) gives a new empty session
	s, _ := g.cookies.Get(r, cookieName)

	if id, ok := s.Values[cookieSID].(string); ok && id != "" {
		return id, nil
	}

	raw := securecookie.GenerateRandomKey(16) //nolint:gomnd // 128 bits
	if raw == nil {
		return "", ErrBadRequest
	}

	id := hex.EncodeToString(raw)
	s.Values[cookieSID] = id

	return id, s.Save(r, rw)
}

// sessionView returns the session id and view of the request.
func (g *Greeter) sessionView(rw http.ResponseWriter, r *http.Request) (string, *view.View, error) {
	id, err := g.sessionID(rw, r)
	if err != nil {
		return "", nil, err
	}

	return id, g.view(id, baseURL(r)), nil
}

// reply writes a JSON Response with body marshalled into Body, or err into Error.
func reply(rw http.ResponseWriter, r *http.Request, status int, body interface{}, err error) {
	var res Response

	if err != nil {
		res.Error = err.Error()
	} else if body != nil {
		tmp, _ := json.Marshal(body)
		res.Body = string(tmp)
	}

	l := log.Web()
	l.Info().Str("from", r.RemoteAddr).Str("uri", r.RequestURI).Int("status", status).Err(err).Msg("httpreq")

	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(&res)
}

// homeHandler renders the page. The initial contract read of a new view is given up to MountWait ms to complete; a
// slower read is rendered as loading.
func (g *Greeter) homeHandler(rw http.ResponseWriter, r *http.Request) {
	_, v, err := g.sessionView(rw, r)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	select {
	case <-v.Mount():
	case <-time.After(time.Duration(g.conf.MountWait) * time.Millisecond):
	case <-r.Context().Done():
		return
	}

	m := v.Render()
	p := page{
		Model:         m,
		NetworkID:     g.net.NetworkID,
		WalletURL:     g.net.WalletURL,
		AccountURL:    g.net.AccountURL(m.AccountID),
		ContractURL:   g.net.AccountURL(m.ContractID),
		FallbackLabel: view.FallbackLabel,
	}

	rw.Header().Set("Content-Type", "text/html;charset=utf-8")

	if err = g.tmpl.ExecuteTemplate(rw, "index.html", p); err != nil {
		l := log.Web()
		l.Error().Err(err).Msg("Cannot render page")

		return
	}

	// the alert is a modal shown once
	if m.Alert != "" {
		v.DismissAlert()
	}
}

// loginHandler redirects the user to the wallet to authorise a new function-call key for the contract.
func (g *Greeter) loginHandler(rw http.ResponseWriter, r *http.Request) {
	_, v, err := g.sessionView(rw, r)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	u, err := v.Login(r.Context())
	if err != nil {
		l := log.Web()
		l.Error().Err(err).Msg("Cannot start sign in")
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	http.Redirect(rw, r, u, http.StatusSeeOther)
}

// callbackHandler completes the sign in when the wallet redirects back with the account and the authorised key. The
// view is dropped so that the page mounts again, now signed in.
func (g *Greeter) callbackHandler(rw http.ResponseWriter, r *http.Request) {
	id, err := g.sessionID(rw, r)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	ws := &walletSession{g: g, id: id, base: baseURL(r)}
	q := r.URL.Query()
	l := log.Web().With().Str("session", id).Logger()

	if account := q.Get("account_id"); account == "" {
		// rejected in the wallet
		l.Info().Str("error", q.Get("errorCode")).Msg("Sign in cancelled")
		err = ws.Logout(r.Context())
	} else if err = ws.complete(r.Context(), account, q.Get("public_key")); err == nil {
		l.Info().Str("account", account).Msg("Signed in")
	}

	g.dropView(id)

	if err != nil {
		l.Error().Err(err).Msg("Cannot complete sign in")
		http.Error(rw, err.Error(), http.StatusBadRequest)

		return
	}

	http.Redirect(rw, r, "/", http.StatusSeeOther)
}

// logoutHandler signs the session out and drops its view.
func (g *Greeter) logoutHandler(rw http.ResponseWriter, r *http.Request) {
	id, v, err := g.sessionView(rw, r)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	if err = v.Logout(r.Context()); err != nil {
		l := log.Web()
		l.Error().Err(err).Msg("Cannot sign out")
	}

	g.dropView(id)
	http.Redirect(rw, r, "/", http.StatusSeeOther)
}

// nameHandler saves the name of the submitted form and redirects to the page.
func (g *Greeter) nameHandler(rw http.ResponseWriter, r *http.Request) {
	_, v, err := g.sessionView(rw, r)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	if err = r.ParseForm(); err != nil {
		http.Error(rw, ErrBadRequest.Error(), http.StatusBadRequest)

		return
	}

	if err = v.Submit(r.Context(), r.PostFormValue("name")); err != nil && !errors.Is(err, view.ErrUnchanged) {
		l := log.Web()
		l.Error().Err(err).Msg("Cannot save name")
	}

	http.Redirect(rw, r, "/", http.StatusSeeOther)
}

// stateHandler replies the state of the view of the session.
func (g *Greeter) stateHandler(rw http.ResponseWriter, r *http.Request) {
	_, v, err := g.sessionView(rw, r)
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	v.Mount()
	reply(rw, r, http.StatusOK, v.Render(), nil)
}

// inputHandler records the value of the name input and replies whether the submit button is enabled.
func (g *Greeter) inputHandler(rw http.ResponseWriter, r *http.Request) {
	_, v, err := g.sessionView(rw, r)
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	var in inputReq
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, ErrBadRequest)

		return
	}

	reply(rw, r, http.StatusOK, map[string]bool{"submitEnabled": v.Input(in.Value)}, nil)
}

// apiNameHandler saves the name in the request and replies the state of the view.
func (g *Greeter) apiNameHandler(rw http.ResponseWriter, r *http.Request) {
	_, v, err := g.sessionView(rw, r)
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	var p types.SetNamePayload
	if err = json.NewDecoder(r.Body).Decode(&p); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, ErrBadRequest)

		return
	}

	err = v.Submit(r.Context(), p.Message)

	switch {
	case err == nil:
		reply(rw, r, http.StatusOK, v.Render(), nil)
	case errors.Is(err, types.ErrNotSignedIn):
		reply(rw, r, http.StatusUnauthorized, nil, err)
	case errors.Is(err, view.ErrUnchanged):
		reply(rw, r, http.StatusBadRequest, nil, err)
	case errors.Is(err, view.ErrSubmitting):
		reply(rw, r, http.StatusConflict, nil, err)
	case errors.Is(err, view.ErrWrite):
		reply(rw, r, http.StatusBadGateway, nil, fmt.Errorf("%s: %w", view.AlertMessage, err))
	default:
		reply(rw, r, http.StatusInternalServerError, nil, err)
	}
}
