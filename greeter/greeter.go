// Package greeter implements the greeter web service.
//
// The service renders the page of the greeting dApp on the server. Each browser session owns a view (package
// greeter/view) kept in an LRU registry; the wallet sign in stores a function-call key for the session, used to sign
// the set_name calls. The full list of routes is in rest.go.
package greeter

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/sessions"
	lru "github.com/hashicorp/golang-lru"

	"github.com/jelilat/hellonear/greeter/view"
	"github.com/jelilat/hellonear/lib/block"
	"github.com/jelilat/hellonear/lib/config"
	"github.com/jelilat/hellonear/lib/log"
	"github.com/jelilat/hellonear/lib/msg"
	mtype "github.com/jelilat/hellonear/lib/msg/types"
	"github.com/jelilat/hellonear/lib/store"
	"github.com/jelilat/hellonear/lib/store/db"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets
var assetsFS embed.FS

// Errors returned to client requests.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNoWallet    = errors.New("the network has no wallet to sign in with")
	ErrKeyMismatch = errors.New("the wallet authorised a key that is not pending for this session")
	ErrNoAccount   = errors.New("the wallet did not return an account")
)

// Greeter contains the data necessary to deliver the service
type Greeter struct {
	conf     config.ServiceConfig
	net      config.Network
	db       store.DB
	mb       msg.MsgBroker // optional
	contract block.Contract
	clk      clock.Clock
	cookies  *sessions.CookieStore
	tmpl     *template.Template

	mu    sync.Mutex // guards views and the servers
	views *lru.Cache // session id -> *view.View

	s  *http.Server  // http server
	ss *http.Server  // https server
	sc chan struct{} // http server channel used for graceful shutdowns
}

// New returns a new Greeter service. mb may be nil, then no events are published.
func New(conf config.ServiceConfig, net config.Network, dbConn store.DB, mb msg.MsgBroker,
	contract block.Contract) (*Greeter, error) {
	g := &Greeter{
		conf:     conf,
		net:      net,
		db:       dbConn,
		mb:       mb,
		contract: contract,
		clk:      clock.New(),
		cookies:  sessions.NewCookieStore([]byte(conf.CookieSecret)),
		sc:       make(chan struct{}),
	}

	g.cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600, //nolint:gomnd // 30 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	var err error

	g.views, err = lru.NewWithEvict(conf.Views, func(_, v interface{}) {
		v.(*view.View).Close()
	})
	if err != nil {
		return nil, err
	}

	g.tmpl, err = template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return g, nil
}

// view returns the view of the session, creating it if needed. base is the external url of the service as seen by
// the request creating the view.
func (g *Greeter) view(id, base string) *view.View {
	g.mu.Lock()
	defer g.mu.Unlock()

	if v, ok := g.views.Get(id); ok {
		return v.(*view.View)
	}

	ws := &walletSession{g: g, id: id, base: base}
	sc := &sessionContract{g: g, id: id}
	l := log.View().With().Str("session", id).Logger()

	v := view.New(ws, sc, view.Options{
		Clock: g.clk,
		OnChange: func(e view.Event) {
			l.Debug().Stringer("event", e).Msg("View transition")
		},
		OnError: func(e view.Event, err error) {
			l.Error().Err(err).Stringer("event", e).Msg("Contract call failed")
		},
		OnSet: func(name string) {
			g.publish(mtype.NameEvent{
				Net:      g.net.NetworkID,
				Account:  ws.AccountID(),
				Contract: g.contract.ContractID(),
				Method:   "set_name",
				Name:     name,
				Tx:       sc.tx(),
				TS:       g.clk.Now().Unix(),
			})
		},
	})
	g.views.Add(id, v)

	return v
}

// dropView closes the view of the session so that the next request mounts a new one.
func (g *Greeter) dropView(id string) {
	g.mu.Lock()
	g.views.Remove(id)
	g.mu.Unlock()
}

// publish sends the event to the message broker, if any.
func (g *Greeter) publish(e mtype.NameEvent) {
	if g.mb == nil {
		return
	}

	if err := g.mb.SendEvent(e.Net, e); err != nil {
		l := log.Broker()
		l.Error().Err(err).Str("account", e.Account).Msg("Cannot publish name event")
	}
}

// Stop shuts down the http servers implementing the API and closes gracefully the connections to message broker,
// contract and database.
func (g *Greeter) Stop() {
	l := log.Web()

	ctx, cancel := context.WithTimeout(context.Background(), timeout*time.Second)
	defer cancel()

	g.mu.Lock()
	s, ss := g.s, g.ss
	g.mu.Unlock()

	// shutdown http servers
	if s != nil {
		if err := s.Shutdown(ctx); err != nil {
			l.Error().Err(err).Msg("Error in http server shutdown")
		}
	}

	if ss != nil {
		if err := ss.Shutdown(ctx); err != nil {
			l.Error().Err(err).Msg("Error in https server shutdown")
		}
	}

	// close all views, stopping their timers
	g.mu.Lock()
	g.views.Purge()
	g.mu.Unlock()

	if g.mb != nil {
		if err := g.mb.Close(); err != nil {
			l.Error().Err(err).Msg("Error closing message broker")
		}
	}

	g.contract.Close()

	if g.db != nil {
		err := db.Close(g.conf.DBType, g.db)
		l.Info().Err(err).Str("dbtype", g.conf.DBType).Msg("Disconnected database")
	}

	close(g.sc) // close server channel to indicate shutdowns have finished
}

// ManageEvents starts go routines consuming the name events of the network from the message broker and logging them.
func (g *Greeter) ManageEvents() error {
	if g.mb == nil {
		return nil
	}

	mut := new(sync.Mutex)
	mut.Lock()

	eveCh, errCh, err := g.mb.GetEvents(g.net.NetworkID, mut)
	if err != nil {
		return err
	}

	l := log.Broker().With().Str("net", g.net.NetworkID).Logger()

	go func() {
		l.Info().Msg("Start listening to name events")

		for e := range eveCh {
			l.Info().Str("account", e.Account).Str("name", e.Name).Str("tx", e.Tx).Msg("Received name event")
			mut.Unlock()
		}

		l.Info().Msg("Stop listening to name events")
	}()

	go func() {
		for e := range errCh {
			l.Error().Err(e).Msg("Received error")
		}
	}()

	return nil
}
