package greeter

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jelilat/hellonear/lib/log"
)

const timeout = 15

// Router returns the handler of the service:
//
//	GET  /                 page, sign in prompt or greeting
//	POST /login            redirect to the wallet to authorise a new key
//	GET  /login/callback   wallet return
//	POST /logout           forget the session
//	POST /name             form submit of a new name
//	GET  /api/state        view state as JSON
//	POST /api/input        {"value"} -> whether submit is enabled
//	POST /api/name         {"message"} -> save the name
//	GET  /assets/{file}    images and stylesheet
func (g *Greeter) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(g.logRequests)

	r.HandleFunc("/", g.homeHandler).Methods(http.MethodGet)
	r.HandleFunc("/login", g.loginHandler).Methods(http.MethodPost)
	r.HandleFunc("/login/callback", g.callbackHandler).Methods(http.MethodGet)
	r.HandleFunc("/logout", g.logoutHandler).Methods(http.MethodPost)
	r.HandleFunc("/name", g.nameHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/state", g.stateHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/input", g.inputHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/name", g.apiNameHandler).Methods(http.MethodPost)

	assets, _ := fs.Sub(assetsFS, "assets")
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))).
		Methods(http.MethodGet)

	return r
}

// logRequests logs every request once it has been served.
func (g *Greeter) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(rw, r)

		l := log.Web()
		l.Debug().Str("from", r.RemoteAddr).Str("method", r.Method).Str("uri", r.RequestURI).
			Dur("took", time.Since(start)).Msg("httpreq")
	})
}

// Init sets up and starts the http/https server to service the web frontend. If sslPort, sslCert and sslKey are
// informed, it will start an https (TLS) server on the specified endpoint. It returns once Stop has finished.
func (g *Greeter) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var errc, errTLSc chan error

	l := log.Web()
	h := g.Router()

	// start http server
	if port != "" {
		s := &http.Server{
			Handler: h,
			Addr:    endpoint + ":" + port,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}
		errc = make(chan error, 1)

		g.mu.Lock()
		g.s = s
		g.mu.Unlock()

		go func() {
			errc <- s.ListenAndServe()
		}()

		l.Info().Str("addr", s.Addr).Msg("Listening to http requests")
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		ss := &http.Server{
			Handler: h,
			Addr:    endpoint + ":" + sslPort,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}
		errTLSc = make(chan error, 1)

		g.mu.Lock()
		g.ss = ss
		g.mu.Unlock()

		go func() {
			errTLSc <- ss.ListenAndServeTLS(sslCert, sslKey)
		}()

		l.Info().Str("addr", ss.Addr).Msg("Listening to https requests")
	}
	// wait for servers to be shutdown
	<-g.sc

	return fmt.Sprintf("shutdown http server:%v, https server:%v", serverErr(errc), serverErr(errTLSc))
}

// serverErr returns the error a server returned once shut down, nil if it was not started.
func serverErr(c chan error) error {
	if c == nil {
		return nil
	}

	return <-c
}
