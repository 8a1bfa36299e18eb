// Package main: greeter service.
//
// The service serves the greeting dApp page of a NEAR contract. Sessions are kept in the configured database so that a
// restart does not sign users out, except with the memory store. Name events are published to the message broker when
// one is configured.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/jelilat/hellonear/greeter"
	"github.com/jelilat/hellonear/lib/block"
	"github.com/jelilat/hellonear/lib/config"
	"github.com/jelilat/hellonear/lib/log"
	"github.com/jelilat/hellonear/lib/msg"
	"github.com/jelilat/hellonear/lib/msg/amqp"
	"github.com/jelilat/hellonear/lib/store/db"
)

func main() {
	app := cli.NewApp()

	app.Name = "greeter"
	app.Usage = "web frontend of the hellonear greeting contract"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "read the configuration from the JSON file `FILE`",
		},
		cli.BoolFlag{
			Name:  "monitor, m",
			Usage: "serve Prometheus metrics at http://localhost:9100/metrics",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		l := log.Web()
		l.Fatal().Err(err).Msg("Greeter stopped")
	}
}

func run(c *cli.Context) error {
	// extract configuration
	conf, err := config.ExtractConfiguration(c.String("config"))
	if err != nil {
		return err
	}

	log.SetOutput(os.Stderr, conf.LogFormat)

	if err = log.SetLevel(conf.LogLevel); err != nil {
		return err
	}

	l := log.Web()
	l.Info().Str("env", conf.Env).Str("contract", conf.Contract).Str("dbtype", conf.DBType).
		Str("mbtype", conf.MbType).Msg("Configuration loaded")

	// connect to database
	dbConn, err := db.New(conf.DBType, conf.DBConn)
	if err != nil {
		return err
	}

	l.Info().Str("dbtype", conf.DBType).Msg("Connected to database")

	// connect to the contract
	contract, net, err := block.Init(conf)
	if err != nil {
		return err
	}

	l.Info().Str("net", net.NetworkID).Str("node", net.NodeURL).Msg("Contract client loaded")

	// load Prometheus monitor
	if c.Bool("monitor") {
		go func() {
			l.Info().Msg("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", promhttp.Handler())

			if err := http.ListenAndServe(":9100", h); err != nil { //nolint:gosec // local monitoring port
				l.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	// load message broker
	var mb msg.MsgBroker

	switch conf.MbType {
	case "amqp":
		var r *amqp.Amqp
		if r, err = amqp.New(conf.MbConn); err != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if r, err = amqp.New(conf.MbConn); err != nil {
				return err
			}
		}

		if err = r.Setup(); err != nil {
			return err
		}

		mb = r
	default:
		l.Info().Msg("No message broker, name events are not published")
	}

	// create greeter service
	g, err := greeter.New(conf, net, dbConn, mb, block.Instrument(contract, prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}

	// capture CTRL+C or docker's SIGTERM for gracious exit
	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		l.Info().Msg("Program killed !")
		// close views, connections and wait for in-flight requests to end
		g.Stop()
	}()

	// log the name events of the network
	if err = g.ManageEvents(); err != nil {
		l.Error().Err(err).Msg("Error setting up broker readers for events")
	}

	// init web server, wait for its return and log response
	l.Info().Msg(g.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	return nil
}
