package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heating_card/internal/card"
	"heating_card/internal/config"
	"heating_card/internal/handlers"
	"heating_card/internal/hass"
	"heating_card/internal/logger"
	"heating_card/internal/repository"
	"heating_card/internal/server"
	"heating_card/internal/service"
	"heating_card/internal/signals"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (overrides config)")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	// init logger
	log := logger.GetWithFormat(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	checkHassToken(cfg.Hass.Token, log)

	repos, err := repository.NewRepository(cfg.CardRecords(), cfg.Auth.Users)
	if err != nil {
		log.Errorw("invalid cards configuration", "err", err)
		return err
	}

	client := hass.NewClient(hass.Config{
		URL:               cfg.Hass.URL,
		Token:             cfg.Hass.Token,
		ReconnectInterval: cfg.Hass.ReconnectInterval,
		HandshakeTimeout:  cfg.Hass.HandshakeTimeout,
	}, log)

	sink, closeSink := openSink(cfg.MQTT, log)
	defer closeSink()

	catalog := &card.Catalog{}
	catalog.Register(card.RoomCardType)

	// wire dependencies
	services := service.NewService(repos, service.Deps{
		Feed:           client,
		Caller:         client,
		Sink:           sink,
		Catalog:        catalog,
		Log:            log,
		CommandTimeout: cfg.Hass.CommandTimeout,
		SigningKey:     cfg.Auth.SigningKey,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go client.Run(ctx)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port, "cards", len(cfg.Cards), "hass_url", cfg.Hass.URL)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	return nil
}

// checkHassToken reports an expired Home Assistant token before the first
// dial; the client keeps retrying regardless.
func checkHassToken(token string, log *logger.Logger) {
	if token == "" {
		log.Warnw("hass.token is empty; authentication will fail")
		return
	}
	exp, err := hass.CheckToken(token, time.Now())
	switch {
	case errors.Is(err, hass.ErrTokenExpired):
		log.Errorw("hass_token_expired", "expired_at", exp)
	case !exp.IsZero():
		log.Infow("hass_token_valid", "expires_at", exp)
	}
}

// openSink connects the MQTT signal sink when a broker is configured.
func openSink(cfg config.MQTTConfig, log *logger.Logger) (signals.Sink, func()) {
	if cfg.Broker == "" {
		return signals.Discard{}, func() {}
	}
	sink, err := signals.NewMQTTSink(signals.MQTTConfig{
		Broker:      cfg.Broker,
		ClientID:    cfg.ClientID,
		TopicPrefix: cfg.TopicPrefix,
	})
	if err != nil {
		log.Warnw("mqtt_sink_disabled", "broker", cfg.Broker, "err", err)
		return signals.Discard{}, func() {}
	}
	log.Infow("mqtt_sink_connected", "broker", cfg.Broker, "topic", sink.Topic("#"))
	return sink, func() { _ = sink.Close() }
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines and unmount every widget
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
