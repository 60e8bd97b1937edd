package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raykavin/candleline"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/metric"
	"github.com/raykavin/candleline/pkg/notification"
	"github.com/raykavin/candleline/pkg/server"
	"github.com/raykavin/candleline/pkg/signal"
)

func buildServeCmd() *cobra.Command {
	var port int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive charts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context())
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides server.port)")
	return serveCmd
}

func runServe(parent context.Context) error {
	ctx, stop := ossignal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	store, closer, err := openStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	source, err := openSource(cfg.Source, log)
	if err != nil {
		return err
	}

	refresh := signal.NewFeed()
	defer refresh.Stop()

	recorder := metric.NewRecorder()
	notifier, err := newNotifier(store, refresh, log)
	if err != nil {
		return err
	}

	options := append(chartOptions(cfg, store, log),
		candleline.WithRefresh(refresh),
		candleline.WithRecorder(recorder),
		candleline.WithNotifier(notifier),
	)

	open := func(code, period string) (*candleline.Chart, error) {
		return candleline.NewChart(code, period, source, options...)
	}

	serverOptions := []server.Option{
		server.WithPort(cfg.Server.Port),
		server.WithCodes(cfg.Codes...),
		server.WithMetrics(recorder.Handler()),
		server.WithMinuteSource(source),
	}
	if cfg.Server.Debug {
		serverOptions = append(serverOptions, server.WithDebug())
	}

	srv, err := server.NewServer(open, store, refresh, log, serverOptions...)
	if err != nil {
		return err
	}
	defer srv.Close()

	log.WithFields(map[string]any{
		"codes":   cfg.Codes,
		"source":  cfg.Source.Driver,
		"storage": cfg.Storage.Driver,
		"poll":    cfg.Poll.Interval.String(),
	}).Info("candleline initialized with loaded configuration")

	return srv.Start(ctx)
}

// newNotifier fans failed writes out to the log and the enabled channels
func newNotifier(store core.LineStorage, refresh *signal.Feed, log logger.Logger) (core.Notifier, error) {
	notifiers := notification.Multi{notification.NewLog(log)}

	if cfg.Mail.Enabled {
		notifiers = append(notifiers, notification.NewMail(notification.MailParams{
			SMTPServerAddress: cfg.Mail.Host,
			SMTPServerPort:    cfg.Mail.Port,
			From:              cfg.Mail.From,
			To:                cfg.Mail.To,
			Password:          cfg.Mail.Password,
		}, log))
	}

	if cfg.Telegram.Enabled {
		telegram, err := notification.NewTelegram(cfg.Settings().Telegram, store, refresh, log)
		if err != nil {
			return nil, err
		}
		telegram.Start()
		notifiers = append(notifiers, telegram)
	}

	return notifiers, nil
}
