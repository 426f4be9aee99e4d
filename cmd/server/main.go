// server runs the Impostor session server: it accepts client connections,
// tracks game lobbies, and relays the session control protocol.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thelostgroup/Impostor/internal/config"
	"github.com/thelostgroup/Impostor/internal/data"
	"github.com/thelostgroup/Impostor/internal/game"
	"github.com/thelostgroup/Impostor/internal/handler"
	"github.com/thelostgroup/Impostor/internal/net"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "server",
		Short: "Impostor session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.toml", "path to config file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Defaults()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	msgs, err := data.LoadMessages(cfg.Data.MessagesPath)
	if err != nil {
		return err
	}

	manager := game.NewManager(log, msgs, cfg.Limits.MaxGames)
	deps := &handler.Deps{Log: log, Manager: manager, Config: cfg, Msgs: msgs}
	reg := handler.NewRegistry()
	handler.RegisterAll(reg, deps)
	dispatch := handler.NewDispatch(reg, deps)

	srv := net.NewServer(net.Config{
		BindAddress:  cfg.Network.BindAddress,
		OutQueueSize: cfg.Network.OutQueueSize,
		WriteTimeout: cfg.Network.WriteTimeout,
		ReadTimeout:  cfg.Network.ReadTimeout,
	}, log, dispatch)

	if err := srv.Listen(); err != nil {
		return err
	}
	log.Info("server listening",
		zap.String("name", cfg.Server.Name),
		zap.String("bind", cfg.Network.BindAddress))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down", zap.Int("activeGames", manager.Count()))
		for _, g := range manager.Games() {
			for _, p := range g.Players() {
				p.Conn.Disconnect(protocol.DisconnectReasonCustom, msgs.ServerShutdown)
			}
		}
		_ = srv.Close()
	}()

	return srv.Serve()
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
