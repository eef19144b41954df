package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/statusbot/internal/channel"
	"github.com/hamed0406/statusbot/internal/config"
	"github.com/hamed0406/statusbot/internal/format"
	"github.com/hamed0406/statusbot/internal/httpapi"
	"github.com/hamed0406/statusbot/internal/logging"
	"github.com/hamed0406/statusbot/internal/probe"
	"github.com/hamed0406/statusbot/internal/scheduler"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:           "statusbot",
		Short:         "Show a Minecraft server's player count as a Discord channel name",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "path to config file (.toml, .yaml)")
	return cmd
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	config.Normalize(cfg)

	logger, err := logging.NewLogger(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	for _, w := range config.Warnings(cfg) {
		logger.Warn("config_warning", zap.String("detail", w))
	}

	q, err := probe.NewQuerier(cfg.Minecraft.Edition, cfg.Minecraft.RCONPassword)
	if err != nil {
		return err
	}
	poller := probe.NewPoller(logger, q, cfg.Minecraft.IP, cfg.Minecraft.Port)

	sess, err := channel.NewSession(logger, cfg.Discord.Token, cfg.Discord.Activity)
	if err != nil {
		return err
	}
	updater := channel.NewUpdater(logger, sess.Renamer(), cfg.Discord.ChannelID)

	loop := scheduler.NewLoop(logger, poller, updater,
		format.Templates{Online: cfg.Format.Online, Offline: cfg.Format.Offline},
		cfg.PollInterval(),
	)

	var started atomic.Bool
	loopDone := make(chan struct{})
	if err := sess.Start(func() {
		started.Store(true)
		go func() {
			defer close(loopDone)
			loop.Run(ctx)
		}()
	}); err != nil {
		return err
	}
	defer sess.Close()

	if cfg.HTTP.Addr != "" {
		srv := httpapi.NewServer(logger, cfg.HTTP.Addr)
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logger.Error("http_serve_failed", zap.Error(err))
			}
		}()
	}

	logger.Info("statusbot_started",
		zap.String("host", cfg.Minecraft.IP),
		zap.Uint16("port", cfg.Minecraft.Port),
		zap.String("edition", cfg.Minecraft.Edition),
		zap.Duration("interval", cfg.PollInterval()),
	)

	<-ctx.Done()
	logger.Info("shutdown", zap.String("reason", context.Cause(ctx).Error()))

	// The loop only exists once the first Ready arrived.
	if started.Load() {
		select {
		case <-loopDone:
		case <-time.After(5 * time.Second):
			logger.Warn("loop_stop_timeout")
		}
	}
	return nil
}
