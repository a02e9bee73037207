package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haojie06/dallebot/internal/app"
	"github.com/haojie06/dallebot/internal/config"
	"github.com/haojie06/dallebot/internal/discordbot"
	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/haojie06/dallebot/internal/logger"
	"github.com/haojie06/dallebot/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dallebot",
	Short: "Discord bot relaying prompts to DALL-E",
	Long: `dallebot listens for -generate, -variation and -dalle commands in Discord,
forwards them to the OpenAI image API and keeps a usage ledger for cost accounting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateCredentials(); err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is ./config.yaml)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Log.Debug); err != nil {
		return nil, err
	}
	logger.Debug("config loaded", zap.String("path", configPath), zap.String("prefix", cfg.Discord.CommandPrefix))
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	var usage *ledger.Ledger
	if cfg.Ledger.Enabled {
		l, err := app.OpenLedger(ctx, cfg.Ledger)
		if err != nil {
			return err
		}
		defer l.Close()
		usage = l
		logger.Info("usage ledger enabled", zap.String("driver", cfg.Ledger.Driver))
	}

	bot, err := discordbot.NewDiscordBot(app.BotConfig(cfg), app.BuildDeps(cfg, usage))
	if err != nil {
		return err
	}
	defer bot.Close()

	if cfg.Server.Enabled {
		var stats server.StatsSource
		if usage != nil {
			stats = usage
		}
		srv := server.New(cfg.Server.Host, cfg.Server.Port, cfg.Server.ApiKey, stats)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("http server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http server shutdown", zap.Error(err))
			}
		}()
	}

	logger.Infof("bot is running, press ctrl-c to exit")
	<-ctx.Done()
	logger.Infof("shutting down")
	return nil
}
