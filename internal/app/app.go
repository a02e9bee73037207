// Package app wires the configured collaborators together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/haojie06/dallebot/internal/assets"
	"github.com/haojie06/dallebot/internal/config"
	"github.com/haojie06/dallebot/internal/dalle"
	"github.com/haojie06/dallebot/internal/discordbot"
	"github.com/haojie06/dallebot/internal/imaging"
	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/haojie06/dallebot/internal/ledger/postgres"
	"github.com/haojie06/dallebot/internal/ledger/sqlite"
	"github.com/haojie06/dallebot/internal/moderation"
	"github.com/haojie06/dallebot/internal/options"
)

const downloadTimeout = 60 * time.Second

// LedgerConnector picks the store implementation for the configured driver.
func LedgerConnector(cfg config.LedgerConfig) (ledger.Connector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Connector(cfg.DSN), nil
	case "sqlite":
		return sqlite.Connector(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
}

func OpenLedger(ctx context.Context, cfg config.LedgerConfig) (*ledger.Ledger, error) {
	connect, err := LedgerConnector(cfg)
	if err != nil {
		return nil, err
	}
	return ledger.New(ctx, connect, cfg.CostPerRun)
}

// BuildDeps constructs every command collaborator. usage may be nil.
func BuildDeps(cfg *config.Config, usage *ledger.Ledger) discordbot.Deps {
	client := dalle.NewClient(cfg.OpenAI.ApiKey, cfg.OpenAI.BaseURL)
	deps := discordbot.Deps{
		Generator:  client,
		Fetcher:    assets.NewFetcher(downloadTimeout),
		Moderation: moderation.NewFilter(client, cfg.Moderation.Threshold),
		Resolver:   options.NewResolver(options.SizeMode(cfg.Generation.SizeMode), cfg.Generation.MaxCount),
		Normalizer: imaging.NewNormalizer(),
	}
	if usage != nil {
		deps.Ledger = usage
	}
	return deps
}

func BotConfig(cfg *config.Config) discordbot.DiscordBotConfig {
	return discordbot.DiscordBotConfig{
		DiscordToken:   cfg.Discord.Token,
		DiscordGuildId: cfg.Discord.GuildId,
		CommandPrefix:  cfg.Discord.CommandPrefix,
		Debug:          cfg.Discord.Debug,
		VariationModel: cfg.Variation.Model,
		VariationCount: cfg.Variation.Count,
		VariationSize:  cfg.Variation.Size,
	}
}
