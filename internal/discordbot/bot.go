package discordbot

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/haojie06/dallebot/internal/logger"
)

type commandHandler func(cmd *command)

type DiscordBot struct {
	// rewritten by every Ready event, read by message handlers
	botId atomic.Value

	config DiscordBotConfig

	deps Deps

	discordSession *discordgo.Session

	chat Chat

	commands map[string]commandHandler

	logger *logger.CustomLogger
}

func newBot(config DiscordBotConfig, deps Deps, chat Chat) *DiscordBot {
	if config.CommandPrefix == "" {
		config.CommandPrefix = "-"
	}
	bot := &DiscordBot{
		config: config,
		deps:   deps,
		chat:   chat,
		logger: logger.NewCustomLogger().With("component", "discordbot"),
	}
	bot.commands = map[string]commandHandler{
		"generate":  bot.generateCommand,
		"g":         bot.generateCommand,
		"variation": bot.variationCommand,
		"v":         bot.variationCommand,
		"dalle":     bot.statsCommand,
		"d":         bot.statsCommand,
	}
	return bot
}

// NewDiscordBot opens the gateway connection. Commands are served as soon as
// it returns.
func NewDiscordBot(config DiscordBotConfig, deps Deps) (*DiscordBot, error) {
	logger.Infof("creating discord bot, guild: %q, prefix: %q", config.DiscordGuildId, config.CommandPrefix)
	token := config.DiscordToken
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	ds, err := discordgo.New(token)
	if err != nil {
		return nil, err
	}
	bot := newBot(config, deps, discordChat{session: ds})
	bot.discordSession = ds
	bot.discordSession.AddHandler(bot.onReady)
	bot.discordSession.AddHandler(bot.onDiscordMessageCreate)
	bot.discordSession.Identify.Intents = discordgo.IntentsAll
	if err := bot.discordSession.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	if ds.State != nil && ds.State.User != nil {
		bot.setBotId(ds.State.User.ID)
	}
	return bot, nil
}

func (bot *DiscordBot) BotId() string {
	id, _ := bot.botId.Load().(string)
	return id
}

func (bot *DiscordBot) setBotId(id string) {
	bot.botId.Store(id)
}

func (bot *DiscordBot) Close() error {
	if bot.discordSession == nil {
		return nil
	}
	return bot.discordSession.Close()
}
