// discord websocket events
package discordbot

import (
	"context"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/haojie06/dallebot/internal/logger"
	"github.com/haojie06/dallebot/internal/metrics"
)

type command struct {
	ctx     context.Context
	name    string
	args    string
	message *discordgo.Message
	logger  *logger.CustomLogger
}

func (bot *DiscordBot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	bot.setBotId(event.User.ID)
	logger.Infof("%s has connected to discord, guilds: %d", event.User.String(), len(event.Guilds))
}

// discordgo runs every handler in its own goroutine, so commands from
// different users never wait on each other
func (bot *DiscordBot) onDiscordMessageCreate(s *discordgo.Session, event *discordgo.MessageCreate) {
	bot.handleMessage(context.Background(), event.Message)
}

func (bot *DiscordBot) handleMessage(ctx context.Context, message *discordgo.Message) {
	if message == nil || message.Author == nil || message.Author.Bot || message.Author.ID == bot.BotId() {
		return
	}
	if bot.config.DiscordGuildId != "" && message.GuildID != bot.config.DiscordGuildId {
		return
	}
	name, args, ok := parseCommand(bot.config.CommandPrefix, message.Content)
	if !ok {
		return
	}
	handler, exists := bot.commands[name]
	if !exists {
		return
	}

	cmd := &command{
		ctx:     ctx,
		name:    name,
		args:    args,
		message: message,
		logger: bot.logger.With(
			"commandId", uuid.New().String(),
			"command", name,
			"author", message.Author.String(),
		),
	}
	defer func() {
		if r := recover(); r != nil {
			cmd.logger.Errorf("recovered in command %s: %v", name, r)
			metrics.CommandsTotal.WithLabelValues(name, "panic").Inc()
		}
	}()
	cmd.logger.Infof("receive command, args: %s", args)
	handler(cmd)
}

// parseCommand splits "-generate a cat --q hd" into ("generate", "a cat --q hd").
func parseCommand(prefix, content string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	content = strings.TrimPrefix(content, prefix)
	name = content
	if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		name, args = content[:i], strings.TrimSpace(content[i:])
	}
	name = strings.ToLower(name)
	if name == "" {
		return "", "", false
	}
	return name, args, true
}
