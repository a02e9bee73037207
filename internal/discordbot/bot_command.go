// command handlers, one goroutine per command
package discordbot

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haojie06/dallebot/internal/imaging"
	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/haojie06/dallebot/internal/metrics"
	"github.com/haojie06/dallebot/internal/options"
)

func (bot *DiscordBot) reply(cmd *command, content string) *discordgo.Message {
	message, err := bot.chat.Reply(cmd.message, truncateMessage(content, MessageLengthLimit))
	if err != nil {
		cmd.logger.Errorf("failed to reply: %s", err)
		return nil
	}
	return message
}

// edit updates the "Generating..." status message in place.
func (bot *DiscordBot) edit(cmd *command, status *discordgo.Message, content string) {
	if status == nil {
		return
	}
	if err := bot.chat.Edit(status.ChannelID, status.ID, truncateMessage(content, MessageLengthLimit)); err != nil {
		cmd.logger.Errorf("failed to edit status message: %s", err)
	}
}

func (bot *DiscordBot) generateCommand(cmd *command) {
	req, err := bot.deps.Resolver.Resolve(cmd.args)
	if err != nil {
		var validationErr *options.ValidationError
		if errors.As(err, &validationErr) {
			cmd.logger.Infof("invalid options: %s", validationErr)
			bot.reply(cmd, validationErr.Error())
			metrics.CommandsTotal.WithLabelValues(cmd.name, "invalid").Inc()
			return
		}
		bot.reply(cmd, err.Error())
		metrics.CommandsTotal.WithLabelValues(cmd.name, "error").Inc()
		return
	}

	allowed, err := bot.deps.Moderation.Classify(cmd.ctx, req.Prompt)
	if err != nil {
		cmd.logger.Errorf("moderation failed: %s", err)
		bot.reply(cmd, err.Error())
		metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
		return
	}
	if !allowed {
		cmd.logger.Infof("prompt rejected by moderation")
		bot.reply(cmd, MessageFlagged)
		metrics.CommandsTotal.WithLabelValues(cmd.name, "flagged").Inc()
		return
	}

	status := bot.reply(cmd, MessageGenerating)
	start := time.Now()
	result, err := bot.deps.Generator.Generate(cmd.ctx, req)
	observeUpstream("generate", start)
	if err != nil {
		cmd.logger.Warnf("generation failed: %s", err)
		bot.edit(cmd, status, err.Error())
		metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
		return
	}
	cmd.logger.Infof("generated %d images, model: %s, size: %s, quality: %s", len(result.URLs), req.Model, req.Size, req.Quality)

	cdnURLs, err := bot.relayImages(cmd, req.Prompt, "generation", result.URLs)
	if err != nil {
		cmd.logger.Warnf("relayed %d of %d images: %s", len(cdnURLs), len(result.URLs), err)
		bot.edit(cmd, status, err.Error())
		if len(cdnURLs) == 0 {
			metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
			return
		}
	} else if result.RevisedPrompt != "" && result.RevisedPrompt != req.Prompt {
		bot.edit(cmd, status, fmt.Sprintf("%s\nRevised prompt: %s", MessageDone, result.RevisedPrompt))
	} else {
		bot.edit(cmd, status, MessageDone)
	}

	bot.record(cmd, status, req.Prompt, cdnURLs)
}

func (bot *DiscordBot) variationCommand(cmd *command) {
	source, args := cmd.message, cmd.args
	// the image may live in the message being replied to
	if ref := cmd.message.MessageReference; ref != nil && ref.MessageID != "" {
		channelId := ref.ChannelID
		if channelId == "" {
			channelId = cmd.message.ChannelID
		}
		referenced, err := bot.chat.Message(channelId, ref.MessageID)
		if err != nil {
			cmd.logger.Warnf("failed to fetch referenced message %s: %s", ref.MessageID, err)
			bot.reply(cmd, "Couldn't fetch the message you replied to.")
			metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
			return
		}
		source, args = referenced, strings.TrimSpace(referenced.Content)
	}

	var (
		data  []byte
		label string
		err   error
	)
	if len(source.Attachments) > 0 {
		attachment := source.Attachments[0]
		label = attachment.Filename
		data, err = bot.deps.Fetcher.Fetch(cmd.ctx, attachment.URL)
		if err != nil {
			cmd.logger.Warnf("failed to download attachment: %s", err)
			bot.reply(cmd, err.Error())
			metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
			return
		}
	} else {
		if !isHTTPURL(args) {
			bot.reply(cmd, MessageInvalidURL)
			metrics.CommandsTotal.WithLabelValues(cmd.name, "invalid").Inc()
			return
		}
		label = args
		data, err = bot.deps.Fetcher.Fetch(cmd.ctx, args)
		if err != nil {
			cmd.logger.Warnf("failed to download image url: %s", err)
			bot.reply(cmd, MessageDownloadFailed)
			metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
			return
		}
	}
	prompt := "variation of image " + label

	image, notice, err := bot.deps.Normalizer.Normalize(data)
	if err != nil {
		cmd.logger.Infof("cannot normalize image %s: %s", label, err)
		if errors.Is(err, imaging.ErrDecode) {
			bot.reply(cmd, MessageNotAnImage)
		} else {
			bot.reply(cmd, err.Error())
		}
		metrics.CommandsTotal.WithLabelValues(cmd.name, "invalid").Inc()
		return
	}
	if notice != "" {
		cmd.logger.Infof("image normalized: %s", notice)
		if bot.config.Debug {
			bot.reply(cmd, notice)
			if _, err := bot.chat.SendFile(cmd.message.ChannelID, cmd.message.ID+".png", image); err != nil {
				cmd.logger.Warnf("failed to send normalized image: %s", err)
			}
		}
	}

	status := bot.reply(cmd, MessageGenerating)
	start := time.Now()
	urls, err := bot.deps.Generator.CreateVariation(cmd.ctx, image, bot.config.VariationModel, bot.config.VariationCount, bot.config.VariationSize)
	observeUpstream("variation", start)
	if err != nil {
		cmd.logger.Warnf("variation failed: %s", err)
		bot.edit(cmd, status, err.Error())
		metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
		return
	}

	cdnURLs, err := bot.relayImages(cmd, prompt, "variation", urls)
	if err != nil {
		cmd.logger.Warnf("relayed %d of %d images: %s", len(cdnURLs), len(urls), err)
		bot.edit(cmd, status, err.Error())
		if len(cdnURLs) == 0 {
			metrics.CommandsTotal.WithLabelValues(cmd.name, "upstream_error").Inc()
			return
		}
	} else {
		bot.edit(cmd, status, MessageDone)
	}

	bot.record(cmd, status, prompt, cdnURLs)
}

// record writes the ledger entry; a failure is reported on the status message
// but does not undo the generation.
func (bot *DiscordBot) record(cmd *command, status *discordgo.Message, prompt string, cdnURLs []string) {
	if bot.deps.Ledger == nil {
		metrics.CommandsTotal.WithLabelValues(cmd.name, "success").Inc()
		return
	}
	err := bot.deps.Ledger.Record(cmd.ctx, ledger.Entry{
		Author:    cmd.message.Author.String(),
		Prompt:    prompt,
		ImageURLs: cdnURLs,
		CreatedAt: cmd.message.Timestamp,
	})
	if err != nil {
		cmd.logger.Errorf("failed to record usage: %s", err)
		bot.edit(cmd, status, MessageLedgerFailed)
		metrics.LedgerWritesTotal.WithLabelValues("failed").Inc()
		metrics.CommandsTotal.WithLabelValues(cmd.name, "ledger_error").Inc()
		return
	}
	metrics.LedgerWritesTotal.WithLabelValues("ok").Inc()
	metrics.CommandsTotal.WithLabelValues(cmd.name, "success").Inc()
}

func (bot *DiscordBot) statsCommand(cmd *command) {
	if bot.deps.Ledger == nil {
		bot.reply(cmd, MessageStatsDisabled)
		return
	}
	snapshot, err := bot.deps.Ledger.Snapshot(cmd.ctx)
	if err != nil {
		cmd.logger.Errorf("failed to load stats: %s", err)
		bot.reply(cmd, "Couldn't load statistics: "+err.Error())
		metrics.CommandsTotal.WithLabelValues(cmd.name, "ledger_error").Inc()
		return
	}
	for _, chunk := range splitMessage(FormatStats(snapshot, time.Now()), MessageLengthLimit) {
		bot.reply(cmd, chunk)
	}
	metrics.CommandsTotal.WithLabelValues(cmd.name, "success").Inc()
}

func isHTTPURL(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
