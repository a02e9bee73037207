package discordbot

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/haojie06/dallebot/internal/metrics"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// imageFileName builds "<prompt>-<n>.png" with a file-system safe prompt.
func imageFileName(prompt string, index int) string {
	name := unsafeFileNameChars.ReplaceAllString(prompt, "_")
	if utf8.RuneCountInString(name) > 64 {
		name = string([]rune(name)[:64])
	}
	if name == "" || name == "_" {
		name = "image"
	}
	return fmt.Sprintf("%s-%d.png", name, index+1)
}

// splitMessage cuts text into chunks of at most limit characters.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/limit+1)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// truncateMessage shortens text to at most limit characters, marking the cut
// with an ellipsis.
func truncateMessage(text string, limit int) string {
	const ellipsis = "..."
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

// relayImages downloads each generated image and posts it to the channel.
// It returns the discord CDN urls of the images sent before any failure.
func (bot *DiscordBot) relayImages(cmd *command, prompt, kind string, urls []string) ([]string, error) {
	cdnURLs := make([]string, 0, len(urls))
	for i, url := range urls {
		data, err := bot.deps.Fetcher.Fetch(cmd.ctx, url)
		if err != nil {
			return cdnURLs, err
		}
		sent, err := bot.chat.SendFile(cmd.message.ChannelID, imageFileName(prompt, i), data)
		if err != nil {
			return cdnURLs, fmt.Errorf("failed to send image: %w", err)
		}
		if len(sent.Attachments) > 0 {
			cdnURLs = append(cdnURLs, sent.Attachments[0].URL)
		}
		metrics.ImagesTotal.WithLabelValues(kind).Inc()
	}
	return cdnURLs, nil
}

func observeUpstream(op string, start time.Time) {
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
