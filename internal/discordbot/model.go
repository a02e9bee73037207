package discordbot

import (
	"context"

	"github.com/haojie06/dallebot/internal/dalle"
	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/haojie06/dallebot/internal/options"
)

type DiscordBotConfig struct {
	DiscordToken string

	DiscordGuildId string // empty: answer in every guild

	CommandPrefix string

	// echo the normalizer notice and the normalized image before generating
	Debug bool

	VariationModel string

	VariationCount int

	VariationSize string
}

// Deps are the collaborators each command handler works with. They are built
// once at startup and shared by all commands.
type Deps struct {
	Generator  Generator
	Fetcher    Fetcher
	Moderation Classifier
	Resolver   Resolver
	Normalizer Normalizer
	// nil when usage logging is disabled
	Ledger Recorder
}

type Generator interface {
	Generate(ctx context.Context, req options.GenerationRequest) (dalle.Result, error)
	CreateVariation(ctx context.Context, image []byte, model string, count int, size string) ([]string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) (bool, error)
}

type Resolver interface {
	Resolve(text string) (options.GenerationRequest, error)
}

type Normalizer interface {
	Normalize(data []byte) ([]byte, string, error)
}

type Recorder interface {
	Record(ctx context.Context, entry ledger.Entry) error
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

const (
	MessageGenerating     = "Generating..."
	MessageDone           = "Done!"
	MessageFlagged        = "Your prompt was flagged by the system."
	MessageNotAnImage     = "Couldn't process the file, are you sure it's an image?"
	MessageInvalidURL     = "Can't download image from URL, url is invalid."
	MessageDownloadFailed = "Can't download image from URL."
	MessageLedgerFailed   = "Done, but can't store image in database due to an error."
	MessageStatsDisabled  = "Usage statistics are disabled."
	MessageLengthLimit    = 2000
)
