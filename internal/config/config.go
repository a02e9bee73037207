package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Discord    DiscordConfig    `mapstructure:"discord"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Generation GenerationConfig `mapstructure:"generation"`
	Variation  VariationConfig  `mapstructure:"variation"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Server     ServerConfig     `mapstructure:"server"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

type DiscordConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	GuildId string `mapstructure:"guildId"` // empty: every guild

	CommandPrefix string `mapstructure:"commandPrefix" validate:"required"`

	// echo normalizer notices and normalized images back to the channel
	Debug bool `mapstructure:"debug"`
}

type OpenAIConfig struct {
	ApiKey string `mapstructure:"apiKey" validate:"required"`

	BaseURL string `mapstructure:"baseURL" validate:"omitempty,url"`
}

type GenerationConfig struct {
	SizeMode string `mapstructure:"sizeMode" validate:"oneof=symbolic raw"`

	MaxCount int `mapstructure:"maxCount" validate:"gte=1,lte=10"`
}

type VariationConfig struct {
	Model string `mapstructure:"model" validate:"required"`

	Count int `mapstructure:"count" validate:"gte=1,lte=10"`

	Size string `mapstructure:"size" validate:"oneof=256x256 512x512 1024x1024"`
}

type ModerationConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gt=0,lte=1"`
}

type LedgerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	Driver string `mapstructure:"driver" validate:"oneof=postgres sqlite"`

	DSN string `mapstructure:"dsn" validate:"required_if=Enabled true"`

	CostPerRun float64 `mapstructure:"costPerRun" validate:"gte=0"`
}

type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	Host string `mapstructure:"host"`

	Port string `mapstructure:"port"`

	ApiKey string `mapstructure:"apiKey" validate:"required_if=Enabled true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.debug", false)
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.guildId", "")
	v.SetDefault("discord.commandPrefix", "-")
	v.SetDefault("discord.debug", false)
	v.SetDefault("openai.apiKey", "")
	v.SetDefault("openai.baseURL", "")
	v.SetDefault("generation.sizeMode", "symbolic")
	v.SetDefault("generation.maxCount", 4)
	v.SetDefault("variation.model", "dall-e-2")
	v.SetDefault("variation.count", 4)
	v.SetDefault("variation.size", "1024x1024")
	v.SetDefault("moderation.threshold", 0.25)
	v.SetDefault("ledger.enabled", true)
	v.SetDefault("ledger.driver", "sqlite")
	v.SetDefault("ledger.dsn", "dallebot.db")
	v.SetDefault("ledger.costPerRun", 15.0/115.0)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "9000")
	v.SetDefault("server.apiKey", "")
}

// only the bot talks to discord and openai, so these are checked by
// ValidateCredentials instead of Load
var credentialFields = []string{"Discord.Token", "OpenAI.ApiKey"}

// Load reads the yaml file at path (or config.yaml in the working directory
// when path is empty), applies DALLEBOT_* environment overrides and validates
// the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("DALLEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validator.New().StructExcept(cfg, credentialFields...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateCredentials checks the discord token and openai key required to
// run the bot.
func (c *Config) ValidateCredentials() error {
	return validator.New().StructPartial(*c, credentialFields...)
}
