package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Content   ContentConfig   `yaml:"content" mapstructure:"content"`
	Spoke     SpokeConfig     `yaml:"spoke" mapstructure:"spoke"`
	GitHub    GitHubConfig    `yaml:"github" mapstructure:"github"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	ExtractModel  string `yaml:"extract_model" mapstructure:"extract_model"`
	GenerateModel string `yaml:"generate_model" mapstructure:"generate_model"`
}

// ContentConfig locates the published content tree.
type ContentConfig struct {
	Root    string   `yaml:"root" mapstructure:"root"`
	Locales []string `yaml:"locales" mapstructure:"locales"`
}

// SpokeConfig tunes the spoke factory pipeline.
type SpokeConfig struct {
	MaxTopics      int     `yaml:"max_topics" mapstructure:"max_topics"`
	MinConfidence  float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxSources     int     `yaml:"max_sources" mapstructure:"max_sources"`
	GenConcurrency int     `yaml:"gen_concurrency" mapstructure:"gen_concurrency"`
	GenRatePerSec  float64 `yaml:"gen_rate_per_sec" mapstructure:"gen_rate_per_sec"`
	SummaryPath    string  `yaml:"summary_path" mapstructure:"summary_path"`
}

// GitHubConfig holds remote-CI provider settings.
type GitHubConfig struct {
	Token              string `yaml:"token" mapstructure:"token"`
	Owner              string `yaml:"owner" mapstructure:"owner"`
	Repo               string `yaml:"repo" mapstructure:"repo"`
	WorkflowFile       string `yaml:"workflow_file" mapstructure:"workflow_file"`
	Ref                string `yaml:"ref" mapstructure:"ref"`
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	ResolveTimeoutSecs int    `yaml:"resolve_timeout_secs" mapstructure:"resolve_timeout_secs"`
}

// StoreConfig configures the local dispatch ledger.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the trigger API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SPOKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.extract_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.generate_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("content.root", "content")
	v.SetDefault("content.locales", []string{"ja", "en", "zh"})
	v.SetDefault("spoke.max_topics", 10)
	v.SetDefault("spoke.min_confidence", 0.45)
	v.SetDefault("spoke.max_sources", 120)
	v.SetDefault("spoke.gen_concurrency", 4)
	v.SetDefault("spoke.gen_rate_per_sec", 2)
	v.SetDefault("spoke.summary_path", "spoke-summary.json")
	v.SetDefault("github.workflow_file", "spoke-factory.yml")
	v.SetDefault("github.ref", "main")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.resolve_timeout_secs", 30)
	v.SetDefault("store.path", "spoke.db")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
