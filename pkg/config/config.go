package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins []string
	Development    bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LLMConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxTokens       int
	BatchMaxTokens  int
	TimeoutSec      int
	BatchTimeoutSec int
}

type MatchingConfig struct {
	BatchSize          int
	MinScoreThreshold  float64
	TopMatchesToReturn int
	OverwriteOnRematch string
}

type RateLimitConfig struct {
	Backend         string
	APIMax          int
	APIWindowSec    int
	SubmitMax       int
	SubmitWindowSec int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// Rematch overwrite policies. Under "always" a rematch refreshes
// score/reasoning even on decided matches; the decision itself stays.
const (
	OverwriteAlways         = "always"
	OverwriteNeverIfDecided = "never_if_decided"
	OverwriteAlwaysAudit    = "always_with_audit"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sanctuary")

	viper.SetEnvPrefix("SANCTUARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch config.Matching.OverwriteOnRematch {
	case OverwriteAlways, OverwriteNeverIfDecided, OverwriteAlwaysAudit:
	default:
		return nil, fmt.Errorf("invalid matching.overwriteOnRematch: %q", config.Matching.OverwriteOnRematch)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 120)
	viper.SetDefault("server.bodyLimit", 10485760)
	viper.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	viper.SetDefault("server.development", false)

	viper.SetDefault("sqlite.path", "./data/sanctuary.db")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 4096)
	viper.SetDefault("llm.batchMaxTokens", 8192)
	viper.SetDefault("llm.timeoutSec", 30)
	viper.SetDefault("llm.batchTimeoutSec", 120)

	viper.SetDefault("matching.batchSize", 10)
	viper.SetDefault("matching.minScoreThreshold", 40)
	viper.SetDefault("matching.topMatchesToReturn", 5)
	viper.SetDefault("matching.overwriteOnRematch", OverwriteAlways)

	viper.SetDefault("ratelimit.backend", "memory")
	viper.SetDefault("ratelimit.apiMax", 100)
	viper.SetDefault("ratelimit.apiWindowSec", 900)
	viper.SetDefault("ratelimit.submitMax", 10)
	viper.SetDefault("ratelimit.submitWindowSec", 3600)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
