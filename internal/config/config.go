// Package config loads process configuration from the environment and an
// optional config file. Configuration is parsed once at startup and treated
// as immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	OpenAI   OpenAI   `mapstructure:"openai"`
	Search   Search   `mapstructure:"search"`
	GitHub   GitHub   `mapstructure:"github"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Server   Server   `mapstructure:"server"`
}

// Database holds persistence configuration.
type Database struct {
	URL string `mapstructure:"url"`
}

// OpenAI holds LLM configuration for the extractor and summarizer.
type OpenAI struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Search holds external search (Tavily-compatible) configuration.
type Search struct {
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
}

// GitHub holds GitHub API configuration. An empty token disables the
// GitHub adapters entirely.
type GitHub struct {
	Token string `mapstructure:"token"`
}

// Pipeline holds tuning knobs for the snapshot pipeline.
type Pipeline struct {
	RankedKeywords         int    `mapstructure:"ranked_keywords"`          // R: rows persisted per snapshot
	DetailedKeywords       int    `mapstructure:"detailed_keywords"`        // D: rows that get full enrichment
	KeywordConcurrency     int    `mapstructure:"keyword_concurrency"`      // enrichment worker pool size
	LightweightConcurrency int    `mapstructure:"lightweight_concurrency"`  // lightweight insert pool size
	ReuseSnapshotWindow    int    `mapstructure:"reuse_snapshot_window"`    // M: snapshots scanned by the reuse cache
	WindowHours            int    `mapstructure:"window_hours"`             // collection lookback
	ScheduleUTC            string `mapstructure:"schedule_utc"`             // comma-separated HH:MM slots
	EnableEnglishSummary   bool   `mapstructure:"enable_english_summary"`
	SummaryContextLimit    int    `mapstructure:"summary_context_limit"`
	CronSecret             string `mapstructure:"cron_secret"`
}

// Server holds HTTP trigger surface configuration.
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

var globalConfig *Config

// Load loads the configuration from .env, environment variables and an
// optional config file.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if present (local development)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".trendpulse")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.timeout", "30s")

	viper.SetDefault("search.timeout", "15s")

	viper.SetDefault("pipeline.ranked_keywords", 20)
	viper.SetDefault("pipeline.detailed_keywords", 10)
	viper.SetDefault("pipeline.keyword_concurrency", 3)
	viper.SetDefault("pipeline.lightweight_concurrency", 5)
	viper.SetDefault("pipeline.reuse_snapshot_window", 4)
	viper.SetDefault("pipeline.window_hours", 48)
	viper.SetDefault("pipeline.schedule_utc", "0:17,9:17")
	viper.SetDefault("pipeline.enable_english_summary", true)
	viper.SetDefault("pipeline.summary_context_limit", 5)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
}

// bindEnvironmentVariables wires the recognized environment variables to
// their viper keys.
func bindEnvironmentVariables() {
	bindEnvKeys("database.url", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("openai.api_key", []string{"OPENAI_API_KEY"})
	bindEnvKeys("openai.model", []string{"OPENAI_MODEL"})

	bindEnvKeys("search.api_key", []string{"TAVILY_API_KEY"})

	bindEnvKeys("github.token", []string{"GITHUB_TOKEN"})

	bindEnvKeys("pipeline.cron_secret", []string{"CRON_SECRET"})
	bindEnvKeys("pipeline.detailed_keywords", []string{"PIPELINE_DETAILED_KEYWORDS"})
	bindEnvKeys("pipeline.keyword_concurrency", []string{"PIPELINE_KEYWORD_CONCURRENCY"})
	bindEnvKeys("pipeline.lightweight_concurrency", []string{"PIPELINE_LIGHTWEIGHT_CONCURRENCY"})
	bindEnvKeys("pipeline.schedule_utc", []string{"PIPELINE_SCHEDULE_UTC"})
	bindEnvKeys("pipeline.enable_english_summary", []string{"ENABLE_EN_SUMMARY"})
	bindEnvKeys("pipeline.summary_context_limit", []string{"SUMMARY_CONTEXT_LIMIT"})

	bindEnvKeys("server.port", []string{"PORT"})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures required configuration is present and clamps
// tuning knobs into their documented ranges.
func validateConfig(config *Config) error {
	var errors []string

	if config.Database.URL == "" {
		errors = append(errors, "database URL is required. Set DATABASE_URL or POSTGRES_URL")
	}

	for _, d := range []struct {
		key, value string
	}{
		{"openai.timeout", config.OpenAI.Timeout},
		{"search.timeout", config.Search.Timeout},
	} {
		if d.value != "" {
			if _, err := time.ParseDuration(d.value); err != nil {
				errors = append(errors, fmt.Sprintf("invalid duration for %s: %s", d.key, d.value))
			}
		}
	}

	p := &config.Pipeline
	p.DetailedKeywords = clamp(p.DetailedKeywords, 1, p.RankedKeywords, 10)
	p.KeywordConcurrency = clamp(p.KeywordConcurrency, 1, 10, 3)
	p.LightweightConcurrency = clamp(p.LightweightConcurrency, 1, 20, 5)
	p.SummaryContextLimit = clamp(p.SummaryContextLimit, 1, 10, 5)

	if _, err := ParseScheduleSlots(p.ScheduleUTC); err != nil {
		errors = append(errors, fmt.Sprintf("invalid PIPELINE_SCHEDULE_UTC %q: %v", p.ScheduleUTC, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func clamp(v, min, max, fallback int) int {
	if v == 0 {
		return fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ScheduleSlot is one UTC update slot.
type ScheduleSlot struct {
	Hour   int
	Minute int
}

// ParseScheduleSlots parses a comma-separated list of UTC HH:MM slots.
func ParseScheduleSlots(s string) ([]ScheduleSlot, error) {
	parts := strings.Split(s, ",")
	slots := make([]ScheduleSlot, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var h, m int
		if _, err := fmt.Sscanf(part, "%d:%d", &h, &m); err != nil {
			return nil, fmt.Errorf("slot %q is not HH:MM", part)
		}
		if h < 0 || h > 23 || m < 0 || m > 59 {
			return nil, fmt.Errorf("slot %q out of range", part)
		}
		slots = append(slots, ScheduleSlot{Hour: h, Minute: m})
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("no slots configured")
	}
	return slots, nil
}

// ScheduleSlots returns the parsed update slots from the loaded config.
func (p Pipeline) ScheduleSlots() []ScheduleSlot {
	slots, err := ParseScheduleSlots(p.ScheduleUTC)
	if err != nil {
		// validated at load time; fall back to the documented default
		return []ScheduleSlot{{Hour: 0, Minute: 17}, {Hour: 9, Minute: 17}}
	}
	return slots
}

// Convenience getters for commonly used configuration values.
func GetDatabaseURL() string  { return Get().Database.URL }
func GetOpenAIAPIKey() string { return Get().OpenAI.APIKey }
func GetOpenAIModel() string  { return Get().OpenAI.Model }
func GetTavilyAPIKey() string { return Get().Search.APIKey }
func GetGitHubToken() string  { return Get().GitHub.Token }
func GetPipeline() Pipeline   { return Get().Pipeline }
func GetServer() Server       { return Get().Server }

// Reset clears the global configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viper.Reset()
}
