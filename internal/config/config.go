package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	defaultListenAddr           = ":8080"
	defaultPrecision            = 4
	defaultSessionIdleMinutes   = 120
	defaultSessionSweepSchedule = "*/15 * * * *"
	defaultAnthropicModel       = "claude-sonnet-4-5-20250929"
	maxPrecision                = 12
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	// Empty keeps history in process memory.
	DBPath    string `yaml:"db_path"`
	Precision int    `yaml:"precision"`

	SessionIdleMinutes   int    `yaml:"session_idle_minutes"`
	SessionSweepSchedule string `yaml:"session_sweep_schedule"`

	SlackBotToken string `yaml:"slack_bot_token"`
	SlackAppToken string `yaml:"slack_app_token"`

	LLMEnabled      bool   `yaml:"llm_enabled"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	Timezone                   string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverrideAllowEmpty(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.Precision, "PRECISION")
	envOverrideInt(&cfg.SessionIdleMinutes, "SESSION_IDLE_MINUTES")
	envOverride(&cfg.SessionSweepSchedule, "SESSION_SWEEP_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverrideBool(&cfg.LLMEnabled, "LLM_ENABLED")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.Precision == 0 {
		cfg.Precision = defaultPrecision
	}
	if cfg.SessionIdleMinutes == 0 {
		cfg.SessionIdleMinutes = defaultSessionIdleMinutes
	}
	if cfg.SessionSweepSchedule == "" {
		cfg.SessionSweepSchedule = defaultSessionSweepSchedule
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultAnthropicModel
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if (cfg.SlackBotToken == "") != (cfg.SlackAppToken == "") {
		log.Fatalf("Partial Slack config: slack_bot_token and slack_app_token are required together")
	}
	if cfg.LLMEnabled && cfg.AnthropicAPIKey == "" {
		log.Fatalf("anthropic_api_key is required when llm_enabled=true")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.Precision < 1 || cfg.Precision > maxPrecision {
		log.Fatalf("invalid precision '%d': must be between 1 and %d", cfg.Precision, maxPrecision)
	}
	if cfg.SessionIdleMinutes < 1 {
		log.Fatalf("invalid session_idle_minutes '%d': must be >= 1", cfg.SessionIdleMinutes)
	}
	if _, err := ParseSchedule(cfg.SessionSweepSchedule); err != nil {
		log.Fatalf("invalid session_sweep_schedule '%s': %v", cfg.SessionSweepSchedule, err)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}

	return cfg
}

// ParseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(strings.TrimSpace(spec))
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

func (c Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}
