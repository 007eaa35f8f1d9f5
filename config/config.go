package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/lullai/pkg/configs"
)

// Application config structure
type AppConfig struct {
	Name        string `mapstructure:"service_name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Secret      string `mapstructure:"secret" validate:"required"`
	Host        string `mapstructure:"host" validate:"required"`
	Port        int    `mapstructure:"port" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"required"`
	LogPath     string `mapstructure:"log_path"`
	CorsOrigins string `mapstructure:"cors_origins"`

	PostgresConfig configs.PostgresConfig `mapstructure:"postgres" validate:"required"`
	RedisConfig    configs.RedisConfig    `mapstructure:"redis" validate:"required"`

	ClassifierConfig ClassifierConfig `mapstructure:"classifier" validate:"required"`
	CaptureConfig    CaptureConfig    `mapstructure:"capture" validate:"required"`
	StoreConfig      StoreConfig      `mapstructure:"store" validate:"required"`
	AuthConfig       AuthConfig       `mapstructure:"auth" validate:"required"`
	AlertConfig      AlertConfig      `mapstructure:"alert"`
	RetentionConfig  RetentionConfig  `mapstructure:"retention"`
}

// ClassifierConfig selects and credentials the model provider used to
// interpret finished recordings.
type ClassifierConfig struct {
	Provider       string `mapstructure:"provider" validate:"required"`
	Model          string `mapstructure:"model" validate:"required"`
	PromptVersion  string `mapstructure:"prompt_version"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`

	OpenaiApiKey    string `mapstructure:"openai_api_key"`
	AnthropicApiKey string `mapstructure:"anthropic_api_key"`
	GoogleApiKey    string `mapstructure:"google_api_key"`

	BedrockRegion    string `mapstructure:"bedrock_region"`
	BedrockAccessKey string `mapstructure:"bedrock_access_key"`
	BedrockSecretKey string `mapstructure:"bedrock_secret_key"`
}

// CaptureConfig bounds live listening sessions.
type CaptureConfig struct {
	SampleRate         int     `mapstructure:"sample_rate" validate:"required"`
	MaxDurationSeconds int     `mapstructure:"max_duration_seconds" validate:"required"`
	TriggerThreshold   float64 `mapstructure:"trigger_threshold"`
	TriggerHangoverMs  int     `mapstructure:"trigger_hangover_ms"`
}

// StoreConfig configures recording persistence and its local fallback.
type StoreConfig struct {
	LocalPath       string `mapstructure:"local_path" validate:"required"`
	CacheTtlSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type AuthConfig struct {
	TokenTtlMinutes int `mapstructure:"token_ttl_minutes" validate:"required"`
}

// AlertConfig wires the outbound channels notified on urgent analyses.
// Channels with empty credentials stay disabled.
type AlertConfig struct {
	SendgridApiKey string `mapstructure:"sendgrid_api_key"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`

	SesRegion    string `mapstructure:"ses_region"`
	SesAccessKey string `mapstructure:"ses_access_key"`
	SesSecretKey string `mapstructure:"ses_secret_key"`

	TwilioAccountSid string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken  string `mapstructure:"twilio_auth_token"`
	TwilioFromNumber string `mapstructure:"twilio_from_number"`
	TwilioToNumber   string `mapstructure:"twilio_to_number"`

	WebhookUrl string `mapstructure:"webhook_url"`
}

// RetentionConfig controls the sweeper that prunes aged recordings.
// Days == 0 disables pruning entirely.
type RetentionConfig struct {
	Days     int    `mapstructure:"days"`
	Schedule string `mapstructure:"schedule"`
}

// reading config and initializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil {
		log.Printf("no config file found, reading from env variables")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// setting all default values
	// keeping watch on https://github.com/spf13/viper/issues/188

	v.SetDefault("SERVICE_NAME", "lullai-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("POSTGRES__HOST", "localhost")
	v.SetDefault("POSTGRES__PORT", 5432)
	v.SetDefault("POSTGRES__DB_NAME", "lullai")
	v.SetDefault("POSTGRES__AUTH__USER", "lullai")
	v.SetDefault("POSTGRES__AUTH__PASSWORD", "lullai")
	v.SetDefault("POSTGRES__MAX_OPEN_CONNECTION", 10)
	v.SetDefault("POSTGRES__MAX_IDEAL_CONNECTION", 10)
	v.SetDefault("POSTGRES__SSL_MODE", "disable")
	v.SetDefault("POSTGRES__MIGRATION_PATH", "")

	v.SetDefault("REDIS__HOST", "localhost")
	v.SetDefault("REDIS__PORT", 6379)
	v.SetDefault("REDIS__PASSWORD", "")
	v.SetDefault("REDIS__DB", 0)

	v.SetDefault("CLASSIFIER__PROVIDER", "openai")
	v.SetDefault("CLASSIFIER__MODEL", "gpt-4o-mini")
	v.SetDefault("CLASSIFIER__PROMPT_VERSION", "latest")
	v.SetDefault("CLASSIFIER__MAX_TOKENS", 512)
	v.SetDefault("CLASSIFIER__TIMEOUT_SECONDS", 60)

	v.SetDefault("CAPTURE__SAMPLE_RATE", 16000)
	v.SetDefault("CAPTURE__MAX_DURATION_SECONDS", 30)
	v.SetDefault("CAPTURE__TRIGGER_THRESHOLD", 0.12)
	v.SetDefault("CAPTURE__TRIGGER_HANGOVER_MS", 1500)

	v.SetDefault("STORE__LOCAL_PATH", "./data/recordings")
	v.SetDefault("STORE__CACHE_TTL_SECONDS", 300)

	v.SetDefault("AUTH__TOKEN_TTL_MINUTES", 1440)

	v.SetDefault("RETENTION__DAYS", 0)
	v.SetDefault("RETENTION__SCHEDULE", "0 3 * * *")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// validating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
