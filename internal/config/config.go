package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort      int    `mapstructure:"APP_PORT"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`

	// Guest history store: "sqlite", "redis" or "memory".
	GuestStoreDriver string `mapstructure:"GUEST_STORE_DRIVER"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`

	// Authenticated conversation store: "sqlite" or "supabase".
	RemoteStoreDriver string `mapstructure:"REMOTE_STORE_DRIVER"`
	SupabaseURL       string `mapstructure:"SUPABASE_URL"`
	SupabaseAPIKey    string `mapstructure:"SUPABASE_API_KEY"`
	SupabaseDBURL     string `mapstructure:"SUPABASE_DB_URL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	CompletionProvider string        `mapstructure:"COMPLETION_PROVIDER"`
	OpenRouterURL      string        `mapstructure:"OPENROUTER_URL"`
	OpenRouterAPIKey   string        `mapstructure:"OPENROUTER_API_KEY"`
	GeminiAPIKey       string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel        string        `mapstructure:"GEMINI_MODEL"`
	CompletionTimeout  time.Duration `mapstructure:"COMPLETION_TIMEOUT"`
	TranscriptionModel string        `mapstructure:"TRANSCRIPTION_MODEL"`

	DefaultModel   string `mapstructure:"MODEL_DEFAULT"`
	AcademicModel  string `mapstructure:"MODEL_ACADEMIC"`
	CreativeModel  string `mapstructure:"MODEL_CREATIVE"`
	FitnessModel   string `mapstructure:"MODEL_FITNESS"`
	NutritionModel string `mapstructure:"MODEL_NUTRITION"`
	CoachingModel  string `mapstructure:"MODEL_COACHING"`

	CharacterCacheTTL time.Duration `mapstructure:"CHARACTER_CACHE_TTL"`

	GuestMessageLimit    int    `mapstructure:"GUEST_MESSAGE_LIMIT"`
	FreeMessageLimit     int    `mapstructure:"FREE_MESSAGE_LIMIT"`
	SubscribedDailyLimit int    `mapstructure:"SUBSCRIBED_DAILY_LIMIT"`
	HistoryLimit         int    `mapstructure:"HISTORY_LIMIT"`
	SummaryLimit         int    `mapstructure:"SUMMARY_LIMIT"`
	UsageTimezone        string `mapstructure:"USAGE_TIMEZONE"`

	MediaBucket  string `mapstructure:"MEDIA_BUCKET"`
	AwsRegion    string `mapstructure:"AWS_REGION"`
	AwsAccessKey string `mapstructure:"AWS_ACCESS_KEY"`
	AwsSecretKey string `mapstructure:"AWS_SECRET_KEY"`

	// MediaEndpoint points uploads at an S3-compatible store instead of AWS.
	MediaEndpoint string `mapstructure:"MEDIA_ENDPOINT"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("DATABASE_PATH", "/data/fantasy.db")

	viper.SetDefault("GUEST_STORE_DRIVER", "sqlite")
	viper.SetDefault("REDIS_ADDR", "redis:6379")
	viper.SetDefault("REDIS_PASSWORD", "")

	viper.SetDefault("REMOTE_STORE_DRIVER", "sqlite")
	viper.SetDefault("SUPABASE_URL", "")
	viper.SetDefault("SUPABASE_API_KEY", "")
	viper.SetDefault("SUPABASE_DB_URL", "")
	viper.SetDefault("JWT_SECRET", "")

	viper.SetDefault("COMPLETION_PROVIDER", "openrouter")
	viper.SetDefault("OPENROUTER_URL", "https://openrouter.ai/api/v1")
	viper.SetDefault("OPENROUTER_API_KEY", "")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("COMPLETION_TIMEOUT", "60s")
	viper.SetDefault("TRANSCRIPTION_MODEL", "whisper")

	viper.SetDefault("MODEL_DEFAULT", "mistralai/mistral-7b-instruct")
	viper.SetDefault("MODEL_ACADEMIC", "anthropic/claude-3-haiku")
	viper.SetDefault("MODEL_CREATIVE", "openai/gpt-4o-mini")
	viper.SetDefault("MODEL_FITNESS", "meta-llama/llama-3-8b-instruct")
	viper.SetDefault("MODEL_NUTRITION", "meta-llama/llama-3-8b-instruct")
	viper.SetDefault("MODEL_COACHING", "openai/gpt-4o-mini")

	viper.SetDefault("CHARACTER_CACHE_TTL", "30m")

	viper.SetDefault("GUEST_MESSAGE_LIMIT", 3)
	viper.SetDefault("FREE_MESSAGE_LIMIT", 3)
	viper.SetDefault("SUBSCRIBED_DAILY_LIMIT", 50)
	viper.SetDefault("HISTORY_LIMIT", 10)
	viper.SetDefault("SUMMARY_LIMIT", 15)
	viper.SetDefault("USAGE_TIMEZONE", "Local")

	viper.SetDefault("MEDIA_BUCKET", "")
	viper.SetDefault("AWS_REGION", "")
	viper.SetDefault("AWS_ACCESS_KEY", "")
	viper.SetDefault("AWS_SECRET_KEY", "")
	viper.SetDefault("MEDIA_ENDPOINT", "")

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves UsageTimezone, falling back to the server's local zone.
func (c *Config) Location() *time.Location {
	if c.UsageTimezone == "" || strings.EqualFold(c.UsageTimezone, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.UsageTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}
