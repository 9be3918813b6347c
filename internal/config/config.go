package config

import (
	"time"

	"github.com/spf13/viper"
)

type SinkType string

const (
	LogSink      SinkType = "LOG"
	KafkaSink    SinkType = "KAFKA"
	TelegramSink SinkType = "TELEGRAM"
)

type Config struct {
	APIBaseURL    string `mapstructure:"API_BASE_URL"`
	WSBaseURL     string `mapstructure:"WS_BASE_URL"`
	AuthToken     string `mapstructure:"AUTH_TOKEN"`
	ApplicationID int64  `mapstructure:"APPLICATION_ID"`
	MetricsPort   int    `mapstructure:"METRICS_PORT"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	UILanguage       string `mapstructure:"UI_LANGUAGE"`
	FallbackLanguage string `mapstructure:"FALLBACK_LANGUAGE"`

	ReconnectMinDelay        time.Duration `mapstructure:"RECONNECT_MIN_DELAY"`
	ReconnectMaxDelay        time.Duration `mapstructure:"RECONNECT_MAX_DELAY"`
	ChatPollInterval         time.Duration `mapstructure:"CHAT_POLL_INTERVAL"`
	NotificationPollInterval time.Duration `mapstructure:"NOTIFICATION_POLL_INTERVAL"`
	TypingExpiry             time.Duration `mapstructure:"TYPING_EXPIRY"`
	TypingDebounce           time.Duration `mapstructure:"TYPING_DEBOUNCE"`
	ResumeRefreshInterval    time.Duration `mapstructure:"RESUME_REFRESH_INTERVAL"`

	HTTPRequestTimeout time.Duration `mapstructure:"HTTP_REQUEST_TIMEOUT"`

	RetryCount           int           `mapstructure:"RETRY_COUNT"`
	RetryBackoff         time.Duration `mapstructure:"RETRY_BACKOFF"`
	RetryableStatusCodes []int         `mapstructure:"RETRYABLE_STATUS_CODES"`

	CBSlidingWindowSize        int           `mapstructure:"CB_SLIDING_WINDOW_SIZE"`
	CBMinimumRequiredCalls     int           `mapstructure:"CB_MINIMUM_REQUIRED_CALLS"`
	CBFailureRateThreshold     int           `mapstructure:"CB_FAILURE_RATE_THRESHOLD"`
	CBPermittedCallsInHalfOpen int           `mapstructure:"CB_PERMITTED_CALLS_IN_HALF_OPEN"`
	CBWaitDurationInOpenState  time.Duration `mapstructure:"CB_WAIT_DURATION_IN_OPEN_STATE"`

	RedisURL      string        `mapstructure:"REDIS_URL"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisCacheTTL time.Duration `mapstructure:"REDIS_CACHE_TTL"`

	SinkTransport        string `mapstructure:"SINK_TRANSPORT"`
	FallbackEnabled      bool   `mapstructure:"FALLBACK_ENABLED"`
	FallbackTransport    string `mapstructure:"FALLBACK_TRANSPORT"`
	KafkaBrokers         string `mapstructure:"KAFKA_BROKERS"`
	TopicNotifications   string `mapstructure:"TOPIC_NOTIFICATIONS"`
	TopicDeadLetterQueue string `mapstructure:"TOPIC_DEAD_LETTER_QUEUE"`
	TelegramBotToken     string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID       int64  `mapstructure:"TELEGRAM_CHAT_ID"`
}

func LoadConfig() *Config {
	setDefaults()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return getDefaultConfig()
	}

	return config
}

func setDefaults() {
	viper.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	viper.SetDefault("WS_BASE_URL", "")
	viper.SetDefault("AUTH_TOKEN", "")
	viper.SetDefault("APPLICATION_ID", 0)
	viper.SetDefault("METRICS_PORT", 9096)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("UI_LANGUAGE", "ru")
	viper.SetDefault("FALLBACK_LANGUAGE", "en")

	viper.SetDefault("RECONNECT_MIN_DELAY", "1s")
	viper.SetDefault("RECONNECT_MAX_DELAY", "30s")
	viper.SetDefault("CHAT_POLL_INTERVAL", "5s")
	viper.SetDefault("NOTIFICATION_POLL_INTERVAL", "10s")
	viper.SetDefault("TYPING_EXPIRY", "3s")
	viper.SetDefault("TYPING_DEBOUNCE", "2s")
	viper.SetDefault("RESUME_REFRESH_INTERVAL", "1s")

	viper.SetDefault("HTTP_REQUEST_TIMEOUT", "10s")

	viper.SetDefault("RETRY_COUNT", 2)
	viper.SetDefault("RETRY_BACKOFF", "500ms")
	viper.SetDefault("RETRYABLE_STATUS_CODES", []int{408, 429, 502, 503, 504})

	viper.SetDefault("CB_SLIDING_WINDOW_SIZE", 10)
	viper.SetDefault("CB_MINIMUM_REQUIRED_CALLS", 5)
	viper.SetDefault("CB_FAILURE_RATE_THRESHOLD", 50)
	viper.SetDefault("CB_PERMITTED_CALLS_IN_HALF_OPEN", 2)
	viper.SetDefault("CB_WAIT_DURATION_IN_OPEN_STATE", "10s")

	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CACHE_TTL", "24h")

	viper.SetDefault("SINK_TRANSPORT", string(LogSink))
	viper.SetDefault("FALLBACK_ENABLED", false)
	viper.SetDefault("FALLBACK_TRANSPORT", string(LogSink))
	viper.SetDefault("KAFKA_BROKERS", "kafka:9092")
	viper.SetDefault("TOPIC_NOTIFICATIONS", "portal-notifications")
	viper.SetDefault("TOPIC_DEAD_LETTER_QUEUE", "portal-notifications-dlq")
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("TELEGRAM_CHAT_ID", 0)
}

func getDefaultConfig() *Config {
	return &Config{
		APIBaseURL:  "http://localhost:8000/api",
		MetricsPort: 9096,
		LogLevel:    "info",

		UILanguage:       "ru",
		FallbackLanguage: "en",

		ReconnectMinDelay:        1 * time.Second,
		ReconnectMaxDelay:        30 * time.Second,
		ChatPollInterval:         5 * time.Second,
		NotificationPollInterval: 10 * time.Second,
		TypingExpiry:             3 * time.Second,
		TypingDebounce:           2 * time.Second,
		ResumeRefreshInterval:    1 * time.Second,

		HTTPRequestTimeout: 10 * time.Second,

		RetryCount:           2,
		RetryBackoff:         500 * time.Millisecond,
		RetryableStatusCodes: []int{408, 429, 502, 503, 504},

		CBSlidingWindowSize:        10,
		CBMinimumRequiredCalls:     5,
		CBFailureRateThreshold:     50,
		CBPermittedCallsInHalfOpen: 2,
		CBWaitDurationInOpenState:  10 * time.Second,

		RedisCacheTTL: 24 * time.Hour,

		SinkTransport:        string(LogSink),
		FallbackEnabled:      false,
		FallbackTransport:    string(LogSink),
		KafkaBrokers:         "kafka:9092",
		TopicNotifications:   "portal-notifications",
		TopicDeadLetterQueue: "portal-notifications-dlq",
	}
}

// Default возвращает конфигурацию по умолчанию без чтения окружения.
func Default() *Config {
	return getDefaultConfig()
}
