package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	CheckerServerPort int    `mapstructure:"CHECKER_SERVER_PORT"`
	CheckerHost       string `mapstructure:"CHECKER_HOST"`
	CheckerBaseURL    string `mapstructure:"CHECKER_BASE_URL"`
	MetricsPort       int    `mapstructure:"METRICS_PORT"`
	ScanMetricsPort   int    `mapstructure:"SCAN_METRICS_PORT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`

	BlogURL       string `mapstructure:"BLOG_URL"`
	MaxPosts      int    `mapstructure:"MAX_POSTS"`
	ItemsPerPage  int    `mapstructure:"ITEMS_PER_PAGE"`
	SelectedTypes string `mapstructure:"SELECTED_TYPES"`
	RecheckBroken bool   `mapstructure:"RECHECK_BROKEN"`
	RecheckURL    string `mapstructure:"RECHECK_URL"`

	BatchSize           int           `mapstructure:"BATCH_SIZE"`
	BatchDelay          time.Duration `mapstructure:"BATCH_DELAY"`
	CheckRequestTimeout time.Duration `mapstructure:"CHECK_REQUEST_TIMEOUT"`
	HealthTimeout       time.Duration `mapstructure:"HEALTH_TIMEOUT"`
	HealthCheckInterval time.Duration `mapstructure:"HEALTH_CHECK_INTERVAL"`
	FeedRequestTimeout  time.Duration `mapstructure:"FEED_REQUEST_TIMEOUT"`

	SuccessLenientAuth   bool `mapstructure:"SUCCESS_LENIENT_AUTH"`
	SuccessAcceptContent bool `mapstructure:"SUCCESS_ACCEPT_CONTENT"`

	ProbeHeadTimeout  time.Duration `mapstructure:"PROBE_HEAD_TIMEOUT"`
	ProbeGetTimeout   time.Duration `mapstructure:"PROBE_GET_TIMEOUT"`
	ProbeBatchTimeout time.Duration `mapstructure:"PROBE_BATCH_TIMEOUT"`
	ProbeBatchDelay   time.Duration `mapstructure:"PROBE_BATCH_DELAY"`
	ProbeUserAgent    string        `mapstructure:"PROBE_USER_AGENT"`
	MaxBatchURLs      int           `mapstructure:"MAX_BATCH_URLS"`

	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	RetryCount           int           `mapstructure:"RETRY_COUNT"`
	RetryBackoff         time.Duration `mapstructure:"RETRY_BACKOFF"`
	RetryableStatusCodes []int         `mapstructure:"RETRYABLE_STATUS_CODES"`

	CBSlidingWindowSize        int           `mapstructure:"CB_SLIDING_WINDOW_SIZE"`
	CBMinimumRequiredCalls     int           `mapstructure:"CB_MINIMUM_REQUIRED_CALLS"`
	CBFailureRateThreshold     int           `mapstructure:"CB_FAILURE_RATE_THRESHOLD"`
	CBPermittedCallsInHalfOpen int           `mapstructure:"CB_PERMITTED_CALLS_IN_HALF_OPEN"`
	CBWaitDurationInOpenState  time.Duration `mapstructure:"CB_WAIT_DURATION_IN_OPEN_STATE"`

	CacheEnabled  bool          `mapstructure:"CACHE_ENABLED"`
	RedisURL      string        `mapstructure:"REDIS_URL"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisCacheTTL time.Duration `mapstructure:"REDIS_CACHE_TTL"`
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

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
	viper.SetDefault("CHECKER_SERVER_PORT", 3000)
	viper.SetDefault("CHECKER_HOST", "localhost")
	viper.SetDefault("CHECKER_BASE_URL", "http://localhost:3000")
	viper.SetDefault("METRICS_PORT", 9095)
	viper.SetDefault("SCAN_METRICS_PORT", 9096)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("BLOG_URL", "")
	viper.SetDefault("MAX_POSTS", 500)
	viper.SetDefault("ITEMS_PER_PAGE", 50)
	viper.SetDefault("SELECTED_TYPES", "all")
	viper.SetDefault("RECHECK_BROKEN", false)
	viper.SetDefault("RECHECK_URL", "")

	viper.SetDefault("BATCH_SIZE", 5)
	viper.SetDefault("BATCH_DELAY", "1500ms")
	viper.SetDefault("CHECK_REQUEST_TIMEOUT", "15s")
	viper.SetDefault("HEALTH_TIMEOUT", "3s")
	viper.SetDefault("HEALTH_CHECK_INTERVAL", "30s")
	viper.SetDefault("FEED_REQUEST_TIMEOUT", "30s")

	viper.SetDefault("SUCCESS_LENIENT_AUTH", true)
	viper.SetDefault("SUCCESS_ACCEPT_CONTENT", true)

	viper.SetDefault("PROBE_HEAD_TIMEOUT", "10s")
	viper.SetDefault("PROBE_GET_TIMEOUT", "15s")
	viper.SetDefault("PROBE_BATCH_TIMEOUT", "8s")
	viper.SetDefault("PROBE_BATCH_DELAY", "100ms")
	viper.SetDefault("PROBE_USER_AGENT", DefaultUserAgent)
	viper.SetDefault("MAX_BATCH_URLS", 50)

	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1s")

	viper.SetDefault("RETRY_COUNT", 2)
	viper.SetDefault("RETRY_BACKOFF", "1s")
	viper.SetDefault("RETRYABLE_STATUS_CODES", []int{408, 429, 500, 502, 503, 504})

	viper.SetDefault("CB_SLIDING_WINDOW_SIZE", 10)
	viper.SetDefault("CB_MINIMUM_REQUIRED_CALLS", 5)
	viper.SetDefault("CB_FAILURE_RATE_THRESHOLD", 50)
	viper.SetDefault("CB_PERMITTED_CALLS_IN_HALF_OPEN", 2)
	viper.SetDefault("CB_WAIT_DURATION_IN_OPEN_STATE", "10s")

	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CACHE_TTL", "5m")
}

func getDefaultConfig() *Config {
	return &Config{
		CheckerServerPort: 3000,
		CheckerHost:       "localhost",
		CheckerBaseURL:    "http://localhost:3000",
		MetricsPort:       9095,
		ScanMetricsPort:   9096,
		LogLevel:          "info",

		MaxPosts:      500,
		ItemsPerPage:  50,
		SelectedTypes: "all",

		BatchSize:           5,
		BatchDelay:          1500 * time.Millisecond,
		CheckRequestTimeout: 15 * time.Second,
		HealthTimeout:       3 * time.Second,
		HealthCheckInterval: 30 * time.Second,
		FeedRequestTimeout:  30 * time.Second,

		SuccessLenientAuth:   true,
		SuccessAcceptContent: true,

		ProbeHeadTimeout:  10 * time.Second,
		ProbeGetTimeout:   15 * time.Second,
		ProbeBatchTimeout: 8 * time.Second,
		ProbeBatchDelay:   100 * time.Millisecond,
		ProbeUserAgent:    DefaultUserAgent,
		MaxBatchURLs:      50,

		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Second,

		RetryCount:           2,
		RetryBackoff:         1 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},

		CBSlidingWindowSize:        10,
		CBMinimumRequiredCalls:     5,
		CBFailureRateThreshold:     50,
		CBPermittedCallsInHalfOpen: 2,
		CBWaitDurationInOpenState:  10 * time.Second,

		CacheEnabled:  false,
		RedisURL:      "localhost:6379",
		RedisPassword: "",
		RedisDB:       0,
		RedisCacheTTL: 5 * time.Minute,
	}
}

// Default возвращает конфигурацию со значениями по умолчанию без чтения окружения.
func Default() *Config {
	return getDefaultConfig()
}
