package util

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
type Config struct {
	Environment       string   `mapstructure:"ENVIRONMENT"`
	AllowedOrigins    []string `mapstructure:"ALLOWED_ORIGINS"`
	HTTPServerAddress string   `mapstructure:"HTTP_SERVER_ADDRESS"`
	RedisAddress      string   `mapstructure:"REDIS_ADDRESS"`
	RedisPassword     string   `mapstructure:"REDIS_PASSWORD"`

	// Routing matrix service (distance/duration lookups)
	MatrixBaseURL      string        `mapstructure:"MATRIX_BASE_URL"` // empty = haversine fallback
	MatrixAPIKey       string        `mapstructure:"MATRIX_API_KEY"`
	MatrixHTTPTimeout  time.Duration `mapstructure:"MATRIX_HTTP_TIMEOUT"`
	MatrixCacheTTL     time.Duration `mapstructure:"MATRIX_CACHE_TTL"`
	MatrixRetryMax     int           `mapstructure:"MATRIX_RETRY_MAX"`
	MatrixRetryBackoff time.Duration `mapstructure:"MATRIX_RETRY_BACKOFF"`

	// Insertion defaults
	ArrivalBufferPercent      float64 `mapstructure:"ARRIVAL_BUFFER_PERCENT"`       // 0-100
	ArrivalBufferFixedMinutes float64 `mapstructure:"ARRIVAL_BUFFER_FIXED_MINUTES"` // 0-120
	BufferServiceTime         bool    `mapstructure:"BUFFER_SERVICE_TIME"`
	SlackMarginMinutes        float64 `mapstructure:"SLACK_MARGIN_MINUTES"`
	DefaultServiceDuration    int     `mapstructure:"DEFAULT_SERVICE_DURATION"` // minutes
	WorkdayStart              string  `mapstructure:"WORKDAY_START"`            // HH:MM
	WorkdayEnd                string  `mapstructure:"WORKDAY_END"`              // HH:MM

	// Crew switch recommendation thresholds
	CrewSwitchMinSavingsMin float64 `mapstructure:"CREW_SWITCH_MIN_SAVINGS_MIN"`
	CrewSwitchMinSavingsKm  float64 `mapstructure:"CREW_SWITCH_MIN_SAVINGS_KM"`

	// Candidate queue
	DueSoonDays int `mapstructure:"DUE_SOON_DAYS"`

	// Request handling
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"` // metadata operations
	BulkTimeout    time.Duration `mapstructure:"BULK_TIMEOUT"`    // batch/digest jobs
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Normalize common quoted values from .env (e.g. REDIS_PASSWORD="...")
	config.RedisPassword = trimOptionalQuotes(config.RedisPassword)
	return
}

func trimOptionalQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\"")
	s = strings.TrimSuffix(s, "\"")
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return s
}
