package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// Local cache
	CachePath string `mapstructure:"CACHE_PATH"`

	// Remote document store
	RemoteBaseURL string `mapstructure:"REMOTE_BASE_URL"`
	RemoteToken   string `mapstructure:"REMOTE_TOKEN"`
	RemoteUserID  string `mapstructure:"REMOTE_USER_ID"`

	// Redis (live change feed)
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// LLM API
	LLMAPIKey      string `mapstructure:"LLM_API_KEY"`
	LLMAPIEndpoint string `mapstructure:"LLM_API_ENDPOINT"`
	LLMModel       string `mapstructure:"LLM_MODEL"`

	// JWT
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Sync tuning
	MirrorTimeoutSeconds int `mapstructure:"MIRROR_TIMEOUT_SECONDS"`
	SyncMaxAttempts      int `mapstructure:"SYNC_MAX_ATTEMPTS"`
	ConnectivityPollSecs int `mapstructure:"CONNECTIVITY_POLL_SECONDS"`
}

// LoadConfig reads configuration from a .env file or the environment.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// A missing config file is fine; the environment still applies.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.CachePath == "" {
		config.CachePath = "haven.db"
	}
	if config.LLMModel == "" {
		config.LLMModel = "deepseek/deepseek-v3"
	}
	if config.MirrorTimeoutSeconds <= 0 {
		config.MirrorTimeoutSeconds = 5
	}
	if config.SyncMaxAttempts <= 0 {
		config.SyncMaxAttempts = 20
	}
	if config.ConnectivityPollSecs <= 0 {
		config.ConnectivityPollSecs = 10
	}
	return
}

// GetRedisConnString returns the redis address.
func (c *Config) GetRedisConnString() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
