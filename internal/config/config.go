package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects and configures the durable key-value store that
// holds the serialized plan and weight-log snapshots.
type StorageConfig struct {
	// Driver is one of "sqlite", "redis", "mongo" or "s3".
	Driver string       `mapstructure:"driver"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	S3     S3Config     `mapstructure:"s3"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// GeminiConfig configures the generative service used for AI plan generation.
// An empty APIKey makes every generation attempt fail before any network call.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling, e.g. storage.driver -> STORAGE_DRIVER,
	// gemini.api_key -> GEMINI_API_KEY
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite.path", "gymtracker.db")
	viper.SetDefault("storage.redis.addr", "localhost:6379")
	viper.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("storage.mongo.database", "gymtracker")
	viper.SetDefault("storage.s3.use_ssl", true)
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
