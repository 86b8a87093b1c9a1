package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis    RedisConfig
	Postgres PostgresConfig
	Spotify  SpotifyConfig
	YouTube  YouTubeConfig
	Worker   WorkerConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

type SpotifyConfig struct {
	BaseURL string
	Timeout time.Duration
}

type YouTubeConfig struct {
	BaseURL      string
	OAuthURL     string
	APIKey       string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	// SearchRate bounds search requests per second toward the destination.
	SearchRate float64
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	JobTimeout   time.Duration
	MetricsAddr  string
}

func Load() *Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return &Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			Database: getEnv("POSTGRES_DATABASE", "streamsync"),
			User:     getEnv("POSTGRES_USER", "streamsync"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Spotify: SpotifyConfig{
			BaseURL: getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"),
			Timeout: getEnvDuration("SPOTIFY_TIMEOUT", 30*time.Second),
		},
		YouTube: YouTubeConfig{
			BaseURL:      getEnv("YOUTUBE_API_URL", "https://www.googleapis.com/youtube/v3"),
			OAuthURL:     getEnv("YOUTUBE_OAUTH_URL", "https://oauth2.googleapis.com"),
			APIKey:       getEnv("YOUTUBE_API_KEY", ""),
			ClientID:     getEnv("YOUTUBE_CLIENT_ID", ""),
			ClientSecret: getEnv("YOUTUBE_CLIENT_SECRET", ""),
			Timeout:      getEnvDuration("YOUTUBE_TIMEOUT", 30*time.Second),
			SearchRate:   getEnvFloat("YOUTUBE_SEARCH_RATE", 5),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvInt("WORKER_CONCURRENCY", 5),
			PollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 1*time.Second),
			JobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", 5*time.Minute),
			MetricsAddr:  getEnv("WORKER_METRICS_ADDR", ":9091"),
		},
	}
}

func (c *PostgresConfig) ConnectionString() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.Database + "?sslmode=" + c.SSLMode
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
