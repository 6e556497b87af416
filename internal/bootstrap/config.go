package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file read before the environment.
const ConfigFileEnv = "AUDIOGEN_CONFIG"

// Config is resolved in three layers: built-in defaults, the YAML file named
// by AUDIOGEN_CONFIG, then environment variables (including .env).
type Config struct {
	ServerAddr string `yaml:"server_addr"`

	TTSBaseURL     string `yaml:"tts_base_url"`
	TTSProvider    string `yaml:"tts_provider"`
	WhisperBaseURL string `yaml:"whisper_base_url"`

	HealthCheckIntervalMs int `yaml:"health_check_interval_ms"`
	HTTPTimeoutMs         int `yaml:"http_timeout_ms"`
	SessionIdleTimeoutMs  int `yaml:"session_idle_timeout_ms"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	MediaTTLMs    int    `yaml:"media_ttl_ms"`

	LogLevel string `yaml:"log_level"`

	StaticDir string `yaml:"static_dir"`
	IndexHTML string `yaml:"index_html"`
}

func defaultConfig() *Config {
	return &Config{
		ServerAddr: ":8080",

		TTSBaseURL:     "https://tts.2068.online",
		TTSProvider:    "proxy",
		WhisperBaseURL: "https://whisper.2068.online",

		HealthCheckIntervalMs: 30000,
		HTTPTimeoutMs:         60000,
		SessionIdleTimeoutMs:  1800000,

		MediaTTLMs: 3600000,

		LogLevel: "info",

		StaticDir: "./static",
		IndexHTML: "./static/index.html",
	}
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)

	c.TTSBaseURL = getEnv("TTS_BASE_URL", c.TTSBaseURL)
	c.TTSProvider = getEnv("TTS_PROVIDER", c.TTSProvider)
	c.WhisperBaseURL = getEnv("WHISPER_BASE_URL", c.WhisperBaseURL)

	c.HealthCheckIntervalMs = getEnvInt("HEALTH_CHECK_INTERVAL_MS", c.HealthCheckIntervalMs)
	c.HTTPTimeoutMs = getEnvInt("HTTP_TIMEOUT_MS", c.HTTPTimeoutMs)
	c.SessionIdleTimeoutMs = getEnvInt("SESSION_IDLE_TIMEOUT_MS", c.SessionIdleTimeoutMs)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.MediaTTLMs = getEnvInt("MEDIA_TTL_MS", c.MediaTTLMs)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)
	c.IndexHTML = getEnv("INDEX_HTML", c.IndexHTML)
}

func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalMs) * time.Millisecond
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeoutMs) * time.Millisecond
}

func (c *Config) MediaTTL() time.Duration {
	return time.Duration(c.MediaTTLMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
