package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

const (
	// DefaultConfigFile is read from the working directory unless SUMMYMAIL_CONFIG is set
	DefaultConfigFile = "config.ini"

	// PlaceholderAPIKey is the value shipped in config.ini.example and counts as unset
	PlaceholderAPIKey = "your_openai_api_key_here"
)

// ErrMissingAPIKey is returned by Validate when no usable OpenAI key was found
var ErrMissingAPIKey = errors.New("API key not found. Please create a config.ini file with your OpenAI API key. See config.ini.example for the format")

// Config holds all configuration for the application
type Config struct {
	Port            string
	Version         string
	LogLevel        string
	ConfigFile      string // INI file holding the [OpenAI] section
	OpenAIKey       string
	OpenAIKeySource string // "file", "env" or "" when unresolved
	OpenAIBaseURL   string // Override for the provider endpoint (empty = provider default)
	OpenAITimeout   int    // OpenAI API timeout in seconds, 0 leaves it to the transport
	SendGridAPIKey  string // SendGrid API key for mailing digests
	DigestFromEmail string // Sender address used for digests
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		Version:         getEnv("VERSION", "1.0.0"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ConfigFile:      getEnv("SUMMYMAIL_CONFIG", DefaultConfigFile),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		OpenAITimeout:   getEnvInt("OPENAI_TIMEOUT", 0),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		DigestFromEmail: getEnv("DIGEST_FROM_EMAIL", "noreply@summymail.local"),
	}

	config.OpenAIKey, config.OpenAIKeySource = ResolveAPIKey(config.ConfigFile)

	return config
}

// ResolveAPIKey looks for the key in the [OpenAI] section of path first and
// falls back to OPENAI_API_KEY. The placeholder value is ignored.
func ResolveAPIKey(path string) (string, string) {
	if key := readAPIKeyFile(path); key != "" {
		return key, "file"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, "env"
	}
	return "", ""
}

// readAPIKeyFile returns the api_key from the [OpenAI] section, or "" when the
// file, section or key is missing or holds the placeholder.
func readAPIKeyFile(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		log.Printf("Could not parse %s: %v", path, err)
		return ""
	}

	section, err := file.GetSection("OpenAI")
	if err != nil || !section.HasKey("api_key") {
		return ""
	}

	key := section.Key("api_key").String()
	if key == PlaceholderAPIKey {
		return ""
	}
	return key
}

// Validate reports configuration that makes the application unusable
func (c *Config) Validate() error {
	if c.OpenAIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "summymail").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
