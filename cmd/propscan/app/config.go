package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/propscan/pkg/constants"
	"github.com/agentstation/propscan/pkg/errors"
)

// envPrefix prefixes the environment variables read through viper,
// e.g. PROPSCAN_TOKEN.
const envPrefix = "PROPSCAN"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Property service configuration
	Token       string
	AuthHeader  string
	Timeout     time.Duration
	RateLimit   float64
	MetricsFile string

	// Logging configuration. LogLevel is the explicit --log-level value;
	// EnvLogLevel comes from LOG_LEVEL and ranks below -v and -q.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables
//  3. .env files
//  4. Config file (configFile, or ~/.propscan.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("rate-limit", constants.DefaultRateLimit)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".propscan")

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Token:       v.GetString("token"),
		AuthHeader:  v.GetString("auth-header"),
		Timeout:     v.GetDuration("timeout"),
		RateLimit:   v.GetFloat64("rate-limit"),
		MetricsFile: v.GetString("metrics-file"),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be used as given.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.NewConfigError("timeout", "must not be negative", nil)
	}
	if c.RateLimit < 0 {
		return errors.NewConfigError("rate-limit", "must not be negative", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Only flags the user set override the loaded values, so flag defaults
// never mask the environment or the config file.
func (c *Config) UpdateFromFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "verbose":
			c.Verbose, err = flags.GetBool(f.Name)
		case "quiet":
			c.Quiet, err = flags.GetBool(f.Name)
		case "no-color":
			c.NoColor, err = flags.GetBool(f.Name)
		case "format", "output":
			c.Format, err = flags.GetString(f.Name)
		case "log-level":
			c.LogLevel, err = flags.GetString(f.Name)
		case "token":
			c.Token, err = flags.GetString(f.Name)
		case "auth-header":
			c.AuthHeader, err = flags.GetString(f.Name)
		case "timeout":
			c.Timeout, err = flags.GetDuration(f.Name)
		case "rate-limit":
			c.RateLimit, err = flags.GetFloat64(f.Name)
		case "metrics-file":
			c.MetricsFile, err = flags.GetString(f.Name)
		}
	})
	if err != nil {
		return errors.NewConfigError("flags", err.Error(), err)
	}
	return c.Validate()
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
