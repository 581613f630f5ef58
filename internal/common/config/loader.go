// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like PROVIDERS_GENERATIVE_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Merge environment-specific overrides (config.<env>.yaml) if present.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from likely locations so the binary and tests can
// both pick it up regardless of working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ai-service"
	}
	if cfg.App.MetricsPort == 0 {
		cfg.App.MetricsPort = 9091
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Providers.Generative.Timeout == 0 {
		cfg.Providers.Generative.Timeout = 30000
	}
	if cfg.Providers.Generative.MaxRetries == 0 {
		cfg.Providers.Generative.MaxRetries = 2
	}
	if cfg.Providers.Generative.TextModel == "" {
		cfg.Providers.Generative.TextModel = "gemini-2.0-flash"
	}
	if cfg.Providers.Generative.ImageModel == "" {
		cfg.Providers.Generative.ImageModel = "gemini-2.0-flash-exp"
	}

	// Research calls routinely take tens of seconds; the provider contract
	// uses a 45s ceiling.
	if cfg.Providers.Research.Timeout == 0 {
		cfg.Providers.Research.Timeout = 45000
	}
	if cfg.Providers.Research.Model == "" {
		cfg.Providers.Research.Model = "sonar"
	}

	if cfg.Providers.StockPhoto.PerPage == 0 {
		cfg.Providers.StockPhoto.PerPage = 5
	}
	if cfg.Providers.StockPhoto.Timeout == 0 {
		cfg.Providers.StockPhoto.Timeout = 15000
	}

	if cfg.Providers.Hosting.Timeout == 0 {
		cfg.Providers.Hosting.Timeout = 30000
	}
	if cfg.Providers.Hosting.Folder == "" {
		cfg.Providers.Hosting.Folder = "ai_generated_products"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Providers.Generative.BaseURL == "" {
		return fmt.Errorf("providers.generative.base_url is required")
	}
	if cfg.Providers.Research.BaseURL == "" {
		return fmt.Errorf("providers.research.base_url is required")
	}
	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when SNS alerts are enabled")
	}
	return nil
}
