package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// envAliases are environment variables accepted besides the MEDIAGRAB_ names
var envAliases = map[string][]string{
	"download.output_dir": {"DOWNLOAD_PATH"},
}

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.mediagrab")
		v.AddConfigPath("/etc/mediagrab")
	}

	v.SetEnvPrefix("MEDIAGRAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnvs registers every scalar key so AutomaticEnv overrides reach
// Unmarshal even when the config file does not mention the key
func bindEnvs(v *viper.Viper) error {
	keys := []string{
		"server.host", "server.port", "server.rate_limit", "server.rate_burst",
		"download.output_dir", "download.logs_dir",
		"extractor.binary", "extractor.probe_timeout", "extractor.fetch_timeout", "extractor.audio_quality",
		"history.driver", "history.database_path", "history.list_limit", "history.max_per_user",
		"logging.level", "logging.format", "logging.output_path",
	}
	for _, key := range keys {
		envs := []string{"MEDIAGRAB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		envs = append(envs, envAliases[key]...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.OutputDir = expandPath(config.Download.OutputDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	for platform, file := range config.Extractor.CookieFiles {
		config.Extractor.CookieFiles[platform] = expandPath(file)
	}

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}

	if config.Server.RateLimit > 0 && config.Server.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is enabled")
	}

	if config.Download.OutputDir == "" {
		return fmt.Errorf("download output directory not configured")
	}

	if config.Download.LogsDir == "" {
		config.Download.LogsDir = filepath.Join(config.Download.OutputDir, "logs")
	}

	if config.Extractor.Binary == "" {
		return fmt.Errorf("extractor binary not configured")
	}

	if config.Extractor.ProbeTimeout <= 0 || config.Extractor.FetchTimeout <= 0 {
		return fmt.Errorf("extractor timeouts must be positive")
	}

	if err := domain.SizePolicy(config.Formats.SizeLimits).Validate(); err != nil {
		return fmt.Errorf("formats.size_limits: %w", err)
	}

	switch config.History.Driver {
	case domain.HistoryDriverMemory:
	case domain.HistoryDriverSQLite:
		if config.History.DatabasePath == "" {
			return fmt.Errorf("history database path not configured")
		}
	default:
		return fmt.Errorf("unknown history driver: %q", config.History.Driver)
	}

	if config.History.ListLimit < 1 {
		config.History.ListLimit = 50
	}

	if config.History.MaxPerUser < 0 {
		return fmt.Errorf("history.max_per_user cannot be negative")
	}

	for i, entry := range config.Auth.Tokens {
		if entry.Token == "" {
			return fmt.Errorf("auth.tokens[%d]: token is empty", i)
		}
		if entry.UserID == "" && entry.Name == "" {
			return fmt.Errorf("auth.tokens[%d]: user_id or name is required", i)
		}
	}

	for i, id := range config.Auth.Admins {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("auth.admins[%d]: user id is empty", i)
		}
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("server", config.Server)
	v.Set("download", config.Download)
	v.Set("extractor", config.Extractor)
	v.Set("formats", config.Formats)
	v.Set("history", config.History)
	v.Set("auth", config.Auth)
	v.Set("logging", config.Logging)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
