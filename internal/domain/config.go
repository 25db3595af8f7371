package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Download  DownloadConfig  `mapstructure:"download" yaml:"download"`
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
	Formats   FormatsConfig   `mapstructure:"formats" yaml:"formats"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host      string  `mapstructure:"host" yaml:"host"`
	Port      int     `mapstructure:"port" yaml:"port"`
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second per client, 0 disables
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// DownloadConfig contains output directory configuration
type DownloadConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	LogsDir   string `mapstructure:"logs_dir" yaml:"logs_dir"`
}

// ExtractorConfig contains settings for the yt-dlp engine
type ExtractorConfig struct {
	Binary       string            `mapstructure:"binary" yaml:"binary"`
	ProbeTimeout time.Duration     `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	FetchTimeout time.Duration     `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
	AudioQuality string            `mapstructure:"audio_quality" yaml:"audio_quality"`
	CookieFiles  map[string]string `mapstructure:"cookie_files" yaml:"cookie_files"` // platform -> cookie file
}

// FormatsConfig contains the format classification policy
type FormatsConfig struct {
	SizeLimits []SizeLimit `mapstructure:"size_limits" yaml:"size_limits"`
}

// HistoryConfig selects the download history store
type HistoryConfig struct {
	Driver       string `mapstructure:"driver" yaml:"driver"` // memory, sqlite
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	ListLimit    int    `mapstructure:"list_limit" yaml:"list_limit"`
	// MaxPerUser caps the memory store; the oldest finished records go first
	MaxPerUser int `mapstructure:"max_per_user" yaml:"max_per_user"`
}

// AuthConfig contains bearer tokens accepted by the static verifier.
// When empty, any non-empty bearer token is accepted. Admins are user ids
// that may read every user's event logs.
type AuthConfig struct {
	Tokens []TokenEntry `mapstructure:"tokens" yaml:"tokens"`
	Admins []string     `mapstructure:"admins" yaml:"admins"`
}

// TokenEntry maps a bearer token to a user
type TokenEntry struct {
	Token  string `mapstructure:"token" yaml:"token"`
	UserID string `mapstructure:"user_id" yaml:"user_id"`
	Name   string `mapstructure:"name" yaml:"name"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"`      // json, console
	OutputPath string `mapstructure:"output_path" yaml:"output_path"` // stdout, stderr, or file path
}

// History drivers
const (
	HistoryDriverMemory = "memory"
	HistoryDriverSQLite = "sqlite"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      5001,
			RateLimit: 0,
			RateBurst: 5,
		},
		Download: DownloadConfig{
			OutputDir: "downloads",
			LogsDir:   "downloads/logs",
		},
		Extractor: ExtractorConfig{
			Binary:       "yt-dlp",
			ProbeTimeout: 60 * time.Second,
			FetchTimeout: 30 * time.Minute,
			AudioQuality: "192",
			CookieFiles: map[string]string{
				string(PlatformYouTube):   "youtube_cookies.txt",
				string(PlatformInstagram): "instagram_cookies.txt",
			},
		},
		Formats: FormatsConfig{
			SizeLimits: DefaultSizePolicy(),
		},
		History: HistoryConfig{
			Driver:       HistoryDriverMemory,
			DatabasePath: "$HOME/.mediagrab/history.db",
			ListLimit:    50,
			MaxPerUser:   500,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
