package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds settings read from the optional config file. Every field has
// a zero value that means "use the built-in default", so a missing file is
// never an error.
type Config struct {
	// RankSep is the vertical spacing between layout ranks in pixels.
	RankSep float64 `toml:"rank_sep"`
	// NodeSep is the horizontal spacing between sibling nodes in pixels.
	NodeSep float64 `toml:"node_sep"`
	// CacheDir overrides the default cache directory.
	CacheDir string `toml:"cache_dir"`
	// RedisAddr enables the Redis cache backend when set (host:port).
	RedisAddr string `toml:"redis_addr"`
	// Listen is the serve command's bind address.
	Listen string `toml:"listen"`
}

// DefaultListen is the serve command's bind address when neither the config
// file nor the --listen flag sets one.
const DefaultListen = "127.0.0.1:8422"

// defaultConfigPath returns the XDG config file location
// (~/.config/agenttopo/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// LoadConfig reads a TOML config file. A missing file returns the zero
// config without error; a malformed file returns the error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefaultConfig loads the config from the default path, logging and
// ignoring parse failures so a broken config never blocks the CLI.
func LoadDefaultConfig(logger *log.Logger) Config {
	path := defaultConfigPath()
	if path == "" {
		return Config{}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		logger.Warn("ignoring unreadable config file", "path", path, "err", err)
		return Config{}
	}
	return cfg
}
