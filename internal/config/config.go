package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/exoscope/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Catalog source. DataPath is resolved against BaseURL+BasePath when it is
	// not an absolute URL or an existing local file.
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
	DataPath string `mapstructure:"data_path" yaml:"data_path"`

	PageSize   int `mapstructure:"page_size" yaml:"page_size"`
	ScatterCap int `mapstructure:"scatter_cap" yaml:"scatter_cap"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP API
	ListenAddr     string  `mapstructure:"listen_addr" yaml:"listen_addr"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	CacheTTLSec    int     `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	// DataDir holds the notes file.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".exoscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.exoscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EXOSCOPE")
	v.AutomaticEnv()

	v.SetDefault("base_url", "")
	v.SetDefault("base_path", "")
	v.SetDefault("data_path", "/PS_2025.09.12_22.39.25.csv")
	v.SetDefault("page_size", 100)
	v.SetDefault("scatter_cap", 4000)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("rate_limit_rps", 20.0)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("cache_ttl_sec", 300)
	v.SetDefault("data_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DataDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.DataDir = dir
	}
	c.DataDir = utils.ExpandHome(c.DataDir)
	return &c, nil
}
