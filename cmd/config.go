package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/exoscope/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set exoscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		if cfg.BaseURL != "" {
			fmt.Fprintf(out, "base_url: %s\n", cfg.BaseURL)
		}
		if cfg.BasePath != "" {
			fmt.Fprintf(out, "base_path: %s\n", cfg.BasePath)
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "page_size: %d\n", cfg.PageSize)
		fmt.Fprintf(out, "scatter_cap: %d\n", cfg.ScatterCap)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "rate_limit_rps: %.3f\n", cfg.RateLimitRPS)
		fmt.Fprintf(out, "rate_limit_burst: %d\n", cfg.RateLimitBurst)
		fmt.Fprintf(out, "cache_ttl_sec: %d\n", cfg.CacheTTLSec)
		fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if _, err := globalConfig(); err != nil {
			return err
		}
		switch key {
		case "base_url":
			cfg.BaseURL = val
		case "base_path":
			cfg.BasePath = val
		case "data_path":
			cfg.DataPath = val
		case "page_size":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.PageSize = i
		case "scatter_cap":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.ScatterCap = i
		case "http_timeout_sec":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.HTTPTimeoutSec = i
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "log_format":
			switch val {
			case "text", "json":
				cfg.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "listen_addr":
			cfg.ListenAddr = val
		case "rate_limit_rps":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for rate_limit_rps: %v", val)
			}
			cfg.RateLimitRPS = f
		case "rate_limit_burst":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RateLimitBurst = i
		case "cache_ttl_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for cache_ttl_sec: %v", val)
			}
			cfg.CacheTTLSec = i
		case "data_dir":
			cfg.DataDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func positiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	return i, nil
}
