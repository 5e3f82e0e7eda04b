package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ComputeStats/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Providers struct {
		FAH struct {
			BaseURL  string `yaml:"base_url"`
			Username string `yaml:"username"`
		} `yaml:"fah"`
		WCG struct {
			BaseURL          string `yaml:"base_url"`
			MemberName       string `yaml:"member_name"`
			VerificationCode string `yaml:"verification_code"`
		} `yaml:"wcg"`
		BOINC []BOINCProject `yaml:"boinc"`
	} `yaml:"providers"`
	Fetch struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`
	History struct {
		File          string `yaml:"file"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"history"`
	Milestones map[string][]int64 `yaml:"milestones"`
	Readme     struct {
		Path        string `yaml:"path"`
		StartMarker string `yaml:"start_marker"`
		EndMarker   string `yaml:"end_marker"`
	} `yaml:"readme"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// BOINCProject identifies one account on a BOINC-family project.
type BOINCProject struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	UserID string `yaml:"user_id"`
}

// DefaultMilestones applies to total_credits when no milestones are configured.
var DefaultMilestones = []int64{
	1_000_000, 5_000_000, 10_000_000, 25_000_000, 50_000_000,
	100_000_000, 250_000_000, 500_000_000, 1_000_000_000,
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and finally defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FAH_USERNAME"); v != "" {
		cfg.Providers.FAH.Username = v
	}
	if v := os.Getenv("WCG_MEMBER_NAME"); v != "" {
		cfg.Providers.WCG.MemberName = v
	}
	if v := os.Getenv("WCG_VERIFICATION_CODE"); v != "" {
		cfg.Providers.WCG.VerificationCode = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HISTORY_FILE"); v != "" {
		cfg.History.File = v
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.RetentionDays = n
		}
	}
	if v := os.Getenv("README_PATH"); v != "" {
		cfg.Readme.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.History.File == "" {
		cfg.History.File = "data/stats_history.json"
	}
	if cfg.History.RetentionDays <= 0 {
		cfg.History.RetentionDays = 365
	}
	if len(cfg.Milestones) == 0 {
		cfg.Milestones = map[string][]int64{"total_credits": DefaultMilestones}
	}
	for name, thresholds := range cfg.Milestones {
		sorted := append([]int64(nil), thresholds...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		cfg.Milestones[name] = sorted
	}
	if cfg.Readme.Path == "" {
		cfg.Readme.Path = "README.md"
	}
	if cfg.Readme.StartMarker == "" {
		cfg.Readme.StartMarker = "<!-- COMPUTE_STATS_START -->"
	}
	if cfg.Readme.EndMarker == "" {
		cfg.Readme.EndMarker = "<!-- COMPUTE_STATS_END -->"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 0 * * *"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	for i := range cfg.Providers.BOINC {
		p := &cfg.Providers.BOINC[i]
		if p.Key == "" {
			p.Key = slug(p.Name)
		}
		if p.Name == "" {
			p.Name = p.Key
		}
	}
}

// slug lowercases name and keeps only letters and digits.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FAHConfigured reports whether a Folding@home identity is set.
func (c *Config) FAHConfigured() bool { return c.Providers.FAH.Username != "" }

// WCGConfigured reports whether both WCG credentials are set.
func (c *Config) WCGConfigured() bool {
	return c.Providers.WCG.MemberName != "" && c.Providers.WCG.VerificationCode != ""
}

// Configured reports whether p has everything needed to fetch.
func (p BOINCProject) Configured() bool {
	return p.Key != "" && p.URL != "" && p.UserID != ""
}

// ErrNoProviders means nothing at all could be fetched.
var ErrNoProviders = errors.New("no provider identity configured (set FAH_USERNAME, WCG_MEMBER_NAME/WCG_VERIFICATION_CODE or providers.boinc)")

// Validate checks that at least one provider is usable and the rest is sane.
// A single provider without an identity is not an error; it is skipped.
func (c *Config) Validate() error {
	usable := c.FAHConfigured() || c.WCGConfigured()
	seen := map[string]bool{"fah": true, "wcg": true}
	for _, p := range c.Providers.BOINC {
		if p.Key != "" && seen[p.Key] {
			return fmt.Errorf("providers.boinc: duplicate key %q", p.Key)
		}
		if name, clash := shadowsAggregate(p.Key); clash {
			return fmt.Errorf("providers.boinc: key %q would collide with metric %q", p.Key, name)
		}
		seen[p.Key] = true
		if p.Configured() {
			usable = true
		}
	}
	if !usable {
		return ErrNoProviders
	}
	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("history.retention_days must be positive")
	}
	for name, thresholds := range c.Milestones {
		for _, v := range thresholds {
			if v <= 0 {
				return fmt.Errorf("milestones.%s: thresholds must be positive", name)
			}
		}
	}
	if c.Readme.StartMarker == c.Readme.EndMarker {
		return fmt.Errorf("readme markers must differ")
	}
	return nil
}

// shadowsAggregate reports whether metrics prefixed with key could take the
// name of a snapshot-wide aggregate.
func shadowsAggregate(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, name := range []string{model.MetricTotalCredits, model.MetricProvidersReporting} {
		if strings.HasPrefix(name, key+"_") {
			return name, true
		}
	}
	return "", false
}

// TelegramEnabled reports whether the run digest should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
