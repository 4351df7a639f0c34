package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"GaugeKeeper/internal/logging"
)

// Lock seeds the in-memory escrow when no remote oracle is configured. End is
// an absolute unix time.
type Lock struct {
	Account string `yaml:"account"`
	Amount  string `yaml:"amount"`
	End     uint64 `yaml:"end"`
}

// Config holds all application configuration.
type Config struct {
	Gauge struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"gauge"`
	Escrow struct {
		BaseURL       string `yaml:"base_url"`
		APIKey        string `yaml:"api_key"`
		DelegationURL string `yaml:"delegation_url"`
		Locks         []Lock `yaml:"locks"`
	} `yaml:"escrow"`
	Keeper struct {
		Address        string `yaml:"address"`
		SweepCron      string `yaml:"sweep_cron"`
		SnapshotCron   string `yaml:"snapshot_cron"`
		CheckpointCron string `yaml:"checkpoint_cron"`
	} `yaml:"keeper"`
	API struct {
		Listen string `yaml:"listen"`
	} `yaml:"api"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	// Environment variable overrides
	override := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	override("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	override("ESCROW_BASE_URL", &cfg.Escrow.BaseURL)
	override("ESCROW_API_KEY", &cfg.Escrow.APIKey)
	override("DELEGATION_URL", &cfg.Escrow.DelegationURL)
	override("KEEPER_ADDRESS", &cfg.Keeper.Address)
	override("CRON_SWEEP", &cfg.Keeper.SweepCron)
	override("API_LISTEN", &cfg.API.Listen)
	override("STATE_FILE", &cfg.Gauge.StateFile)
	override("SQLITE_PATH", &cfg.Database.SQLitePath)
	override("LOG_LEVEL", &cfg.Log.Level)
	override("LOG_FORMAT", &cfg.Log.Format)
	override("HTTPS_PROXY", &cfg.Proxy)

	// Defaults
	if cfg.Gauge.StateFile == "" {
		cfg.Gauge.StateFile = "data/gauge_state.json"
	}
	if cfg.Keeper.Address == "" {
		cfg.Keeper.Address = "keeper"
	}
	if cfg.Keeper.SweepCron == "" {
		cfg.Keeper.SweepCron = "0 */10 * * * *"
	}
	if cfg.Keeper.SnapshotCron == "" {
		cfg.Keeper.SnapshotCron = "0 0 * * * *"
	}
	if cfg.Keeper.CheckpointCron == "" {
		cfg.Keeper.CheckpointCron = "0 */5 * * * *"
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/gauge_keeper.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Escrow.BaseURL != "" && len(c.Escrow.Locks) > 0 {
		return errors.New("escrow.locks only apply to the in-memory escrow, unset escrow.base_url")
	}
	for i, l := range c.Escrow.Locks {
		if l.Account == "" {
			return errors.Errorf("escrow.locks[%d].account is required", i)
		}
		if l.Amount == "" {
			return errors.Errorf("escrow.locks[%d].amount is required", i)
		}
		if l.End == 0 {
			return errors.Errorf("escrow.locks[%d].end is required", i)
		}
	}
	if _, err := logging.ToLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if f := strings.ToLower(c.Log.Format); f != "console" && f != "json" {
		return errors.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
