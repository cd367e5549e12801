package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// GenesisAccount seeds a balance at first start. Amounts are decimal strings
// so they survive toml round trips at full integer precision.
type GenesisAccount struct {
	Address string `toml:"Address"`
	VLT     string `toml:"VLT"`
	USDT    string `toml:"USDT"`
	Native  string `toml:"Native"`
}

// Genesis holds the initial role grants and balances.
type Genesis struct {
	Admin      string           `toml:"Admin"`
	Depositors []string         `toml:"Depositors"`
	Creators   []string         `toml:"Creators"`
	Accounts   []GenesisAccount `toml:"Accounts"`
}

// Config is the daemon configuration.
type Config struct {
	RPCAddress     string  `toml:"RPCAddress"`
	MetricsAddress string  `toml:"MetricsAddress"`
	DataDir        string  `toml:"DataDir"`
	Env            string  `toml:"Env"`
	RPCAuthToken   string  `toml:"RPCAuthToken"`
	Genesis        Genesis `toml:"Genesis"`
}

// Load reads the configuration from path, creating a commented default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg, path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config, path string) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = "127.0.0.1:9464"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "local"
	}
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	if strings.TrimSpace(c.Genesis.Admin) == "" {
		return fmt.Errorf("config: Genesis.Admin must not be empty")
	}
	for i, account := range c.Genesis.Accounts {
		if strings.TrimSpace(account.Address) == "" {
			return fmt.Errorf("config: Genesis.Accounts[%d].Address must not be empty", i)
		}
	}
	return nil
}

const defaultConfig = `# yieldvault daemon configuration.
RPCAddress = "127.0.0.1:8645"
MetricsAddress = "127.0.0.1:9464"
DataDir = "./data"
Env = "local"
# Bearer token required on mutating RPC methods. Leave empty to disable.
RPCAuthToken = ""

[Genesis]
# Administrator address (0x-prefixed, 20 bytes). Required.
Admin = "0x0000000000000000000000000000000000000001"
Depositors = []
Creators = []

# [[Genesis.Accounts]]
# Address = "0x..."
# VLT = "1000000"
# USDT = "0"
# Native = "0"
`

func createDefault(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if _, err := toml.Decode(defaultConfig, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg, path)
	return cfg, nil
}
