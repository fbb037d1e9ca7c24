package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all bot configuration. Secrets never live here: the file
// names the environment variables to read them from.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Swap     SwapConfig     `mapstructure:"swap"`
	Market   MarketConfig   `mapstructure:"market"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Status   StatusConfig   `mapstructure:"status"`
}

type TelegramConfig struct {
	TokenEnv string `mapstructure:"token_env"`
}

type RPCConfig struct {
	URL         string `mapstructure:"url"`
	FallbackURL string `mapstructure:"fallback_url"`
	WSURL       string `mapstructure:"ws_url"`
	APIKeyEnv   string `mapstructure:"api_key_env"`
}

type SwapConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	SlippageBps    int    `mapstructure:"slippage_bps"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type MarketConfig struct {
	BirdeyeURL       string `mapstructure:"birdeye_url"`
	BirdeyeAPIKeyEnv string `mapstructure:"birdeye_api_key_env"`
	PumpFunURL       string `mapstructure:"pumpfun_url"`
	PumpCoinsURL     string `mapstructure:"pumpcoins_url"`
	SolscanURL       string `mapstructure:"solscan_url"`
	CoinGeckoURL     string `mapstructure:"coingecko_url"`
	TokenListURL     string `mapstructure:"token_list_url"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
}

type StorageConfig struct {
	UsersPath  string `mapstructure:"users_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type MonitorConfig struct {
	HoneyIntervalSeconds  int `mapstructure:"honey_interval_seconds"`
	CopyIntervalSeconds   int `mapstructure:"copy_interval_seconds"`
	ListTTLSeconds        int `mapstructure:"list_ttl_seconds"`
	HealthIntervalSeconds int `mapstructure:"health_interval_seconds"`
}

type StatusConfig struct {
	ListenHost string `mapstructure:"listen_host"`
	ListenPort int    `mapstructure:"listen_port"`
}

// Manager handles config loading and hot-reload.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	viper    *viper.Viper
	onChange func(*Config)
}

// NewManager loads the config file and watches it for changes.
func NewManager(configPath string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("telegram.token_env", "TELEGRAM_BOT_TOKEN")
	v.SetDefault("rpc.url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("rpc.fallback_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("rpc.ws_url", "wss://api.mainnet-beta.solana.com")
	v.SetDefault("rpc.api_key_env", "SOLANA_RPC_API_KEY")
	v.SetDefault("swap.base_url", "https://api.orca.so/v2/solana")
	v.SetDefault("swap.slippage_bps", 300)
	v.SetDefault("swap.timeout_seconds", 10)
	v.SetDefault("market.birdeye_url", "https://public-api.birdeye.so")
	v.SetDefault("market.birdeye_api_key_env", "BIRDEYE_API_KEY")
	v.SetDefault("market.pumpfun_url", "https://api.pump.fun")
	v.SetDefault("market.pumpcoins_url", "https://pump.fun")
	v.SetDefault("market.solscan_url", "https://public-api.solscan.io")
	v.SetDefault("market.coingecko_url", "https://api.coingecko.com")
	v.SetDefault("market.token_list_url", "https://raw.githubusercontent.com/solana-labs/token-list/main/src/tokens/solana.tokenlist.json")
	v.SetDefault("market.timeout_seconds", 10)
	v.SetDefault("storage.users_path", "./data/users.json")
	v.SetDefault("storage.sqlite_path", "./data/journal.db")
	v.SetDefault("monitor.honey_interval_seconds", 5)
	v.SetDefault("monitor.copy_interval_seconds", 10)
	v.SetDefault("monitor.list_ttl_seconds", 60)
	v.SetDefault("monitor.health_interval_seconds", 10)
	v.SetDefault("status.listen_host", "127.0.0.1")
	v.SetDefault("status.listen_port", 8080)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	m := &Manager{
		config: &cfg,
		viper:  v,
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Msg("config file changed, reloading")
		m.reload()
	})

	return m, nil
}

// Get returns the current config (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetOnChange registers a callback for config changes.
func (m *Manager) SetOnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *Manager) reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config on reload")
		return
	}

	m.config = &cfg
	if m.onChange != nil {
		m.onChange(&cfg)
	}
}

// BotToken loads the Telegram token from the configured env var.
func (m *Manager) BotToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return os.Getenv(m.config.Telegram.TokenEnv)
}

// BirdeyeAPIKey loads the Birdeye key from the configured env var.
func (m *Manager) BirdeyeAPIKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return os.Getenv(m.config.Market.BirdeyeAPIKeyEnv)
}

// RPCURL returns the primary RPC URL with the API key injected.
func (m *Manager) RPCURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return withAPIKey(m.config.RPC.URL, os.Getenv(m.config.RPC.APIKeyEnv))
}

// FallbackRPCURL returns the fallback RPC URL with the API key injected.
func (m *Manager) FallbackRPCURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return withAPIKey(m.config.RPC.FallbackURL, os.Getenv(m.config.RPC.APIKeyEnv))
}

// WSURL returns the websocket RPC URL with the API key injected.
func (m *Manager) WSURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return withAPIKey(m.config.RPC.WSURL, os.Getenv(m.config.RPC.APIKeyEnv))
}

func withAPIKey(url, key string) string {
	if key == "" {
		return url
	}
	param := "api_key"
	if strings.Contains(url, "helius") {
		param = "api-key"
	}
	if strings.Contains(url, "?") {
		return url + "&" + param + "=" + key
	}
	return url + "?" + param + "=" + key
}

// HoneyInterval returns the staged-exit poll interval.
func (m *Manager) HoneyInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Monitor.HoneyIntervalSeconds) * time.Second
}

// CopyInterval returns the copy-trading poll interval.
func (m *Manager) CopyInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Monitor.CopyIntervalSeconds) * time.Second
}

// ListTTL returns the token-list cache lifetime.
func (m *Manager) ListTTL() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Monitor.ListTTLSeconds) * time.Second
}

// HealthInterval returns the health-probe interval.
func (m *Manager) HealthInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Monitor.HealthIntervalSeconds) * time.Second
}

// SwapTimeout returns the swap HTTP timeout.
func (m *Manager) SwapTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Swap.TimeoutSeconds) * time.Second
}

// MarketTimeout returns the market-data HTTP timeout.
func (m *Manager) MarketTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Market.TimeoutSeconds) * time.Second
}
