package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config carries everything the bot needs for a run. The wallet key is only
// ever held here and in the wallet package; it must never reach the logs.
type Config struct {
	Sonic    SonicConfig    `mapstructure:"sonic"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Mint     MintConfig     `mapstructure:"mint"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// SonicConfig selects the network. Empty URL fields fall back to the
// per-network presets in the client packages.
type SonicConfig struct {
	Network string `mapstructure:"network"`
	APIURL  string `mapstructure:"api_url"`
	RPCURL  string `mapstructure:"rpc_url"`
}

type WalletConfig struct {
	// PrivateKey is the base58-encoded 64-byte ed25519 keypair.
	PrivateKey string `mapstructure:"private_key"`
}

type MintConfig struct {
	AttemptDelayMs   int  `mapstructure:"attempt_delay_ms"`
	ContinueOnError  bool `mapstructure:"continue_on_error"`
	AuthMaxAttempts  int  `mapstructure:"auth_max_attempts"`
	AuthRetryDelayMs int  `mapstructure:"auth_retry_delay_ms"`
}

type HTTPConfig struct {
	RequestTimeout  int   `mapstructure:"request_timeout"`
	MaxResponseSize int64 `mapstructure:"max_response_size"`
}

// TelegramConfig is optional; with an empty token the bot stays silent.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// AttemptDelay is the pause between consecutive mint attempts.
func (m MintConfig) AttemptDelay() time.Duration {
	return time.Duration(m.AttemptDelayMs) * time.Millisecond
}

// AuthRetryDelay is the initial backoff delay for authentication retries.
func (m MintConfig) AuthRetryDelay() time.Duration {
	return time.Duration(m.AuthRetryDelayMs) * time.Millisecond
}

func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.RequestTimeout) * time.Second
}

// Enabled reports whether Telegram notifications are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// ChatIDInt64 parses the chat ID. Only meaningful when Enabled.
func (t TelegramConfig) ChatIDInt64() (int64, error) {
	return strconv.ParseInt(t.ChatID, 10, 64)
}

// Load reads configuration in layers, later layers winning:
// 1. built-in defaults
// 2. config.yaml in the working directory
// 3. .env file
// 4. environment variables
// 5. command-line flags (when a parsed flag set is passed)
func Load(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // the file is optional

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.ReadInConfig() // also optional

	v.AutomaticEnv()
	setupEnvAliases(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// RegisterFlags declares the config-backed flags on the given set. Flag
// names match the viper keys so BindPFlags lines them up.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("sonic.network", "testnet", "Target network: testnet, devnet or mainnet (env: SONIC_NETWORK)")
	fs.String("sonic.api_url", "", "Odyssey API base URL override (env: SONIC_API_URL)")
	fs.String("sonic.rpc_url", "", "Sonic RPC URL override (env: SONIC_RPC_URL)")

	fs.Int("mint.attempt_delay_ms", 2000, "Delay between mint attempts in ms (env: MINT_ATTEMPT_DELAY_MS)")
	fs.Bool("mint.continue_on_error", true, "Keep minting after a failed attempt (env: MINT_CONTINUE_ON_ERROR)")
	fs.Int("mint.auth_max_attempts", 3, "Max authentication attempts (env: MINT_AUTH_MAX_ATTEMPTS)")
	fs.Int("mint.auth_retry_delay_ms", 1000, "Initial auth retry delay in ms (env: MINT_AUTH_RETRY_DELAY_MS)")

	fs.Int("http.request_timeout", 30, "HTTP request timeout in seconds (env: HTTP_REQUEST_TIMEOUT)")
	fs.Int64("http.max_response_size", 10*1024*1024, "Max HTTP response size in bytes (env: HTTP_MAX_RESPONSE_SIZE)")

	fs.String("telegram.bot_token", "", "Telegram bot token for run notifications (env: TELEGRAM_BOT_TOKEN)")
	fs.String("telegram.chat_id", "", "Telegram chat ID for run notifications (env: TELEGRAM_CHAT_ID)")
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("sonic.network", "SONIC_NETWORK", "NETWORK")
	v.BindEnv("sonic.api_url", "SONIC_API_URL")
	v.BindEnv("sonic.rpc_url", "SONIC_RPC_URL")

	v.BindEnv("wallet.private_key", "WALLET_PRIVATE_KEY", "PRIVATE_KEY")

	v.BindEnv("mint.attempt_delay_ms", "MINT_ATTEMPT_DELAY_MS")
	v.BindEnv("mint.continue_on_error", "MINT_CONTINUE_ON_ERROR")
	v.BindEnv("mint.auth_max_attempts", "MINT_AUTH_MAX_ATTEMPTS")
	v.BindEnv("mint.auth_retry_delay_ms", "MINT_AUTH_RETRY_DELAY_MS")

	v.BindEnv("http.request_timeout", "HTTP_REQUEST_TIMEOUT")
	v.BindEnv("http.max_response_size", "HTTP_MAX_RESPONSE_SIZE")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sonic.network", "testnet")
	v.SetDefault("sonic.api_url", "")
	v.SetDefault("sonic.rpc_url", "")

	v.SetDefault("wallet.private_key", "")

	v.SetDefault("mint.attempt_delay_ms", 2000)
	v.SetDefault("mint.continue_on_error", true)
	v.SetDefault("mint.auth_max_attempts", 3)
	v.SetDefault("mint.auth_retry_delay_ms", 1000)

	v.SetDefault("http.request_timeout", 30)
	v.SetDefault("http.max_response_size", 10*1024*1024) // 10MB

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
}

func validateConfig(cfg *Config) error {
	switch cfg.Sonic.Network {
	case "testnet", "devnet", "mainnet":
	default:
		return fmt.Errorf("sonic.network must be testnet, devnet or mainnet, got %q", cfg.Sonic.Network)
	}

	if cfg.Wallet.PrivateKey == "" {
		return fmt.Errorf("wallet.private_key is required (env: WALLET_PRIVATE_KEY)")
	}

	if cfg.Mint.AttemptDelayMs < 0 {
		return fmt.Errorf("mint.attempt_delay_ms must not be negative, got %d", cfg.Mint.AttemptDelayMs)
	}
	if cfg.Mint.AuthMaxAttempts < 1 {
		return fmt.Errorf("mint.auth_max_attempts must be at least 1, got %d", cfg.Mint.AuthMaxAttempts)
	}
	if cfg.Mint.AuthRetryDelayMs < 0 {
		return fmt.Errorf("mint.auth_retry_delay_ms must not be negative, got %d", cfg.Mint.AuthRetryDelayMs)
	}

	if cfg.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be positive, got %d", cfg.HTTP.RequestTimeout)
	}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		if _, err := cfg.Telegram.ChatIDInt64(); err != nil {
			return fmt.Errorf("telegram.chat_id must be numeric, got %q", cfg.Telegram.ChatID)
		}
	}

	return nil
}
