// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/hookswap/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
)

// EnvPrefix – префикс переменных окружения (HOOKSWAP_RPC_URL, HOOKSWAP_LOG_DEBUG, ...).
const EnvPrefix = "HOOKSWAP"

type ProgramsConfig struct {
	AMM         string `mapstructure:"amm"`
	TokenSetup  string `mapstructure:"token_setup"`
	CounterHook string `mapstructure:"counter_hook"`
}

type WalletConfig struct {
	Path      string `mapstructure:"path"`
	SecretKey string `mapstructure:"secret_key"`
}

type LogConfig struct {
	Debug      bool   `mapstructure:"debug"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type Config struct {
	RPCURL     string         `mapstructure:"rpc_url"`
	Network    string         `mapstructure:"network"`
	Commitment string         `mapstructure:"commitment"`
	Programs   ProgramsConfig `mapstructure:"programs"`

	ConfirmationTimeoutMs int `mapstructure:"confirmation_timeout_ms"`
	PollIntervalMs        int `mapstructure:"poll_interval_ms"`
	SendRetries           int `mapstructure:"send_retries"`
	RetryDelayMs          int `mapstructure:"retry_delay_ms"`

	MinBalanceLamports uint64 `mapstructure:"min_balance_lamports"`
	DefaultDecimals    uint8  `mapstructure:"default_decimals"`
	DefaultSolFee      uint64 `mapstructure:"default_sol_fee"`

	DevWallet   WalletConfig `mapstructure:"dev_wallet"`
	SessionPath string       `mapstructure:"session_path"`
	Log         LogConfig    `mapstructure:"log"`
}

const (
	DefaultRPCURL                = "https://api.devnet.solana.com"
	DefaultNetwork               = "devnet"
	DefaultCommitment            = "confirmed"
	DefaultConfirmationTimeoutMs = 60_000
	DefaultPollIntervalMs        = 1_000
	DefaultSendRetries           = 3
	DefaultRetryDelayMs          = 500
	DefaultSolFee                = 10_000_000
)

// Defaults регистрирует значения по умолчанию для всех ключей.
// Ключ без значения по умолчанию viper не сопоставит с переменной окружения.
func Defaults(v *viper.Viper) {
	home := defaultHome()
	defaults := map[string]interface{}{
		"rpc_url":                 DefaultRPCURL,
		"network":                 DefaultNetwork,
		"commitment":              DefaultCommitment,
		"programs.amm":            hookamm.AMMProgramID.String(),
		"programs.token_setup":    hookamm.TokenSetupProgramID.String(),
		"programs.counter_hook":   hookamm.CounterHookProgramID.String(),
		"confirmation_timeout_ms": DefaultConfirmationTimeoutMs,
		"poll_interval_ms":        DefaultPollIntervalMs,
		"send_retries":            DefaultSendRetries,
		"retry_delay_ms":          DefaultRetryDelayMs,
		"min_balance_lamports":    hookamm.MinBalanceLamports,
		"default_decimals":        hookamm.DefaultDecimals,
		"default_sol_fee":         DefaultSolFee,
		"dev_wallet.path":         filepath.Join(home, "dev-wallet.json"),
		"dev_wallet.secret_key":   "",
		"session_path":            filepath.Join(home, "session.yaml"),
		"log.debug":               false,
		"log.file":                "",
		"log.max_size_mb":         10,
		"log.max_backups":         3,
		"log.max_age_days":        7,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func defaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		return ".hookswap"
	}
	return filepath.Join(dir, ".hookswap")
}

// New создаёт viper с дефолтами и окружением. Флаги CLI привязываются к нему до LoadConfig.
func New() *viper.Viper {
	v := viper.New()
	Defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig читает .env, затем файл конфигурации. Пустой path – ищется ./config.yaml,
// отсутствие файла в этом случае не ошибка.
func LoadConfig(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith читает конфигурацию в подготовленный viper.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Network = strings.ToLower(strings.TrimSpace(cfg.Network))
	cfg.Commitment = strings.ToLower(strings.TrimSpace(cfg.Commitment))

	return &cfg, validateConfig(&cfg)
}

// loadDotEnv подгружает .env из текущей директории, уже заданные переменные не перезаписываются.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if _, err := cfg.CommitmentType(); err != nil {
		return err
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if _, err := cfg.HookConfig(); err != nil {
		return err
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.ConfirmationTimeoutMs <= 0 {
		return errors.New("invalid confirmation_timeout_ms")
	}
	if cfg.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.PollIntervalMs > cfg.ConfirmationTimeoutMs {
		return errors.New("poll_interval_ms exceeds confirmation_timeout_ms")
	}
	if cfg.SendRetries < 0 {
		return errors.New("invalid send_retries")
	}
	if cfg.RetryDelayMs < 0 {
		return errors.New("invalid retry_delay_ms")
	}
	if cfg.DefaultSolFee == 0 || cfg.DefaultSolFee > hookamm.MaxSolFee {
		return fmt.Errorf("default_sol_fee must be in (0, %d]", hookamm.MaxSolFee)
	}
	if cfg.DefaultDecimals > 18 {
		return errors.New("invalid default_decimals")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// CommitmentType переводит строку конфигурации в уровень RPC.
func (c *Config) CommitmentType() (rpc.CommitmentType, error) {
	switch c.Commitment {
	case "", "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unknown commitment %q", c.Commitment)
	}
}

// TxConfig – параметры отправки и ожидания подтверждения.
func (c *Config) TxConfig() transaction.Config {
	tc := transaction.DefaultConfig()
	tc.MaxRetries = c.SendRetries
	tc.RetryDelay = time.Duration(c.RetryDelayMs) * time.Millisecond
	tc.ConfirmationTime = time.Duration(c.ConfirmationTimeoutMs) * time.Millisecond
	tc.PollInterval = time.Duration(c.PollIntervalMs) * time.Millisecond
	if commitment, err := c.CommitmentType(); err == nil {
		tc.Commitment = commitment
		switch commitment {
		case rpc.CommitmentProcessed:
			tc.Level = rpc.ConfirmationStatusProcessed
		case rpc.CommitmentFinalized:
			tc.Level = rpc.ConfirmationStatusFinalized
		default:
			tc.Level = rpc.ConfirmationStatusConfirmed
		}
	}
	return tc
}

// HookConfig – адреса программ и пороги клиента hook AMM.
func (c *Config) HookConfig() (*hookamm.Config, error) {
	hc := hookamm.GetDefaultConfig()
	if err := hc.OverridePrograms(c.Programs.AMM, c.Programs.TokenSetup, c.Programs.CounterHook); err != nil {
		return nil, err
	}
	hc.MinBalance = c.MinBalanceLamports
	if c.DefaultDecimals > 0 {
		hc.Decimals = c.DefaultDecimals
	}
	return hc, nil
}
