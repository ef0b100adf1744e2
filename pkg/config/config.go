package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"bridge-core/pkg/coinset"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Coinset CoinsetConfig `mapstructure:"coinset"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// DSN is the postgres connection string for gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

// URL is the postgres URL form used by migrate.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// CoinsetConfig 描述 coin-set 链一侧的网络参数和模板来源
type CoinsetConfig struct {
	ChainID          string `mapstructure:"chain_id"`
	MessageToll      uint64 `mapstructure:"message_toll"`
	PortalLauncherID string `mapstructure:"portal_launcher_id"`
	AggSigData       string `mapstructure:"agg_sig_data"`
	RpcUrl           string `mapstructure:"rpc_url"`

	TemplatesDir       string `mapstructure:"templates_dir"`
	MessageCoinModHash string `mapstructure:"message_coin_mod_hash"`
	BridgingPuzzleHash string `mapstructure:"bridging_puzzle_hash"`
	// NativeOnly 为 true 时不要求 cat_v2 / settlement_payments 的字节, CAT lock 会失败
	NativeOnly bool `mapstructure:"native_only"`
}

// Network validates the section and converts it to a coinset.Network.
func (c CoinsetConfig) Network() (coinset.Network, error) {
	if c.ChainID == "" {
		return coinset.Network{}, errors.New("coinset.chain_id is required")
	}
	if c.MessageToll == 0 {
		return coinset.Network{}, errors.New("coinset.message_toll must be positive")
	}
	launcher, err := ParseHash(c.PortalLauncherID)
	if err != nil {
		return coinset.Network{}, fmt.Errorf("coinset.portal_launcher_id: %w", err)
	}
	aggSigData, err := hexutil.Decode(ensure0x(c.AggSigData))
	if err != nil {
		return coinset.Network{}, fmt.Errorf("coinset.agg_sig_data: %w", err)
	}
	return coinset.Network{
		ChainID:          c.ChainID,
		MessageToll:      c.MessageToll,
		PortalLauncherID: launcher,
		AggSigData:       aggSigData,
		RPCURL:           c.RpcUrl,
	}, nil
}

// ParseHash decodes a 32-byte hex value, with or without 0x. The zero hash is rejected.
func ParseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(ensure0x(s))
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("want %d bytes, got %d", common.HashLength, len(b))
	}
	h := common.BytesToHash(b)
	if h == (common.Hash{}) {
		return common.Hash{}, errors.New("zero hash")
	}
	return h, nil
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

var Global Config

// Load reads config.yaml from path (or . and ./config when path is empty),
// applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量设置: COINSET_RPC_URL 覆盖 coinset.rpc_url
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Init loads the configuration into Global and exits on failure.
func Init(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = *cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "bridge_user")
	v.SetDefault("db.password", "bridge_password")
	v.SetDefault("db.name", "bridge_db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.mq_type", "redis")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("coinset.chain_id", "xch")
	v.SetDefault("coinset.message_toll", 1000)
	// mainnet genesis challenge
	v.SetDefault("coinset.agg_sig_data", "ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb")
	v.SetDefault("coinset.rpc_url", "https://api.coinset.org")
	v.SetDefault("coinset.portal_launcher_id", "")
	v.SetDefault("coinset.templates_dir", "")
	v.SetDefault("coinset.message_coin_mod_hash", "")
	v.SetDefault("coinset.bridging_puzzle_hash", "")
	v.SetDefault("coinset.native_only", false)
}
