package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/betbot/umactf/uma/types"
)

// 环境变量
const (
	EnvRPCURL         = "UMACTF_RPC_URL"
	EnvPrivateKey     = "UMACTF_PRIVATE_KEY"
	EnvMnemonic       = "UMACTF_MNEMONIC"
	EnvDerivationPath = "UMACTF_DERIVATION_PATH"
	EnvChainID        = "UMACTF_CHAIN_ID"
	EnvVersion        = "UMACTF_ADAPTER_VERSION"
	EnvAdapterAddress = "UMACTF_ADAPTER_ADDRESS"
	EnvLogLevel       = "UMACTF_LOG_LEVEL"
	EnvLogFile        = "UMACTF_LOG_FILE"
	EnvJournalPath    = "UMACTF_JOURNAL_PATH"
	EnvRPCRateLimit   = "UMACTF_RPC_RATE_LIMIT"
)

// DefaultDerivationPath 标准以太坊派生路径
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// WalletConfig 钱包配置，私钥和助记词二选一
type WalletConfig struct {
	PrivateKey     string
	Mnemonic       string
	DerivationPath string
}

// Config 应用配置
type Config struct {
	RPCURL         string
	ChainID        types.Chain
	Version        types.Version
	AdapterAddress string // 为空时使用标准地址
	Wallet         WalletConfig
	LogLevel       string
	LogFile        string // 日志文件路径（可选）
	JournalPath    string
	RPCRateLimit   int // 每秒 RPC 请求上限，0 表示不限速
}

// ConfigFile 配置文件结构（用于 YAML/JSON 解析）
type ConfigFile struct {
	RPCURL         string `yaml:"rpc_url" json:"rpc_url"`
	ChainID        int64  `yaml:"chain_id" json:"chain_id"`
	AdapterVersion string `yaml:"adapter_version" json:"adapter_version"`
	AdapterAddress string `yaml:"adapter_address" json:"adapter_address"`
	Wallet         struct {
		PrivateKey     string `yaml:"private_key" json:"private_key"`
		Mnemonic       string `yaml:"mnemonic" json:"mnemonic"`
		DerivationPath string `yaml:"derivation_path" json:"derivation_path"`
	} `yaml:"wallet" json:"wallet"`
	LogLevel     string `yaml:"log_level" json:"log_level"`
	LogFile      string `yaml:"log_file" json:"log_file"`
	JournalPath  string `yaml:"journal_path" json:"journal_path"`
	RPCRateLimit int    `yaml:"rpc_rate_limit" json:"rpc_rate_limit"`
}

// LoadEnv 加载 .env 文件到环境变量，文件不存在时忽略。已存在的环境变量不会被覆盖
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("加载 %s 失败: %w", p, err)
		}
	}
	return nil
}

// LoadFromFile 加载配置，filePath 可为空
// 优先级：环境变量 > 配置文件 > 默认值
func LoadFromFile(filePath string) (*Config, error) {
	cf := &ConfigFile{}
	if filePath != "" {
		var err error
		cf, err = loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
	}

	chainStr := getEnv(EnvChainID, "")
	if chainStr == "" && cf.ChainID != 0 {
		chainStr = strconv.FormatInt(cf.ChainID, 10)
	}
	if chainStr == "" {
		chainStr = strconv.FormatInt(int64(types.ChainPolygon), 10)
	}
	chain, err := types.ParseChain(chainStr)
	if err != nil {
		return nil, err
	}

	version, err := types.ParseVersion(getEnv(EnvVersion, firstNonEmpty(cf.AdapterVersion, "v3")))
	if err != nil {
		return nil, err
	}

	rateLimit := cf.RPCRateLimit
	if v := getEnv(EnvRPCRateLimit, ""); v != "" {
		if rateLimit, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("%s 无效: %q", EnvRPCRateLimit, v)
		}
	}

	return &Config{
		RPCURL:         getEnv(EnvRPCURL, cf.RPCURL),
		ChainID:        chain,
		Version:        version,
		AdapterAddress: getEnv(EnvAdapterAddress, cf.AdapterAddress),
		Wallet: WalletConfig{
			PrivateKey:     getEnv(EnvPrivateKey, cf.Wallet.PrivateKey),
			Mnemonic:       getEnv(EnvMnemonic, cf.Wallet.Mnemonic),
			DerivationPath: getEnv(EnvDerivationPath, firstNonEmpty(cf.Wallet.DerivationPath, DefaultDerivationPath)),
		},
		LogLevel:     getEnv(EnvLogLevel, firstNonEmpty(cf.LogLevel, "info")),
		LogFile:      getEnv(EnvLogFile, cf.LogFile),
		JournalPath:  getEnv(EnvJournalPath, firstNonEmpty(cf.JournalPath, "data/journal.badger")),
		RPCRateLimit: rateLimit,
	}, nil
}

func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var configFile ConfigFile
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	return &configFile, nil
}

// Adapter 显式配置的适配器地址；未配置时返回 nil
func (c *Config) Adapter() *common.Address {
	if c.AdapterAddress == "" {
		return nil
	}
	addr := common.HexToAddress(c.AdapterAddress)
	return &addr
}

// Validate 验证只读命令需要的配置
func (c *Config) Validate() error {
	if !c.ChainID.Valid() {
		return fmt.Errorf("%s 无效: %d", EnvChainID, c.ChainID)
	}
	if !c.Version.Valid() {
		return fmt.Errorf("%s 无效: %d", EnvVersion, c.Version)
	}
	if c.AdapterAddress != "" && !common.IsHexAddress(c.AdapterAddress) {
		return fmt.Errorf("%s 不是合法地址: %s", EnvAdapterAddress, c.AdapterAddress)
	}
	if c.RPCURL == "" {
		return fmt.Errorf("%s 未配置", EnvRPCURL)
	}
	if c.RPCRateLimit < 0 {
		return fmt.Errorf("%s 不能为负数: %d", EnvRPCRateLimit, c.RPCRateLimit)
	}
	return nil
}

// ValidateSigner 在 Validate 基础上检查签名所需的钱包配置
func (c *Config) ValidateSigner() error {
	if err := c.Validate(); err != nil {
		return err
	}
	hasKey := c.Wallet.PrivateKey != ""
	hasMnemonic := c.Wallet.Mnemonic != ""
	switch {
	case !hasKey && !hasMnemonic:
		return fmt.Errorf("%s 或 %s 未配置", EnvPrivateKey, EnvMnemonic)
	case hasKey && hasMnemonic:
		return fmt.Errorf("%s 和 %s 只能配置一个", EnvPrivateKey, EnvMnemonic)
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
