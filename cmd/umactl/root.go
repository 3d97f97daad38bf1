package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/betbot/umactf/pkg/config"
	"github.com/betbot/umactf/pkg/journal"
	"github.com/betbot/umactf/pkg/logger"
	"github.com/betbot/umactf/pkg/ratelimit"
	"github.com/betbot/umactf/pkg/wallet"
	"github.com/betbot/umactf/uma/client"
	"github.com/betbot/umactf/uma/types"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
	Chain      string
	Version    string
	Adapter    string
}

// app 单次命令执行的上下文
type app struct {
	flags GlobalFlags
	cfg   *config.Config
	out   io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:           "umactl",
		Short:         "UMA CTF 适配器命令行工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.init()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.ConfigFile, "config", "", "配置文件 (.yaml/.yml/.json)")
	pf.StringVar(&a.flags.EnvFile, "env", ".env", ".env 文件路径")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "日志级别: debug|info|warn|error")
	pf.StringVar(&a.flags.Chain, "chain", "", "链: polygon|amoy|137|80002（覆盖配置）")
	pf.StringVar(&a.flags.Version, "adapter-version", "", "适配器版本: v1|v2|v3（覆盖配置）")
	pf.StringVar(&a.flags.Adapter, "adapter", "", "适配器地址（覆盖配置）")

	rootCmd.AddCommand(
		a.encodeCmd(),
		a.decodeCmd(),
		a.addressCmd(),
		a.initializeCmd(),
		a.readyCmd(),
		a.stateCmd(),
		a.questionCmd(),
		a.conditionCmd(),
		a.resolveCmd(),
		a.pauseCmd(),
		a.unpauseCmd(),
		a.flagCmd(),
		a.emergencyResolveCmd(),
		a.resetCmd(),
		a.postUpdateCmd(),
		a.updatesCmd(),
		a.isAdminCmd(),
		a.journalCmd(),
	)
	return rootCmd
}

func (a *app) init() error {
	if err := config.LoadEnv(a.flags.EnvFile); err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(a.flags.ConfigFile)
	if err != nil {
		return err
	}
	if a.flags.Chain != "" {
		if cfg.ChainID, err = types.ParseChain(a.flags.Chain); err != nil {
			return err
		}
	}
	if a.flags.Version != "" {
		if cfg.Version, err = types.ParseVersion(a.flags.Version); err != nil {
			return err
		}
	}
	if a.flags.Adapter != "" {
		cfg.AdapterAddress = a.flags.Adapter
	}
	if a.flags.LogLevel != "" {
		cfg.LogLevel = a.flags.LogLevel
	}
	a.cfg = cfg

	return logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
}

// dial 连接节点。readOnly 且未配置钱包时使用临时密钥，只用于 eth_call
func (a *app) dial(ctx context.Context, readOnly bool) (*client.Client, error) {
	var key *ecdsa.PrivateKey
	if readOnly && a.cfg.Wallet.PrivateKey == "" && a.cfg.Wallet.Mnemonic == "" {
		if err := a.cfg.Validate(); err != nil {
			return nil, err
		}
		k, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		key = k
	} else {
		if err := a.cfg.ValidateSigner(); err != nil {
			return nil, err
		}
		signer, err := wallet.Load(a.cfg.Wallet.PrivateKey, a.cfg.Wallet.Mnemonic, a.cfg.Wallet.DerivationPath)
		if err != nil {
			return nil, err
		}
		key = signer.PrivateKey
	}

	opts := []client.Option{client.WithLogger(logger.WithComponent("client"))}
	if limiter := ratelimit.PerSecond(a.cfg.RPCRateLimit); limiter != nil {
		opts = append(opts, client.WithRateLimit(limiter))
	}
	if addr := a.cfg.Adapter(); addr != nil {
		opts = append(opts, client.WithAddress(*addr))
	}
	return client.Dial(ctx, a.cfg.RPCURL, a.cfg.ChainID, a.cfg.Version, key, opts...)
}

func (a *app) openJournal(readOnly bool) (*journal.Journal, error) {
	return journal.Open(journal.OpenOptions{Path: a.cfg.JournalPath, ReadOnly: readOnly})
}

// commandContext 收到 SIGINT/SIGTERM 时取消
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func parseQuestionID(s string) (common.Hash, error) {
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("question id 必须是 32 字节十六进制: %q", s)
	}
	return common.BytesToHash(b), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("不是合法地址: %q", s)
	}
	return common.HexToAddress(s), nil
}
