package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/betbot/umactf/uma/client"
)

// questionTxCmd 对单个问题提交一笔 admin 交易的命令
func (a *app) questionTxCmd(use, short string, run func(ctx context.Context, c *client.Client, id common.Hash) (*ethtypes.Receipt, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <question-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuestionID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			c, err := a.dial(ctx, false)
			if err != nil {
				return err
			}
			defer c.Close()

			receipt, err := run(ctx, c, id)
			if err != nil {
				return err
			}
			printOK(a.out, "%s 已确认", use)
			printKV(a.out, "tx", receipt.TxHash.Hex())
			return nil
		},
	}
}

func (a *app) pauseCmd() *cobra.Command {
	return a.questionTxCmd("pause", "暂停问题（admin）", func(ctx context.Context, c *client.Client, id common.Hash) (*ethtypes.Receipt, error) {
		return c.Pause(ctx, id)
	})
}

func (a *app) unpauseCmd() *cobra.Command {
	return a.questionTxCmd("unpause", "恢复问题（admin）", func(ctx context.Context, c *client.Client, id common.Hash) (*ethtypes.Receipt, error) {
		return c.Unpause(ctx, id)
	})
}

func (a *app) flagCmd() *cobra.Command {
	return a.questionTxCmd("flag", "标记问题进入紧急结算（admin）", func(ctx context.Context, c *client.Client, id common.Hash) (*ethtypes.Receipt, error) {
		return c.Flag(ctx, id)
	})
}

func (a *app) resetCmd() *cobra.Command {
	return a.questionTxCmd("reset", "重新发起预言机请求（admin，v3）", func(ctx context.Context, c *client.Client, id common.Hash) (*ethtypes.Receipt, error) {
		return c.Reset(ctx, id)
	})
}

func (a *app) emergencyResolveCmd() *cobra.Command {
	var (
		payouts []string
		vals    []*big.Int
	)
	cmd := a.questionTxCmd("emergency-resolve", "按给定 payouts 直接结算（admin，需已 flag 且安全期已过）",
		func(ctx context.Context, c *client.Client, id common.Hash) (*ethtypes.Receipt, error) {
			return c.EmergencyResolve(ctx, id, vals)
		})
	// 连接节点之前校验
	cmd.PreRunE = func(_ *cobra.Command, _ []string) error {
		var err error
		vals, err = parsePayouts(payouts)
		return err
	}
	cmd.Flags().StringSliceVar(&payouts, "payouts", nil, "payout 向量，例如 1,0 / 0,1 / 1,1")
	_ = cmd.MarkFlagRequired("payouts")
	return cmd
}

func parsePayouts(raw []string) ([]*big.Int, error) {
	if len(raw) != 2 {
		return nil, fmt.Errorf("payouts 需要 2 个值，得到 %d 个", len(raw))
	}
	out := make([]*big.Int, 0, len(raw))
	for _, s := range raw {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("无效的 payout: %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}

func (a *app) isAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "is-admin [address]",
		Short: "地址是否为适配器 admin（默认当前签名地址）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			readOnly := len(args) == 1
			c, err := a.dial(ctx, readOnly)
			if err != nil {
				return err
			}
			defer c.Close()

			addr := c.Signer()
			if readOnly {
				if addr, err = parseAddress(args[0]); err != nil {
					return err
				}
			}
			ok, err := c.IsAdmin(ctx, addr)
			if err != nil {
				return err
			}
			printKV(a.out, "address", addr.Hex())
			printKV(a.out, "admin", ok)
			return nil
		},
	}
}
