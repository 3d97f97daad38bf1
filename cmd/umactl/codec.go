package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/betbot/umactf/uma/ancillary"
	"github.com/betbot/umactf/uma/client"
)

func (a *app) encodeCmd() *cobra.Command {
	var (
		title, description string
		outcomes           []string
		asHex              bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "生成 ancillary data（不访问链）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := ancillary.Encode(title, description, outcomes)
			if err != nil {
				return err
			}
			if asHex {
				fmt.Fprintln(a.out, hexutil.Encode(data))
			} else {
				fmt.Fprintln(a.out, string(data))
			}
			if len(data) > ancillary.MaxAncillaryDataLength {
				printWarn(cmd.ErrOrStderr(), "长度 %d 超过 %d", len(data), ancillary.MaxAncillaryDataLength)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "问题标题")
	cmd.Flags().StringVar(&description, "description", "", "问题描述")
	cmd.Flags().StringSliceVar(&outcomes, "outcomes", []string{"Yes", "No"}, "两个结果，逗号分隔")
	cmd.Flags().BoolVar(&asHex, "hex", false, "输出 0x 十六进制")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "decode <ancillary-data>",
		Short: "从 ancillary data 中提取两个结果名称",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data := []byte(args[0])
			if asHex {
				b, err := hexutil.Decode(args[0])
				if err != nil {
					return err
				}
				data = b
			}
			out, ok := ancillary.Decode(data)
			if !ok {
				printWarn(a.out, "未找到结果描述")
				return nil
			}
			printKV(a.out, "outcome p1", out.A)
			printKV(a.out, "outcome p2", out.B)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "参数为 0x 十六进制")
	return cmd
}

func (a *app) addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "显示当前链和版本的标准适配器地址",
		RunE: func(_ *cobra.Command, _ []string) error {
			printKV(a.out, "chain", a.cfg.ChainID)
			printKV(a.out, "version", a.cfg.Version)
			if addr := a.cfg.Adapter(); addr != nil {
				printKV(a.out, "adapter (configured)", addr.Hex())
				if chain, version, ok := client.LookupAdapterAddress(*addr); ok {
					printKV(a.out, "registered as", fmt.Sprintf("%s %s", chain, version))
				}
				return nil
			}
			addr, err := client.CanonicalAdapterAddress(a.cfg.ChainID, a.cfg.Version)
			if err != nil {
				return err
			}
			printKV(a.out, "adapter", addr.Hex())
			cc, err := client.GetContractConfig(a.cfg.ChainID)
			if err != nil {
				return err
			}
			printKV(a.out, "conditional tokens", common.HexToAddress(cc.ConditionalTokens).Hex())
			printKV(a.out, "collateral", common.HexToAddress(cc.Collateral).Hex())
			return nil
		},
	}
}
