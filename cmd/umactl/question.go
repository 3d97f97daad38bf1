package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/betbot/umactf/pkg/journal"
	"github.com/betbot/umactf/pkg/logger"
	"github.com/betbot/umactf/pkg/units"
	"github.com/betbot/umactf/uma/ancillary"
	"github.com/betbot/umactf/uma/client"
	"github.com/betbot/umactf/uma/types"
)

func (a *app) initializeCmd() *cobra.Command {
	var (
		title, description string
		outcomes           []string
		rewardToken        string
		reward, bond       string
		liveness           uint64
		skipJournal        bool
		approve            bool
	)
	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "初始化问题并输出 questionID / conditionID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 结果数量在打开 journal 和连接节点之前校验
			if _, err := ancillary.Encode(title, description, outcomes); err != nil {
				return err
			}
			rewardAmt, err := units.ParseUSDC(reward)
			if err != nil {
				return err
			}
			bondAmt, err := units.ParseUSDC(bond)
			if err != nil {
				return err
			}
			params := types.InitializeParams{
				Title:        title,
				Description:  description,
				Outcomes:     outcomes,
				Reward:       rewardAmt,
				ProposalBond: bondAmt,
			}
			if liveness > 0 {
				params.Liveness = new(big.Int).SetUint64(liveness)
			}
			if rewardToken != "" {
				if params.RewardToken, err = parseAddress(rewardToken); err != nil {
					return err
				}
			} else {
				cc, err := client.GetContractConfig(a.cfg.ChainID)
				if err != nil {
					return err
				}
				params.RewardToken = common.HexToAddress(cc.Collateral)
			}

			// journal 须在提交交易前可写
			var j *journal.Journal
			if !skipJournal {
				if j, err = a.openJournal(false); err != nil {
					return err
				}
				defer j.Close()
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			c, err := a.dial(ctx, false)
			if err != nil {
				return err
			}
			defer c.Close()

			if params.Reward.Sign() > 0 {
				allowance, err := c.RewardAllowance(ctx, params.RewardToken)
				if err != nil {
					return err
				}
				if allowance.Cmp(params.Reward) < 0 {
					if !approve {
						return fmt.Errorf("奖励代币授权不足: %s < %s，使用 --approve 自动授权",
							units.FormatUSDC(allowance), units.FormatUSDC(params.Reward))
					}
					if _, err := c.ApproveReward(ctx, params.RewardToken, params.Reward); err != nil {
						return err
					}
				}
			}

			res, err := c.Initialize(ctx, params)
			if err != nil {
				return err
			}
			printOK(a.out, "问题已初始化")
			printKV(a.out, "question id", res.QuestionID.Hex())
			printKV(a.out, "condition id", res.ConditionID.Hex())
			printKV(a.out, "tx", res.TxHash.Hex())

			if j != nil {
				if _, err := j.Append(journal.Record{
					QuestionID:  res.QuestionID,
					ConditionID: res.ConditionID,
					TxHash:      res.TxHash,
					Chain:       c.ChainID(),
					Version:     c.Version(),
					Adapter:     c.Address(),
					Title:       title,
					CreatedAt:   time.Now().UTC(),
				}); err != nil {
					logger.Warnf("写入 journal 失败: %v", err)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "问题标题")
	f.StringVar(&description, "description", "", "问题描述")
	f.StringSliceVar(&outcomes, "outcomes", []string{"Yes", "No"}, "两个结果，逗号分隔")
	f.StringVar(&rewardToken, "reward-token", "", "奖励代币地址（默认抵押品 USDC）")
	f.StringVar(&reward, "reward", "0", "奖励金额（USDC，十进制）")
	f.StringVar(&bond, "bond", "0", "提案保证金（USDC，十进制）")
	f.Uint64Var(&liveness, "liveness", 0, "挑战期秒数（仅 v3，0 为默认）")
	f.BoolVar(&skipJournal, "no-journal", false, "不写入本地 journal")
	f.BoolVar(&approve, "approve", false, "授权不足时先 approve 适配器")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) readyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready <question-id>",
		Short: "问题是否可以 resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuestionID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			c, err := a.dial(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close()

			ready, err := c.Ready(ctx, id)
			if err != nil {
				return err
			}
			printKV(a.out, "ready", ready)
			return nil
		},
	}
}

func (a *app) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <question-id>",
		Short: "问题当前阶段和标记",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuestionID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			c, err := a.dial(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.State(ctx, id)
			if err != nil {
				return err
			}
			printKV(a.out, "phase", phaseColor(st.Phase).Sprint(st.Phase))
			printKV(a.out, "paused", st.Paused)
			printKV(a.out, "flagged", st.Flagged)
			printKV(a.out, "reset", st.Reset)
			return nil
		},
	}
}

func (a *app) questionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "question <question-id>",
		Short: "读取问题数据",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuestionID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			c, err := a.dial(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close()

			q, err := c.GetQuestion(ctx, id)
			if err != nil {
				return err
			}
			if !q.Exists() {
				printWarn(a.out, "问题不存在: %s", id.Hex())
				return nil
			}
			printQuestion(a, q)
			return nil
		},
	}
}

func printQuestion(a *app, q *types.Question) {
	printKV(a.out, "version", q.Version)
	printKV(a.out, "request timestamp", time.Unix(q.RequestTimestamp.Int64(), 0).UTC().Format(time.RFC3339))
	printKV(a.out, "reward", units.FormatUSDC(q.Reward))
	printKV(a.out, "proposal bond", units.FormatUSDC(q.ProposalBond))
	if q.Version == types.V3 {
		printKV(a.out, "liveness", q.Liveness)
	}
	if q.EmergencyResolutionTimestamp != nil && q.EmergencyResolutionTimestamp.Sign() > 0 {
		printKV(a.out, "emergency resolvable", time.Unix(q.EmergencyResolutionTimestamp.Int64(), 0).UTC().Format(time.RFC3339))
	}
	printKV(a.out, "resolved", q.Resolved)
	printKV(a.out, "paused", q.Paused)
	printKV(a.out, "reset", q.Reset)
	printKV(a.out, "reward token", q.RewardToken.Hex())
	printKV(a.out, "creator", q.Creator.Hex())
	if out, ok := ancillary.Decode(q.AncillaryData); ok {
		printKV(a.out, "outcomes", fmt.Sprintf("p1=%s p2=%s", out.A, out.B))
	}
	printKV(a.out, "ancillary data", string(q.AncillaryData))
}

func (a *app) conditionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "condition <question-id>",
		Short: "问题对应的 CTF conditionId 及 payout 向量",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseQuestionID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			c, err := a.dial(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close()

			cid, err := c.ConditionID(ctx, id)
			if err != nil {
				return err
			}
			printKV(a.out, "condition id", cid.Hex())
			payouts, resolved, err := c.ConditionPayouts(ctx, cid)
			if err != nil {
				return err
			}
			printKV(a.out, "resolved on ctf", resolved)
			if resolved {
				printKV(a.out, "payouts", payouts)
			}
			return nil
		},
	}
}

func (a *app) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <question-id>",
		Short: "结算问题；已结算或未 ready 时不提交交易",
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

			res, err := c.Resolve(ctx, id)
			if err != nil {
				return err
			}
			if !res.Submitted() {
				printWarn(a.out, "未提交: %s", res.Status)
				return nil
			}
			printOK(a.out, "已结算")
			printKV(a.out, "tx", res.Receipt.TxHash.Hex())
			return nil
		},
	}
}

func (a *app) journalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal [question-id]",
		Short: "查看本地初始化记录",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			j, err := a.openJournal(true)
			if err != nil {
				return err
			}
			defer j.Close()

			if len(args) == 1 {
				id, err := parseQuestionID(args[0])
				if err != nil {
					return err
				}
				rec, ok, err := j.Get(id)
				if err != nil {
					return err
				}
				if !ok {
					printWarn(a.out, "journal 中没有 %s", id.Hex())
					return nil
				}
				printRecord(a, *rec)
				return nil
			}

			recs, err := j.List()
			if err != nil {
				return err
			}
			for _, rec := range recs {
				printRecord(a, rec)
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
}

func printRecord(a *app, rec journal.Record) {
	printKV(a.out, "question id", rec.QuestionID.Hex())
	printKV(a.out, "condition id", rec.ConditionID.Hex())
	printKV(a.out, "tx", rec.TxHash.Hex())
	printKV(a.out, "adapter", fmt.Sprintf("%s (%s %s)", rec.Adapter.Hex(), rec.Chain, rec.Version))
	printKV(a.out, "title", rec.Title)
	printKV(a.out, "created at", rec.CreatedAt.Format(time.RFC3339))
}
