package main

import (
	"time"

	"github.com/spf13/cobra"
)

func (a *app) postUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post-update <question-id> <text>",
		Short: "向公告板追加澄清更新（v3）",
		Args:  cobra.ExactArgs(2),
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

			receipt, err := c.PostUpdate(ctx, id, []byte(args[1]))
			if err != nil {
				return err
			}
			printOK(a.out, "更新已发布")
			printKV(a.out, "tx", receipt.TxHash.Hex())
			return nil
		},
	}
}

func (a *app) updatesCmd() *cobra.Command {
	var (
		owner  string
		latest bool
	)
	cmd := &cobra.Command{
		Use:   "updates <question-id>",
		Short: "列出公告板更新（v3，默认 owner 为问题创建者）",
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

			who := c.Signer()
			if owner != "" {
				if who, err = parseAddress(owner); err != nil {
					return err
				}
			} else {
				q, err := c.GetQuestion(ctx, id)
				if err != nil {
					return err
				}
				who = q.Creator
			}

			if latest {
				u, err := c.GetLatestUpdate(ctx, id, who)
				if err != nil {
					return err
				}
				if u.Timestamp == nil || u.Timestamp.Sign() == 0 {
					printWarn(a.out, "没有更新")
					return nil
				}
				printKV(a.out, time.Unix(u.Timestamp.Int64(), 0).UTC().Format(time.RFC3339), string(u.Update))
				return nil
			}

			updates, err := c.GetUpdates(ctx, id, who)
			if err != nil {
				return err
			}
			if len(updates) == 0 {
				printWarn(a.out, "没有更新")
				return nil
			}
			for _, u := range updates {
				printKV(a.out, time.Unix(u.Timestamp.Int64(), 0).UTC().Format(time.RFC3339), string(u.Update))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "更新发布者地址")
	cmd.Flags().BoolVar(&latest, "latest", false, "只显示最新一条")
	return cmd
}
