package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/betbot/umactf/uma/types"
)

// Reset 重新发起一轮预言机请求，questionID 和经济参数保持不变（V3）
func (c *Client) Reset(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error) {
	if !c.dialect.reset {
		return nil, c.unsupported("reset")
	}
	c.log.Infof("重置问题: %s", questionID.Hex())
	return c.transact(ctx, "reset", questionID)
}

// PostUpdate 向公告板追加一条澄清更新（V3），原 ancillary data 不变
func (c *Client) PostUpdate(ctx context.Context, questionID common.Hash, update []byte) (*ethtypes.Receipt, error) {
	if !c.dialect.bulletin {
		return nil, c.unsupported("postUpdate")
	}
	return c.transact(ctx, "postUpdate", questionID, update)
}

// GetUpdates 按提交顺序返回 owner 对该问题发布的全部更新（V3）
func (c *Client) GetUpdates(ctx context.Context, questionID common.Hash, owner common.Address) ([]types.AncillaryDataUpdate, error) {
	if !c.dialect.bulletin {
		return nil, c.unsupported("getUpdates")
	}
	out, err := c.call(ctx, "getUpdates", questionID, owner)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getUpdates 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	raw := *abi.ConvertType(out[0], new([]ancillaryDataUpdate)).(*[]ancillaryDataUpdate)

	updates := make([]types.AncillaryDataUpdate, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, types.AncillaryDataUpdate{Timestamp: u.Timestamp, Update: u.Update})
	}
	return updates, nil
}

// GetLatestUpdate 返回最新一条更新；没有更新时 Timestamp 为 0（V3）
func (c *Client) GetLatestUpdate(ctx context.Context, questionID common.Hash, owner common.Address) (*types.AncillaryDataUpdate, error) {
	if !c.dialect.bulletin {
		return nil, c.unsupported("getLatestUpdate")
	}
	out, err := c.call(ctx, "getLatestUpdate", questionID, owner)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getLatestUpdate 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	u := *abi.ConvertType(out[0], new(ancillaryDataUpdate)).(*ancillaryDataUpdate)
	return &types.AncillaryDataUpdate{Timestamp: u.Timestamp, Update: u.Update}, nil
}

// GetExpectedPayouts 按当前预言机价格计算的 payouts（V3），价格不可用时链上 revert
func (c *Client) GetExpectedPayouts(ctx context.Context, questionID common.Hash) ([]*big.Int, error) {
	if !c.dialect.bulletin {
		return nil, c.unsupported("getExpectedPayouts")
	}
	out, err := c.call(ctx, "getExpectedPayouts", questionID)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getExpectedPayouts 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}
