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

// outcomeSlotCount 适配器准备的条件都是二元的
var outcomeSlotCount = big.NewInt(2)

func (c *Client) ctfAddress() (common.Address, error) {
	cfg, err := GetContractConfig(c.chain)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(cfg.ConditionalTokens), nil
}

// ConditionID 通过 CTF 的 getConditionId 计算问题对应的 conditionId
// conditionId = keccak256(abi.encodePacked(adapter, questionId, 2))
func (c *Client) ConditionID(ctx context.Context, questionID common.Hash) (common.Hash, error) {
	ctf, err := c.ctfAddress()
	if err != nil {
		return common.Hash{}, err
	}
	out, err := c.callAt(ctx, ctf, ctfABI, "getConditionId", c.address, questionID, outcomeSlotCount)
	if err != nil {
		return common.Hash{}, err
	}
	if len(out) != 1 {
		return common.Hash{}, fmt.Errorf("%w: getConditionId 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	return common.Hash(*abi.ConvertType(out[0], new([32]byte)).(*[32]byte)), nil
}

// ConditionPayouts 读取 CTF 上条件的 payout 向量。payoutDenominator 为 0 表示尚未结算
func (c *Client) ConditionPayouts(ctx context.Context, conditionID common.Hash) ([]*big.Int, bool, error) {
	ctf, err := c.ctfAddress()
	if err != nil {
		return nil, false, err
	}
	den, err := c.callUint(ctx, ctf, ctfABI, "payoutDenominator", conditionID)
	if err != nil {
		return nil, false, err
	}
	if den.Sign() == 0 {
		return nil, false, nil
	}

	payouts := make([]*big.Int, 0, outcomeSlotCount.Int64())
	for i := int64(0); i < outcomeSlotCount.Int64(); i++ {
		v, err := c.callUint(ctx, ctf, ctfABI, "payoutNumerators", conditionID, big.NewInt(i))
		if err != nil {
			return nil, false, err
		}
		payouts = append(payouts, v)
	}
	return payouts, true, nil
}

// RewardBalance 签名地址持有的奖励代币数量（最小单位）
func (c *Client) RewardBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.callUint(ctx, token, erc20ABI, "balanceOf", c.tx.From())
}

// RewardAllowance 签名地址授权给适配器的奖励代币额度。initialize 时适配器会划走 reward
func (c *Client) RewardAllowance(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.callUint(ctx, token, erc20ABI, "allowance", c.tx.From(), c.address)
}

// ApproveReward 授权适配器划转奖励代币
func (c *Client) ApproveReward(ctx context.Context, token common.Address, amount *big.Int) (*ethtypes.Receipt, error) {
	c.log.Infof("授权适配器 %s 使用奖励代币 %s: %s", c.address.Hex(), token.Hex(), orZero(amount))
	return c.transactAt(ctx, token, erc20ABI, "approve", c.address, orZero(amount))
}

func (c *Client) callUint(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	out, err := c.callAt(ctx, to, contractABI, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: %s 返回 %d 个值", types.ErrProtocolMismatch, method, len(out))
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
