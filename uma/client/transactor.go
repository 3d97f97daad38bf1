package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/betbot/umactf/uma/types"
)

// Transactor 交易通道：只读调用 + 签名提交并等待确认
// nonce、gas、重试和超时都由实现方负责，客户端本身不做任何重试
type Transactor interface {
	From() common.Address
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	Transact(ctx context.Context, to common.Address, data []byte) (*ethtypes.Receipt, error)
}

// Limiter 请求限速，*ratelimit.SlidingWindow 即可满足
type Limiter interface {
	Wait(ctx context.Context) error
}

// limitedTransactor 每次 Call/Transact 之前先等待限速器
type limitedTransactor struct {
	Transactor
	limiter Limiter
}

// RateLimited 给交易通道加上限速。limiter 为 nil 时原样返回
func RateLimited(tx Transactor, limiter Limiter) Transactor {
	if tx == nil || limiter == nil {
		return tx
	}
	return &limitedTransactor{Transactor: tx, limiter: limiter}
}

func (t *limitedTransactor) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "等待限速")
	}
	return t.Transactor.Call(ctx, to, data)
}

func (t *limitedTransactor) Transact(ctx context.Context, to common.Address, data []byte) (*ethtypes.Receipt, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "等待限速")
	}
	return t.Transactor.Transact(ctx, to, data)
}

func (t *limitedTransactor) Close() {
	if c, ok := t.Transactor.(interface{ Close() }); ok {
		c.Close()
	}
}

// Backend 节点接口，*ethclient.Client 即可满足
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// EthTransactor 基于 go-ethereum bind 的默认实现，绑定一个私钥和一条链
type EthTransactor struct {
	backend Backend
	opts    *bind.TransactOpts
}

// NewEthTransactor 创建交易通道
func NewEthTransactor(backend Backend, privateKey *ecdsa.PrivateKey, chainID types.Chain) (*EthTransactor, error) {
	if backend == nil {
		return nil, errors.New("backend 不能为空")
	}
	if privateKey == nil {
		return nil, errors.New("私钥不能为空")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(privateKey, big.NewInt(int64(chainID)))
	if err != nil {
		return nil, errors.Wrap(err, "创建签名器失败")
	}
	return &EthTransactor{backend: backend, opts: opts}, nil
}

// From 签名地址
func (t *EthTransactor) From() common.Address {
	return t.opts.From
}

// Call eth_call
func (t *EthTransactor) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := t.backend.CallContract(ctx, ethereum.CallMsg{
		From: t.opts.From,
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "eth_call %s", to.Hex())
	}
	return out, nil
}

// Transact 签名、广播并阻塞直到回执可用。status=0 返回 ErrTransactionReverted
func (t *EthTransactor) Transact(ctx context.Context, to common.Address, data []byte) (*ethtypes.Receipt, error) {
	opts := *t.opts
	opts.Context = ctx

	contract := bind.NewBoundContract(to, abi.ABI{}, t.backend, t.backend, t.backend)
	tx, err := contract.RawTransact(&opts, data)
	if err != nil {
		return nil, errors.Wrap(err, "发送交易失败")
	}

	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "等待交易确认失败 %s", tx.Hash().Hex())
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", types.ErrTransactionReverted, tx.Hash().Hex())
	}
	return receipt, nil
}

// Close 关闭底层连接（如果支持）
func (t *EthTransactor) Close() {
	if c, ok := t.backend.(interface{ Close() }); ok {
		c.Close()
	}
}

// Dial 连接 RPC 节点并创建客户端，节点 chainId 必须与声明的链一致
func Dial(ctx context.Context, rpcURL string, chainID types.Chain, version types.Version, privateKey *ecdsa.PrivateKey, opts ...Option) (*Client, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidChain, chainID)
	}

	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "连接RPC节点失败")
	}

	remote, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, errors.Wrap(err, "获取链 ID 失败")
	}
	if remote.Cmp(big.NewInt(int64(chainID))) != 0 {
		ec.Close()
		return nil, fmt.Errorf("%w: 节点链 ID %s 与声明的 %d 不一致", types.ErrInvalidChain, remote, chainID)
	}

	tx, err := NewEthTransactor(ec, privateKey, chainID)
	if err != nil {
		ec.Close()
		return nil, err
	}
	c, err := NewClient(chainID, version, tx, opts...)
	if err != nil {
		ec.Close()
		return nil, err
	}
	return c, nil
}
