package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/umactf/uma/ancillary"
	"github.com/betbot/umactf/uma/types"
)

// Adapter 各版本统一的问题生命周期接口
type Adapter interface {
	ChainID() types.Chain
	Version() types.Version
	Address() common.Address

	Initialize(ctx context.Context, params types.InitializeParams) (*types.QuestionInitialized, error)
	Ready(ctx context.Context, questionID common.Hash) (bool, error)
	Resolve(ctx context.Context, questionID common.Hash) (*types.ResolveResult, error)
	GetQuestion(ctx context.Context, questionID common.Hash) (*types.Question, error)
	IsInitialized(ctx context.Context, questionID common.Hash) (bool, error)
	State(ctx context.Context, questionID common.Hash) (*types.QuestionState, error)

	Pause(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error)
	Unpause(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error)
	Flag(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error)
	IsFlagged(ctx context.Context, questionID common.Hash) (bool, error)
	EmergencyResolve(ctx context.Context, questionID common.Hash, payouts []*big.Int) (*ethtypes.Receipt, error)
	Reset(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error)
	IsAdmin(ctx context.Context, addr common.Address) (bool, error)
}

var _ Adapter = (*Client)(nil)

// Client UMA CTF Adapter 客户端
// 构造时绑定签名身份、链和合约，之后不再变化；不缓存任何链上状态
type Client struct {
	chain   types.Chain
	address common.Address
	dialect *dialect
	tx      Transactor
	log     *logrus.Entry
}

// Option 客户端可选项
type Option func(*options)

type options struct {
	address *common.Address
	log     *logrus.Entry
	limiter Limiter
}

// WithAddress 使用显式合约地址，而不是标准部署地址
func WithAddress(addr common.Address) Option {
	return func(o *options) {
		o.address = &addr
	}
}

// WithLogger 指定日志
func WithLogger(entry *logrus.Entry) Option {
	return func(o *options) {
		o.log = entry
	}
}

// WithRateLimit 所有 RPC 请求先经过限速器
func WithRateLimit(l Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// NewClient 创建指定版本的客户端
func NewClient(chainID types.Chain, version types.Version, tx Transactor, opts ...Option) (*Client, error) {
	if !chainID.Valid() {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidChain, chainID)
	}
	d, ok := dialects[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedTarget, version)
	}
	if tx == nil {
		return nil, fmt.Errorf("transactor 不能为空")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var address common.Address
	if o.address != nil {
		address = *o.address
		if address == (common.Address{}) {
			return nil, fmt.Errorf("%w: 合约地址为空", types.ErrInvalidChain)
		}
		// 已登记的地址必须与声明的链和版本一致
		if c, v, known := LookupAdapterAddress(address); known && (c != chainID || v != version) {
			return nil, fmt.Errorf("%w: %s 登记为 %s/%s，不能作为 %s/%s 使用",
				types.ErrInvalidChain, address.Hex(), c, v, chainID, version)
		}
	} else {
		canonical, err := CanonicalAdapterAddress(chainID, version)
		if err != nil {
			return nil, err
		}
		address = canonical
	}

	entry := o.log
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	entry = entry.WithFields(logrus.Fields{
		"adapter": address.Hex(),
		"version": version.String(),
	})

	return &Client{
		chain:   chainID,
		address: address,
		dialect: d,
		tx:      RateLimited(tx, o.limiter),
		log:     entry,
	}, nil
}

// NewClientV1 创建 V1 客户端
func NewClientV1(chainID types.Chain, tx Transactor, opts ...Option) (*Client, error) {
	return NewClient(chainID, types.V1, tx, opts...)
}

// NewClientV2 创建 V2 客户端
func NewClientV2(chainID types.Chain, tx Transactor, opts ...Option) (*Client, error) {
	return NewClient(chainID, types.V2, tx, opts...)
}

// NewClientV3 创建 V3 客户端
func NewClientV3(chainID types.Chain, tx Transactor, opts ...Option) (*Client, error) {
	return NewClient(chainID, types.V3, tx, opts...)
}

// ChainID 绑定的链
func (c *Client) ChainID() types.Chain { return c.chain }

// Version 适配器版本
func (c *Client) Version() types.Version { return c.dialect.version }

// Address 适配器合约地址
func (c *Client) Address() common.Address { return c.address }

// Signer 签名地址
func (c *Client) Signer() common.Address { return c.tx.From() }

// ABI 当前版本的适配器 ABI
func (c *Client) ABI() abi.ABI { return c.dialect.abi }

// Close 释放底层连接
func (c *Client) Close() {
	if closer, ok := c.tx.(interface{ Close() }); ok {
		closer.Close()
	}
}

// Initialize 初始化问题：生成 ancillary data、提交交易、等待确认，并从同一回执中取出 questionID 和 conditionID
func (c *Client) Initialize(ctx context.Context, params types.InitializeParams) (*types.QuestionInitialized, error) {
	if len(params.Outcomes) != 2 {
		return nil, fmt.Errorf("%w: got %d", types.ErrInvalidArity, len(params.Outcomes))
	}
	if !c.dialect.liveness && params.Liveness != nil && params.Liveness.Sign() != 0 {
		return nil, fmt.Errorf("%w: %s 不支持 liveness", types.ErrUnsupportedOperation, c.dialect.version)
	}

	ancillaryData, err := ancillary.Encode(params.Title, params.Description, params.Outcomes)
	if err != nil {
		return nil, err
	}
	if len(ancillaryData) > ancillary.MaxAncillaryDataLength {
		c.log.Warnf("ancillary data 长度 %d 超过 %d，链上可能拒绝", len(ancillaryData), ancillary.MaxAncillaryDataLength)
	}

	c.log.Infof("初始化问题: %s", params.Title)
	receipt, err := c.transact(ctx, c.dialect.initialize, c.dialect.initializeArgs(ancillaryData, params)...)
	if err != nil {
		return nil, err
	}

	questionID, ok := c.eventHash(receipt, c.dialect.abi, "QuestionInitialized", "questionID")
	if !ok {
		return nil, fmt.Errorf("%w: 交易 %s 中没有 QuestionInitialized 事件", types.ErrProtocolMismatch, receipt.TxHash.Hex())
	}
	conditionID, ok := c.eventHash(receipt, ctfABI, "ConditionPreparation", "conditionId")
	if !ok {
		return nil, fmt.Errorf("%w: 交易 %s 中没有 ConditionPreparation 事件", types.ErrProtocolMismatch, receipt.TxHash.Hex())
	}

	c.log.WithFields(logrus.Fields{
		"question_id":  questionID.Hex(),
		"condition_id": conditionID.Hex(),
	}).Info("问题已初始化")

	return &types.QuestionInitialized{
		QuestionID:  questionID,
		ConditionID: conditionID,
		TxHash:      receipt.TxHash,
	}, nil
}

// Ready 问题是否可以 resolve（纯查询）
func (c *Client) Ready(ctx context.Context, questionID common.Hash) (bool, error) {
	return c.callBool(ctx, c.dialect.ready, questionID)
}

// Resolve 结算问题。已 resolved 或尚未 ready 时不提交交易，返回跳过状态而不是错误
func (c *Client) Resolve(ctx context.Context, questionID common.Hash) (*types.ResolveResult, error) {
	q, err := c.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	log := c.log.WithField("question_id", questionID.Hex())
	if q.Resolved {
		log.Warn("问题已结算，跳过 resolve")
		return &types.ResolveResult{Status: types.ResolveSkippedResolved}, nil
	}

	ready, err := c.Ready(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !ready {
		log.Warn("问题尚未 ready，跳过 resolve")
		return &types.ResolveResult{Status: types.ResolveSkippedNotReady}, nil
	}

	receipt, err := c.transact(ctx, "resolve", questionID)
	if err != nil {
		return nil, err
	}
	return &types.ResolveResult{Status: types.ResolveSubmitted, Receipt: receipt}, nil
}

// GetQuestion 读取问题数据，按版本的返回结构解码
func (c *Client) GetQuestion(ctx context.Context, questionID common.Hash) (*types.Question, error) {
	out, err := c.call(ctx, c.dialect.getQuestion, questionID)
	if err != nil {
		return nil, err
	}
	return c.dialect.decodeQuestion(out)
}

// IsInitialized 问题是否已初始化
func (c *Client) IsInitialized(ctx context.Context, questionID common.Hash) (bool, error) {
	return c.callBool(ctx, c.dialect.isInitialized, questionID)
}

// Pause 暂停问题（仅 admin，权限由链上校验）
func (c *Client) Pause(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error) {
	c.log.Infof("暂停问题: %s", questionID.Hex())
	return c.transact(ctx, c.dialect.pause, questionID)
}

// Unpause 恢复问题（仅 admin）
func (c *Client) Unpause(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error) {
	c.log.Infof("恢复问题: %s", questionID.Hex())
	return c.transact(ctx, c.dialect.unpause, questionID)
}

// Flag 标记问题进入紧急结算流程，开始安全期计时（仅 admin）
func (c *Client) Flag(ctx context.Context, questionID common.Hash) (*ethtypes.Receipt, error) {
	c.log.Infof("标记问题紧急结算: %s", questionID.Hex())
	return c.transact(ctx, "flag", questionID)
}

// IsFlagged 问题是否已被标记
func (c *Client) IsFlagged(ctx context.Context, questionID common.Hash) (bool, error) {
	return c.callBool(ctx, "isFlagged", questionID)
}

// EmergencyResolve 直接按给定 payouts 结算，绕过预言机。链上要求已 flag 且安全期已过
func (c *Client) EmergencyResolve(ctx context.Context, questionID common.Hash, payouts []*big.Int) (*ethtypes.Receipt, error) {
	c.log.Infof("紧急结算问题: %s payouts=%v", questionID.Hex(), payouts)
	return c.transact(ctx, "emergencyResolve", questionID, payouts)
}

// IsAdmin 地址是否为 admin。V1 查询 admins 账本并与哨兵值比较，之后的版本直接查询
func (c *Client) IsAdmin(ctx context.Context, addr common.Address) (bool, error) {
	if !c.dialect.adminLedger {
		return c.callBool(ctx, "isAdmin", addr)
	}
	out, err := c.call(ctx, "admins", addr)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%w: admins 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	v := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return v != nil && v.Cmp(adminLedgerSentinel) == 0, nil
}

// AddAdmin 添加 admin（V2+）
func (c *Client) AddAdmin(ctx context.Context, admin common.Address) (*ethtypes.Receipt, error) {
	if c.dialect.adminLedger {
		return nil, c.unsupported("addAdmin")
	}
	return c.transact(ctx, "addAdmin", admin)
}

// RemoveAdmin 移除 admin（V2+）
func (c *Client) RemoveAdmin(ctx context.Context, admin common.Address) (*ethtypes.Receipt, error) {
	if c.dialect.adminLedger {
		return nil, c.unsupported("removeAdmin")
	}
	return c.transact(ctx, "removeAdmin", admin)
}

// RenounceAdmin 放弃自己的 admin 权限（V2+）
func (c *Client) RenounceAdmin(ctx context.Context) (*ethtypes.Receipt, error) {
	if c.dialect.adminLedger {
		return nil, c.unsupported("renounceAdmin")
	}
	return c.transact(ctx, "renounceAdmin")
}

// State 读取问题当前阶段和标记
func (c *Client) State(ctx context.Context, questionID common.Hash) (*types.QuestionState, error) {
	initialized, err := c.IsInitialized(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !initialized {
		return &types.QuestionState{Phase: types.PhaseUnknown}, nil
	}

	q, err := c.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	flagged, err := c.IsFlagged(ctx, questionID)
	if err != nil {
		return nil, err
	}

	st := &types.QuestionState{Paused: q.Paused, Flagged: flagged, Reset: q.Reset}
	switch {
	// emergencyResolve 保留 flag 设置的暂停；flag 后被 unpause 再由预言机结算的属于正常结算
	case q.Resolved && flagged && q.Paused:
		st.Phase = types.PhaseEmergencyResolved
	case q.Resolved:
		st.Phase = types.PhaseResolved
	default:
		ready, err := c.Ready(ctx, questionID)
		if err != nil {
			return nil, err
		}
		st.Phase = types.PhaseNotReady
		if ready {
			st.Phase = types.PhaseReady
		}
	}
	return st, nil
}

func (c *Client) unsupported(op string) error {
	return fmt.Errorf("%w: %s 不支持 %s", types.ErrUnsupportedOperation, c.dialect.version, op)
}

// call 打包 -> eth_call -> 解包
func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	return c.callAt(ctx, c.address, c.dialect.abi, method, args...)
}

// callAt 对任意合约做 eth_call
func (c *Client) callAt(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("打包%s参数失败: %w", method, err)
	}
	res, err := c.tx.Call(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("调用%s失败: %w", method, err)
	}
	out, err := contractABI.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析%s结果失败: %v", types.ErrProtocolMismatch, method, err)
	}
	return out, nil
}

func (c *Client) callBool(ctx context.Context, method string, args ...interface{}) (bool, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%w: %s 返回 %d 个值", types.ErrProtocolMismatch, method, len(out))
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// transact 打包并提交，阻塞直到确认。链上拒绝原样向上返回
func (c *Client) transact(ctx context.Context, method string, args ...interface{}) (*ethtypes.Receipt, error) {
	return c.transactAt(ctx, c.address, c.dialect.abi, method, args...)
}

func (c *Client) transactAt(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) (*ethtypes.Receipt, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("打包%s参数失败: %w", method, err)
	}

	log := c.log.WithFields(logrus.Fields{
		"op_id":  uuid.NewString(),
		"method": method,
		"to":     to.Hex(),
	})
	log.Debug("提交交易")

	receipt, err := c.tx.Transact(ctx, to, data)
	if err != nil {
		log.WithError(err).Warn("交易失败")
		return receipt, fmt.Errorf("%s 交易失败: %w", method, err)
	}
	log.Infof("交易已确认: %s", receipt.TxHash.Hex())
	return receipt, nil
}
