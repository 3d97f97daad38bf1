package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Question 适配器上存储的问题数据（V3 超集，旧版本没有的字段保持零值）
type Question struct {
	Version          Version
	RequestTimestamp *big.Int
	Reward           *big.Int
	ProposalBond     *big.Int
	Liveness         *big.Int // 仅 V3
	// EmergencyResolutionTimestamp V2/V3 字段名；V1 的 adminResolutionTimestamp 也解码到这里
	EmergencyResolutionTimestamp *big.Int
	Resolved                     bool
	Paused                       bool
	Reset                        bool // V2/V3
	RewardToken                  common.Address
	Creator                      common.Address
	AncillaryData                []byte
}

// Exists 链上是否存在该问题（未初始化的记录各字段均为零值）
func (q *Question) Exists() bool {
	return q != nil && q.RequestTimestamp != nil && q.RequestTimestamp.Sign() > 0
}

// InitializeParams 初始化问题参数
type InitializeParams struct {
	Title        string
	Description  string
	Outcomes     []string // 必须恰好 2 个
	RewardToken  common.Address
	Reward       *big.Int // nil 视为 0
	ProposalBond *big.Int // nil 视为 0
	Liveness     *big.Int // 仅 V3，nil/0 表示使用预言机默认值
}

// QuestionInitialized 初始化交易回执中解析出的标识
type QuestionInitialized struct {
	QuestionID  common.Hash
	ConditionID common.Hash
	TxHash      common.Hash
}

// AncillaryDataUpdate 公告板更新（V3），按 (questionID, owner) 追加，顺序有意义
type AncillaryDataUpdate struct {
	Timestamp *big.Int
	Update    []byte
}

// ResolveStatus resolve 调用结果
type ResolveStatus int

const (
	// ResolveSubmitted 已提交并确认
	ResolveSubmitted ResolveStatus = iota
	// ResolveSkippedResolved 已经 resolved，未提交
	ResolveSkippedResolved
	// ResolveSkippedNotReady 尚未 ready，未提交
	ResolveSkippedNotReady
)

func (s ResolveStatus) String() string {
	switch s {
	case ResolveSubmitted:
		return "submitted"
	case ResolveSkippedResolved:
		return "skipped: already resolved"
	case ResolveSkippedNotReady:
		return "skipped: not ready"
	default:
		return "unknown"
	}
}

// ResolveResult resolve 的结果。跳过属于提示性结果而不是错误，批量调用可以继续
type ResolveResult struct {
	Status  ResolveStatus
	Receipt *ethtypes.Receipt // 仅 ResolveSubmitted 时非空
}

// Submitted 是否真的发送了交易
func (r *ResolveResult) Submitted() bool {
	return r != nil && r.Status == ResolveSubmitted
}
