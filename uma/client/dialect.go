package client

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/betbot/umactf/uma/types"
)

// dialect 描述某个版本的线上差异（ABI、方法名、返回结构、能力），生命周期逻辑只有 Client 一份
type dialect struct {
	version types.Version
	abi     abi.ABI

	initialize    string
	ready         string
	getQuestion   string
	isInitialized string
	pause         string
	unpause       string

	liveness    bool // initialize 带 liveness 参数
	reset       bool
	bulletin    bool // postUpdate / getUpdates / getLatestUpdate / getExpectedPayouts
	adminLedger bool // admins(addr) 数值账本，1 表示 admin；否则 isAdmin(addr) bool

	decodeQuestion func(out []interface{}) (*types.Question, error)
}

var dialects = map[types.Version]*dialect{
	types.V1: {
		version:        types.V1,
		abi:            adapterV1ABI,
		initialize:     "initializeQuestion",
		ready:          "readyToResolve",
		getQuestion:    "questions",
		isInitialized:  "isQuestionInitialized",
		pause:          "pauseQuestion",
		unpause:        "unpauseQuestion",
		adminLedger:    true,
		decodeQuestion: decodeQuestionV1,
	},
	types.V2: {
		version:        types.V2,
		abi:            adapterV2ABI,
		initialize:     "initialize",
		ready:          "ready",
		getQuestion:    "getQuestion",
		isInitialized:  "isQuestionInitialized",
		pause:          "pause",
		unpause:        "unpause",
		decodeQuestion: decodeQuestionV2,
	},
	types.V3: {
		version:        types.V3,
		abi:            adapterV3ABI,
		initialize:     "initialize",
		ready:          "ready",
		getQuestion:    "getQuestion",
		isInitialized:  "isInitialized",
		pause:          "pause",
		unpause:        "unpause",
		liveness:       true,
		reset:          true,
		bulletin:       true,
		decodeQuestion: decodeQuestionV3,
	},
}

// initializeArgs 按版本组装 initialize 参数
func (d *dialect) initializeArgs(ancillaryData []byte, p types.InitializeParams) []interface{} {
	args := []interface{}{ancillaryData, p.RewardToken, orZero(p.Reward), orZero(p.ProposalBond)}
	if d.liveness {
		args = append(args, orZero(p.Liveness))
	}
	return args
}

// adminLedgerSentinel V1 admins 映射中 admin 的取值
var adminLedgerSentinel = big.NewInt(1)

// questionDataV2 V2 getQuestion 返回的 tuple
type questionDataV2 struct {
	RequestTimestamp             *big.Int       `json:"requestTimestamp"`
	Reward                       *big.Int       `json:"reward"`
	ProposalBond                 *big.Int       `json:"proposalBond"`
	EmergencyResolutionTimestamp *big.Int       `json:"emergencyResolutionTimestamp"`
	Resolved                     bool           `json:"resolved"`
	Paused                       bool           `json:"paused"`
	Reset                        bool           `json:"reset"`
	RewardToken                  common.Address `json:"rewardToken"`
	Creator                      common.Address `json:"creator"`
	AncillaryData                []byte         `json:"ancillaryData"`
}

// questionDataV3 V3 getQuestion 返回的 tuple，比 V2 多 liveness
type questionDataV3 struct {
	RequestTimestamp             *big.Int       `json:"requestTimestamp"`
	Reward                       *big.Int       `json:"reward"`
	ProposalBond                 *big.Int       `json:"proposalBond"`
	Liveness                     *big.Int       `json:"liveness"`
	EmergencyResolutionTimestamp *big.Int       `json:"emergencyResolutionTimestamp"`
	Resolved                     bool           `json:"resolved"`
	Paused                       bool           `json:"paused"`
	Reset                        bool           `json:"reset"`
	RewardToken                  common.Address `json:"rewardToken"`
	Creator                      common.Address `json:"creator"`
	AncillaryData                []byte         `json:"ancillaryData"`
}

// ancillaryDataUpdate V3 公告板条目 tuple
type ancillaryDataUpdate struct {
	Timestamp *big.Int `json:"timestamp"`
	Update    []byte   `json:"update"`
}

func decodeQuestionV1(out []interface{}) (*types.Question, error) {
	if len(out) != 9 {
		return nil, fmt.Errorf("%w: questions 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	return &types.Question{
		Version:                      types.V1,
		RequestTimestamp:             *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Reward:                       *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		ProposalBond:                 *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		Liveness:                     new(big.Int),
		EmergencyResolutionTimestamp: *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		Resolved:                     *abi.ConvertType(out[4], new(bool)).(*bool),
		Paused:                       *abi.ConvertType(out[5], new(bool)).(*bool),
		RewardToken:                  *abi.ConvertType(out[6], new(common.Address)).(*common.Address),
		Creator:                      *abi.ConvertType(out[7], new(common.Address)).(*common.Address),
		AncillaryData:                *abi.ConvertType(out[8], new([]byte)).(*[]byte),
	}, nil
}

func decodeQuestionV2(out []interface{}) (*types.Question, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getQuestion 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	q := *abi.ConvertType(out[0], new(questionDataV2)).(*questionDataV2)
	return &types.Question{
		Version:                      types.V2,
		RequestTimestamp:             q.RequestTimestamp,
		Reward:                       q.Reward,
		ProposalBond:                 q.ProposalBond,
		Liveness:                     new(big.Int),
		EmergencyResolutionTimestamp: q.EmergencyResolutionTimestamp,
		Resolved:                     q.Resolved,
		Paused:                       q.Paused,
		Reset:                        q.Reset,
		RewardToken:                  q.RewardToken,
		Creator:                      q.Creator,
		AncillaryData:                q.AncillaryData,
	}, nil
}

func decodeQuestionV3(out []interface{}) (*types.Question, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getQuestion 返回 %d 个值", types.ErrProtocolMismatch, len(out))
	}
	q := *abi.ConvertType(out[0], new(questionDataV3)).(*questionDataV3)
	return &types.Question{
		Version:                      types.V3,
		RequestTimestamp:             q.RequestTimestamp,
		Reward:                       q.Reward,
		ProposalBond:                 q.ProposalBond,
		Liveness:                     q.Liveness,
		EmergencyResolutionTimestamp: q.EmergencyResolutionTimestamp,
		Resolved:                     q.Resolved,
		Paused:                       q.Paused,
		Reset:                        q.Reset,
		RewardToken:                  q.RewardToken,
		Creator:                      q.Creator,
		AncillaryData:                q.AncillaryData,
	}, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
