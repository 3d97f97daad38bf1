package client

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/betbot/umactf/uma/types"
)

const simSafetyPeriod = 2 * 24 * 3600

type simQuestion struct {
	requestTimestamp *big.Int
	reward           *big.Int
	proposalBond     *big.Int
	liveness         *big.Int
	emergencyTs      *big.Int
	resolved         bool
	paused           bool
	reset            bool
	rewardToken      common.Address
	creator          common.Address
	ancillaryData    []byte
	priceAvailable   bool
}

// simChain 内存中的适配器 + CTF，按真实 ABI 解码 calldata、编码返回值和日志
type simChain struct {
	t       *testing.T
	version types.Version
	abi     abi.ABI
	from    common.Address
	ctf     common.Address
	token   common.Address

	now       int64
	txCount   int64
	admins    map[common.Address]bool
	questions map[common.Hash]*simQuestion
	updates   map[common.Hash]map[common.Address][]ancillaryDataUpdate

	// CTF 上已结算条件的 payouts
	conditionPayouts map[common.Hash][]*big.Int
	balances         map[common.Address]*big.Int
	allowances       map[[2]common.Address]*big.Int

	// 已提交的方法名，按顺序
	submitted []string

	omitConditionEvent bool
}

func newSimChain(t *testing.T, version types.Version) *simChain {
	from := common.HexToAddress("0x00000000000000000000000000000000000000A1")
	return &simChain{
		t:         t,
		version:   version,
		abi:       dialects[version].abi,
		from:      from,
		ctf:       common.HexToAddress(PolygonMainnetContracts.ConditionalTokens),
		token:     common.HexToAddress(PolygonMainnetContracts.Collateral),
		now:       1_700_000_000,
		admins:    map[common.Address]bool{from: true},
		questions: map[common.Hash]*simQuestion{},
		updates:   map[common.Hash]map[common.Address][]ancillaryDataUpdate{},

		conditionPayouts: map[common.Hash][]*big.Int{},
		balances:         map[common.Address]*big.Int{from: big.NewInt(1_000_000_000)},
		allowances:       map[[2]common.Address]*big.Int{},
	}
}

func (s *simChain) From() common.Address { return s.from }

// completeOracleRound 模拟预言机给出价格
func (s *simChain) completeOracleRound(questionID common.Hash) {
	q, ok := s.questions[questionID]
	require.True(s.t, ok)
	q.priceAvailable = true
}

func (s *simChain) advance(seconds int64) { s.now += seconds }

func (s *simChain) abiFor(to common.Address) abi.ABI {
	switch to {
	case s.ctf:
		return ctfABI
	case s.token:
		return erc20ABI
	}
	return s.abi
}

func (s *simChain) decode(contractABI abi.ABI, data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("calldata too short")
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

func (s *simChain) question(arg interface{}) (*simQuestion, common.Hash) {
	id := common.Hash(arg.([32]byte))
	return s.questions[id], id
}

func (s *simChain) ready(q *simQuestion) bool {
	return q != nil && !q.paused && !q.resolved && q.priceAvailable
}

func (s *simChain) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	method, args, err := s.decode(s.abiFor(to), data)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	switch method.Name {
	case "ready", "readyToResolve":
		q, _ := s.question(args[0])
		out = []interface{}{s.ready(q)}
	case "isInitialized", "isQuestionInitialized":
		q, _ := s.question(args[0])
		out = []interface{}{q != nil}
	case "isFlagged":
		q, _ := s.question(args[0])
		out = []interface{}{q != nil && q.emergencyTs.Sign() > 0}
	case "isAdmin":
		out = []interface{}{s.admins[args[0].(common.Address)]}
	case "admins":
		v := big.NewInt(0)
		if s.admins[args[0].(common.Address)] {
			v = big.NewInt(1)
		}
		out = []interface{}{v}
	case "questions":
		q, _ := s.question(args[0])
		if q == nil {
			q = emptySimQuestion()
		}
		out = []interface{}{q.requestTimestamp, q.reward, q.proposalBond, q.emergencyTs,
			q.resolved, q.paused, q.rewardToken, q.creator, q.ancillaryData}
	case "getQuestion":
		q, _ := s.question(args[0])
		if q == nil {
			q = emptySimQuestion()
		}
		if s.version == types.V2 {
			out = []interface{}{questionDataV2{
				RequestTimestamp: q.requestTimestamp, Reward: q.reward, ProposalBond: q.proposalBond,
				EmergencyResolutionTimestamp: q.emergencyTs, Resolved: q.resolved, Paused: q.paused,
				Reset: q.reset, RewardToken: q.rewardToken, Creator: q.creator, AncillaryData: q.ancillaryData,
			}}
		} else {
			out = []interface{}{questionDataV3{
				RequestTimestamp: q.requestTimestamp, Reward: q.reward, ProposalBond: q.proposalBond,
				Liveness: q.liveness, EmergencyResolutionTimestamp: q.emergencyTs, Resolved: q.resolved,
				Paused: q.paused, Reset: q.reset, RewardToken: q.rewardToken, Creator: q.creator,
				AncillaryData: q.ancillaryData,
			}}
		}
	case "getUpdates":
		_, id := s.question(args[0])
		list := s.updates[id][args[1].(common.Address)]
		if list == nil {
			list = []ancillaryDataUpdate{}
		}
		out = []interface{}{list}
	case "getLatestUpdate":
		_, id := s.question(args[0])
		latest := ancillaryDataUpdate{Timestamp: new(big.Int), Update: []byte{}}
		if list := s.updates[id][args[1].(common.Address)]; len(list) > 0 {
			latest = list[len(list)-1]
		}
		out = []interface{}{latest}
	case "getExpectedPayouts":
		q, _ := s.question(args[0])
		if q == nil || !q.priceAvailable {
			return nil, fmt.Errorf("execution reverted: PriceNotAvailable")
		}
		out = []interface{}{[]*big.Int{big.NewInt(1), big.NewInt(0)}}
	case "getConditionId":
		out = []interface{}{simConditionID(args[0].(common.Address), common.Hash(args[1].([32]byte)))}
	case "payoutDenominator":
		den := new(big.Int)
		for _, p := range s.conditionPayouts[common.Hash(args[0].([32]byte))] {
			den.Add(den, p)
		}
		out = []interface{}{den}
	case "payoutNumerators":
		v := new(big.Int)
		if p := s.conditionPayouts[common.Hash(args[0].([32]byte))]; p != nil {
			v = p[args[1].(*big.Int).Int64()]
		}
		out = []interface{}{v}
	case "balanceOf":
		out = []interface{}{s.balance(args[0].(common.Address))}
	case "allowance":
		out = []interface{}{s.allowance(args[0].(common.Address), args[1].(common.Address))}
	default:
		return nil, fmt.Errorf("sim: unexpected call %s", method.Name)
	}
	return method.Outputs.Pack(out...)
}

func (s *simChain) Transact(_ context.Context, to common.Address, data []byte) (*ethtypes.Receipt, error) {
	method, args, err := s.decode(s.abiFor(to), data)
	if err != nil {
		return nil, err
	}
	s.submitted = append(s.submitted, method.Name)

	logs, err := s.apply(to, method.Name, args)
	if err != nil {
		return nil, err
	}

	s.txCount++
	receipt := &ethtypes.Receipt{
		Status:      ethtypes.ReceiptStatusSuccessful,
		TxHash:      crypto.Keccak256Hash(big.NewInt(s.txCount).Bytes()),
		BlockNumber: big.NewInt(s.txCount),
		Logs:        logs,
	}
	for i, l := range receipt.Logs {
		l.TxHash = receipt.TxHash
		l.Index = uint(i)
	}
	return receipt, nil
}

func (s *simChain) requireAdmin() error {
	if !s.admins[s.from] {
		return fmt.Errorf("execution reverted: NotAdmin")
	}
	return nil
}

func (s *simChain) apply(adapter common.Address, name string, args []interface{}) ([]*ethtypes.Log, error) {
	switch name {
	case "initialize", "initializeQuestion":
		ancillaryData := args[0].([]byte)
		timestamp := big.NewInt(s.now)
		questionID := crypto.Keccak256Hash(ancillaryData, s.from.Bytes(), common.LeftPadBytes(timestamp.Bytes(), 32))
		if _, exists := s.questions[questionID]; exists {
			return nil, fmt.Errorf("execution reverted: Initialized")
		}
		if reward := args[2].(*big.Int); reward.Sign() > 0 {
			if err := s.pull(args[1].(common.Address), adapter, reward); err != nil {
				return nil, err
			}
		}
		q := &simQuestion{
			requestTimestamp: timestamp,
			reward:           args[2].(*big.Int),
			proposalBond:     args[3].(*big.Int),
			liveness:         new(big.Int),
			emergencyTs:      new(big.Int),
			rewardToken:      args[1].(common.Address),
			creator:          s.from,
			ancillaryData:    ancillaryData,
		}
		if len(args) == 5 {
			q.liveness = args[4].(*big.Int)
		}
		s.questions[questionID] = q

		var logs []*ethtypes.Log
		if !s.omitConditionEvent {
			conditionID := simConditionID(adapter, questionID)
			logs = append(logs, s.makeLog(ctfABI, s.ctf, "ConditionPreparation",
				[]interface{}{conditionID, adapter, questionID}, big.NewInt(2)))
		}
		logs = append(logs, s.makeLog(s.abi, adapter, "QuestionInitialized",
			[]interface{}{questionID, timestamp, s.from},
			ancillaryData, q.rewardToken, q.reward, q.proposalBond))
		return logs, nil

	case "resolve":
		q, id := s.question(args[0])
		if !s.ready(q) {
			return nil, fmt.Errorf("execution reverted: NotReadyToResolve")
		}
		q.resolved = true
		payouts := []*big.Int{big.NewInt(1), big.NewInt(0)}
		s.conditionPayouts[simConditionID(adapter, id)] = payouts
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, "QuestionResolved",
			[]interface{}{id, big.NewInt(1e18)}, payouts)}, nil

	case "pause", "pauseQuestion", "unpause", "unpauseQuestion":
		if err := s.requireAdmin(); err != nil {
			return nil, err
		}
		q, id := s.question(args[0])
		if q == nil {
			return nil, fmt.Errorf("execution reverted: NotInitialized")
		}
		q.paused = name == "pause" || name == "pauseQuestion"
		event := "QuestionUnpaused"
		if q.paused {
			event = "QuestionPaused"
		}
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, event, []interface{}{id})}, nil

	case "flag":
		if err := s.requireAdmin(); err != nil {
			return nil, err
		}
		q, id := s.question(args[0])
		if q == nil {
			return nil, fmt.Errorf("execution reverted: NotInitialized")
		}
		if q.emergencyTs.Sign() > 0 {
			return nil, fmt.Errorf("execution reverted: Flagged")
		}
		q.emergencyTs = big.NewInt(s.now + simSafetyPeriod)
		q.paused = true
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, "QuestionFlagged", []interface{}{id})}, nil

	case "emergencyResolve":
		if err := s.requireAdmin(); err != nil {
			return nil, err
		}
		q, id := s.question(args[0])
		if q == nil || q.emergencyTs.Sign() == 0 {
			return nil, fmt.Errorf("execution reverted: NotFlagged")
		}
		if s.now < q.emergencyTs.Int64() {
			return nil, fmt.Errorf("execution reverted: SafetyPeriodNotPassed")
		}
		q.resolved = true
		s.conditionPayouts[simConditionID(adapter, id)] = args[1].([]*big.Int)
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, "QuestionEmergencyResolved",
			[]interface{}{id}, args[1].([]*big.Int))}, nil

	case "reset":
		if err := s.requireAdmin(); err != nil {
			return nil, err
		}
		q, id := s.question(args[0])
		if q == nil {
			return nil, fmt.Errorf("execution reverted: NotInitialized")
		}
		if q.resolved {
			return nil, fmt.Errorf("execution reverted: Resolved")
		}
		q.reset = true
		q.priceAvailable = false
		q.requestTimestamp = big.NewInt(s.now)
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, "QuestionReset", []interface{}{id})}, nil

	case "postUpdate":
		_, id := s.question(args[0])
		update := args[1].([]byte)
		if s.updates[id] == nil {
			s.updates[id] = map[common.Address][]ancillaryDataUpdate{}
		}
		s.updates[id][s.from] = append(s.updates[id][s.from], ancillaryDataUpdate{
			Timestamp: big.NewInt(s.now),
			Update:    update,
		})
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, "AncillaryDataUpdated",
			[]interface{}{id, s.from}, update)}, nil

	case "addAdmin", "removeAdmin":
		if err := s.requireAdmin(); err != nil {
			return nil, err
		}
		who := args[0].(common.Address)
		s.admins[who] = name == "addAdmin"
		event := "RemovedAdmin"
		if name == "addAdmin" {
			event = "NewAdmin"
		}
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, event, []interface{}{s.from, who})}, nil

	case "renounceAdmin":
		if err := s.requireAdmin(); err != nil {
			return nil, err
		}
		delete(s.admins, s.from)
		return []*ethtypes.Log{s.makeLog(s.abi, adapter, "RemovedAdmin", []interface{}{s.from, s.from})}, nil

	case "approve":
		spender := args[0].(common.Address)
		s.allowances[[2]common.Address{s.from, spender}] = args[1].(*big.Int)
		return nil, nil
	}
	return nil, fmt.Errorf("sim: unexpected transaction %s", name)
}

func (s *simChain) balance(owner common.Address) *big.Int {
	if v, ok := s.balances[owner]; ok {
		return v
	}
	return new(big.Int)
}

func (s *simChain) allowance(owner, spender common.Address) *big.Int {
	if v, ok := s.allowances[[2]common.Address{owner, spender}]; ok {
		return v
	}
	return new(big.Int)
}

// pull 模拟适配器 transferFrom 划走 reward
func (s *simChain) pull(token, spender common.Address, amount *big.Int) error {
	if token != s.token {
		return fmt.Errorf("execution reverted: unknown token")
	}
	if s.allowance(s.from, spender).Cmp(amount) < 0 {
		return fmt.Errorf("execution reverted: ERC20: insufficient allowance")
	}
	if s.balance(s.from).Cmp(amount) < 0 {
		return fmt.Errorf("execution reverted: ERC20: transfer amount exceeds balance")
	}
	s.allowances[[2]common.Address{s.from, spender}] = new(big.Int).Sub(s.allowance(s.from, spender), amount)
	s.balances[s.from] = new(big.Int).Sub(s.balance(s.from), amount)
	s.balances[spender] = new(big.Int).Add(s.balance(spender), amount)
	return nil
}

func (s *simChain) makeLog(contractABI abi.ABI, address common.Address, name string, indexed []interface{}, data ...interface{}) *ethtypes.Log {
	ev, ok := contractABI.Events[name]
	require.True(s.t, ok, name)

	topics := []common.Hash{ev.ID}
	for _, v := range indexed {
		t, err := abi.MakeTopics([]interface{}{v})
		require.NoError(s.t, err)
		topics = append(topics, t[0][0])
	}
	payload, err := ev.Inputs.NonIndexed().Pack(data...)
	require.NoError(s.t, err)

	return &ethtypes.Log{Address: address, Topics: topics, Data: payload}
}

func simConditionID(oracle common.Address, questionID common.Hash) common.Hash {
	return crypto.Keccak256Hash(oracle.Bytes(), questionID.Bytes(), common.LeftPadBytes(big.NewInt(2).Bytes(), 32))
}

func emptySimQuestion() *simQuestion {
	return &simQuestion{
		requestTimestamp: new(big.Int),
		reward:           new(big.Int),
		proposalBond:     new(big.Int),
		liveness:         new(big.Int),
		emergencyTs:      new(big.Int),
		ancillaryData:    []byte{},
	}
}
