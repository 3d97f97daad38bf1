package client

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// adapterEventsABI 三个版本共用的事件定义
const adapterEventsABI = `
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "questionID", "type": "bytes32"},
			{"indexed": true, "name": "requestTimestamp", "type": "uint256"},
			{"indexed": true, "name": "creator", "type": "address"},
			{"indexed": false, "name": "ancillaryData", "type": "bytes"},
			{"indexed": false, "name": "rewardToken", "type": "address"},
			{"indexed": false, "name": "reward", "type": "uint256"},
			{"indexed": false, "name": "proposalBond", "type": "uint256"}
		],
		"name": "QuestionInitialized",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "questionID", "type": "bytes32"},
			{"indexed": true, "name": "settledPrice", "type": "int256"},
			{"indexed": false, "name": "payouts", "type": "uint256[]"}
		],
		"name": "QuestionResolved",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "questionID", "type": "bytes32"},
			{"indexed": false, "name": "payouts", "type": "uint256[]"}
		],
		"name": "QuestionEmergencyResolved",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "questionID", "type": "bytes32"}],
		"name": "QuestionFlagged",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "questionID", "type": "bytes32"}],
		"name": "QuestionPaused",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "questionID", "type": "bytes32"}],
		"name": "QuestionUnpaused",
		"type": "event"
	}`

// 三个版本共用的函数
const adapterCommonFunctionsABI = `
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "resolve",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "flag",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "isFlagged",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "questionID", "type": "bytes32"},
			{"name": "payouts", "type": "uint256[]"}
		],
		"name": "emergencyResolve",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}`

// V1：initializeQuestion / readyToResolve / pauseQuestion，questions 为扁平 getter，
// admins 为数值账本（1 = admin）
const adapterV1FunctionsABI = `
	{
		"inputs": [
			{"name": "ancillaryData", "type": "bytes"},
			{"name": "rewardToken", "type": "address"},
			{"name": "reward", "type": "uint256"},
			{"name": "proposalBond", "type": "uint256"}
		],
		"name": "initializeQuestion",
		"outputs": [{"name": "questionID", "type": "bytes32"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "readyToResolve",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "bytes32"}],
		"name": "questions",
		"outputs": [
			{"name": "requestTimestamp", "type": "uint256"},
			{"name": "reward", "type": "uint256"},
			{"name": "proposalBond", "type": "uint256"},
			{"name": "adminResolutionTimestamp", "type": "uint256"},
			{"name": "resolved", "type": "bool"},
			{"name": "paused", "type": "bool"},
			{"name": "rewardToken", "type": "address"},
			{"name": "creator", "type": "address"},
			{"name": "ancillaryData", "type": "bytes"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "isQuestionInitialized",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "pauseQuestion",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "unpauseQuestion",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "address"}],
		"name": "admins",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}`

// V2/V3 共用：pause/unpause、布尔 isAdmin 以及 admin 管理
const adapterV2CommonFunctionsABI = `
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "ready",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "pause",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "unpause",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "addr", "type": "address"}],
		"name": "isAdmin",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "admin", "type": "address"}],
		"name": "addAdmin",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "admin", "type": "address"}],
		"name": "removeAdmin",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "renounceAdmin",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "admin", "type": "address"},
			{"indexed": true, "name": "newAdminAddress", "type": "address"}
		],
		"name": "NewAdmin",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "admin", "type": "address"},
			{"indexed": true, "name": "removedAdmin", "type": "address"}
		],
		"name": "RemovedAdmin",
		"type": "event"
	}`

const adapterV2FunctionsABI = `
	{
		"inputs": [
			{"name": "ancillaryData", "type": "bytes"},
			{"name": "rewardToken", "type": "address"},
			{"name": "reward", "type": "uint256"},
			{"name": "proposalBond", "type": "uint256"}
		],
		"name": "initialize",
		"outputs": [{"name": "questionID", "type": "bytes32"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "getQuestion",
		"outputs": [{
			"components": [
				{"name": "requestTimestamp", "type": "uint256"},
				{"name": "reward", "type": "uint256"},
				{"name": "proposalBond", "type": "uint256"},
				{"name": "emergencyResolutionTimestamp", "type": "uint256"},
				{"name": "resolved", "type": "bool"},
				{"name": "paused", "type": "bool"},
				{"name": "reset", "type": "bool"},
				{"name": "rewardToken", "type": "address"},
				{"name": "creator", "type": "address"},
				{"name": "ancillaryData", "type": "bytes"}
			],
			"name": "",
			"type": "tuple"
		}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "isQuestionInitialized",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}`

// V3：initialize 增加 liveness，新增 reset、公告板和 getExpectedPayouts
const adapterV3FunctionsABI = `
	{
		"inputs": [
			{"name": "ancillaryData", "type": "bytes"},
			{"name": "rewardToken", "type": "address"},
			{"name": "reward", "type": "uint256"},
			{"name": "proposalBond", "type": "uint256"},
			{"name": "liveness", "type": "uint256"}
		],
		"name": "initialize",
		"outputs": [{"name": "questionID", "type": "bytes32"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "getQuestion",
		"outputs": [{
			"components": [
				{"name": "requestTimestamp", "type": "uint256"},
				{"name": "reward", "type": "uint256"},
				{"name": "proposalBond", "type": "uint256"},
				{"name": "liveness", "type": "uint256"},
				{"name": "emergencyResolutionTimestamp", "type": "uint256"},
				{"name": "resolved", "type": "bool"},
				{"name": "paused", "type": "bool"},
				{"name": "reset", "type": "bool"},
				{"name": "rewardToken", "type": "address"},
				{"name": "creator", "type": "address"},
				{"name": "ancillaryData", "type": "bytes"}
			],
			"name": "",
			"type": "tuple"
		}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "isInitialized",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "reset",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "questionID", "type": "bytes32"},
			{"name": "update", "type": "bytes"}
		],
		"name": "postUpdate",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "questionID", "type": "bytes32"},
			{"name": "owner", "type": "address"}
		],
		"name": "getUpdates",
		"outputs": [{
			"components": [
				{"name": "timestamp", "type": "uint256"},
				{"name": "update", "type": "bytes"}
			],
			"name": "",
			"type": "tuple[]"
		}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "questionID", "type": "bytes32"},
			{"name": "owner", "type": "address"}
		],
		"name": "getLatestUpdate",
		"outputs": [{
			"components": [
				{"name": "timestamp", "type": "uint256"},
				{"name": "update", "type": "bytes"}
			],
			"name": "",
			"type": "tuple"
		}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "questionID", "type": "bytes32"}],
		"name": "getExpectedPayouts",
		"outputs": [{"name": "", "type": "uint256[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "questionID", "type": "bytes32"}],
		"name": "QuestionReset",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "questionID", "type": "bytes32"},
			{"indexed": true, "name": "owner", "type": "address"},
			{"indexed": false, "name": "update", "type": "bytes"}
		],
		"name": "AncillaryDataUpdated",
		"type": "event"
	}`

// AdapterV1ABI UMA CTF Adapter V1 ABI
const AdapterV1ABI = "[" + adapterV1FunctionsABI + "," + adapterCommonFunctionsABI + "," + adapterEventsABI + "]"

// AdapterV2ABI UMA CTF Adapter V2 ABI
const AdapterV2ABI = "[" + adapterV2FunctionsABI + "," + adapterV2CommonFunctionsABI + "," + adapterCommonFunctionsABI + "," + adapterEventsABI + "]"

// AdapterV3ABI UMA CTF Adapter V3 ABI
const AdapterV3ABI = "[" + adapterV3FunctionsABI + "," + adapterV2CommonFunctionsABI + "," + adapterCommonFunctionsABI + "," + adapterEventsABI + "]"

// CTFABI Conditional Token Framework 合约 ABI（只包含适配器交互涉及的部分）
const CTFABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "conditionId", "type": "bytes32"},
			{"indexed": true, "name": "oracle", "type": "address"},
			{"indexed": true, "name": "questionId", "type": "bytes32"},
			{"indexed": false, "name": "outcomeSlotCount", "type": "uint256"}
		],
		"name": "ConditionPreparation",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "conditionId", "type": "bytes32"},
			{"indexed": true, "name": "oracle", "type": "address"},
			{"indexed": true, "name": "questionId", "type": "bytes32"},
			{"indexed": false, "name": "outcomeSlotCount", "type": "uint256"},
			{"indexed": false, "name": "payoutNumerators", "type": "uint256[]"}
		],
		"name": "ConditionResolution",
		"type": "event"
	},
	{
		"inputs": [
			{"name": "oracle", "type": "address"},
			{"name": "questionId", "type": "bytes32"},
			{"name": "outcomeSlotCount", "type": "uint256"}
		],
		"name": "getConditionId",
		"outputs": [{"name": "", "type": "bytes32"}],
		"stateMutability": "pure",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "bytes32"}],
		"name": "payoutDenominator",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "bytes32"}, {"name": "", "type": "uint256"}],
		"name": "payoutNumerators",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ERC20ABI 奖励代币（余额与授权）
const ERC20ABI = `[
	{
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "spender", "type": "address"}, {"name": "amount", "type": "uint256"}],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// 进程级只读 ABI，启动时解析一次
var (
	adapterV1ABI = mustParseABI(AdapterV1ABI)
	adapterV2ABI = mustParseABI(AdapterV2ABI)
	adapterV3ABI = mustParseABI(AdapterV3ABI)
	ctfABI       = mustParseABI(CTFABI)
	erc20ABI     = mustParseABI(ERC20ABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("解析 ABI 失败: " + err.Error())
	}
	return parsed
}

// ConditionalTokensABI 返回解析后的 CTF ABI
func ConditionalTokensABI() abi.ABI {
	return ctfABI
}
