package client

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// EventArgument 在回执日志中查找事件并取出参数
// 按日志顺序扫描（只比较 topic0，不限定合约地址），同一事件出现多次时以最后一条为准；没有匹配时返回 false
func EventArgument(receipt *ethtypes.Receipt, contractABI abi.ABI, event, arg string) (interface{}, bool) {
	return eventArgument(logrus.NewEntry(logrus.StandardLogger()), receipt, contractABI, event, arg)
}

func eventArgument(entry *logrus.Entry, receipt *ethtypes.Receipt, contractABI abi.ABI, event, arg string) (interface{}, bool) {
	if receipt == nil {
		return nil, false
	}
	ev, ok := contractABI.Events[event]
	if !ok {
		return nil, false
	}

	var (
		val   interface{}
		found bool
	)
	for _, log := range receipt.Logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != ev.ID {
			continue
		}
		args, err := decodeEvent(ev, log)
		if err != nil {
			entry.WithError(err).Debugf("[events] 跳过无法解析的 %s 日志 (index=%d)", event, log.Index)
			continue
		}
		if v, ok := args[arg]; ok {
			val, found = v, true
		}
	}
	return val, found
}

// EventHash 取出 bytes32 类型的事件参数
func EventHash(receipt *ethtypes.Receipt, contractABI abi.ABI, event, arg string) (common.Hash, bool) {
	return toHash(EventArgument(receipt, contractABI, event, arg))
}

// eventHash 同 EventHash，诊断日志带上客户端的 adapter/version 字段
func (c *Client) eventHash(receipt *ethtypes.Receipt, contractABI abi.ABI, event, arg string) (common.Hash, bool) {
	return toHash(eventArgument(c.log, receipt, contractABI, event, arg))
}

func toHash(v interface{}, ok bool) (common.Hash, bool) {
	if !ok {
		return common.Hash{}, false
	}
	switch h := v.(type) {
	case [32]byte:
		return common.Hash(h), true
	case common.Hash:
		return h, true
	default:
		return common.Hash{}, false
	}
}

// decodeEvent 解析 indexed（topics）和非 indexed（data）参数
func decodeEvent(ev abi.Event, log *ethtypes.Log) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(out, log.Data); err != nil {
		return nil, err
	}

	var indexed abi.Arguments
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(out, indexed, log.Topics[1:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
