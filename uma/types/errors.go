package types

import "errors"

// 校验错误：在任何网络交互之前同步返回，修正输入即可恢复
var (
	ErrInvalidArity         = errors.New("umactf: outcomes must contain exactly 2 entries")
	ErrUnsupportedTarget    = errors.New("umactf: unsupported chain/version")
	ErrInvalidChain         = errors.New("umactf: invalid chain binding")
	ErrUnsupportedOperation = errors.New("umactf: operation not supported by adapter version")
)

// 协议不匹配：交易已确认但缺少预期事件，说明 ABI/版本绑定错误，不应重试
var ErrProtocolMismatch = errors.New("umactf: protocol mismatch")

// ErrTransactionReverted 交易已上链但执行失败（status = 0）
var ErrTransactionReverted = errors.New("umactf: transaction reverted")
