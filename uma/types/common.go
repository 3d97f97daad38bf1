package types

import "fmt"

// Chain 区块链网络
type Chain int

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// String 返回链名称
func (c Chain) String() string {
	switch c {
	case ChainPolygon:
		return "polygon"
	case ChainAmoy:
		return "amoy"
	default:
		return fmt.Sprintf("chain(%d)", int(c))
	}
}

// Valid 是否为支持的链
func (c Chain) Valid() bool {
	return c == ChainPolygon || c == ChainAmoy
}

// Version 适配器合约版本（V1/V2/V3 的 ABI 互不兼容）
type Version int

const (
	V1 Version = 1
	V2 Version = 2
	V3 Version = 3
)

// String 返回版本名称
func (v Version) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// Valid 是否为已知版本
func (v Version) Valid() bool {
	return v >= V1 && v <= V3
}

// ParseChain 解析链 ID 或名称
func ParseChain(s string) (Chain, error) {
	switch s {
	case "polygon", "137":
		return ChainPolygon, nil
	case "amoy", "80002":
		return ChainAmoy, nil
	}
	return 0, fmt.Errorf("%w: chain %q", ErrInvalidChain, s)
}

// ParseVersion 解析版本号（"3" 或 "v3"）
func ParseVersion(s string) (Version, error) {
	switch s {
	case "1", "v1", "V1":
		return V1, nil
	case "2", "v2", "V2":
		return V2, nil
	case "3", "v3", "V3":
		return V3, nil
	}
	return 0, fmt.Errorf("%w: version %q", ErrUnsupportedTarget, s)
}
