package client

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/betbot/umactf/uma/types"
)

// ContractConfig 链上合约配置
type ContractConfig struct {
	Collateral        string                   // 抵押品代币地址
	ConditionalTokens string                   // 条件代币合约地址（ConditionPreparation 事件来源）
	Adapters          map[types.Version]string // 各版本 UMA CTF Adapter 的标准部署地址
}

// PolygonMainnetContracts Polygon 主网合约地址
var PolygonMainnetContracts = ContractConfig{
	Collateral:        "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", // USDC
	ConditionalTokens: "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045",
	Adapters: map[types.Version]string{
		types.V1: "0xCB1822859cEF82Cd2Eb4E6276C7916e692995130",
		types.V2: "0x6A9D222616C90FcA5754cd1333cFD9b7fb6a4F74",
		types.V3: "0x71392E133063CC0D16F40E1F9B60227404Bc03f7",
	},
}

// AmoyTestnetContracts Amoy 测试网合约地址
// 测试网没有标准适配器部署，需要显式传入地址
var AmoyTestnetContracts = ContractConfig{
	Collateral:        "0x9c4e1703476e875070ee25b56a58b008cfb8fa78",
	ConditionalTokens: "0x69308FB512518e39F9b16112fA8d994F4e2Bf8bB",
	Adapters:          map[types.Version]string{},
}

// GetContractConfig 根据链 ID 获取合约配置
func GetContractConfig(chainID types.Chain) (*ContractConfig, error) {
	switch chainID {
	case types.ChainPolygon:
		return &PolygonMainnetContracts, nil
	case types.ChainAmoy:
		return &AmoyTestnetContracts, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的链 ID %d", types.ErrUnsupportedTarget, chainID)
	}
}

// CanonicalAdapterAddress 获取 (链, 版本) 对应的标准适配器地址
// 未知组合一律返回 ErrUnsupportedTarget，不会返回空地址
func CanonicalAdapterAddress(chainID types.Chain, version types.Version) (common.Address, error) {
	cfg, err := GetContractConfig(chainID)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := cfg.Adapters[version]
	if !ok || !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %s 上没有 %s 适配器", types.ErrUnsupportedTarget, chainID, version)
	}
	return common.HexToAddress(addr), nil
}

// LookupAdapterAddress 反查地址登记的 (链, 版本)
func LookupAdapterAddress(addr common.Address) (types.Chain, types.Version, bool) {
	for _, chainID := range []types.Chain{types.ChainPolygon, types.ChainAmoy} {
		cfg, _ := GetContractConfig(chainID)
		for version, a := range cfg.Adapters {
			if common.HexToAddress(a) == addr {
				return chainID, version, true
			}
		}
	}
	return 0, 0, false
}
