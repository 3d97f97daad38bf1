package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// USDCDecimals 抵押品（USDC.e）精度
const USDCDecimals int32 = 6

// ParseUnits 将十进制字符串（如 "1.5"）转换为最小单位整数。不允许负数或超出精度的小数位
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q must not be negative", s)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatUnits 将最小单位整数格式化为十进制字符串，nil 视为 0
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// ParseUSDC ParseUnits 的 6 位精度版本
func ParseUSDC(s string) (*big.Int, error) {
	return ParseUnits(s, USDCDecimals)
}

// FormatUSDC FormatUnits 的 6 位精度版本
func FormatUSDC(v *big.Int) string {
	return FormatUnits(v, USDCDecimals)
}
