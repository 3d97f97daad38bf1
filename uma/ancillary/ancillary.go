// Package ancillary 构造/解析 UMA 乐观预言机使用的问题描述（ancillary data）
package ancillary

import (
	"fmt"
	"regexp"

	"github.com/betbot/umactf/uma/types"
)

const (
	// BulletinBoard 问题创建者发布澄清更新的公告板合约
	BulletinBoard = "0x6A9D222616C90FcA5754cd1333cFD9b7fb6a4F74"
	// BulletinBoardReference 公告板约定的说明交易
	BulletinBoardReference = "https://polygonscan.com/tx/0xa14f01b115c4913624fc3f508f960f4dea252758e73c28f5f07f8e19d7bca066"

	// MaxAncillaryDataLength 适配器 maxAncillaryData，超过会被链上拒绝
	MaxAncillaryDataLength = 8139
)

// outcomeRegex 注意与 ResolutionData 的写法并不对称（"p2 to a"），两者独立约定
var outcomeRegex = regexp.MustCompile(`Where p1 corresponds to (\w+), p2 to a (\w+)`)

// Outcomes 从 ancillary data 中解析出的结果对
type Outcomes struct {
	A string
	B string
}

// ResolutionData 生成二元结果的 res_data 子句
// 例如 [Yes, No] => p1: 0, p2: 1, p3: 0.5. Where p1 corresponds to No, p2 to Yes, ...
func ResolutionData(outcomes []string) (string, error) {
	if len(outcomes) != 2 {
		return "", fmt.Errorf("%w: got %d", types.ErrInvalidArity, len(outcomes))
	}
	return fmt.Sprintf(
		`p1: 0, p2: 1, p3: 0.5. Where p1 corresponds to %s, p2 to %s, p3 to unknown/50-50. "Updates made by the question creator via the bulletin board at %s as described by %s should be considered.`,
		outcomes[1], outcomes[0], BulletinBoard, BulletinBoardReference,
	), nil
}

// Encode 生成 ancillary data。相同输入总是产生相同字节
func Encode(title, description string, outcomes []string) ([]byte, error) {
	s, err := EncodeString(title, description, outcomes)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// EncodeString 同 Encode，返回字符串形式
func EncodeString(title, description string, outcomes []string) (string, error) {
	resData, err := ResolutionData(outcomes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("q: title: %s, description: %s res_data: %s", title, description, resData), nil
}

// Decode 解析结果对。不是所有 ancillary data 都由本包生成，找不到时返回 false
func Decode(data []byte) (*Outcomes, bool) {
	m := outcomeRegex.FindSubmatch(data)
	if len(m) != 3 {
		return nil, false
	}
	return &Outcomes{A: string(m[1]), B: string(m[2])}, true
}
