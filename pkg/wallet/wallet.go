package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// Signer 签名账户
type Signer struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// FromPrivateKey 解析十六进制私钥（可带 0x 前缀）
func FromPrivateKey(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("private key is required")
	}
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{PrivateKey: pk, Address: crypto.PubkeyToAddress(pk.PublicKey)}, nil
}

// FromMnemonic 按派生路径从助记词导出账户
func FromMnemonic(mnemonic string, derivationPath string) (*Signer, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	derivationPath = strings.TrimSpace(derivationPath)
	if mnemonic == "" {
		return nil, fmt.Errorf("mnemonic is required")
	}
	if derivationPath == "" {
		return nil, fmt.Errorf("derivation_path is required")
	}

	w, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	path, err := hdwallet.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation_path: %w", err)
	}

	acct, err := w.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("derive failed: %w", err)
	}

	pk, err := w.PrivateKey(acct)
	if err != nil {
		return nil, fmt.Errorf("private key failed: %w", err)
	}

	return &Signer{PrivateKey: pk, Address: acct.Address}, nil
}

// Load 私钥优先，否则使用助记词
func Load(privateKey, mnemonic, derivationPath string) (*Signer, error) {
	if strings.TrimSpace(privateKey) != "" {
		return FromPrivateKey(privateKey)
	}
	return FromMnemonic(mnemonic, derivationPath)
}
