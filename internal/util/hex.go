package util

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Keccak256 returns the keccak-256 digest of data.
func Keccak256(data []byte) []byte {
	return crypto.Keccak256(data)
}

// StripHexPrefix removes a single leading "0x" or "0X" if present.
func StripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// HexToBytes decodes a hex string with or without 0x prefix.
// Unlike common.FromHex it rejects odd-length and non-hex input.
func HexToBytes(s string) ([]byte, error) {
	b, err := hexutil.Decode("0x" + StripHexPrefix(s))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex string %q", s)
	}
	return b, nil
}

// BytesToHex encodes b as lowercase hex without 0x prefix.
func BytesToHex(b []byte) string {
	return common.Bytes2Hex(b)
}
