package verify

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/signet-labs/signet/core"
)

// evmSignature verifies an EIP-191 personal_sign signature by recovering the
// signing address and comparing it to the claimed one. Comparison happens on
// checksum-normalized addresses, so case differences in the input never
// matter.
func evmSignature(address, message, signature string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: not a hex address", core.ErrInvalidSignature)
	}

	sig, err := decodeHexSignature(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature must be %d bytes, got %d",
			core.ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}

	// Wallets emit V as 27/28, go-ethereum expects 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return fmt.Errorf("%w: invalid recovery id %d", core.ErrInvalidSignature, sig[64])
	}

	hash := accounts.TextHash([]byte(message))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return fmt.Errorf("%w: recovery failed", core.ErrInvalidSignature)
	}

	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(address) {
		return fmt.Errorf("%w: recovered address mismatch", core.ErrInvalidSignature)
	}
	return nil
}

func decodeHexSignature(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	return hex.DecodeString(s)
}
