package verify

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/signet-labs/signet/core"
)

// solanaSignature verifies an ed25519 signature over the raw UTF-8 message
// bytes against the public key decoded from the base58 address.
func solanaSignature(address, message, signature string) error {
	pubKey, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: invalid base58 address", core.ErrInvalidSignature)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key must be %d bytes, got %d",
			core.ErrInvalidSignature, ed25519.PublicKeySize, len(pubKey))
	}

	sig, err := decodeSolanaSignature(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature must be %d bytes, got %d",
			core.ErrInvalidSignature, ed25519.SignatureSize, len(sig))
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKey), []byte(message), sig) {
		return core.ErrInvalidSignature
	}
	return nil
}

// decodeSolanaSignature accepts base58 (Phantom and friends) with a base64
// fallback for wallets that emit the latter.
func decodeSolanaSignature(s string) ([]byte, error) {
	if sig, err := base58.Decode(s); err == nil && len(sig) == ed25519.SignatureSize {
		return sig, nil
	}
	sig, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("signature is neither base58 nor base64")
	}
	return sig, nil
}
