package core

import "fmt"

// ChainType identifies the cryptographic ecosystem a wallet belongs to.
// It is a closed enumeration: adding a value here requires a matching
// verifier branch, which the verify package enforces with an exhaustive
// switch.
type ChainType string

const (
	// ChainEVM covers all EVM-compatible chains (secp256k1, EIP-191
	// personal_sign, 0x-prefixed hex addresses).
	ChainEVM ChainType = "evm"

	// ChainSolana uses ed25519 signatures and base58-encoded addresses.
	ChainSolana ChainType = "sol"

	// ChainSui is reserved. It is never accepted at the API boundary and
	// has no verifier routed yet.
	ChainSui ChainType = "sui"
)

// ParseChainType validates a wire-format chain tag. Only routable chains
// parse; the reserved ChainSui is rejected like any unknown value.
func ParseChainType(s string) (ChainType, error) {
	switch ChainType(s) {
	case ChainEVM:
		return ChainEVM, nil
	case ChainSolana:
		return ChainSolana, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, s)
}

func (c ChainType) String() string {
	return string(c)
}
