// Package verify implements per-chain wallet signature verification.
//
// Each chain family has its own message encoding and address-recovery rules;
// dispatch is an exhaustive switch over the closed chain enum so an unrouted
// family is caught here rather than falling through at runtime.
package verify

import (
	"fmt"

	"github.com/signet-labs/signet/core"
)

// Signature checks that signature was produced over message by the holder of
// address on the given chain family. It is pure: no I/O, no mutable state.
func Signature(chain core.ChainType, address, message, signature string) error {
	switch chain {
	case core.ChainEVM:
		return evmSignature(address, message, signature)
	case core.ChainSolana:
		return solanaSignature(address, message, signature)
	case core.ChainSui:
		return fmt.Errorf("%w: sui has no verifier routed", core.ErrUnsupportedChain)
	default:
		return fmt.Errorf("%w: %q", core.ErrUnsupportedChain, chain)
	}
}
