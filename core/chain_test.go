package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChainType(t *testing.T) {
	tests := []struct {
		in      string
		want    ChainType
		wantErr bool
	}{
		{"evm", ChainEVM, false},
		{"sol", ChainSolana, false},
		{"sui", "", true}, // reserved, not routable
		{"EVM", "", true},
		{"solana", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChainType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedChain)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
