package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChallenge(t *testing.T) {
	addr := "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

	ch, err := NewChallenge(addr, ChainEVM)
	require.NoError(t, err)

	assert.Equal(t, addr, ch.Address)
	assert.Equal(t, ChainEVM, ch.Chain)
	assert.True(t, strings.Contains(ch.Message, addr), "message must contain the address verbatim")
	assert.Equal(t, ChallengeMessage(addr, ch.Timestamp), ch.Message)
}

func TestNewChallengeEmptyAddress(t *testing.T) {
	_, err := NewChallenge("", ChainEVM)
	assert.ErrorIs(t, err, ErrInvalidChallenge)
}

func TestParseChallengeTimestamp(t *testing.T) {
	ch, err := NewChallenge("9aE4vSh1Mi3vAqaZ1Rr1z7TzUcWa3Hq6eS2bqNkEXAMPLE", ChainSolana)
	require.NoError(t, err)

	ts, err := ParseChallengeTimestamp(ch.Message)
	require.NoError(t, err)
	assert.Equal(t, ch.Timestamp, ts, "recovered timestamp must equal the returned one")
}

func TestParseChallengeTimestampMissing(t *testing.T) {
	_, err := ParseChallengeTimestamp("not a challenge message")
	assert.ErrorIs(t, err, ErrInvalidChallenge)
}
