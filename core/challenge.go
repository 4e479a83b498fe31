package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// challengeTemplate renders the canonical sign-in message. The millisecond
// timestamp sits on its own terminal line so callers that only receive the
// rendered message can recover it losslessly.
const challengeTemplate = "Signet wants you to sign in with your wallet:\n%s\n\nIssued at: %d"

var challengeTimestampRe = regexp.MustCompile(`Issued at: (\d+)$`)

// Challenge is the message a wallet must sign to prove address ownership.
// It is never persisted server-side: the message is fully reconstructible
// from the address and the embedded timestamp.
type Challenge struct {
	Address   string    `json:"address"`
	Chain     ChainType `json:"chainType"`
	Timestamp int64     `json:"timestamp"` // unix milliseconds
	Message   string    `json:"message"`
}

// NewChallenge builds a challenge for the given wallet at the current time.
func NewChallenge(address string, chain ChainType) (*Challenge, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidChallenge)
	}
	ts := time.Now().UnixMilli()
	return &Challenge{
		Address:   address,
		Chain:     chain,
		Timestamp: ts,
		Message:   ChallengeMessage(address, ts),
	}, nil
}

// ChallengeMessage renders the canonical message for an address and a
// millisecond timestamp.
func ChallengeMessage(address string, timestamp int64) string {
	return fmt.Sprintf(challengeTemplate, address, timestamp)
}

// ParseChallengeTimestamp recovers the millisecond timestamp embedded in a
// rendered challenge message.
func ParseChallengeTimestamp(message string) (int64, error) {
	m := challengeTimestampRe.FindStringSubmatch(message)
	if m == nil {
		return 0, fmt.Errorf("%w: message missing timestamp", ErrInvalidChallenge)
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed timestamp", ErrInvalidChallenge)
	}
	return ts, nil
}
