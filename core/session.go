package core

import "time"

// Session is the identity material carried inside a token pair.
type Session struct {
	UserID        string    // Owning user
	WalletAddress string    // Wallet the session was established with
	Chain         ChainType // Chain family of that wallet
	RefreshID     string    // JTI of the refresh token; rotation key
	IssuedAt      time.Time // When the pair was minted
	AccessExpiry  time.Time // Access token expiry
	RefreshExpiry time.Time // Refresh token expiry
}

// TokenPair is the result of a successful login or refresh. The pair is
// replaced wholesale on every refresh, never extended in place.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	UserID           string    `json:"-"`
	WalletAddress    string    `json:"-"`
	Chain            ChainType `json:"-"`
	IssuedAt         time.Time `json:"-"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}
