package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the wallet binding and the
// issuing refresh token's ID, so revoking a refresh token also kills its
// outstanding access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	Wallet    string `json:"wallet"`
	Chain     string `json:"chain"`
	RefreshID string `json:"rid"`
}

// RefreshClaims are just the standard claims; refresh tokens carry the
// minimum (subject = user ID, ID = rotation key).
type RefreshClaims struct {
	jwt.RegisteredClaims
}
