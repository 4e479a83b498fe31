package core

import "time"

// User is created lazily on the first successful login for an unseen wallet.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Wallet links an on-chain address to a user. A user may own wallets across
// chain families; uniqueness is scoped to (Address, Chain).
type Wallet struct {
	Address   string    `json:"address"`
	Chain     ChainType `json:"chainType"`
	UserID    string    `json:"userId"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}
