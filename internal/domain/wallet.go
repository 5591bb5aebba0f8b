package domain

import "time"

// WalletKind selects the provider adapter backing a wallet session.
type WalletKind string

const (
	WalletKindLocal WalletKind = "local"
	WalletKindKMD   WalletKind = "kmd"
)

// PersistedSession is the only durable wallet state: the address and the
// provider kind it belongs to. Signing material is never persisted here;
// it stays with the provider (OS keychain or kmd).
type PersistedSession struct {
	Address   string
	Kind      WalletKind
	UpdatedAt time.Time
}
