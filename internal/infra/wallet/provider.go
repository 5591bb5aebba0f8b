// Package wallet manages the process-wide signing session. One Provider
// interface covers every wallet backend; adapters are selected by
// configuration, and signing is always delegated to the backend; private
// keys never pass through session state or the session store.
package wallet

import (
	"context"

	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"authstamp/internal/domain"
)

// Provider is a wallet backend adapter.
type Provider interface {
	Kind() domain.WalletKind
	// Connect establishes access to the backend and returns the signing
	// address. domain.ErrProviderUnavailable when the backend is not
	// reachable or holds no account.
	Connect(ctx context.Context) (string, error)
	// Resume silently checks that addr is still available. Used only by
	// session restore; failures must not prompt the user.
	Resume(ctx context.Context, addr string) error
	// SignTransaction signs tx for addr and returns the encoded signed
	// transaction bytes.
	SignTransaction(ctx context.Context, addr string, tx sdktypes.Transaction) ([]byte, error)
}
