package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"authstamp/internal/domain"
)

// SessionStore persists the session marker across restarts.
type SessionStore interface {
	Save(ctx context.Context, sess domain.PersistedSession) error
	Load(ctx context.Context) (*domain.PersistedSession, error)
	Clear(ctx context.Context) error
}

// BalanceSource reports the spendable balance for an address, in
// microalgos.
type BalanceSource interface {
	Balance(ctx context.Context, addr string) (uint64, error)
}

// Session is the single active wallet session. State changes only through
// Connect, Disconnect, and Restore, never from background workflows.
type Session struct {
	mu        sync.Mutex
	providers map[domain.WalletKind]Provider
	store     SessionStore
	balances  BalanceSource

	connected bool
	kind      domain.WalletKind
	address   string
	balance   uint64
}

func NewSession(store SessionStore, providers ...Provider) *Session {
	byKind := make(map[domain.WalletKind]Provider, len(providers))
	for _, p := range providers {
		byKind[p.Kind()] = p
	}
	return &Session{
		providers: byKind,
		store:     store,
	}
}

// SetBalanceSource wires the ledger-backed balance lookup. Optional; a
// session without one reports a zero cached balance.
func (s *Session) SetBalanceSource(src BalanceSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = src
}

// Connect activates the session via the provider for kind and persists
// the address marker. domain.ErrUserCancelled propagates untouched so the
// caller can swallow it.
func (s *Session) Connect(ctx context.Context, kind domain.WalletKind) error {
	provider, ok := s.provider(kind)
	if !ok {
		return fmt.Errorf("%w: no %q wallet provider configured", domain.ErrProviderUnavailable, kind)
	}

	addr, err := provider.Connect(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUserCancelled) {
			slog.Info("wallet connection cancelled by user")
		}
		return err
	}

	s.mu.Lock()
	s.connected = true
	s.kind = kind
	s.address = addr
	s.balance = 0
	s.mu.Unlock()

	if s.store != nil {
		err := s.store.Save(ctx, domain.PersistedSession{Address: addr, Kind: kind})
		if err != nil {
			// The session itself is live; only restore-after-restart is lost.
			slog.Warn("persist wallet session", "error", err)
		}
	}

	s.refreshBalance(ctx)
	slog.Info("wallet connected", "kind", kind, "address", addr)
	return nil
}

// Disconnect always succeeds: it clears the in-memory session and the
// persisted marker.
func (s *Session) Disconnect(ctx context.Context) {
	s.mu.Lock()
	s.connected = false
	s.kind = ""
	s.address = ""
	s.balance = 0
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			slog.Warn("clear persisted wallet session", "error", err)
		}
	}
	slog.Info("wallet disconnected")
}

// Restore attempts a silent reconnect from the persisted marker. Any
// failure leaves the session disconnected and is never surfaced.
func (s *Session) Restore(ctx context.Context) {
	if s.store == nil {
		return
	}
	saved, err := s.store.Load(ctx)
	if err != nil || saved == nil {
		if err != nil {
			slog.Debug("load persisted wallet session", "error", err)
		}
		return
	}
	provider, ok := s.provider(saved.Kind)
	if !ok {
		slog.Debug("persisted wallet kind has no provider", "kind", saved.Kind)
		return
	}
	if err := provider.Resume(ctx, saved.Address); err != nil {
		slog.Debug("wallet session restore failed", "error", err)
		return
	}

	s.mu.Lock()
	s.connected = true
	s.kind = saved.Kind
	s.address = saved.Address
	s.mu.Unlock()

	s.refreshBalance(ctx)
	slog.Info("wallet session restored", "kind", saved.Kind, "address", saved.Address)
}

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

func (s *Session) Kind() domain.WalletKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// Balance returns the cached balance in microalgos.
func (s *Session) Balance() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// RefreshBalance re-reads the balance from the ledger and updates the
// cache.
func (s *Session) RefreshBalance(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	connected, addr, src := s.connected, s.address, s.balances
	s.mu.Unlock()
	if !connected {
		return 0, domain.ErrWalletNotConnected
	}
	if src == nil {
		return 0, nil
	}
	balance, err := src.Balance(ctx, addr)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.balance = balance
	s.mu.Unlock()
	return balance, nil
}

// SignTransaction delegates to the active provider.
func (s *Session) SignTransaction(ctx context.Context, tx sdktypes.Transaction) ([]byte, error) {
	s.mu.Lock()
	connected, kind, addr := s.connected, s.kind, s.address
	s.mu.Unlock()
	if !connected {
		return nil, domain.ErrWalletNotConnected
	}
	provider, ok := s.provider(kind)
	if !ok {
		return nil, fmt.Errorf("%w: no %q wallet provider configured", domain.ErrProviderUnavailable, kind)
	}
	return provider.SignTransaction(ctx, addr, tx)
}

func (s *Session) provider(kind domain.WalletKind) (Provider, bool) {
	p, ok := s.providers[kind]
	return p, ok
}

func (s *Session) refreshBalance(ctx context.Context) {
	if _, err := s.RefreshBalance(ctx); err != nil {
		slog.Debug("refresh wallet balance", "error", err)
	}
}
