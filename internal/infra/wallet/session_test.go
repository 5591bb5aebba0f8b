package wallet

import (
	"context"
	"errors"
	"testing"

	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"authstamp/internal/domain"
)

type fakeProvider struct {
	kind       domain.WalletKind
	address    string
	connectErr error
	resumeErr  error
	signed     []byte
	signCalls  int
}

func (p *fakeProvider) Kind() domain.WalletKind { return p.kind }

func (p *fakeProvider) Connect(ctx context.Context) (string, error) {
	if p.connectErr != nil {
		return "", p.connectErr
	}
	return p.address, nil
}

func (p *fakeProvider) Resume(ctx context.Context, addr string) error {
	if p.resumeErr != nil {
		return p.resumeErr
	}
	if addr != p.address {
		return domain.ErrProviderUnavailable
	}
	return nil
}

func (p *fakeProvider) SignTransaction(ctx context.Context, addr string, tx sdktypes.Transaction) ([]byte, error) {
	p.signCalls++
	return p.signed, nil
}

type memStore struct {
	saved   *domain.PersistedSession
	loadErr error
}

func (m *memStore) Save(ctx context.Context, sess domain.PersistedSession) error {
	m.saved = &sess
	return nil
}

func (m *memStore) Load(ctx context.Context) (*domain.PersistedSession, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved, nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.saved = nil
	return nil
}

type fixedBalance uint64

func (b fixedBalance) Balance(ctx context.Context, addr string) (uint64, error) {
	return uint64(b), nil
}

func TestConnectPersistsAddressAndKindOnly(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	provider := &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"}
	session := NewSession(store, provider)
	session.SetBalanceSource(fixedBalance(5000))

	if err := session.Connect(ctx, domain.WalletKindLocal); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !session.Connected() {
		t.Fatal("session not connected after Connect")
	}
	if session.Address() != "ADDR" {
		t.Errorf("address = %q, want ADDR", session.Address())
	}
	if session.Balance() != 5000 {
		t.Errorf("balance = %d, want 5000", session.Balance())
	}
	if store.saved == nil {
		t.Fatal("session marker not persisted")
	}
	if store.saved.Address != "ADDR" || store.saved.Kind != domain.WalletKindLocal {
		t.Errorf("persisted = %+v, want address+kind", store.saved)
	}
}

func TestConnectUnknownKind(t *testing.T) {
	session := NewSession(&memStore{}, &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"})
	err := session.Connect(context.Background(), domain.WalletKindKMD)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("Connect unknown kind = %v, want ErrProviderUnavailable", err)
	}
	if session.Connected() {
		t.Fatal("session connected after failed Connect")
	}
}

func TestConnectUserCancelledLeavesSessionDisconnected(t *testing.T) {
	store := &memStore{}
	provider := &fakeProvider{kind: domain.WalletKindLocal, connectErr: domain.ErrUserCancelled}
	session := NewSession(store, provider)

	err := session.Connect(context.Background(), domain.WalletKindLocal)
	if !errors.Is(err, domain.ErrUserCancelled) {
		t.Fatalf("Connect = %v, want ErrUserCancelled", err)
	}
	if session.Connected() {
		t.Fatal("session connected after cancelled prompt")
	}
	if store.saved != nil {
		t.Fatal("cancelled connect persisted a session marker")
	}
}

func TestDisconnectClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	provider := &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"}
	session := NewSession(store, provider)
	if err := session.Connect(ctx, domain.WalletKindLocal); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	session.Disconnect(ctx)
	if session.Connected() {
		t.Fatal("session still connected after Disconnect")
	}
	if session.Address() != "" || session.Balance() != 0 {
		t.Error("session state not cleared")
	}
	if store.saved != nil {
		t.Fatal("persisted marker not cleared")
	}
}

func TestRestoreFromPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := &memStore{saved: &domain.PersistedSession{Address: "ADDR", Kind: domain.WalletKindLocal}}
	provider := &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"}
	session := NewSession(store, provider)

	session.Restore(ctx)
	if !session.Connected() {
		t.Fatal("session not restored")
	}
	if session.Address() != "ADDR" {
		t.Errorf("address = %q, want ADDR", session.Address())
	}
}

func TestRestoreFailuresStaySilent(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		store   *memStore
		provide *fakeProvider
	}{
		{
			name:    "no persisted session",
			store:   &memStore{},
			provide: &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"},
		},
		{
			name:    "store load error",
			store:   &memStore{loadErr: errors.New("disk gone")},
			provide: &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"},
		},
		{
			name:    "provider resume fails",
			store:   &memStore{saved: &domain.PersistedSession{Address: "ADDR", Kind: domain.WalletKindLocal}},
			provide: &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR", resumeErr: domain.ErrProviderUnavailable},
		},
		{
			name:    "kind without provider",
			store:   &memStore{saved: &domain.PersistedSession{Address: "ADDR", Kind: domain.WalletKindKMD}},
			provide: &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := NewSession(tc.store, tc.provide)
			session.Restore(ctx)
			if session.Connected() {
				t.Fatal("session connected after failed restore")
			}
		})
	}
}

func TestSignTransactionRequiresConnection(t *testing.T) {
	provider := &fakeProvider{kind: domain.WalletKindLocal, address: "ADDR", signed: []byte("stx")}
	session := NewSession(&memStore{}, provider)

	_, err := session.SignTransaction(context.Background(), sdktypes.Transaction{})
	if !errors.Is(err, domain.ErrWalletNotConnected) {
		t.Fatalf("SignTransaction disconnected = %v, want ErrWalletNotConnected", err)
	}
	if provider.signCalls != 0 {
		t.Fatal("provider signed while disconnected")
	}

	if err := session.Connect(context.Background(), domain.WalletKindLocal); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	signed, err := session.SignTransaction(context.Background(), sdktypes.Transaction{})
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	if string(signed) != "stx" {
		t.Errorf("signed = %q, want stx", signed)
	}
}
