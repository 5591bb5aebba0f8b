package wallet

import (
	"context"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/client/kmd"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"authstamp/internal/domain"
)

// KMDProvider delegates key custody and signing to an Algorand key
// management daemon. The daemon is the external wallet; nothing secret
// crosses into this process.
type KMDProvider struct {
	client     kmd.Client
	walletName string
	password   string
}

func NewKMDProvider(url, token, walletName, password string) (*KMDProvider, error) {
	client, err := kmd.MakeClient(url, token)
	if err != nil {
		return nil, fmt.Errorf("kmd client: %w", err)
	}
	return &KMDProvider{
		client:     client,
		walletName: walletName,
		password:   password,
	}, nil
}

func (p *KMDProvider) Kind() domain.WalletKind { return domain.WalletKindKMD }

func (p *KMDProvider) Connect(ctx context.Context) (string, error) {
	handle, err := p.walletHandle()
	if err != nil {
		return "", err
	}
	defer p.release(handle)

	keys, err := p.client.ListKeys(handle)
	if err != nil {
		return "", fmt.Errorf("%w: list keys: %v", domain.ErrProviderUnavailable, err)
	}
	if len(keys.Addresses) == 0 {
		return "", fmt.Errorf("%w: kmd wallet holds no accounts", domain.ErrProviderUnavailable)
	}
	return keys.Addresses[0], nil
}

func (p *KMDProvider) Resume(ctx context.Context, addr string) error {
	handle, err := p.walletHandle()
	if err != nil {
		return err
	}
	defer p.release(handle)

	keys, err := p.client.ListKeys(handle)
	if err != nil {
		return fmt.Errorf("%w: list keys: %v", domain.ErrProviderUnavailable, err)
	}
	for _, a := range keys.Addresses {
		if a == addr {
			return nil
		}
	}
	return fmt.Errorf("%w: kmd wallet does not hold %s", domain.ErrProviderUnavailable, addr)
}

func (p *KMDProvider) SignTransaction(ctx context.Context, addr string, tx sdktypes.Transaction) ([]byte, error) {
	handle, err := p.walletHandle()
	if err != nil {
		return nil, err
	}
	defer p.release(handle)

	resp, err := p.client.SignTransaction(handle, p.password, tx)
	if err != nil {
		return nil, fmt.Errorf("kmd sign: %w", err)
	}
	return resp.SignedTransaction, nil
}

func (p *KMDProvider) walletHandle() (string, error) {
	wallets, err := p.client.ListWallets()
	if err != nil {
		return "", fmt.Errorf("%w: kmd unreachable: %v", domain.ErrProviderUnavailable, err)
	}
	walletID := ""
	for _, w := range wallets.Wallets {
		if p.walletName == "" || w.Name == p.walletName {
			walletID = w.ID
			break
		}
	}
	if walletID == "" {
		return "", fmt.Errorf("%w: kmd wallet %q not found", domain.ErrProviderUnavailable, p.walletName)
	}
	resp, err := p.client.InitWalletHandle(walletID, p.password)
	if err != nil {
		return "", fmt.Errorf("%w: init wallet handle: %v", domain.ErrProviderUnavailable, err)
	}
	return resp.WalletHandleToken, nil
}

func (p *KMDProvider) release(handle string) {
	// Best effort; an expired handle is reclaimed by kmd anyway.
	_, _ = p.client.ReleaseWalletHandle(handle)
}
