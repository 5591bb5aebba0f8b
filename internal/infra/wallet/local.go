package wallet

import (
	"context"
	"errors"
	"fmt"

	sdkcrypto "github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/zalando/go-keyring"

	"authstamp/internal/domain"
)

// mnemonicAccount is the keyring account name under which the wallet
// mnemonic is stored.
const mnemonicAccount = "wallet-mnemonic"

// LocalProvider keeps an account mnemonic in the OS keychain and signs
// in-process. The keychain is the secret store; this package only ever
// persists the derived address.
type LocalProvider struct {
	service string
}

func NewLocalProvider(keyringService string) *LocalProvider {
	if keyringService == "" {
		keyringService = "authstamp"
	}
	return &LocalProvider{service: keyringService}
}

func (p *LocalProvider) Kind() domain.WalletKind { return domain.WalletKindLocal }

// ImportMnemonic validates and stores a 25-word mnemonic, returning the
// derived address.
func (p *LocalProvider) ImportMnemonic(words string) (string, error) {
	sk, err := mnemonic.ToPrivateKey(words)
	if err != nil {
		return "", fmt.Errorf("%w: invalid mnemonic", domain.ErrInvalidInput)
	}
	account, err := sdkcrypto.AccountFromPrivateKey(sk)
	if err != nil {
		return "", fmt.Errorf("derive account: %w", err)
	}
	if err := keyring.Set(p.service, mnemonicAccount, words); err != nil {
		return "", fmt.Errorf("store mnemonic: %w", err)
	}
	return account.Address.String(), nil
}

// Generate creates a fresh account, stores its mnemonic, and returns the
// address and mnemonic (shown once so the user can back it up).
func (p *LocalProvider) Generate() (address, words string, err error) {
	account := sdkcrypto.GenerateAccount()
	words, err = mnemonic.FromPrivateKey(account.PrivateKey)
	if err != nil {
		return "", "", fmt.Errorf("derive mnemonic: %w", err)
	}
	if err := keyring.Set(p.service, mnemonicAccount, words); err != nil {
		return "", "", fmt.Errorf("store mnemonic: %w", err)
	}
	return account.Address.String(), words, nil
}

// Forget removes the stored mnemonic from the keychain.
func (p *LocalProvider) Forget() error {
	err := keyring.Delete(p.service, mnemonicAccount)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (p *LocalProvider) Connect(ctx context.Context) (string, error) {
	account, err := p.account()
	if err != nil {
		return "", err
	}
	return account.Address.String(), nil
}

func (p *LocalProvider) Resume(ctx context.Context, addr string) error {
	account, err := p.account()
	if err != nil {
		return err
	}
	if account.Address.String() != addr {
		return fmt.Errorf("%w: stored wallet does not hold %s", domain.ErrProviderUnavailable, addr)
	}
	return nil
}

func (p *LocalProvider) SignTransaction(ctx context.Context, addr string, tx sdktypes.Transaction) ([]byte, error) {
	account, err := p.account()
	if err != nil {
		return nil, err
	}
	if account.Address.String() != addr {
		return nil, fmt.Errorf("stored wallet does not hold %s", addr)
	}
	_, signed, err := sdkcrypto.SignTransaction(account.PrivateKey, tx)
	if err != nil {
		return nil, err
	}
	return signed, nil
}

func (p *LocalProvider) account() (sdkcrypto.Account, error) {
	words, err := keyring.Get(p.service, mnemonicAccount)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return sdkcrypto.Account{}, fmt.Errorf("%w: no local wallet; run wallet import first", domain.ErrProviderUnavailable)
		}
		return sdkcrypto.Account{}, fmt.Errorf("%w: keychain: %v", domain.ErrProviderUnavailable, err)
	}
	sk, err := mnemonic.ToPrivateKey(words)
	if err != nil {
		return sdkcrypto.Account{}, fmt.Errorf("%w: stored mnemonic is corrupt", domain.ErrProviderUnavailable)
	}
	return sdkcrypto.AccountFromPrivateKey(sk)
}
