// Package algorand implements the ledger client against algod and the
// indexer. A certification is a zero-value self-payment whose note field
// carries the serialized record; the transaction id is the RecordRef.
package algorand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"authstamp/internal/domain"
)

// minFeeMicroAlgos is the flat minimum transaction fee. The cached session
// balance must cover at least this before a submission is attempted.
const minFeeMicroAlgos = 1000

// Signer is the wallet session capability the client needs: connection
// state, the signing address, a cached balance, and delegated signing.
type Signer interface {
	Connected() bool
	Address() string
	Balance() uint64
	SignTransaction(ctx context.Context, tx sdktypes.Transaction) ([]byte, error)
}

type Config struct {
	AlgodURL     string
	AlgodToken   string
	IndexerURL   string
	IndexerToken string
	// WaitRounds bounds the confirmation wait after broadcast.
	WaitRounds uint64
}

type Client struct {
	algod      *algod.Client
	indexer    *indexer.Client
	signer     Signer
	waitRounds uint64
}

func NewClient(cfg Config, signer Signer) (*Client, error) {
	if strings.TrimSpace(cfg.AlgodURL) == "" {
		return nil, errors.New("algod url is required")
	}
	if strings.TrimSpace(cfg.IndexerURL) == "" {
		return nil, errors.New("indexer url is required")
	}
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	algodClient, err := algod.MakeClient(strings.TrimRight(cfg.AlgodURL, "/"), cfg.AlgodToken)
	if err != nil {
		return nil, fmt.Errorf("algod client: %w", err)
	}
	indexerClient, err := indexer.MakeClient(strings.TrimRight(cfg.IndexerURL, "/"), cfg.IndexerToken)
	if err != nil {
		return nil, fmt.Errorf("indexer client: %w", err)
	}
	waitRounds := cfg.WaitRounds
	if waitRounds == 0 {
		waitRounds = 4
	}
	return &Client{
		algod:      algodClient,
		indexer:    indexerClient,
		signer:     signer,
		waitRounds: waitRounds,
	}, nil
}

// Submit appends rec to the ledger and returns the transaction id once it
// is confirmed. The entry is public and irreversible; there is no retry
// here because a failed attempt may still land on the network.
func (c *Client) Submit(ctx context.Context, rec domain.CertificationRecord) (domain.RecordRef, error) {
	if !c.signer.Connected() {
		return "", domain.ErrWalletNotConnected
	}
	if balance := c.signer.Balance(); balance < minFeeMicroAlgos {
		return "", &domain.InsufficientFundsError{Balance: balance, Required: minFeeMicroAlgos}
	}

	note, err := EncodeNote(rec)
	if err != nil {
		return "", err
	}

	params, err := c.algod.SuggestedParams().Do(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: suggested params: %v", domain.ErrSubmission, err)
	}

	addr := c.signer.Address()
	tx, err := transaction.MakePaymentTxn(addr, addr, 0, note, "", params)
	if err != nil {
		return "", fmt.Errorf("%w: build transaction: %v", domain.ErrSubmission, err)
	}

	signed, err := c.signer.SignTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotConnected) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	txid, err := c.algod.SendRawTransaction(signed).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: broadcast: %v", domain.ErrSubmission, err)
	}

	// A lookup racing the broadcast is not guaranteed to see the entry, so
	// block until the network confirms it within the bounded window.
	if _, err := transaction.WaitForConfirmation(c.algod, txid, c.waitRounds, ctx); err != nil {
		return "", fmt.Errorf("%w: confirmation for %s: %v", domain.ErrSubmission, txid, err)
	}

	slog.Info("certification record confirmed", "txid", txid, "sender", addr)
	return domain.RecordRef(txid), nil
}

// Fetch resolves ref to a certification record. ErrNotFound covers an
// unknown transaction, an undecodable note, and a foreign kind tag alike:
// all three mean "no valid certification here".
func (c *Client) Fetch(ctx context.Context, ref domain.RecordRef) (*domain.LedgerRecord, error) {
	if strings.TrimSpace(string(ref)) == "" {
		return nil, fmt.Errorf("%w: empty record ref", domain.ErrInvalidInput)
	}
	resp, err := c.indexer.LookupTransaction(string(ref)).Do(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrLookup, err)
	}

	rec, err := DecodeNote(resp.Transaction.Note)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	return &domain.LedgerRecord{
		Record:         rec,
		Ref:            ref,
		Sender:         resp.Transaction.Sender,
		ConfirmedRound: resp.Transaction.ConfirmedRound,
		ConfirmedAt:    time.Unix(int64(resp.Transaction.RoundTime), 0).UTC(),
	}, nil
}

// Balance reports the current spendable balance for addr in microalgos.
func (c *Client) Balance(ctx context.Context, addr string) (uint64, error) {
	account, err := c.algod.AccountInformation(addr).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: account %s: %v", domain.ErrLookup, addr, err)
	}
	return account.Amount, nil
}

func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") ||
		strings.Contains(strings.ToLower(msg), "no transaction found")
}
