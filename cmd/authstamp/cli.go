package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"authstamp/internal/config"
	"authstamp/internal/domain"
	"authstamp/internal/infra/ledger/algorand"
	"authstamp/internal/infra/sessionstore"
	"authstamp/internal/infra/wallet"
	applog "authstamp/internal/log"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "wallet":
		if len(args) >= 3 {
			switch args[2] {
			case "connect":
				return runWalletConnect(args[3:])
			case "disconnect":
				return runWalletDisconnect(args[3:])
			case "status":
				return runWalletStatus(args[3:])
			case "import":
				return runWalletImport(args[3:])
			case "generate":
				return runWalletGenerate(args[3:])
			}
		}
	case "fingerprint":
		return runFingerprint(args[2:])
	case "certify":
		return runCertify(args[2:])
	case "verify":
		return runVerify(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "authstamp"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s wallet connect [--kind local|kmd]\n", name)
	fmt.Fprintf(os.Stderr, "  %s wallet disconnect\n", name)
	fmt.Fprintf(os.Stderr, "  %s wallet status\n", name)
	fmt.Fprintf(os.Stderr, "  %s wallet import\n", name)
	fmt.Fprintf(os.Stderr, "  %s wallet generate\n", name)
	fmt.Fprintf(os.Stderr, "  %s fingerprint --in <file>\n", name)
	fmt.Fprintf(os.Stderr, "  %s certify --in <file> [--out <annotated.pdf>] [--yes]\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify [--in <file>] [--ref <txid>]\n", name)
}

// appEnv holds the wired infrastructure a subcommand needs. Subcommands
// that never touch the ledger build it with wantLedger false so an
// unreachable node does not block wallet maintenance.
type appEnv struct {
	cfg     config.Config
	store   *sessionstore.Store
	local   *wallet.LocalProvider
	session *wallet.Session
	ledger  *algorand.Client
}

// interactive wraps every provider with a terminal approval step; wallet
// connect uses it so the user approves before any keys are touched.
func newAppEnv(ctx context.Context, wantLedger, interactive bool) (*appEnv, error) {
	cfg := config.FromEnv()
	applog.Init(applog.Options{Level: cfg.LogLevel, JSONFormat: cfg.LogJSON})

	store, err := sessionstore.Open(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	local := wallet.NewLocalProvider(cfg.KeyringService)
	providers := []wallet.Provider{local}
	if cfg.KMDURL != "" {
		kmdProvider, kmdErr := wallet.NewKMDProvider(cfg.KMDURL, cfg.KMDToken, cfg.KMDWallet, cfg.KMDWalletPassword)
		if kmdErr == nil {
			providers = append(providers, kmdProvider)
		}
	}
	if interactive {
		for i, p := range providers {
			providers[i] = confirmingProvider{Provider: p}
		}
	}
	session := wallet.NewSession(store, providers...)

	env := &appEnv{cfg: cfg, store: store, local: local, session: session}
	if wantLedger {
		ledger, err := algorand.NewClient(algorand.Config{
			AlgodURL:     cfg.AlgodURL,
			AlgodToken:   cfg.AlgodToken,
			IndexerURL:   cfg.IndexerURL,
			IndexerToken: cfg.IndexerToken,
			WaitRounds:   cfg.ConfirmationRounds,
		}, session)
		if err != nil {
			return nil, fmt.Errorf("init ledger client: %w", err)
		}
		session.SetBalanceSource(ledger)
		env.ledger = ledger
	}
	session.Restore(ctx)
	return env, nil
}

// confirm asks a y/N question on the terminal. Anything but an explicit
// yes counts as a decline.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// confirmingProvider wraps a provider with a terminal approval step, the
// CLI's stand-in for a wallet popup. Declining yields ErrUserCancelled.
type confirmingProvider struct {
	wallet.Provider
}

func (p confirmingProvider) Connect(ctx context.Context) (string, error) {
	if !confirm(fmt.Sprintf("Connect %s wallet?", p.Kind())) {
		return "", domain.ErrUserCancelled
	}
	return p.Provider.Connect(ctx)
}
