package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"authstamp/internal/domain"
	"authstamp/internal/infra/wallet"
)

func runWalletConnect(args []string) int {
	fs := flag.NewFlagSet("wallet connect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var kind string
	fs.StringVar(&kind, "kind", "", "wallet provider (local or kmd)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	ctx := context.Background()
	env, err := newAppEnv(ctx, true, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	k := domain.WalletKind(env.cfg.WalletProvider)
	if kind != "" {
		k = domain.WalletKind(kind)
	}
	if err := env.session.Connect(ctx, k); err != nil {
		if errors.Is(err, domain.ErrUserCancelled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		return 1
	}
	printWalletStatus(env.session)
	return 0
}

func runWalletDisconnect(args []string) int {
	if len(args) != 0 {
		usage(nil)
		return 1
	}
	ctx := context.Background()
	env, err := newAppEnv(ctx, false, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	env.session.Disconnect(ctx)
	fmt.Println("disconnected")
	return 0
}

func runWalletStatus(args []string) int {
	if len(args) != 0 {
		usage(nil)
		return 1
	}
	ctx := context.Background()
	env, err := newAppEnv(ctx, true, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printWalletStatus(env.session)
	return 0
}

// runWalletImport reads a 25-word mnemonic from stdin and stores it in the
// OS keyring. The words never hit argv or the shell history.
func runWalletImport(args []string) int {
	if len(args) != 0 {
		usage(nil)
		return 1
	}
	env, err := newAppEnv(context.Background(), false, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprint(os.Stderr, "Enter 25-word mnemonic: ")
	words, err := readLine(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read mnemonic: %v\n", err)
		return 1
	}
	addr, err := env.local.ImportMnemonic(words)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return 1
	}
	fmt.Printf("imported %s\n", addr)
	return 0
}

func runWalletGenerate(args []string) int {
	if len(args) != 0 {
		usage(nil)
		return 1
	}
	env, err := newAppEnv(context.Background(), false, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	addr, words, err := env.local.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		return 1
	}
	fmt.Printf("address: %s\n", addr)
	fmt.Printf("mnemonic: %s\n", words)
	fmt.Fprintln(os.Stderr, "Store the mnemonic somewhere safe; it is the only backup of this account.")
	return 0
}

func printWalletStatus(session *wallet.Session) {
	if !session.Connected() {
		fmt.Println("wallet: disconnected")
		return
	}
	fmt.Printf("wallet: connected (%s)\n", session.Kind())
	fmt.Printf("address: %s\n", session.Address())
	fmt.Printf("balance: %d microalgos\n", session.Balance())
}

func readLine(f *os.File) (string, error) {
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
