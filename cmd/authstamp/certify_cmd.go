package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"authstamp/internal/domain"
	"authstamp/internal/infra/annotate"
	"authstamp/internal/infra/fingerprint"
	"authstamp/internal/infra/policyopa"
	"authstamp/internal/usecase"
)

func runFingerprint(args []string) int {
	fs := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var inPath string
	fs.StringVar(&inPath, "in", "", "document to fingerprint")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "fingerprint requires --in <file>")
		return 1
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read document: %v\n", err)
		return 1
	}
	fmt.Println(fingerprint.New().Hash(data))
	return 0
}

func runCertify(args []string) int {
	fs := flag.NewFlagSet("certify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var inPath, outPath string
	var yes bool
	fs.StringVar(&inPath, "in", "", "document to certify")
	fs.StringVar(&outPath, "out", "", "write the annotated copy here (pdf only)")
	fs.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "certify requires --in <file>")
		return 1
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read document: %v\n", err)
		return 1
	}

	ctx := context.Background()
	env, err := newAppEnv(ctx, true, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	policy, err := policyopa.NewEngine(ctx, env.cfg.MaxUploadBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init upload policy: %v\n", err)
		return 1
	}
	annotator := annotate.NewAnnotator(env.cfg.VerifyBaseURL)
	flow := usecase.NewCertificationFlow(fingerprint.New(), env.ledger, env.session, policy, annotator)

	name := filepath.Base(inPath)
	fp, err := flow.Upload(ctx, name, mediaTypeFor(inPath), data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload: %v\n", err)
		return 1
	}
	fmt.Printf("fingerprint: %s\n", fp)

	if !yes && !confirm(fmt.Sprintf("Certify %s on the ledger?", name)) {
		fmt.Fprintln(os.Stderr, "cancelled")
		return 0
	}

	cert, err := flow.Certify(ctx)
	if err != nil {
		var funds *domain.InsufficientFundsError
		if errors.As(err, &funds) {
			fmt.Fprintf(os.Stderr, "certify: balance %d microalgos is below the %d fee; fund the wallet and retry\n",
				funds.Balance, funds.Required)
			return 1
		}
		fmt.Fprintf(os.Stderr, "certify: %v\n", err)
		return 1
	}
	fmt.Printf("certificate: %s\n", cert.ID)
	fmt.Printf("transaction: %s\n", cert.Ref)
	fmt.Printf("verify: %s\n", annotator.VerificationURL(cert.Ref))
	fmt.Printf("explorer: %s%s\n", env.cfg.ExplorerTxURL, cert.Ref)

	if outPath == "" {
		return 0
	}
	out, embedded, err := flow.Annotate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "annotate: %v\n", err)
		return 1
	}
	if !embedded {
		fmt.Fprintln(os.Stderr, "annotation is pdf-only; certificate is valid without it")
		return 0
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write annotated copy: %v\n", err)
		return 1
	}
	fmt.Printf("annotated: %s\n", outPath)
	return 0
}

func mediaTypeFor(path string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
			return parsed
		}
	}
	return "application/octet-stream"
}
