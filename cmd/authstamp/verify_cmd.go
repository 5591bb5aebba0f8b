package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"authstamp/internal/domain"
	"authstamp/internal/infra/annotate"
	"authstamp/internal/infra/fingerprint"
	"authstamp/internal/infra/recordcache"
	"authstamp/internal/usecase"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var inPath, ref string
	fs.StringVar(&inPath, "in", "", "document to verify")
	fs.StringVar(&ref, "ref", "", "transaction id of the certification")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" && ref == "" {
		fmt.Fprintln(os.Stderr, "verify requires --in <file>, --ref <txid>, or both")
		return 1
	}

	ctx := context.Background()
	env, err := newAppEnv(ctx, true, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	verifier := usecase.NewVerify(fingerprint.New(), env.ledger, annotate.DefaultExtractor(),
		recordcache.NewMemory(), env.cfg.RecordCacheTTL())

	req := usecase.VerifyRequest{Ref: domain.RecordRef(ref)}
	if inPath != "" {
		data, err := os.ReadFile(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read document: %v\n", err)
			return 1
		}
		req.Document = data
		req.HasDoc = true
		req.MediaType = mediaTypeFor(inPath)
	}

	report, err := verifier.Execute(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}
	printReport(report)
	if report.Status == domain.StatusVerified {
		return 0
	}
	return 1
}

func printReport(report domain.VerificationReport) {
	fmt.Printf("status: %s\n", report.Status)
	switch report.Status {
	case domain.StatusVerified, domain.StatusTampered:
		fmt.Printf("transaction: %s\n", report.Ref)
		if report.Record != nil {
			fmt.Printf("document: %s\n", report.Record.DocumentName)
			fmt.Printf("certified fingerprint: %s\n", report.Record.Fingerprint)
		}
		if report.Fingerprint != "" {
			fmt.Printf("current fingerprint: %s\n", report.Fingerprint)
		}
		fmt.Printf("sender: %s\n", report.Sender)
		fmt.Printf("confirmed: round %d at %s\n", report.ConfirmedRound, report.ConfirmedAt)
	case domain.StatusNotCertified:
		if report.Ref != "" {
			fmt.Printf("transaction: %s\n", report.Ref)
		}
		fmt.Println("the reference does not resolve to a certification record")
	case domain.StatusNoReference:
		fmt.Println("the document carries no certification reference")
	}
}
