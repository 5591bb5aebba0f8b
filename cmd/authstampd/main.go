package main

import (
	"context"
	"log/slog"
	"os"

	"authstamp/internal/config"
	"authstamp/internal/infra/annotate"
	"authstamp/internal/infra/fingerprint"
	httpinfra "authstamp/internal/infra/http"
	"authstamp/internal/infra/ledger/algorand"
	"authstamp/internal/infra/policyopa"
	"authstamp/internal/infra/recordcache"
	"authstamp/internal/infra/sessionstore"
	"authstamp/internal/infra/wallet"
	applog "authstamp/internal/log"
	"authstamp/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	applog.Init(applog.Options{Level: cfg.LogLevel, JSONFormat: cfg.LogJSON})

	ctx := context.Background()

	store, err := sessionstore.Open(cfg.SessionDBPath)
	if err != nil {
		slog.Error("open session store", "path", cfg.SessionDBPath, "error", err)
		os.Exit(1)
	}

	providers := []wallet.Provider{wallet.NewLocalProvider(cfg.KeyringService)}
	if cfg.KMDURL != "" {
		kmdProvider, err := wallet.NewKMDProvider(cfg.KMDURL, cfg.KMDToken, cfg.KMDWallet, cfg.KMDWalletPassword)
		if err != nil {
			slog.Warn("kmd provider unavailable", "url", cfg.KMDURL, "error", err)
		} else {
			providers = append(providers, kmdProvider)
		}
	}
	session := wallet.NewSession(store, providers...)

	ledger, err := algorand.NewClient(algorand.Config{
		AlgodURL:     cfg.AlgodURL,
		AlgodToken:   cfg.AlgodToken,
		IndexerURL:   cfg.IndexerURL,
		IndexerToken: cfg.IndexerToken,
		WaitRounds:   cfg.ConfirmationRounds,
	}, session)
	if err != nil {
		slog.Error("init ledger client", "error", err)
		os.Exit(1)
	}
	session.SetBalanceSource(ledger)
	session.Restore(ctx)

	policy, err := policyopa.NewEngine(ctx, cfg.MaxUploadBytes)
	if err != nil {
		slog.Error("init upload policy", "error", err)
		os.Exit(1)
	}

	var cache usecase.RecordCache
	if cfg.RedisAddr != "" {
		redisCache, err := recordcache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis record cache unavailable, using memory", "addr", cfg.RedisAddr, "error", err)
		} else {
			cache = redisCache
		}
	}
	if cache == nil {
		cache = recordcache.NewMemory()
	}

	hasher := fingerprint.New()
	annotator := annotate.NewAnnotator(cfg.VerifyBaseURL)
	verify := usecase.NewVerify(hasher, ledger, annotate.DefaultExtractor(), cache, cfg.RecordCacheTTL())

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Hasher:    hasher,
		Ledger:    ledger,
		Policy:    policy,
		Verify:    verify,
		Wallet:    session,
		Annotator: annotator,
	})
	slog.Info("listening", "addr", cfg.HTTPAddr, "algod", cfg.AlgodURL)
	if err := srv.Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
