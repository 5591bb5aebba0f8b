package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string
	LogLevel string
	LogJSON  bool

	AlgodURL     string
	AlgodToken   string
	IndexerURL   string
	IndexerToken string

	ConfirmationRounds uint64

	WalletProvider    string
	KeyringService    string
	KMDURL            string
	KMDToken          string
	KMDWallet         string
	KMDWalletPassword string

	SessionDBPath string

	VerifyBaseURL string
	ExplorerTxURL string

	MaxUploadBytes int64

	RecordCacheTTLSeconds int
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:              addr,
		LogLevel:              envDefault("LOG_LEVEL", "info"),
		LogJSON:               envBoolDefault("LOG_JSON", false),
		AlgodURL:              envDefault("ALGOD_URL", "https://testnet-api.algonode.cloud"),
		AlgodToken:            os.Getenv("ALGOD_TOKEN"),
		IndexerURL:            envDefault("INDEXER_URL", "https://testnet-idx.algonode.cloud"),
		IndexerToken:          os.Getenv("INDEXER_TOKEN"),
		ConfirmationRounds:    uint64(envIntDefault("CONFIRMATION_ROUNDS", 4)),
		WalletProvider:        envDefault("WALLET_PROVIDER", "local"),
		KeyringService:        envDefault("KEYRING_SERVICE", "authstamp"),
		KMDURL:                envDefault("KMD_URL", "http://localhost:4002"),
		KMDToken:              os.Getenv("KMD_TOKEN"),
		KMDWallet:             os.Getenv("KMD_WALLET"),
		KMDWalletPassword:     os.Getenv("KMD_WALLET_PASSWORD"),
		SessionDBPath:         envDefault("SESSION_DB_PATH", defaultSessionDBPath()),
		VerifyBaseURL:         envDefault("VERIFY_BASE_URL", "https://authstamp.app"),
		ExplorerTxURL:         envDefault("EXPLORER_TX_URL", "https://testnet.algoexplorer.io/tx/"),
		MaxUploadBytes:        int64(envIntDefault("MAX_UPLOAD_BYTES", 26214400)),
		RecordCacheTTLSeconds: envIntDefault("RECORD_CACHE_TTL_SECONDS", 3600),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               envIntDefault("REDIS_DB", 0),
	}
}

func (c Config) RecordCacheTTL() time.Duration {
	if c.RecordCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RecordCacheTTLSeconds) * time.Second
}

func defaultSessionDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".authstamp", "session.db")
	}
	return filepath.Join(home, ".authstamp", "session.db")
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
