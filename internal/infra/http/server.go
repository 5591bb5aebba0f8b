package http

import (
	"context"
	"net/http"

	"authstamp/internal/config"
	"authstamp/internal/domain"
	"authstamp/internal/usecase"

	"github.com/gin-gonic/gin"
)

// WalletManager is the slice of the wallet session the HTTP surface needs.
type WalletManager interface {
	Connect(ctx context.Context, kind domain.WalletKind) error
	Disconnect(ctx context.Context)
	Connected() bool
	Address() string
	Kind() domain.WalletKind
	Balance() uint64
}

// Annotator stamps certificates into supported documents.
type Annotator interface {
	Supports(mediaType string) bool
	Embed(doc []byte, cert domain.Certificate) ([]byte, error)
}

type Server struct {
	cfg config.Config
	r   *gin.Engine

	hasher    usecase.Hasher
	ledger    usecase.Ledger
	policy    usecase.UploadPolicy
	verifyUC  *usecase.Verify
	wallet    WalletManager
	annotator Annotator
}

type ServerDeps struct {
	Hasher    usecase.Hasher
	Ledger    usecase.Ledger
	Policy    usecase.UploadPolicy
	Verify    *usecase.Verify
	Wallet    WalletManager
	Annotator Annotator
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		r:         r,
		hasher:    deps.Hasher,
		ledger:    deps.Ledger,
		policy:    deps.Policy,
		verifyUC:  deps.Verify,
		wallet:    deps.Wallet,
		annotator: deps.Annotator,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.MaxMultipartMemory = s.cfg.MaxUploadBytes

	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "network": s.cfg.AlgodURL})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/documents/fingerprint", s.handleFingerprint)
		v1.POST("/certify", s.handleCertify)
		v1.POST("/annotate", s.handleAnnotate)
		v1.GET("/verify", s.handleVerifyByRef)
		v1.POST("/verify", s.handleVerifyDocument)

		v1.GET("/wallet", s.handleWalletStatus)
		v1.POST("/wallet/connect", s.handleWalletConnect)
		v1.POST("/wallet/disconnect", s.handleWalletDisconnect)
	}

	s.r.NoRoute(s.handleNoRoute)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
