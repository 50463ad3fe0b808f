package daemon

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cocinafacil/tcf/internal/api"
	"github.com/cocinafacil/tcf/internal/app/gamification"
	"github.com/cocinafacil/tcf/internal/auth"
	"github.com/cocinafacil/tcf/internal/health"
	"github.com/cocinafacil/tcf/internal/infra/chef"
	_ "github.com/cocinafacil/tcf/internal/infra/metrics" // Register Prometheus metrics
	"github.com/cocinafacil/tcf/internal/infra/sqlite"
)

// Daemon is the core tcf runtime. It wires together all services.
type Daemon struct {
	Config       Config
	DB           *sqlite.DB
	Gamification *gamification.Service
	Chef         *chef.Client
	Tokens       *auth.JWTService
	Server       *api.Server
	Health       *health.Checker

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Database.Dir
	if dataDir == "" {
		dataDir = tcfHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Gamification engine timing from config
	gamCfg := gamification.DefaultConfig()
	if cfg.Gamification.LevelUpDelayMS > 0 {
		gamCfg.LevelUpDelay = time.Duration(cfg.Gamification.LevelUpDelayMS) * time.Millisecond
	}
	if cfg.Gamification.NotificationTTLMS > 0 {
		gamCfg.NotificationTTL = time.Duration(cfg.Gamification.NotificationTTLMS) * time.Millisecond
	}
	gam := gamification.NewServiceWithConfig(db, gamCfg)

	chefClient := chef.NewClient(cfg.Chef.URL, time.Duration(cfg.Chef.TimeoutSeconds)*time.Second)

	// An empty secret would make every token forgeable, so generate an
	// ephemeral one and warn. Sessions won't survive a restart.
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		log.Printf("[daemon] WARNING: no jwt_secret configured, using ephemeral secret (set TCF_JWT_SECRET or auth.jwt_secret)")
	}
	tokens := auth.NewJWTService(secret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	srv := api.NewServer(db, gam, chefClient, tokens)

	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, dataDir, chefClient)
	srv.SetHealthChecker(checker)

	return &Daemon{
		Config:       cfg,
		DB:           db,
		Gamification: gam,
		Chef:         chefClient,
		Tokens:       tokens,
		Server:       srv,
		Health:       checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Menu generation can be slow
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		d.Gamification.Close()
		_ = d.DB.Close()
	}()

	fmt.Printf("tcf serving on http://%s\n", addr)
	fmt.Printf("  Chef service: %s\n", d.Config.Chef.URL)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Gamification != nil {
		d.Gamification.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
