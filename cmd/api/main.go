package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/parleylab/negotiation-avatar/internal/config"
	"github.com/parleylab/negotiation-avatar/internal/handler"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
	interactionsvc "github.com/parleylab/negotiation-avatar/internal/service/interaction"
	"github.com/parleylab/negotiation-avatar/internal/service/negotiate"
	"github.com/parleylab/negotiation-avatar/internal/service/script"
	sessionsvc "github.com/parleylab/negotiation-avatar/internal/service/session"
	"github.com/parleylab/negotiation-avatar/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	voices := voice.NewMemoryStore(voice.Seed())
	sessions := sessionsvc.NewService()

	scripts := script.NewStore(cfg.Script.Dir)
	if err := scripts.Load(); err != nil {
		log.Printf("warning: failed to load conversation script: %v", err)
		log.Println("continuing with live negotiation only")
	}

	// Sentence audio pipeline. Without credentials the service still
	// streams text-only chunks.
	var enricher interactionsvc.SentenceEnricher
	var generator *script.Generator
	if cfg.Speech.Enabled {
		speechEnricher := speech.NewDefaultEnricher(cfg.Speech)
		enricher = speechEnricher
		generator = script.NewGenerator(cfg.Script.Dir, speechEnricher, voices)
		log.Println("speech enrichment pipeline initialized")
	} else {
		log.Println("OPENAI_API_KEY not set, streaming without audio enrichment")
	}

	negotiator := buildNegotiator(ctx, cfg.Negotiator)

	emitter := interactionsvc.NewEmitter(enricher)
	router := handler.NewRouter(emitter, negotiator, scripts, voices, sessions, generator)

	startServer(ctx, cfg.Server, router)
}

// buildNegotiator prefers the remote negotiation API and falls back to
// the Ark chat model when only model credentials are present. Nil means
// no provider is configured; interaction requests will fail with an
// upstream error.
func buildNegotiator(ctx context.Context, cfg config.NegotiatorConfig) negotiate.Provider {
	if cfg.RemoteEnabled() {
		log.Printf("using remote negotiation API at %s", cfg.RemoteURL)
		return negotiate.NewRemoteClient(cfg)
	}

	if cfg.ModelEnabled() {
		negotiator, err := negotiate.NewModelNegotiator(ctx, cfg)
		if err != nil {
			log.Printf("warning: failed to initialize chat model negotiator: %v", err)
			return nil
		}
		log.Println("using Ark chat model negotiator")
		return negotiator
	}

	log.Println("no negotiation provider configured, scripted nodes only")
	return nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("negotiation avatar backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
