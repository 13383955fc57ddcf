package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regisleandro/alfredo-ai/internal/adapter/github"
	"github.com/regisleandro/alfredo-ai/internal/adapter/llm"
	"github.com/regisleandro/alfredo-ai/internal/adapter/mongodb"
	"github.com/regisleandro/alfredo-ai/internal/adapter/pulpo"
	"github.com/regisleandro/alfredo-ai/internal/adapter/rabbit"
	"github.com/regisleandro/alfredo-ai/internal/adapter/trello"
	"github.com/regisleandro/alfredo-ai/internal/budget"
	"github.com/regisleandro/alfredo-ai/internal/capability"
	"github.com/regisleandro/alfredo-ai/internal/config"
	"github.com/regisleandro/alfredo-ai/internal/engine"
	"github.com/regisleandro/alfredo-ai/internal/repository"
	"github.com/regisleandro/alfredo-ai/internal/session"
	handler "github.com/regisleandro/alfredo-ai/internal/transport/http"
	"github.com/regisleandro/alfredo-ai/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting alfredo...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Model deployment: %s", cfg.AzureDeployment)

	ctx := context.Background()

	// Initialize token counter (loads the BPE encoding)
	counter, err := budget.NewTiktokenCounter()
	if err != nil {
		log.Fatalf("Failed to initialize token counter: %v", err)
	}

	// Initialize model client
	modelClient := llm.NewClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureDeployment, cfg.AzureAPIVersion, cfg.LLMTimeout)

	// Initialize capability backends
	backends := capability.Backends{Model: modelClient}
	if cfg.RabbitURL != "" {
		backends.Queues = rabbit.NewClient(cfg.RabbitURL, cfg.RabbitUser, cfg.RabbitPassword, cfg.ToolTimeout)
	}
	if cfg.MongoURLPrd != "" || cfg.MongoURLHml != "" {
		mongoClient, err := mongodb.NewClient(ctx, cfg.MongoURLPrd, cfg.MongoURLHml)
		if err != nil {
			log.Fatalf("Failed to initialize mongo client: %v", err)
		}
		defer mongoClient.Close(ctx)
		backends.Sync = mongoClient
	}
	if cfg.GithubToken != "" {
		backends.Repos = github.NewClient(cfg.GithubToken, cfg.GithubOwner, cfg.ToolTimeout)
	}
	if cfg.PulpoSearchURL != "" {
		backends.Knowledge = pulpo.NewClient(cfg.PulpoSearchURL, cfg.PulpoURL, cfg.PulpoBearer, cfg.ToolTimeout)
	}
	if cfg.TrelloKey != "" {
		backends.Tasks = trello.NewClient(cfg.TrelloKey, cfg.TrelloToken, cfg.ToolTimeout)
	}

	// Initialize capability registry
	reg, err := capability.NewRegistry(backends)
	if err != nil {
		log.Fatalf("Failed to initialize capabilities: %v", err)
	}

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize transcript store; the service runs without it
	var transcript engine.Transcript
	if cfg.TranscriptDSN != "" {
		store, err := repository.NewTranscriptStore(cfg.TranscriptDSN)
		if err != nil {
			log.Printf("Transcript store disabled: %v", err)
		} else {
			defer store.Close()
			transcript = store
		}
	}

	// Initialize sessions and engine
	sessions := session.NewStore(cfg.SessionCap)
	eng := engine.New(sessions, reg, modelClient, counter, policyEngine, transcript, cfg.TokenCeiling)

	// Initialize HTTP server
	h := handler.NewHandler(eng, cfg.APIToken, cfg.DefaultVhost)
	server := handler.NewServer(h)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Alfredo started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down alfredo...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Alfredo stopped")
}
