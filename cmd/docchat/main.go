package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docchat/internal/api"
	"docchat/internal/config"
	"docchat/internal/database/milvus"
	"docchat/internal/database/minio"
	"docchat/internal/database/redis"
	"docchat/internal/embedding"
	"docchat/internal/events"
	"docchat/internal/llm"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/loaders"
	"docchat/internal/rag/splitters"
	"docchat/internal/rag/vectorstore"
	"docchat/internal/registry"
	"docchat/internal/service"
	"docchat/internal/storage"
	"docchat/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Environment variables from a local .env file, if present.
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("docchat")
	appLogger.Info("Starting document chat service...")

	ctx := context.Background()

	// Optional components: model clients are left nil when no key is
	// configured so the API can report that instead of refusing to start.
	llmClient, err := llm.New(ctx, &cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	if llmClient == nil {
		appLogger.Warn("GEMINI_API_KEY not set. Chat will return a configuration error.")
	}

	embedder, err := embedding.New(ctx, &cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	if embedder == nil {
		appLogger.Warn("No embedding model configured. Uploads will fail until one is set.")
	}

	store := buildVectorStore(ctx, cfg, appLogger)
	files := buildFileStore(ctx, cfg, appLogger)
	reg := buildRegistry(cfg, appLogger)
	publisher := events.NewPublisher(&cfg.Events, appLogger)
	defer publisher.Close()

	splitter, err := splitters.NewCharacterSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		log.Fatalf("Invalid chunking configuration: %v", err)
	}
	loader := loaders.NewPdfLoader(loaders.NewTesseractEngine(""), appLogger)

	docService := service.NewDocumentService(service.Deps{
		Loader:   loader,
		Splitter: splitter,
		Embedder: embedder,
		LLM:      llmClient,
		Store:    store,
		Files:    files,
		Registry: reg,
		Events:   publisher,
		TopK:     cfg.Retrieval.TopK,
		Log:      appLogger,
	})

	handler := api.NewHandler(docService, appLogger)
	router := api.SetupRouter(handler, cfg.Upload.MaxFileSize)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Forced shutdown: %v", err))
	}
	appLogger.Info("Server gracefully stopped")
}

// buildVectorStore connects the configured backend. The store is required:
// the service cannot do anything useful without it.
func buildVectorStore(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) interfaces.VectorStore {
	switch cfg.VectorStore.Provider {
	case "milvus":
		client, err := milvus.GetClient(ctx, &cfg.VectorStore.Milvus, appLogger)
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		store, err := vectorstore.NewMilvusStore(ctx, client, appLogger)
		if err != nil {
			log.Fatalf("Failed to create Milvus store: %v", err)
		}
		return store
	case "chroma", "":
		store, err := vectorstore.NewChromaStore(&cfg.VectorStore.Chroma, appLogger)
		if err != nil {
			log.Fatalf("Failed to connect to ChromaDB: %v", err)
		}
		return store
	default:
		log.Fatalf("Unknown vector store provider: %s", cfg.VectorStore.Provider)
		return nil
	}
}

// buildFileStore prepares local or MinIO-backed upload storage.
func buildFileStore(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) storage.FileStore {
	switch cfg.Upload.Provider {
	case "minio":
		client, err := minio.GetClient(&cfg.Upload.MinIO, appLogger)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		store, err := storage.NewMinIOStore(ctx, client, cfg.Upload.MinIO.Bucket, cfg.Upload.Dir)
		if err != nil {
			log.Fatalf("Failed to create MinIO store: %v", err)
		}
		return store
	case "local", "":
		store, err := storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			log.Fatalf("Failed to create upload directory: %v", err)
		}
		return store
	default:
		log.Fatalf("Unknown upload provider: %s", cfg.Upload.Provider)
		return nil
	}
}

// buildRegistry prepares the filename reservation backend.
func buildRegistry(cfg *config.AppConfig, appLogger *logger.Logger) registry.Registry {
	switch cfg.Registry.Provider {
	case "redis":
		client, err := redis.GetClient(&cfg.Registry.Redis, appLogger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		return registry.NewRedisRegistry(client)
	case "memory", "":
		return registry.NewMemoryRegistry()
	default:
		log.Fatalf("Unknown registry provider: %s", cfg.Registry.Provider)
		return nil
	}
}
