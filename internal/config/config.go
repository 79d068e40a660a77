package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic information about the application.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // e.g. "info", "debug", "warn", "error"
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// MinIOConfig configures the MinIO object storage connection.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// UploadConfig configures where uploaded documents are kept.
type UploadConfig struct {
	Dir         string      `yaml:"dir"`         // local upload directory
	MaxFileSize int64       `yaml:"maxFileSize"` // request size cap in bytes
	Provider    string      `yaml:"provider"`    // "local" or "minio"
	MinIO       MinIOConfig `yaml:"minio"`
}

// ChunkingConfig configures the text splitter.
type ChunkingConfig struct {
	Size    int `yaml:"size"`    // window size in characters
	Overlap int `yaml:"overlap"` // overlap between consecutive windows
}

// RetrievalConfig configures the retrieval pipeline.
type RetrievalConfig struct {
	TopK int `yaml:"topK"` // number of chunks fetched per query
}

// ChromaConfig configures the ChromaDB REST connection.
type ChromaConfig struct {
	URL        string `yaml:"url"`        // e.g. "http://localhost:8000"
	Collection string `yaml:"collection"` // collection name
}

// MilvusConfig configures the Milvus connection and collection.
type MilvusConfig struct {
	Address    string `yaml:"address"`    // Milvus service address
	Collection string `yaml:"collection"` // collection name
	Dim        int    `yaml:"dim"`        // embedding dimension
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Provider string       `yaml:"provider"` // "chroma" or "milvus"
	Chroma   ChromaConfig `yaml:"chroma"`
	Milvus   MilvusConfig `yaml:"milvus"`
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RegistryConfig selects the filename registry backend.
type RegistryConfig struct {
	Provider string      `yaml:"provider"` // "memory" or "redis"
	Redis    RedisConfig `yaml:"redis"`
}

// GeminiConfig holds Gemini model settings.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // falls back to GEMINI_API_KEY
	Model  string `yaml:"model"`
}

// OpenAIConfig holds OpenAI model settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`  // falls back to OPENAI_API_KEY
	BaseURL string `yaml:"baseURL"` // empty for the public endpoint
	Model   string `yaml:"model"`
}

// OllamaConfig holds Ollama model settings.
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"` // defaults to http://localhost:11434
	Model   string `yaml:"model"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // "gemini", "openai" or "ollama"
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // "gemini", "openai" or "ollama"
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// EventsConfig configures the optional Kafka lifecycle event publisher.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App         AppInfo           `yaml:"app"`
	Logger      LoggerConfig      `yaml:"logger"`
	Server      ServerConfig      `yaml:"server"`
	Upload      UploadConfig      `yaml:"upload"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Registry    RegistryConfig    `yaml:"registry"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Events      EventsConfig      `yaml:"events"`
}

// Default returns the configuration used when no file is present. The
// defaults match the original deployment: local uploads directory, a Chroma
// instance on localhost and Gemini for both generation and embeddings.
func Default() *AppConfig {
	return &AppConfig{
		App:    AppInfo{Name: "docchat", Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Address: ":8080"},
		Upload: UploadConfig{
			Dir:         "uploads",
			MaxFileSize: 16 << 20, // 16MB
			Provider:    "local",
		},
		Chunking:  ChunkingConfig{Size: 1000, Overlap: 200},
		Retrieval: RetrievalConfig{TopK: 5},
		VectorStore: VectorStoreConfig{
			Provider: "chroma",
			Chroma: ChromaConfig{
				URL:        "http://localhost:8000",
				Collection: "documents",
			},
			Milvus: MilvusConfig{
				Address:    "localhost:19530",
				Collection: "documents",
				Dim:        768,
			},
		},
		Registry: RegistryConfig{Provider: "memory"},
		LLM: LLMConfig{
			Provider: "gemini",
			Gemini:   GeminiConfig{Model: "gemini-2.5-flash-lite"},
			Ollama:   OllamaConfig{Model: "llama3"},
		},
		Embedding: EmbeddingConfig{
			Provider: "gemini",
			Gemini:   GeminiConfig{Model: "text-embedding-004"},
			Ollama:   OllamaConfig{Model: "nomic-embed-text"},
		},
		Events: EventsConfig{Topic: "document_events"},
	}
}

// LoadConfig loads and parses the YAML configuration file at path. A missing
// file is not an error: the defaults are returned so the service can be run
// purely from environment variables. API keys left empty in the file are
// resolved from the environment.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()

	yamlFile, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills secrets from the environment when the file left them empty.
func (c *AppConfig) applyEnv() {
	if c.LLM.Gemini.APIKey == "" {
		c.LLM.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Embedding.Gemini.APIKey == "" {
		c.Embedding.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.LLM.OpenAI.APIKey == "" {
		c.LLM.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Embedding.OpenAI.APIKey == "" {
		c.Embedding.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		c.Upload.Dir = dir
	}
	if url := os.Getenv("CHROMA_URL"); url != "" {
		c.VectorStore.Chroma.URL = url
	}
}
