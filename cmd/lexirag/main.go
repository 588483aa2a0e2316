// Command lexirag indexes legal documents and answers questions about
// them with grounded, cited answers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	configfile "github.com/custodia-labs/lexirag/internal/adapters/driven/config/file"
	embopenai "github.com/custodia-labs/lexirag/internal/adapters/driven/embedding/openai"
	embopenrouter "github.com/custodia-labs/lexirag/internal/adapters/driven/embedding/openrouter"
	llmopenrouter "github.com/custodia-labs/lexirag/internal/adapters/driven/llm/openrouter"
	vsmemory "github.com/custodia-labs/lexirag/internal/adapters/driven/vectorstore/memory"
	vspinecone "github.com/custodia-labs/lexirag/internal/adapters/driven/vectorstore/pinecone"
	vssqlite "github.com/custodia-labs/lexirag/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/lexirag/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/core/services"
	"github.com/custodia-labs/lexirag/internal/postprocessors"
	"github.com/custodia-labs/lexirag/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexirag/internal/postprocessors/tagger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := configfile.Load(os.Getenv("LEXIRAG_CONFIG"))
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	store, err := buildVectorStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	llm, err := llmopenrouter.NewLLMService(llmopenrouter.Config{
		APIKey:         os.Getenv("OPENROUTER_API_KEY"),
		Model:          cfg.LLM.Model,
		FallbackModels: cfg.LLM.FallbackModels,
		Referer:        "https://github.com/custodia-labs/lexirag",
		Title:          "lexirag",
	})
	if err != nil {
		return err
	}
	defer llm.Close()

	chunk, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
		chunker.WithMinChunkSize(cfg.Chunking.MinChunkSize),
	)
	if err != nil {
		return err
	}
	pipeline := postprocessors.NewPipeline(chunk, tagger.New())

	retriever := services.NewHybridRetriever(store, embedder, services.RetrieverConfig{
		TopK:               cfg.Retrieval.TopK,
		MinScore:           cfg.Retrieval.MinScore,
		FallbackThresholds: cfg.Retrieval.FallbackThresholds,
		Hybrid:             cfg.Retrieval.Hybrid,
		EnforceDiversity:   cfg.Retrieval.EnforceDiversity,
	})

	cli.SetIndexService(services.NewIndexer(pipeline, embedder, store))
	cli.SetAnswerService(services.NewAnswerService(retriever, llm, services.AnswerConfig{
		TopK:             cfg.Retrieval.TopK,
		Verify:           cfg.Verify,
		SuggestFollowUps: true,
	}))

	return cli.Execute()
}

func buildEmbedder(cfg configfile.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	default:
		return embopenrouter.NewEmbeddingService(embopenrouter.Config{
			APIKey:            os.Getenv("OPENROUTER_API_KEY"),
			Model:             cfg.Embedding.Model,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RPS,
			Referer:           "https://github.com/custodia-labs/lexirag",
			Title:             "lexirag",
		})
	}
}

func buildVectorStore(cfg configfile.Config) (driven.VectorStore, error) {
	switch cfg.VectorStore.Provider {
	case "pinecone":
		return vspinecone.NewStore(vspinecone.Config{
			APIKey:     os.Getenv("PINECONE_API_KEY"),
			IndexHost:  cfg.VectorStore.IndexHost,
			Namespace:  cfg.VectorStore.Namespace,
			Dimensions: cfg.VectorStore.Dimensions,
		})
	case "memory":
		return vsmemory.NewStore(cfg.VectorStore.Dimensions), nil
	default:
		return vssqlite.NewStore(cfg.VectorStore.Path, cfg.VectorStore.Dimensions)
	}
}
