package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/availability"
	"github.com/medfinder/medfinder/internal/catalog"
	"github.com/medfinder/medfinder/internal/config"
	"github.com/medfinder/medfinder/internal/embedding"
	"github.com/medfinder/medfinder/internal/interactions"
	"github.com/medfinder/medfinder/internal/llm"
	"github.com/medfinder/medfinder/internal/pipeline"
	"github.com/medfinder/medfinder/internal/rag"
	"github.com/medfinder/medfinder/internal/suggest"
	"github.com/medfinder/medfinder/pkg/utils"
)

// Components holds the wired application pieces sharing a config and logger.
type Components struct {
	Catalog      *catalog.Catalog
	Orchestrator *pipeline.Orchestrator
	Suggester    *suggest.Suggester
	Fuzzy        *suggest.FuzzyMatcher
	Availability *availability.Checker
	Interactions *interactions.Checker

	embedder  embedding.Embedder
	nameIndex *suggest.NameIndex
	logger    *zap.Logger
}

// Close releases held resources.
func (c *Components) Close() {
	if c.embedder != nil {
		_ = c.embedder.Close()
	}
	if c.nameIndex != nil {
		_ = c.nameIndex.Close()
	}
}

func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	remote := embedding.NewRemoteEmbedder(embedding.RemoteConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKeyEnv:  cfg.Embedding.APIKeyEnv,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	}, embedding.WithLogger(logger))
	return embedding.NewCachedEmbedder(remote, cfg.Embedding.CacheSize)
}

// initializeComponents wires the catalog, retrieval stack, generative
// provider, and collaborator clients from cfg. A missing vector index or an
// unreachable generative endpoint degrades the corresponding stage instead
// of failing startup; only an unusable catalog is fatal.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{logger: logger}

	catalogPath := cfg.Storage.CatalogPath
	if cfg.Storage.CatalogDBPath != "" {
		catalogPath = cfg.Storage.CatalogDBPath
	}
	c.Catalog = catalog.NewFromFile(catalogPath, catalog.WithCatalogLogger(logger))
	if _, err := c.Catalog.Reload(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	c.embedder = newEmbedder(cfg, logger)

	var retriever pipeline.ChunkRetriever
	idx, store, err := rag.LoadArtifacts(cfg.Embedding.Dimensions, cfg.Storage.IndexPath, cfg.Storage.MetadataPath)
	if err != nil {
		logger.Warn("vector index unavailable, searches run without retrieval",
			zap.String("index_path", cfg.Storage.IndexPath), zap.Error(err))
	} else {
		r, retErr := rag.NewRetriever(c.embedder, idx, store)
		if retErr != nil {
			logger.Warn("retriever initialization failed", zap.Error(retErr))
		} else {
			retriever = r
			logger.Info("vector index loaded", zap.Int("vectors", idx.Size()))
		}
	}

	var provider llm.Provider
	var generator *pipeline.Generator
	if cfg.LLM.EnabledOrDefault() {
		provider = llm.NewOpenAIProvider(llm.OpenAIConfig{
			BaseURL:   cfg.LLM.BaseURL,
			APIKeyEnv: cfg.LLM.APIKeyEnv,
			Model:     cfg.LLM.Model,
			Timeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		}, llm.WithProviderLogger(logger))
		generator = pipeline.NewGenerator(provider, pipeline.GeneratorConfig{
			Temperature:      cfg.LLM.Temperature,
			MaxTokens:        cfg.LLM.MaxTokens,
			MaxContextChunks: cfg.Pipeline.MaxContextChunks,
			ChunkCharBudget:  cfg.Pipeline.ChunkCharBudget,
		}, logger)
	}

	c.Orchestrator = pipeline.NewOrchestrator(retriever, generator, c.Catalog, pipeline.Options{
		TopK:            cfg.Pipeline.TopK,
		MinScore:        cfg.Pipeline.MinScore,
		HighConfidence:  cfg.Pipeline.HighConfidence,
		RegexConfidence: cfg.Pipeline.RegexConfidence,
		FallbackEnabled: cfg.Pipeline.FallbackEnabledOrDefault() && generator != nil,
		MatchLimit:      cfg.Pipeline.MatchLimit,
	}, utils.NewComponentLogger(logger, "pipeline"))

	c.Fuzzy = suggest.NewFuzzyMatcher(c.Catalog.Names)
	var validator *suggest.Validator
	if provider != nil {
		validator = suggest.NewValidator(provider, 1000)
	}
	nameIndex, err := suggest.NewNameIndex(cfg.Storage.SuggestIndexPath)
	if err != nil {
		logger.Warn("name index unavailable, lexical suggestions disabled", zap.Error(err))
	} else {
		c.nameIndex = nameIndex
		if names, nameErr := c.Catalog.Names(); nameErr == nil {
			if idxErr := nameIndex.IndexNames(names); idxErr != nil {
				logger.Warn("name index build failed", zap.Error(idxErr))
			}
		}
	}
	c.Suggester = suggest.NewSuggester(validator, c.Fuzzy, c.nameIndex,
		cfg.Pipeline.MaxResults, utils.NewComponentLogger(logger, "suggest"))

	if cfg.Availability.APIBase != "" {
		var cache availability.Cache
		if cfg.Availability.RedisAddr != "" {
			cache = availability.NewRedisCache(cfg.Availability.RedisAddr, logger)
		} else {
			cache = availability.NewMemoryCache()
		}
		c.Availability = availability.NewChecker(availability.CheckerConfig{
			APIBase: cfg.Availability.APIBase,
			Timeout: time.Duration(cfg.Availability.TimeoutSeconds) * time.Second,
			TTL:     time.Duration(cfg.Availability.TTLHours) * time.Hour,
		}, cache, logger)
	}

	if cfg.Interactions.APIBase != "" {
		c.Interactions = interactions.NewChecker(interactions.NewLabelClient(interactions.ClientConfig{
			APIBase: cfg.Interactions.APIBase,
			Timeout: time.Duration(cfg.Interactions.TimeoutSeconds) * time.Second,
		}, logger))
	}

	return c, nil
}
