// Package main is the MedFinder CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/catalog"
	"github.com/medfinder/medfinder/internal/cli"
	"github.com/medfinder/medfinder/internal/config"
	"github.com/medfinder/medfinder/internal/extract"
	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/internal/rag"
	"github.com/medfinder/medfinder/internal/server"
	"github.com/medfinder/medfinder/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/medfinder/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys commonly live in a .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "index":
		runIndex()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("medfinder version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var watchSvc *catalog.Watcher
	if cfg.Storage.WatchCatalog && cfg.Storage.CatalogDBPath == "" {
		watchSvc = catalog.NewWatcher(cfg.Storage.CatalogPath, func() {
			components.Catalog.Invalidate()
			if components.Fuzzy != nil {
				components.Fuzzy.Invalidate()
			}
			if _, err := components.Catalog.Reload(); err != nil {
				logger.Warn("catalog reload failed", zap.Error(err))
			}
		}, logger)
		if err := watchSvc.Start(context.Background()); err != nil {
			logger.Warn("catalog watcher failed to start", zap.Error(err))
			watchSvc = nil
		}
	}

	srv := server.NewServer(
		components.Orchestrator,
		components.Catalog,
		components.Suggester,
		components.Availability,
		components.Interactions,
		&cfg.Server,
		logger,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
		if watchSvc != nil {
			watchSvc.Stop()
		}
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	corpusDir := fs.String("corpus", "", "directory of medical book files (pdf, docx, txt)")
	chunksFile := fs.String("chunks", "", "pre-chunked corpus in JSONL instead of -corpus")
	chunkSize := fs.Int("chunk-size", 300, "chunk size in words")
	chunkOverlap := fs.Int("chunk-overlap", 50, "chunk overlap in words")
	_ = fs.Parse(os.Args[2:])

	if *corpusDir == "" && *chunksFile == "" {
		fmt.Println("index requires -corpus or -chunks")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var chunks []models.Chunk
	if *chunksFile != "" {
		chunks, err = rag.LoadChunksJSONL(*chunksFile)
		if err != nil {
			logger.Fatal("failed to load chunks", zap.Error(err))
		}
	} else {
		chunks, err = chunkCorpus(*corpusDir, *chunkSize, *chunkOverlap, logger)
		if err != nil {
			logger.Fatal("failed to read corpus", zap.Error(err))
		}
	}
	if len(chunks) == 0 {
		logger.Fatal("no chunks to index")
	}
	logger.Info("corpus loaded", zap.Int("chunks", len(chunks)))

	embedder := newEmbedder(cfg, logger)
	defer embedder.Close()

	indexer := rag.NewIndexer(embedder, cfg.Embedding.BatchSize, rag.WithIndexerLogger(logger))
	idx, store, err := indexer.Build(context.Background(), chunks)
	if err != nil {
		logger.Fatal("index build failed", zap.Error(err))
	}
	if err := rag.SaveArtifacts(idx, store, cfg.Storage.IndexPath, cfg.Storage.MetadataPath); err != nil {
		logger.Fatal("failed to persist index artifacts", zap.Error(err))
	}
	logger.Info("index built",
		zap.Int("vectors", idx.Size()),
		zap.String("index_path", cfg.Storage.IndexPath),
		zap.String("metadata_path", cfg.Storage.MetadataPath),
	)
}

// chunkCorpus extracts and chunks every supported file under dir.
func chunkCorpus(dir string, chunkSize, chunkOverlap int, logger *zap.Logger) ([]models.Chunk, error) {
	extractor := extract.NewExtractor()
	chunker := extract.NewChunker(chunkSize, chunkOverlap)

	var chunks []models.Chunk
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".docx", ".odt", ".rtf", ".txt", ".md":
		default:
			return nil
		}
		text, extractErr := extractor.Extract(path)
		if extractErr != nil {
			logger.Warn("extraction failed, skipping file",
				zap.String("path", path), zap.Error(extractErr))
			return nil
		}
		fileChunks := chunker.Chunk(filepath.Base(path), text)
		logger.Debug("file chunked",
			zap.String("path", path), zap.Int("chunks", len(fileChunks)))
		chunks = append(chunks, fileChunks...)
		return nil
	})
	return chunks, err
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	maxResults := fs.Int("max-results", 5, "maximum recommendations")
	jsonOut := fs.Bool("json", false, "emit JSON instead of text")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Println("search requires a symptom query, e.g.: medfinder search headache and fever")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	resp := components.Orchestrator.Search(context.Background(), query, *maxResults)
	format := cli.OutputText
	if *jsonOut {
		format = cli.OutputJSON
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, format); err != nil {
		logger.Fatal("failed to write results", zap.Error(err))
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (default from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	base := *serverURL
	if base == "" {
		base = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	resp, err := http.Get(base + "/status")
	if err != nil {
		fmt.Printf("Server not reachable at %s: %v\n", base, err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var pretty map[string]interface{}
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Println(`medfinder - symptom based medicine recommendation

Usage:
  medfinder server [-config path] [-debug]     start the HTTP API
  medfinder index -corpus dir [-config path]   build the vector index from medical books
  medfinder index -chunks file.jsonl           build the index from pre-chunked JSONL
  medfinder search <symptoms...>               run a symptom search from the CLI
  medfinder status [-server url]               show a running server's status
  medfinder version                            print version`)
}
