package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zip2job/zip2job/internal/analysis"
	"github.com/zip2job/zip2job/internal/api"
	"github.com/zip2job/zip2job/internal/bullets"
	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/consent"
	"github.com/zip2job/zip2job/internal/gitlog"
	"github.com/zip2job/zip2job/internal/ingest"
	"github.com/zip2job/zip2job/internal/llm"
	"github.com/zip2job/zip2job/internal/store"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("zip2job: .env file not loaded", "error", err)
	} else {
		logger.Info("zip2job: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	artifactRoot := flag.String("artifacts", defaultArtifactRoot(), "root directory for content-addressed artifact storage")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite catalog database")
	maxArchiveMB := flag.Int64("max-archive-mb", 512, "maximum uncompressed archive size in MiB")
	workers := flag.Int("workers", 1, "batch analysis worker pool size")
	gitUser := flag.String("git-user", os.Getenv("ZIP2JOB_GIT_USER"), "author name identifying the current user in git history")
	gitEmail := flag.String("git-email", os.Getenv("ZIP2JOB_GIT_EMAIL"), "author email identifying the current user in git history")
	flag.Parse()

	logger.Info("zip2job: startup initiated", "addr", *addr, "artifacts", *artifactRoot, "catalog", *catalogPath)

	objects, err := store.New(*artifactRoot)
	if err != nil {
		logger.Error("zip2job: content store init failed", "error", err)
		fmt.Println("content store error:", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*catalogPath), 0o755); err != nil {
		logger.Error("zip2job: catalog directory creation failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	cat, err := catalog.OpenSQLite(*catalogPath)
	if err != nil {
		logger.Error("zip2job: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer cat.Close()

	gate := consent.NewGate(cat)
	provider := llm.NewProvider()
	logger.Info("zip2job: llm provider ready", "provider", provider.Name(), "available", provider.Available())

	identity := gitlog.Identity{Name: strings.TrimSpace(*gitUser), Email: strings.TrimSpace(*gitEmail)}
	if identity.Name == "" && identity.Email == "" {
		logger.Warn("zip2job: no git identity configured; role detection will report Unknown")
	}

	pipelineOpts := []analysis.Option{analysis.WithWorkers(*workers)}
	if aug := llm.NewSkillAugmenter(provider); aug != nil {
		pipelineOpts = append(pipelineOpts, analysis.WithAugmenter(aug))
	}
	pipeline := analysis.NewPipeline(cat, objects, gate, identity, pipelineOpts...)
	ingestor := ingest.NewIngestor(objects, cat, *maxArchiveMB<<20)
	generator := bullets.NewGenerator(provider)

	server, err := api.NewServer(cat, ingestor, pipeline, generator, gate, filepath.Join(*artifactRoot, "uploads"))
	if err != nil {
		logger.Error("zip2job: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("zip2job: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("zip2job: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultArtifactRoot() string {
	if env := strings.TrimSpace(os.Getenv("ZIP2JOB_ARTIFACT_DIR")); env != "" {
		return env
	}
	return filepath.Join("data", "artifacts")
}

func defaultCatalogPath() string {
	return filepath.Join("data", "catalog.db")
}
