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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/MounirKhalil/real-time-investigation-graph/internal/application"
	appanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/application/analysis"
	appinvestigation "github.com/MounirKhalil/real-time-investigation-graph/internal/application/investigation"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/config"
	domanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/domain/graph"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/domain/session"
	aiopenai "github.com/MounirKhalil/real-time-investigation-graph/internal/infra/ai/openai"
	mysqlx "github.com/MounirKhalil/real-time-investigation-graph/internal/infra/db/mysql"
	postgresx "github.com/MounirKhalil/real-time-investigation-graph/internal/infra/db/postgres"
	neo4jstore "github.com/MounirKhalil/real-time-investigation-graph/internal/infra/graph/neo4j"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/infra/httpserver"
	minioStore "github.com/MounirKhalil/real-time-investigation-graph/internal/infra/storage"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect relational session store
	var sessions session.Repository
	var analyses domanalysis.Repository
	checkers := map[string]middleware.HealthChecker{}

	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlx.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		sessions = mysqlx.NewSessionRepository(db)
		analyses = mysqlx.NewAnalysisRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := postgresx.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		sessions = postgresx.NewSessionRepository(db)
		analyses = postgresx.NewAnalysisRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// connect knowledge graph; the service degrades gracefully without it
	var graphStore graph.Store
	if cfg.Neo4j.URI != "" {
		store, err := neo4jstore.New(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			log.Printf("warning: neo4j unavailable, continuing without knowledge graph: %v", err)
		} else {
			defer store.Close(ctx)
			graphStore = store
			checkers["graph"] = &middleware.GraphHealthChecker{Graph: store}
		}
	} else {
		log.Printf("warning: neo4j not configured, knowledge graph disabled")
	}

	// transcript archive, also best-effort
	var archive session.ArchiveStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Printf("warning: minio unavailable, transcript archiving disabled: %v", err)
		} else {
			archive = store
		}
	}

	// init services
	agent := aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	analysisSvc := appanalysis.NewService(agent, cfg.OpenAI.MaxQuestions)
	analysisSvc.OnDegraded = middleware.IncrementAnalysesDegraded
	investigationSvc := &appinvestigation.Service{
		Analysis: analysisSvc,
		Sessions: sessions,
		Analyses: analyses,
		Graph:    graphStore,
		Archive:  archive,
		Clock:    application.SystemClock{},
		BaseURL:  cfg.Server.BaseURL,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(investigationSvc, analysisSvc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // submissions wait on up to two model calls
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
