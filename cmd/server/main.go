// Package main is the application entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docquery-go/internal/chunker"
	"docquery-go/internal/config"
	"docquery-go/internal/handler"
	"docquery-go/internal/indexer"
	"docquery-go/internal/middleware"
	"docquery-go/internal/model"
	"docquery-go/internal/pipeline"
	"docquery-go/internal/repository"
	"docquery-go/internal/search"
	"docquery-go/internal/service"
	"docquery-go/pkg/database"
	"docquery-go/pkg/embedding"
	"docquery-go/pkg/es"
	"docquery-go/pkg/kafka"
	"docquery-go/pkg/log"
	"docquery-go/pkg/parser"
	"docquery-go/pkg/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Initialize configuration.
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. Initialize the logger.
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialized successfully")

	// 3. Initialize infrastructure clients.
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.DB.AutoMigrate(&model.Document{}, &model.Asset{}, &model.ChunkFailure{}); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Fatalf("elasticsearch initialization failed: %v", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. Initialize repositories.
	docRepo := repository.NewDocumentRepository(database.DB)
	assetRepo := repository.NewAssetRepository(database.DB)
	failureRepo := repository.NewChunkFailureRepository(database.DB)

	// 5. Initialize services (dependency injection).
	parserClient := parser.NewClient(cfg.Parser)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	objectStore := storage.NewMinioStore(cfg.MinIO)
	vectorStore := es.NewStore(cfg.Elasticsearch)

	assetService := service.NewAssetService(assetRepo, objectStore)
	documentService := service.NewDocumentService(docRepo, failureRepo, assetService, vectorStore, objectStore, kafka.ProduceIngestTask)
	searchService := search.NewService(embeddingClient, vectorStore, assetService, cfg.Retrieval)

	// 6. Initialize the ingestion pipeline.
	chunkBuilder := chunker.New(cfg.Chunking)
	chunkIndexer := indexer.New(embeddingClient, vectorStore, failureRepo, cfg.Embedding, cfg.Indexer)
	processor := pipeline.NewProcessor(
		parserClient,
		objectStore,
		docRepo,
		failureRepo,
		assetService,
		chunkBuilder,
		chunkIndexer,
	)

	// 7. Start the background Kafka consumer.
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. Set up the Gin engine and register routes.
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	apiV1 := r.Group("/api/v1")
	{
		documents := apiV1.Group("/documents")
		{
			documents.POST("", handler.NewDocumentHandler(documentService).Ingest)
			documents.GET("", handler.NewDocumentHandler(documentService).List)
			documents.DELETE("/:docId", handler.NewDocumentHandler(documentService).Delete)
		}

		searchGroup := apiV1.Group("/search")
		{
			searchGroup.GET("/hybrid", handler.NewSearchHandler(searchService).HybridSearch)
		}

		assets := apiV1.Group("/assets")
		{
			assets.GET("/:assetId", handler.NewAssetHandler(assetService, objectStore).Get)
		}
	}

	// 9. Start the HTTP server with graceful shutdown.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	log.Info("server stopped gracefully")
}
