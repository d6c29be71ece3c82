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

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/petition-qc/app/config"
	"github.com/petition-qc/app/controllers"
	"github.com/petition-qc/app/services"
	"github.com/petition-qc/internal/importer"
	"github.com/petition-qc/internal/registry"
	"github.com/petition-qc/internal/store"
	"github.com/petition-qc/routes"
)

func main() {
	// 1. Configuration: YAML file plus env overrides.
	loadConfig()
	if err := config.Load(viper.GetString("config_file")); err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// 2. Logger.
	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting petition QC service")

	// 3. MongoDB.
	client, db := initMongoDB(logger)
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("error disconnecting MongoDB", zap.Error(err))
		}
	}()

	// 4. Stores: registry read path plus the bookkeeping collections.
	registryStore := registry.NewStore(db, registry.StoreConfig{
		SimilarityThreshold: config.C.Search.SimilarityThreshold,
		ScanFactor:          config.C.Search.ScanFactor,
		Timeout:             config.C.Search.LookupTimeout(),
	}, logger)

	stores := store.New(client, db, logger)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := stores.EnsureIndexes(ctx); err != nil {
			logger.Fatal("cannot create constraint indexes", zap.Error(err))
		}
		if err := registryStore.EnsureIndexes(ctx); err != nil {
			logger.Fatal("cannot create registry indexes", zap.Error(err))
		}
	}

	// 5. Result cache: in-process LRU, layered over Redis when reachable.
	cacheService := initCache(logger)
	defer cacheService.Close()

	// 6. Services.
	voterImporter := importer.New(registryStore, logger)
	searchService := services.NewSearchService(registryStore, cacheService, config.C.Search, logger)
	sessionService := services.NewSessionService(stores.Books, stores.Collectors, stores.Batches, logger)
	signatureService := services.NewSignatureService(stores.Batches, registryStore, stores.Signatures, logger)
	adminService := services.NewAdminService(
		stores.Batches, stores.Signatures, registryStore, voterImporter,
		cacheService, config.C.Stats.HomeCity, logger)

	// 7. Controllers and router.
	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Controllers{
		Search:    controllers.NewSearchController(searchService, logger),
		Session:   controllers.NewSessionController(sessionService, stores.Collectors, logger),
		Signature: controllers.NewSignatureController(signatureService, logger),
		Admin:     controllers.NewAdminController(adminService, logger),
		Health:    controllers.NewHealthController(client),
	})

	// 8. Serve with graceful shutdown.
	srv := &http.Server{
		Addr:    ":" + viper.GetString("app.port"),
		Handler: router,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown did not complete cleanly", zap.Error(err))
	}
	logger.Info("server exited")
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("config_file", "config/petition_qc.yaml")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "petition_qc")
	viper.SetDefault("redis.url", "redis://localhost:6379")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("warning: cannot read config file: %v", err)
	}
}

func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	return logger
}

func initMongoDB(logger *zap.Logger) (*mongo.Client, *mongo.Database) {
	mongoURL := viper.GetString("mongo.url")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("cannot connect to MongoDB", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("cannot ping MongoDB", zap.Error(err))
	}

	dbName := viper.GetString("mongo.database")
	logger.Info("connected to MongoDB", zap.String("database", dbName))
	return client, client.Database(dbName)
}

// initCache always returns a working cache: the in-process LRU alone when
// Redis is unreachable, the hybrid two-tier cache when it is.
func initCache(logger *zap.Logger) services.ResultCache {
	memCache, err := services.NewMemoryCacheService(config.C.Cache.L1Size)
	if err != nil {
		logger.Fatal("cannot create memory cache", zap.Error(err))
	}

	ttl := time.Duration(config.C.Cache.TTLHours) * time.Hour
	redisCache, err := services.NewRedisCacheService(viper.GetString("redis.url"), ttl, logger)
	if err != nil {
		logger.Warn("Redis unavailable, running with in-process cache only", zap.Error(err))
		return memCache
	}
	return services.NewHybridCacheService(memCache, redisCache, logger)
}
