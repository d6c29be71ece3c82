package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/petition-qc/app/config"
	"github.com/petition-qc/internal/importer"
	"github.com/petition-qc/internal/registry"
)

// Command-line voter-file import, for loading a county extract without
// going through the API. SIGINT aborts cleanly between chunks.
func main() {
	path := flag.String("file", "", "voter file CSV path")
	replace := flag.Bool("replace", false, "truncate the registry before importing")
	flag.Parse()
	if *path == "" {
		log.Fatal("usage: import -file voters.csv [-replace]")
	}

	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "petition_qc")
	viper.SetDefault("config_file", "config/petition_qc.yaml")
	viper.AutomaticEnv()

	if err := config.Load(viper.GetString("config_file")); err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(viper.GetString("mongo.url")))
	if err != nil {
		logger.Fatal("cannot connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal("cannot ping MongoDB", zap.Error(err))
	}

	db := client.Database(viper.GetString("mongo.database"))
	registryStore := registry.NewStore(db, registry.StoreConfig{
		SimilarityThreshold: config.C.Search.SimilarityThreshold,
		ScanFactor:          config.C.Search.ScanFactor,
		Timeout:             config.C.Search.LookupTimeout(),
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rows, err := importer.New(registryStore, logger).Run(ctx, *path, *replace)
	if err != nil {
		logger.Error("import failed", zap.Int("rows_loaded", rows), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("import complete", zap.Int("rows", rows))
}
