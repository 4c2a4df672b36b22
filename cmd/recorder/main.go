package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/iamNilotpal/bagwriter/config"
	"github.com/iamNilotpal/bagwriter/internal/adapters/compression"
	"github.com/iamNilotpal/bagwriter/internal/adapters/metadata"
	"github.com/iamNilotpal/bagwriter/internal/adapters/storage"
	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/internal/core/services/writer"
	"github.com/iamNilotpal/bagwriter/pkg/errors"
	"github.com/iamNilotpal/bagwriter/pkg/logger"
)

func main() {
	logger := logger.New("bag-recorder")
	defer logger.Sync()

	// Optional .env file for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	if path := os.Getenv("RECORDER_CONFIG"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			logger.Errorw("load config error", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	compressionOpts, err := cfg.CompressionOptions()
	if err != nil {
		logger.Errorw("config error", "error", err)
		os.Exit(1)
	}

	bagWriter := writer.New(writer.Options{
		Logger:             logger,
		Compression:        compressionOpts,
		CompressionFactory: compression.NewFactory(),
		StorageFactory:     storage.NewFactory(),
		MetadataIO:         metadata.NewYamlIO(),
	})

	ctx := context.Background()
	storageOpts := &domain.StorageOptions{
		URI:            filepath.Join(cfg.StoragePath, cfg.Recording.BagName),
		StorageID:      storage.StorageID,
		MaxBagfileSize: cfg.Recording.MaxBagfileSize,
		MaxCacheSize:   cfg.Recording.MaxCacheSize,
	}

	if err := bagWriter.Open(ctx, storageOpts, nil); err != nil {
		if validation := errors.AsValidationError(err); validation != nil {
			logger.Errorw("open error", "field", validation.Field, "value", validation.Value, "error", validation.Err)
		} else {
			logger.Errorw("open error", "error", err)
		}
		os.Exit(1)
	}

	topic := &domain.TopicMetadata{Name: "demo", Type: "demo/Sample", SerializationFormat: "raw"}
	if err := bagWriter.CreateTopic(topic); err != nil {
		logger.Errorw("create topic error", "error", err)
	}

	for i := 0; i < 10; i++ {
		message := &domain.SerializedBagMessage{
			TopicName:      topic.Name,
			TimeStamp:      time.Now().UnixNano(),
			SerializedData: []byte(fmt.Sprintf("demo message %d", i)),
		}
		if err := bagWriter.Write(ctx, message); err != nil {
			logger.Errorw("write error", "error", err)
		}
	}

	if err := bagWriter.Close(ctx); err != nil {
		logger.Errorw("error closing bag writer", "error", err)
	}
}
