package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/iamNilotpal/bagwriter/internal/adapters/compression"
	"github.com/iamNilotpal/bagwriter/internal/core/domain"
)

type Config struct {
	Recording   RecordingConfig   `yaml:"recording"`
	Compression CompressionConfig `yaml:"compression"`
	StoragePath string            `yaml:"storage_path"` // Base directory for recorded bags
}

// RecordingConfig holds the per-recording storage parameters.
type RecordingConfig struct {
	BagName        string `yaml:"bag_name"`         // Directory name of the bag under storage_path
	MaxBagfileSize uint64 `yaml:"max_bagfile_size"` // Size threshold for splitting, 0 disables
	MaxCacheSize   uint64 `yaml:"max_cache_size"`   // Backend write buffer size, 0 for default
}

// CompressionConfig holds the compression pipeline parameters.
type CompressionConfig struct {
	Format         string `yaml:"format"`          // Compressor identifier ("zstd", "gz")
	Mode           string `yaml:"mode"`            // "NONE", "FILE" or "MESSAGE"
	QueueSize      uint64 `yaml:"queue_size"`      // 0 means synchronous hand-off
	ThreadCount    uint64 `yaml:"thread_count"`    // Compression worker threads
	ThreadPriority *int   `yaml:"thread_priority"` // Optional worker nice value
}

// Returns a Config struct with reasonable default values. Each call names a
// fresh bag so repeated runs never collide.
func DefaultConfig() *Config {
	return &Config{
		StoragePath: "/bags",
		Recording: RecordingConfig{
			BagName:        fmt.Sprintf("bag-%s", uuid.NewString()),
			MaxBagfileSize: 1024 * 1024 * 100, // 100MB
		},
		Compression: CompressionConfig{
			Format:      compression.ZstdFormat,
			Mode:        domain.CompressionModeFile.String(),
			QueueSize:   1,
			ThreadCount: 4,
		},
	}
}

// Loads configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// CompressionOptions translates the config into the writer's options.
func (c *Config) CompressionOptions() (*domain.CompressionOptions, error) {
	mode, err := domain.CompressionModeFromString(c.Compression.Mode)
	if err != nil {
		return nil, err
	}

	return &domain.CompressionOptions{
		Mode:              mode,
		QueueSize:         c.Compression.QueueSize,
		ThreadCount:       c.Compression.ThreadCount,
		ThreadPriority:    c.Compression.ThreadPriority,
		CompressionFormat: c.Compression.Format,
	}, nil
}

func validateConfig(config *Config) error {
	if config.StoragePath == "" {
		return fmt.Errorf("storage_path is required")
	}

	if config.Recording.BagName == "" {
		return fmt.Errorf("recording.bag_name is required")
	}

	if _, err := domain.CompressionModeFromString(config.Compression.Mode); err != nil {
		return fmt.Errorf("compression.mode is invalid: %w", err)
	}

	return nil
}
