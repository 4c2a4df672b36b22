// Package metadata provides the YAML metadata IO sink that persists the
// final aggregate bag metadata next to the bag files.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
)

// MetadataFileName is the name of the metadata file inside the bag directory.
const MetadataFileName = "metadata.yaml"

// document wraps the metadata under a stable top-level key so the file
// format can evolve without breaking readers.
type document struct {
	BagfileInformation *domain.BagMetadata `yaml:"bagfile_information"`
}

// YamlIO implements ports.MetadataIOPort with a YAML file per bag.
type YamlIO struct{}

// NewYamlIO creates a YAML metadata sink.
func NewYamlIO() *YamlIO {
	return &YamlIO{}
}

// WriteMetadata serializes the snapshot into "<uri>/metadata.yaml".
// Called exactly once per recording, at final close.
func (y *YamlIO) WriteMetadata(uri string, metadata *domain.BagMetadata) error {
	if err := os.MkdirAll(uri, 0755); err != nil {
		return fmt.Errorf("error creating bag directory : %w", err)
	}

	encoded, err := yaml.Marshal(&document{BagfileInformation: metadata})
	if err != nil {
		return fmt.Errorf("error serializing bag metadata : %w", err)
	}

	path := filepath.Join(uri, MetadataFileName)
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("error writing bag metadata : %w", err)
	}
	return nil
}

// ReadMetadata loads a previously written metadata file.
func (y *YamlIO) ReadMetadata(uri string) (*domain.BagMetadata, error) {
	data, err := os.ReadFile(filepath.Join(uri, MetadataFileName))
	if err != nil {
		return nil, fmt.Errorf("error reading bag metadata : %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing bag metadata : %w", err)
	}
	return doc.BagfileInformation, nil
}
