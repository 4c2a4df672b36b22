package ports

import "github.com/iamNilotpal/bagwriter/internal/core/domain"

// MetadataIOPort persists the final aggregate bag metadata. It is invoked
// exactly once per recording, at final close, with the last snapshot.
type MetadataIOPort interface {
	WriteMetadata(uri string, metadata *domain.BagMetadata) error
}
