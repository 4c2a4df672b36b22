// Package rotation decides when the active bag file must be closed and
// computes the names of successor files.
package rotation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
)

// Rotator holds the size threshold policy for one recording. It is pure
// bookkeeping: the writer consults it at each write boundary and acts on the
// answer.
type Rotator struct {
	maxBagfileSize uint64
}

// NewRotator creates a rotator. A maxBagfileSize of 0 disables size based
// splitting entirely.
func NewRotator(maxBagfileSize uint64) *Rotator {
	return &Rotator{maxBagfileSize: maxBagfileSize}
}

// ShouldSplit reports whether the accumulated size of the active bag file
// has reached the split threshold.
func (r *Rotator) ShouldSplit(accumulatedSize uint64) bool {
	return r.maxBagfileSize > 0 && accumulatedSize >= r.maxBagfileSize
}

// BaseName derives the bag's base file name from the bag URI. Bag files are
// named "{base}_{index}" under the bag directory.
func BaseName(uri string) string {
	return filepath.Base(strings.TrimRight(uri, string(filepath.Separator)))
}

// NextFileURI computes the absolute location of the bag file with the given
// index. The storage backend opens this path; the compressor extension is
// never part of it because file compression happens after close.
func (r *Rotator) NextFileURI(uri string, fileIndex uint64) string {
	return filepath.Join(uri, fmt.Sprintf("%s_%d", BaseName(uri), fileIndex))
}

// NextRelativePath computes the bag-directory-relative name recorded in the
// metadata for the file with the given index. In file compression mode the
// name already carries the compressor identifier as extension, since that is
// the name the file will have once its compression task completed.
func (r *Rotator) NextRelativePath(
	uri string, fileIndex uint64, mode domain.CompressionMode, compressionFormat string,
) string {
	name := fmt.Sprintf("%s_%d", BaseName(uri), fileIndex)
	if mode == domain.CompressionModeFile {
		name += "." + compressionFormat
	}
	return name
}
