// Package imagetest provides in-memory disk images for tests.
package imagetest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// SectorSize matches the only sector size the formatter supports.
const SectorSize = 512

// NewBlankImage returns a stream over a zero-filled in-memory disk image of
// `totalSectors` sectors.
//
//   - The stream's size is fixed; writing past the end triggers an error,
//     just like a real block device.
//   - The backing slice is also returned so tests can inspect raw bytes
//     without seeking.
func NewBlankImage(totalSectors uint64) (io.ReadWriteSeeker, []byte) {
	imageBytes := make([]byte, totalSectors*SectorSize)
	return bytesextra.NewReadWriteSeeker(imageBytes), imageBytes
}

// Sector returns a copy of sector `n` of an image's backing bytes.
func Sector(t *testing.T, imageBytes []byte, n uint64) []byte {
	t.Helper()

	end := (n + 1) * SectorSize
	require.LessOrEqual(
		t, end, uint64(len(imageBytes)), "sector %d is past the end of the image", n)

	sector := make([]byte, SectorSize)
	copy(sector, imageBytes[n*SectorSize:end])
	return sector
}
