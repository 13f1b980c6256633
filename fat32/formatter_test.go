package fat32_test

import (
	"bytes"
	"testing"

	sdformat "github.com/herbderby/NdsSDFormat"
	"github.com/herbderby/NdsSDFormat/fat32"
	"github.com/herbderby/NdsSDFormat/imagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testImageSectors is the smallest formattable device. Large enough to hold
// every structure, small enough to format in-memory thousands of times.
const testImageSectors = 18432

func formatBlankImage(t *testing.T, label string, volumeID uint32) []byte {
	t.Helper()

	stream, imageBytes := imagetest.NewBlankImage(testImageSectors)
	formatter, err := fat32.New(
		stream, testImageSectors, label, fat32.WithVolumeID(volumeID))
	require.NoError(t, err)
	require.NoError(t, formatter.FormatImage())
	return imageBytes
}

func TestNewValidatesInputs(t *testing.T) {
	_, err := fat32.New(nil, testImageSectors, "GAMES")
	assert.ErrorIs(t, err, sdformat.ErrInvalidDevice)

	stream, _ := imagetest.NewBlankImage(64)
	_, err = fat32.New(stream, 64, "GAMES")
	assert.ErrorIs(t, err, sdformat.ErrTooSmall)

	_, err = fat32.New(stream, testImageSectors, "bad:label")
	assert.ErrorIs(t, err, sdformat.ErrInvalidLabel)
}

func TestFormatImageLayout(t *testing.T) {
	imageBytes := formatBlankImage(t, "GAMES", 0xCAFE0001)

	geo, err := fat32.ComputeGeometry(fat32.DefaultLayout, testImageSectors)
	require.NoError(t, err)

	mbr := imagetest.Sector(t, imageBytes, 0)
	assert.Equal(t, []byte{0x55, 0xAA}, mbr[510:512],
		"MBR signature missing")
	assert.Equal(t, fat32.BuildMBR(geo), mbr)

	label, err := fat32.NormalizeLabel("GAMES")
	require.NoError(t, err)

	vbr := imagetest.Sector(t, imageBytes, 8192)
	assert.Equal(t, fat32.BuildBootSector(geo, label, 0xCAFE0001), vbr)

	fsinfo := imagetest.Sector(t, imageBytes, 8193)
	assert.Equal(t, fat32.BuildFSInfo(geo, geo.FreeClusterCount, 3), fsinfo)

	fatHeader := imagetest.Sector(t, imageBytes, uint64(geo.FATSector(0)))
	assert.Equal(t, fat32.BuildFATHeaderSector(geo), fatHeader)

	rootDir := imagetest.Sector(t, imageBytes, uint64(geo.DataStartSector))
	assert.Equal(t, fat32.BuildRootDirSector(geo, label), rootDir)

	// The rest of each FAT, and the rest of the root cluster, must be
	// zero-filled.
	for s := geo.FATSector(0) + 1; s < geo.FATSector(1); s++ {
		sector := imagetest.Sector(t, imageBytes, uint64(s))
		require.Equalf(t, make([]byte, 512), sector,
			"FAT sector %d is not zero-filled", s)
	}
	for i := uint64(1); i < 64; i++ {
		sector := imagetest.Sector(t, imageBytes, uint64(geo.DataStartSector)+i)
		require.Equalf(t, make([]byte, 512), sector,
			"root cluster sector %d is not zero-filled", i)
	}
}

func TestFormatImageBackupCopiesAreIdentical(t *testing.T) {
	imageBytes := formatBlankImage(t, "GAMES", 0xCAFE0001)

	geo, err := fat32.ComputeGeometry(fat32.DefaultLayout, testImageSectors)
	require.NoError(t, err)

	assert.Equal(
		t,
		imagetest.Sector(t, imageBytes, 8192),
		imagetest.Sector(t, imageBytes, 8198),
		"backup VBR differs from primary")
	assert.Equal(
		t,
		imagetest.Sector(t, imageBytes, 8193),
		imagetest.Sector(t, imageBytes, 8199),
		"backup FSInfo differs from primary")
	assert.Equal(
		t,
		imagetest.Sector(t, imageBytes, uint64(geo.FATSector(0))),
		imagetest.Sector(t, imageBytes, uint64(geo.FATSector(1))),
		"FAT copies differ")
}

func TestFormatImageIsDeterministic(t *testing.T) {
	first := formatBlankImage(t, "GAMES", 7)
	second := formatBlankImage(t, "GAMES", 7)
	assert.True(t, bytes.Equal(first, second),
		"formatting identical blank images must produce identical bytes")
}

// Rerunning a format over a dirty device must fully reset the structures:
// the recovery path for an aborted format is simply running it again.
func TestFormatImageOverwritesDirtyDevice(t *testing.T) {
	clean := formatBlankImage(t, "GAMES", 7)

	stream, dirty := imagetest.NewBlankImage(testImageSectors)
	for i := range dirty {
		dirty[i] = 0xA5
	}
	formatter, err := fat32.New(stream, testImageSectors, "GAMES",
		fat32.WithVolumeID(7))
	require.NoError(t, err)
	require.NoError(t, formatter.FormatImage())

	geo, err := fat32.ComputeGeometry(fat32.DefaultLayout, testImageSectors)
	require.NoError(t, err)

	// Every structure-bearing region matches the clean image. Sectors the
	// formatter never touches (the reserved region past the backup FSInfo,
	// the data region past the root cluster) keep their garbage.
	structureSectors := []uint64{0, 8192, 8193, 8198, 8199}
	for s := geo.FATSector(0); s < geo.DataStartSector+64; s++ {
		structureSectors = append(structureSectors, uint64(s))
	}
	for _, s := range structureSectors {
		require.Equalf(
			t,
			imagetest.Sector(t, clean, s),
			imagetest.Sector(t, dirty, s),
			"sector %d not rewritten", s)
	}
}

func TestWriteOperationsAreOrderIndependent(t *testing.T) {
	inOrder := formatBlankImage(t, "GAMES", 7)

	stream, reordered := imagetest.NewBlankImage(testImageSectors)
	formatter, err := fat32.New(stream, testImageSectors, "GAMES",
		fat32.WithVolumeID(7))
	require.NoError(t, err)

	require.NoError(t, formatter.WriteRootDirectory())
	require.NoError(t, formatter.WriteFATs())
	require.NoError(t, formatter.WriteFSInfo())
	require.NoError(t, formatter.WriteBootRecords())
	require.NoError(t, formatter.WriteMBR())

	assert.True(t, bytes.Equal(inOrder, reordered),
		"write order must not affect the output")
}
