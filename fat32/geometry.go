package fat32

import (
	"fmt"

	sdformat "github.com/herbderby/NdsSDFormat"
)

// Geometry holds every derived layout value for one device. It is computed
// once per format operation and never mutated; all five structure writes
// read from the same snapshot.
type Geometry struct {
	Layout Layout

	// SectorCount is the total size of the device.
	SectorCount SectorCount
	// PartitionSectorCount is the size of the single FAT32 partition, i.e.
	// everything after the alignment gap.
	PartitionSectorCount SectorCount
	// FATSizeSectors is the size of one FAT copy.
	FATSizeSectors SectorCount
	// FATStartSector is the absolute sector where the first FAT begins.
	FATStartSector Sector
	// DataStartSector is the absolute sector where cluster 2 (the root
	// directory) begins.
	DataStartSector Sector
	// TotalDataClusters is the number of clusters in the data region,
	// including the root-directory cluster.
	TotalDataClusters uint32
	// FreeClusterCount is TotalDataClusters minus the pre-allocated root
	// directory cluster. This is the value FSInfo advertises.
	FreeClusterCount uint32
}

// ComputeGeometry derives the full volume geometry for a device of
// `sectorCount` sectors. It is a pure function: no I/O, safe to call from
// any goroutine. Devices smaller than the profile minimum yield ErrTooSmall
// and no geometry.
func ComputeGeometry(layout Layout, sectorCount SectorCount) (Geometry, error) {
	if sectorCount < layout.MinimumSectorCount {
		return Geometry{}, sdformat.ErrTooSmall.WithMessage(fmt.Sprintf(
			"device has %d sectors, minimum is %d",
			sectorCount,
			layout.MinimumSectorCount))
	}

	partitionSectors := sectorCount - layout.PartitionStartSector
	sectorsToAllocate := uint64(partitionSectors - layout.ReservedSectors)

	// FAT size calculation from the Microsoft FAT specification. 256 is the
	// number of 16-bit FAT entries per sector; halving the divisor converts
	// it to 32-bit-entry density (128 per sector), and the FATCount term
	// pays for the partition space each extra FAT sector consumes. The
	// rounding is a deliberate over-estimate of up to ~8 sectors; it must
	// never round down.
	sectorsPerFATSector :=
		uint64(256*layout.SectorsPerCluster+layout.FATCount) / 2
	fatSize := SectorCount(
		(sectorsToAllocate + sectorsPerFATSector - 1) / sectorsPerFATSector)

	fatStart := Sector(layout.PartitionStartSector + layout.ReservedSectors)
	dataStart := fatStart + Sector(SectorCount(layout.FATCount)*fatSize)

	dataSectors := partitionSectors -
		layout.ReservedSectors -
		SectorCount(layout.FATCount)*fatSize
	totalClusters := uint32(uint64(dataSectors) / uint64(layout.SectorsPerCluster))

	return Geometry{
		Layout:               layout,
		SectorCount:          sectorCount,
		PartitionSectorCount: partitionSectors,
		FATSizeSectors:       fatSize,
		FATStartSector:       fatStart,
		DataStartSector:      dataStart,
		TotalDataClusters:    totalClusters,
		// The root directory claims one cluster at format time.
		FreeClusterCount: totalClusters - 1,
	}, nil
}

// FATSector returns the absolute first sector of FAT copy `index`
// (0-based). Both copies are byte-identical; the boot firmware only ever
// reads the first.
func (geo Geometry) FATSector(index uint32) Sector {
	return geo.FATStartSector + Sector(SectorCount(index)*geo.FATSizeSectors)
}

// VBRSector returns the absolute sector of the primary volume boot record.
func (geo Geometry) VBRSector() Sector {
	return Sector(geo.Layout.PartitionStartSector)
}

// BackupVBRSector returns the absolute sector of the backup boot record.
func (geo Geometry) BackupVBRSector() Sector {
	return Sector(geo.Layout.PartitionStartSector + geo.Layout.BackupBootSector)
}

// FSInfoSector returns the absolute sector of the primary FSInfo sector.
func (geo Geometry) FSInfoSector() Sector {
	return Sector(geo.Layout.PartitionStartSector + geo.Layout.FSInfoSector)
}

// BackupFSInfoSector returns the absolute sector of the backup FSInfo
// sector. It sits immediately after the backup boot record, mirroring the
// primary pair's adjacency.
func (geo Geometry) BackupFSInfoSector() Sector {
	return geo.BackupVBRSector() + 1
}
