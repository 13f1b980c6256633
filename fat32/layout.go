// Package fat32 derives the volume geometry and builds the on-disk
// structures for the DS-flashcart FAT32 profile.
package fat32

// Sector is an absolute LBA sector number on the whole device.
type Sector uint64

// SectorCount is a number of contiguous sectors.
type SectorCount uint64

// Cluster is a FAT cluster number. Cluster numbering starts at 2; entries 0
// and 1 of the FAT do not map to data clusters.
type Cluster uint32

// Layout holds every fixed constant of the volume layout. The values are
// dictated by the ARM9 boot firmware, which hard-codes the partition
// alignment and cluster size instead of reading them from the BPB like a
// general-purpose driver would. Passing the layout around explicitly keeps
// the profile swappable in tests without any package-level mutable state.
type Layout struct {
	BytesPerSector       uint32
	SectorsPerCluster    uint32
	PartitionStartSector SectorCount
	ReservedSectors      SectorCount
	FATCount             uint32
	RootCluster          Cluster
	FSInfoSector         SectorCount
	BackupBootSector     SectorCount
	MediaDescriptor      uint8

	// MinimumSectorCount is the smallest device this profile can format:
	// alignment gap + reserved region + two minimal FATs + enough data
	// clusters to be worth mounting.
	MinimumSectorCount SectorCount
}

// DefaultLayout is the DS-flashcart profile. Every value here is part of the
// bit-exact contract with the boot firmware.
var DefaultLayout = Layout{
	BytesPerSector:       512,
	SectorsPerCluster:    64,
	PartitionStartSector: 8192,
	ReservedSectors:      32,
	FATCount:             2,
	RootCluster:          2,
	FSInfoSector:         1,
	BackupBootSector:     6,
	MediaDescriptor:      0xF8,
	MinimumSectorCount:   18432,
}

// ClusterBytes returns the size of one cluster in bytes (32 KiB for the
// default profile).
func (l Layout) ClusterBytes() uint32 {
	return l.SectorsPerCluster * l.BytesPerSector
}

// FATEntriesPerSector returns how many 32-bit FAT entries fit in one sector.
func (l Layout) FATEntriesPerSector() uint32 {
	return l.BytesPerSector / 4
}
