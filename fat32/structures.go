package fat32

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/noxer/bytewriter"
)

// Every constant in this file is part of the on-disk contract. The boot
// firmware compares several of these byte-for-byte before it will treat a
// card as bootable, so none of them may vary with geometry.
const (
	bootSectorSignature   = 0xAA55
	mbrBootstrapSize      = 446
	partitionTypeFAT32LBA = 0x0C
	partitionStatusActive = 0x80

	fsInfoLeadSignature   = 0x41615252
	fsInfoStructSignature = 0x61417272
	fsInfoTrailSignature  = 0xAA550000

	attrVolumeID = 0x08

	// FAT entry 0 carries the media descriptor in its low byte with every
	// other bit set; entry 1 is all ones (both dirty/error status bits
	// "clean"); entry 2 is end-of-chain for the root directory, with the
	// reserved top 4 bits held at zero.
	fatEntry0   = 0xFFFFFF00
	fatEntry1   = 0xFFFFFFFF
	fatEntryEOC = 0x0FFFFFFF
)

// chsSentinel is the cylinder-head-sector placeholder meaning "use the LBA
// fields instead".
var chsSentinel = [3]byte{0xFF, 0xFF, 0xFF}

var jumpInstruction = [3]byte{0xEB, 0x58, 0x90}

const oemName = "MSWIN4.1"

// fsTypeLabel is informational only. Nothing in this module, and no
// conforming driver, determines the FAT type from it.
const fsTypeLabel = "FAT32   "

// VolumeIDFromTime derives a 32-bit volume serial number from a timestamp,
// matching what the firmware's own formatter stamps. Callers that need
// reproducible output pass a fixed ID instead.
func VolumeIDFromTime(t time.Time) uint32 {
	return uint32(t.Unix())
}

// BuildMBR serializes the master boot record: an empty bootstrap area, one
// active FAT32-LBA partition covering everything past the alignment gap,
// three unused partition slots, and the boot signature.
func BuildMBR(geo Geometry) []byte {
	buf := make([]byte, geo.Layout.BytesPerSector)
	w := bytewriter.New(buf)

	w.Write(bytes.Repeat([]byte{0}, mbrBootstrapSize))

	// Partition slot 0.
	binary.Write(w, binary.LittleEndian, uint8(partitionStatusActive))
	w.Write(chsSentinel[:])
	binary.Write(w, binary.LittleEndian, uint8(partitionTypeFAT32LBA))
	w.Write(chsSentinel[:])
	binary.Write(w, binary.LittleEndian, uint32(geo.Layout.PartitionStartSector))
	binary.Write(w, binary.LittleEndian, uint32(geo.PartitionSectorCount))

	// Slots 1-3 stay zero.
	w.Write(bytes.Repeat([]byte{0}, 3*16))

	binary.Write(w, binary.LittleEndian, uint16(bootSectorSignature))
	return buf
}

// BuildBootSector serializes the volume boot record with its embedded BIOS
// parameter block. The same bytes are written to the primary sector and the
// backup sector; the structure carries no self-referential "which copy"
// field, so the copies must be identical.
func BuildBootSector(geo Geometry, label Label, volumeID uint32) []byte {
	buf := make([]byte, geo.Layout.BytesPerSector)
	w := bytewriter.New(buf)

	w.Write(jumpInstruction[:])
	w.Write([]byte(oemName))

	// Common BPB. The zeroed rootEntryCount, totalSectors16, and fatSize16
	// fields are what marks this volume as FAT32 rather than FAT12/16;
	// they must stay zero.
	binary.Write(w, binary.LittleEndian, uint16(geo.Layout.BytesPerSector))
	binary.Write(w, binary.LittleEndian, uint8(geo.Layout.SectorsPerCluster))
	binary.Write(w, binary.LittleEndian, uint16(geo.Layout.ReservedSectors))
	binary.Write(w, binary.LittleEndian, uint8(geo.Layout.FATCount))
	binary.Write(w, binary.LittleEndian, uint16(0)) // rootEntryCount
	binary.Write(w, binary.LittleEndian, uint16(0)) // totalSectors16
	binary.Write(w, binary.LittleEndian, geo.Layout.MediaDescriptor)
	binary.Write(w, binary.LittleEndian, uint16(0))   // fatSize16
	binary.Write(w, binary.LittleEndian, uint16(63))  // sectorsPerTrack
	binary.Write(w, binary.LittleEndian, uint16(255)) // headCount
	binary.Write(w, binary.LittleEndian, uint32(geo.Layout.PartitionStartSector))
	binary.Write(w, binary.LittleEndian, uint32(geo.PartitionSectorCount))

	// FAT32 extended BPB.
	binary.Write(w, binary.LittleEndian, uint32(geo.FATSizeSectors))
	binary.Write(w, binary.LittleEndian, uint16(0)) // extFlags: mirrored FATs
	binary.Write(w, binary.LittleEndian, uint16(0)) // fsVersion
	binary.Write(w, binary.LittleEndian, uint32(geo.Layout.RootCluster))
	binary.Write(w, binary.LittleEndian, uint16(geo.Layout.FSInfoSector))
	binary.Write(w, binary.LittleEndian, uint16(geo.Layout.BackupBootSector))
	w.Write(bytes.Repeat([]byte{0}, 12))

	// Fields after the BPB.
	binary.Write(w, binary.LittleEndian, uint8(0x80)) // driveNumber
	binary.Write(w, binary.LittleEndian, uint8(0))
	binary.Write(w, binary.LittleEndian, uint8(0x29)) // extended boot signature
	binary.Write(w, binary.LittleEndian, volumeID)
	w.Write(label[:])
	w.Write([]byte(fsTypeLabel))

	w.Write(bytes.Repeat([]byte{0}, 420)) // boot code
	binary.Write(w, binary.LittleEndian, uint16(bootSectorSignature))
	return buf
}

// BuildFSInfo serializes the FSInfo sector. Like the boot sector it is
// written twice, byte-identical.
func BuildFSInfo(geo Geometry, freeCount uint32, nextFree Cluster) []byte {
	buf := make([]byte, geo.Layout.BytesPerSector)
	w := bytewriter.New(buf)

	binary.Write(w, binary.LittleEndian, uint32(fsInfoLeadSignature))
	w.Write(bytes.Repeat([]byte{0}, 480))
	binary.Write(w, binary.LittleEndian, uint32(fsInfoStructSignature))
	binary.Write(w, binary.LittleEndian, freeCount)
	binary.Write(w, binary.LittleEndian, uint32(nextFree))
	w.Write(bytes.Repeat([]byte{0}, 12))
	binary.Write(w, binary.LittleEndian, uint32(fsInfoTrailSignature))
	return buf
}

// BuildFATHeaderSector serializes the first sector of a FAT copy: the two
// reserved entries, the end-of-chain entry for the root directory, and
// free entries for the rest of the sector. Every later sector of the FAT
// is all zeroes and handled by the bulk zero-fill.
func BuildFATHeaderSector(geo Geometry) []byte {
	buf := make([]byte, geo.Layout.BytesPerSector)
	w := bytewriter.New(buf)

	binary.Write(w, binary.LittleEndian,
		uint32(fatEntry0)|uint32(geo.Layout.MediaDescriptor))
	binary.Write(w, binary.LittleEndian, uint32(fatEntry1))
	binary.Write(w, binary.LittleEndian, uint32(fatEntryEOC))
	return buf
}

// BuildRootDirSector serializes the first sector of the root-directory
// cluster: a single volume-label entry followed by free entries. The rest
// of the cluster is zeroed separately.
func BuildRootDirSector(geo Geometry, label Label) []byte {
	buf := make([]byte, geo.Layout.BytesPerSector)
	w := bytewriter.New(buf)

	w.Write(label[:])
	binary.Write(w, binary.LittleEndian, uint8(attrVolumeID))
	// Every remaining dirent field (NT flags, timestamps, cluster number,
	// size) is zero, as is the rest of the sector.
	return buf
}
