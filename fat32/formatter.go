package fat32

import (
	"io"

	sdformat "github.com/herbderby/NdsSDFormat"
	"github.com/herbderby/NdsSDFormat/sectorio"
	log "github.com/sirupsen/logrus"
)

// Formatter writes the five volume structures to one device. All derived
// values are computed once in New; the write methods are independent of
// each other and read nothing back from the device, so they may run in any
// order. The device handle is borrowed and must stay valid until the caller
// is done.
//
// A Formatter must not be shared across goroutines: there is no internal
// locking, and interleaved seeks on one handle would corrupt the output.
type Formatter struct {
	dev      io.WriteSeeker
	geo      Geometry
	label    Label
	volumeID uint32
	clusters *ClusterMap
}

// Option adjusts a Formatter at construction time.
type Option func(*Formatter)

// WithVolumeID sets an explicit volume serial number. Without it the
// formatter stamps zero; callers that want the conventional time-derived
// serial pass VolumeIDFromTime. Keeping the ID an input keeps formatting
// deterministic.
func WithVolumeID(id uint32) Option {
	return func(f *Formatter) {
		f.volumeID = id
	}
}

// WithLayout substitutes a different layout profile. Only tests use this;
// real cards always get DefaultLayout.
func WithLayout(layout Layout) Option {
	return func(f *Formatter) {
		f.geo.Layout = layout
	}
}

// New validates the inputs and computes the geometry snapshot shared by all
// write operations. A nil device yields ErrInvalidDevice, an undersized
// device ErrTooSmall, and a bad label ErrInvalidLabel; nothing is written
// in any failure case.
func New(
	dev io.WriteSeeker, sectorCount SectorCount, labelText string, opts ...Option,
) (*Formatter, error) {
	if dev == nil {
		return nil, sdformat.ErrInvalidDevice.WithMessage("device handle is nil")
	}

	label, err := NormalizeLabel(labelText)
	if err != nil {
		return nil, err
	}

	f := &Formatter{
		dev:   dev,
		geo:   Geometry{Layout: DefaultLayout},
		label: label,
	}
	for _, opt := range opts {
		opt(f)
	}

	geo, err := ComputeGeometry(f.geo.Layout, sectorCount)
	if err != nil {
		return nil, err
	}
	f.geo = geo

	f.clusters = NewClusterMap(geo)
	if err := f.clusters.Reserve(geo.Layout.RootCluster); err != nil {
		return nil, err
	}
	return f, nil
}

// Geometry returns the geometry snapshot the formatter writes from.
func (f *Formatter) Geometry() Geometry {
	return f.geo
}

// WriteMBR writes the master boot record at sector 0.
func (f *Formatter) WriteMBR() error {
	log.Debug("writing MBR")
	return sectorio.WriteSector(f.dev, 0, BuildMBR(f.geo))
}

// WriteBootRecords writes the volume boot record to the primary sector and
// the fixed backup offset. Both copies are byte-identical.
func (f *Formatter) WriteBootRecords() error {
	vbr := BuildBootSector(f.geo, f.label, f.volumeID)

	log.Debug("writing VBR")
	err := sectorio.WriteSector(f.dev, uint64(f.geo.VBRSector()), vbr)
	if err != nil {
		return err
	}

	log.Debug("writing backup VBR")
	return sectorio.WriteSector(f.dev, uint64(f.geo.BackupVBRSector()), vbr)
}

// WriteFSInfo writes the FSInfo sector and its backup copy.
func (f *Formatter) WriteFSInfo() error {
	fsinfo := BuildFSInfo(f.geo, f.clusters.FreeCount(), f.clusters.NextFree())

	log.Debug("writing FSInfo")
	err := sectorio.WriteSector(f.dev, uint64(f.geo.FSInfoSector()), fsinfo)
	if err != nil {
		return err
	}

	log.Debug("writing backup FSInfo")
	return sectorio.WriteSector(f.dev, uint64(f.geo.BackupFSInfoSector()), fsinfo)
}

// WriteFATs zeroes both FAT copies and writes the header sector of each.
// The copies are byte-identical, matching the mirrored-FATs flag in the
// boot sector.
func (f *Formatter) WriteFATs() error {
	header := BuildFATHeaderSector(f.geo)

	for i := uint32(0); i < f.geo.Layout.FATCount; i++ {
		start := uint64(f.geo.FATSector(i))

		log.Debugf("zeroing FAT %d", i+1)
		err := sectorio.ZeroSectors(f.dev, start, uint64(f.geo.FATSizeSectors))
		if err != nil {
			return err
		}
		if err := sectorio.WriteSector(f.dev, start, header); err != nil {
			return err
		}
	}
	return nil
}

// WriteRootDirectory zeroes the root-directory cluster and writes its first
// sector, which holds the single volume-label entry.
func (f *Formatter) WriteRootDirectory() error {
	start := uint64(f.geo.DataStartSector)

	log.Debug("zeroing root directory cluster")
	err := sectorio.ZeroSectors(
		f.dev, start, uint64(f.geo.Layout.SectorsPerCluster))
	if err != nil {
		return err
	}
	return sectorio.WriteSector(f.dev, start, BuildRootDirSector(f.geo, f.label))
}

// FormatImage runs all five write operations in the conventional order,
// stopping at the first failure. The sequence is not transactional: a
// partial format leaves the volume unusable, and the recovery is simply to
// run FormatImage again, which rewrites every structure from the same
// inputs.
func (f *Formatter) FormatImage() error {
	steps := []struct {
		name  string
		write func() error
	}{
		{"MBR", f.WriteMBR},
		{"VBR", f.WriteBootRecords},
		{"FSInfo", f.WriteFSInfo},
		{"FAT tables", f.WriteFATs},
		{"root directory", f.WriteRootDirectory},
	}

	for _, step := range steps {
		if err := step.write(); err != nil {
			log.Errorf("writing %s failed: %s", step.name, err)
			return err
		}
	}
	return nil
}
