// Package sectorio performs positioned writes and bulk zero-fills against a
// writable device handle. It has no knowledge of the FAT layout; callers
// hand it absolute offsets and finished buffers.
package sectorio

import (
	"errors"
	"io"
	"syscall"

	sdformat "github.com/herbderby/NdsSDFormat"
	log "github.com/sirupsen/logrus"
)

// BytesPerSector is the only geometry fact this package knows.
const BytesPerSector = 512

// zeroBufferBytes is the chunk size for bulk zero-fills: one 64-sector
// cluster per write keeps the system-call count down without a large
// allocation.
const zeroBufferBytes = 64 * BytesPerSector

// WriteAt seeks the device to byteOffset and writes all of data. Partial
// writes are continued and interrupted calls retried; any other failure is
// classified into the module's error taxonomy. The handle is borrowed: this
// package never opens or closes it.
func WriteAt(dev io.WriteSeeker, byteOffset int64, data []byte) error {
	if dev == nil || len(data) == 0 {
		return sdformat.ErrInvalidDevice
	}

	if _, err := dev.Seek(byteOffset, io.SeekStart); err != nil {
		return sdformat.ClassifyOSError(err)
	}

	for len(data) > 0 {
		written, err := dev.Write(data)
		// Consume the written prefix before looking at the error: an
		// io.Writer may transfer part of the buffer and still return
		// EINTR, and retrying the full buffer would duplicate that
		// prefix on disk.
		if written > 0 {
			data = data[written:]
		}
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return sdformat.ClassifyOSError(err)
		}
	}
	return nil
}

// WriteSector writes data starting at the given absolute sector.
func WriteSector(dev io.WriteSeeker, sector uint64, data []byte) error {
	return WriteAt(dev, int64(sector*BytesPerSector), data)
}

// ZeroSectors writes zeroes across the given sector range, reusing one
// cluster-sized buffer. Ranges that are not a multiple of the buffer size
// get a short final write.
func ZeroSectors(dev io.WriteSeeker, startSector, count uint64) error {
	log.Debugf("zeroing %d sectors starting at LBA %d", count, startSector)

	var buffer [zeroBufferBytes]byte
	const bufferSectors = zeroBufferBytes / BytesPerSector

	current := startSector
	remaining := count
	for remaining > 0 {
		chunk := remaining
		if chunk > bufferSectors {
			chunk = bufferSectors
		}
		err := WriteSector(dev, current, buffer[:chunk*BytesPerSector])
		if err != nil {
			return err
		}
		current += chunk
		remaining -= chunk
	}
	return nil
}
