//go:build linux

package main

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// targetSizeBytes returns the size of a regular file or block device.
// Regular files answer to seek-to-end; block devices need the BLKGETSIZE64
// ioctl.
func targetSizeBytes(f *os.File) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err == nil && size > 0 {
		_, _ = f.Seek(0, io.SeekStart)
		return size, nil
	}

	var sizeBytes uint64
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		f.Fd(),
		unix.BLKGETSIZE64,
		uintptr(unsafe.Pointer(&sizeBytes)))
	if errno != 0 {
		return 0, fmt.Errorf("cannot determine device size: %v", errno)
	}
	return int64(sizeBytes), nil
}
