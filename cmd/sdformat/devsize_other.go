//go:build !linux

package main

import (
	"io"
	"os"
)

func targetSizeBytes(f *os.File) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	_, _ = f.Seek(0, io.SeekStart)
	return size, nil
}
