//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func osAdvise(data []byte, h Hint) error {
	advice := unix.MADV_NORMAL
	switch h {
	case HintSequential:
		advice = unix.MADV_SEQUENTIAL
	case HintWillNeed:
		advice = unix.MADV_WILLNEED
	}

	// Hints are advisory; an alignment EINVAL is not worth failing a load over.
	err := unix.Madvise(data, advice)
	if err == unix.EINVAL {
		return nil
	}
	return err
}
