//go:build !unix

package main

import (
	"errors"

	objpool "github.com/replay/go-object-pool"
)

func newMmapAllocator() (objpool.Allocator, error) {
	return nil, errors.New("mmap allocator is only available on unix")
}
