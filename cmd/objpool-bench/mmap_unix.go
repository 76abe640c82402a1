//go:build unix

package main

import objpool "github.com/replay/go-object-pool"

func newMmapAllocator() (objpool.Allocator, error) {
	return objpool.MmapAllocator{}, nil
}
