package main

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objpool "github.com/replay/go-object-pool"
)

func TestRun(t *testing.T) {
	alloc := &objpool.MemoryAllocator{}
	defer alloc.Close()

	cfg := objpool.NewConfig()
	cfg.Allocator = alloc
	cfg.InitialCapacity = 8
	cfg.GrowthFactor = 2
	p, err := objpool.NewPoolWithConfig(32, cfg)
	require.NoError(t, err)
	defer p.Destroy()

	br, err := run(p, rand.New(rand.NewSource(7)), 20000, 500)
	require.NoError(t, err)
	assert.Equal(t, 20000, br.count)
	assert.LessOrEqual(t, br.peakLive, 500)
	assert.Greater(t, br.peakLive, 0)
	assert.Equal(t, uint(0), p.Stats().InUseSlots)
}

func TestNewAllocator(t *testing.T) {
	a, err := newAllocator("default")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = newAllocator("memory")
	require.NoError(t, err)
	assert.IsType(t, &objpool.MemoryAllocator{}, a)

	_, err = newAllocator("tcmalloc")
	assert.Error(t, err)
}

func TestCmdArgs(t *testing.T) {
	ca := newCmdArgs(io.Discard)
	require.NoError(t, ca.Parse([]string{"-s", "24", "-g", "1.5", "-a", "memory"}))
	assert.Equal(t, uint(24), ca.ObjectSize)
	assert.Equal(t, 1.5, ca.GrowthFactor)
	assert.Equal(t, "memory", ca.Allocator)
	assert.Equal(t, uint(64), ca.Capacity)

	assert.Error(t, newCmdArgs(io.Discard).Parse([]string{"-bogus"}))
}

func TestBenchmarkExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		stdout   string
	}{
		{
			name:     "small run",
			args:     []string{"-a", "memory", "-n", "1000", "-l", "50", "-c", "4"},
			exitCode: 0,
			stdout:   "benchmark finished",
		},
		{
			name:     "verbose run prints the pool",
			args:     []string{"-n", "100", "-l", "10", "-c", "4", "-v"},
			exitCode: 0,
			stdout:   "Next Block Capacity",
		},
		{
			name:     "unknown allocator",
			args:     []string{"-a", "tcmalloc"},
			exitCode: 2,
			stdout:   "unknown allocator",
		},
		{
			name:     "unknown flag",
			args:     []string{"-bogus"},
			exitCode: 2,
		},
		{
			name:     "help",
			args:     []string{"--help"},
			exitCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.exitCode, benchmark(tt.args, &stdout, &stderr))
			if tt.stdout != "" {
				assert.True(t, strings.Contains(stdout.String(), tt.stdout), stdout.String())
			}
		})
	}
}
