package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	objpool "github.com/replay/go-object-pool"
)

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func main() {
	os.Exit(benchmark(os.Args[1:], os.Stdout, os.Stderr))
}

// benchmark runs the command with the given arguments and returns its exit
// code. The pool and the allocator are released on every path
func benchmark(args []string, stdout, stderr io.Writer) (exitCode int) {
	ca := newCmdArgs(stderr)
	if err := ca.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if ca.help {
		ca.fs.Usage()
		return 0
	}

	logh := slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level: logLevel(ca.Verbose),
	})
	logger := slog.New(logh)

	cfg := objpool.NewConfig()
	cfg.InitialCapacity = ca.Capacity
	cfg.GrowthFactor = ca.GrowthFactor
	cfg.Logger = logger

	alloc, err := newAllocator(ca.Allocator)
	if err != nil {
		logger.Error("invalid arguments", "err", err)
		return 2
	}
	cfg.Allocator = alloc
	if c, ok := alloc.(io.Closer); ok {
		defer c.Close()
	}

	p, err := objpool.NewPoolWithConfig(uintptr(ca.ObjectSize), cfg)
	if err != nil {
		logger.Error("creating pool failed", "err", err)
		return 1
	}
	defer func() {
		if err := p.Destroy(); err != nil {
			logger.Error("destroying pool failed", "err", err)
			exitCode = 1
		}
	}()

	logger.Info("starting benchmark",
		"objSize", p.ObjectSize(),
		"capacity", ca.Capacity,
		"growthFactor", p.GrowthFactor(),
		"operations", ca.Operations,
		"maxLive", ca.MaxLive,
		"allocator", ca.Allocator,
	)

	br, err := run(p, rand.New(rand.NewSource(ca.Seed)), int(ca.Operations), int(ca.MaxLive))
	stats := p.Stats()
	if err != nil {
		logger.Error("benchmark failed", "err", err, "after", br.count)
		return 1
	}

	logger.Info("benchmark finished",
		"operations", br.count,
		"duration", br.duration,
		"opsPerSec", fmt.Sprintf("%.0f", float64(br.count)/br.duration.Seconds()),
		"peakLive", br.peakLive,
		"blocks", stats.Blocks,
		"totalSlots", stats.TotalSlots,
		"totalBytes", stats.TotalBytes,
		"nextCapacity", stats.NextCapacity,
	)
	if ca.Verbose {
		fmt.Fprint(stdout, p.String())
	}

	return 0
}

func newAllocator(name string) (objpool.Allocator, error) {
	switch name {
	case "default":
		return nil, nil
	case "memory":
		return &objpool.MemoryAllocator{}, nil
	case "mmap":
		return newMmapAllocator()
	}
	return nil, fmt.Errorf("unknown allocator %q", name)
}

type benchmarkResult struct {
	count    int
	peakLive int
	duration time.Duration
}

// run performs a random mix of acquires and releases. Every acquired slot
// is filled with a pattern that is checked again before it is released
func run(p *objpool.Pool, r *rand.Rand, operations, maxLive int) (benchmarkResult, error) {
	var br benchmarkResult
	if maxLive < 1 {
		maxLive = 1
	}
	live := make([]objpool.Slot, 0, maxLive)
	startTm := time.Now()

	for br.count < operations {
		if len(live) < maxLive && (len(live) == 0 || r.Intn(2) == 0) {
			s, err := p.Acquire()
			if err != nil {
				return br, err
			}
			fill(p.Bytes(s), byte(s))
			live = append(live, s)
			br.peakLive = max(br.peakLive, len(live))
		} else {
			i := r.Intn(len(live))
			s := live[i]
			if !check(p.Bytes(s), byte(s)) {
				return br, fmt.Errorf("slot %#x was overwritten while in use", s)
			}
			p.Release(s)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		br.count++
	}

	br.duration = time.Now().Sub(startTm)
	for _, s := range live {
		p.Release(s)
	}
	return br, nil
}

func fill(buf []byte, v byte) {
	for i := range buf {
		buf[i] = v
	}
}

func check(buf []byte, v byte) bool {
	for _, c := range buf {
		if c != v {
			return false
		}
	}
	return true
}
