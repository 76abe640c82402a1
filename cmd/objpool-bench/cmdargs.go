package main

import (
	"flag"
	"io"
)

type cmdArgs struct {
	fs           *flag.FlagSet
	help         bool
	ObjectSize   uint
	Capacity     uint
	GrowthFactor float64
	Operations   uint
	MaxLive      uint
	Allocator    string
	Seed         int64
	Verbose      bool
}

func newCmdArgs(output io.Writer) (ca *cmdArgs) {
	ca = &cmdArgs{
		fs: flag.NewFlagSet("objpool-bench", flag.ContinueOnError),
	}
	ca.fs.SetOutput(output)
	ca.fs.BoolVar(&ca.help, "help", false, "Shows usage")
	ca.fs.UintVar(&ca.ObjectSize, "s", 64, "Object size in bytes")
	ca.fs.UintVar(&ca.Capacity, "c", 64, "Slots in the first block")
	ca.fs.Float64Var(&ca.GrowthFactor, "g", 2.0, "Block growth factor")
	ca.fs.UintVar(&ca.Operations, "n", 1000000, "Total number of acquire and release operations")
	ca.fs.UintVar(&ca.MaxLive, "l", 100000, "Maximum number of objects held at once")
	ca.fs.StringVar(&ca.Allocator, "a", "default", "System allocator: default, mmap or memory")
	ca.fs.Int64Var(&ca.Seed, "seed", 1, "Seed of the random workload")
	ca.fs.BoolVar(&ca.Verbose, "v", false, "Log block allocations")
	return
}

func (ca *cmdArgs) Parse(arguments []string) (err error) {
	err = ca.fs.Parse(arguments)
	return
}
