package main

import (
	"flag"
	"fmt"

	"github.com/nishisan-dev/coltable/internal/sizer"
)

func runSizer(args []string) error {
	fs := flag.NewFlagSet("sizer", flag.ExitOnError)
	t := fs.Float64("t", 4, "estimated lower bound chunk size, in bytes")
	c := fs.Float64("c", 64, "estimated capacity, in bytes")
	nu := fs.Int("nu", 17, "assumed per-chunk overhead")
	calls := fs.Int("calls", 10, "number of next_size() calls to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nn := int32(*nu)
	s, err := sizer.New(t, c, &nn)
	if err != nil {
		return err
	}

	fmt.Printf("alpha=%v m=%d nu=%d\n", s.Alpha(), s.M(), s.Nu())
	var sum int64
	for i := 0; i < *calls; i++ {
		size := s.NextSize()
		sum += int64(size)
		fmt.Printf("next_size(%d) = %d\n", i+1, size)
	}
	fmt.Printf("sum over %d calls = %d\n", *calls, sum)
	return nil
}
