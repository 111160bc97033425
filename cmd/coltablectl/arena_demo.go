package main

import (
	"flag"
	"fmt"

	"github.com/nishisan-dev/coltable/internal/arena"
	"github.com/nishisan-dev/coltable/internal/logging"
	"github.com/nishisan-dev/coltable/internal/rounder"
	"github.com/nishisan-dev/coltable/internal/sizer"
)

func runArenaDemo(args []string) error {
	fs := flag.NewFlagSet("arena-demo", flag.ExitOnError)
	kind := fs.String("kind", "variable", "arena kind: generic|fixed|variable")
	width := fs.Int("width", 3, "fixed-length blob width (fixed kind only)")
	prefixWidth := fs.Int("prefix-width", 2, "length-prefix width (variable kind only)")
	count := fs.Int("n", 5, "number of elements to append")
	logLevel := fs.String("log-level", "debug", "log level for chunk-growth/drain diagnostics")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, c := 4.0, 256.0
	nu := int32(17)
	sz, err := sizer.New(&t, &c, &nu)
	if err != nil {
		return err
	}

	logger, closer := logging.NewLogger(*logLevel, "text", "")
	defer closer.Close()

	switch *kind {
	case "generic":
		a := arena.NewGenericArena(sz, rounder.ElementScaled{Inner: rounder.NewMultipleOfLen(1), ElementSize: 8}, nil, logger)
		for i := 0; i < *count; i++ {
			if err := a.Append(uintptr(i)); err != nil {
				return err
			}
		}
		d := a.Drain()
		for {
			v, ok := d.Next()
			if !ok {
				break
			}
			fmt.Printf("element = %d\n", v)
		}

	case "fixed":
		w := int32(*width)
		a := arena.NewFixedArena(w, sz, rounder.NewMultipleOfLen(w), nil, logger)
		for i := 0; i < *count; i++ {
			blob := make([]byte, w)
			for j := range blob {
				blob[j] = byte(i)
			}
			if err := a.Append(blob); err != nil {
				return err
			}
		}
		d := a.Drain()
		for {
			b, ok := d.Next()
			if !ok {
				break
			}
			fmt.Printf("blob = % x\n", b)
		}

	default: // variable
		a := arena.NewVariableArena(*prefixWidth, sz, rounder.NewMultipleOfLen(1), nil, logger)
		for i := 0; i < *count; i++ {
			blob := make([]byte, i%4)
			for j := range blob {
				blob[j] = byte(i)
			}
			if err := a.Append(blob); err != nil {
				return err
			}
		}
		d := a.Drain()
		for {
			b, ok := d.Next()
			if !ok {
				break
			}
			fmt.Printf("blob = % x\n", b)
		}
	}
	return nil
}
