package arena

import (
	"bytes"
	"testing"

	"github.com/nishisan-dev/coltable/internal/coreerr"
	"github.com/nishisan-dev/coltable/internal/rounder"
)

func TestFixedArena_Scenario_L3(t *testing.T) {
	const width = int32(3)
	sz := newTestSizer(t, 4, 64, 17)
	rnd := rounder.NewMultipleOfLen(width)
	a := NewFixedArena(width, sz, rnd, nil, nil)

	blobs := [][]byte{
		{0x01, 0x02, 0x03},
		{0x04, 0x05, 0x06},
		{0x07, 0x08, 0x09},
	}
	for _, b := range blobs {
		if err := a.Append(b); err != nil {
			t.Fatalf("Append(% x): %v", b, err)
		}
	}
	if a.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", a.Size())
	}

	d := a.Drain()
	for i, want := range blobs {
		got, ok := d.Next()
		if !ok {
			t.Fatalf("drain exhausted early at blob %d", i)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("blob %d = % x, want % x", i, got, want)
		}
	}
	if _, ok := d.Next(); ok {
		t.Error("expected drain to be exhausted after 3 blobs")
	}
}

func TestFixedArena_ChunkSizeAlwaysMultipleOfWidth(t *testing.T) {
	const width = int32(5)
	sz := newTestSizer(t, 4, 4096, 17)
	rnd := rounder.NewMultipleOfLen(width)
	a := NewFixedArena(width, sz, rnd, nil, nil)

	for i := 0; i < 50; i++ {
		if err := a.Append(bytes.Repeat([]byte{byte(i)}, int(width))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	for i, c := range chunksOf(a) {
		if int32(len(c.buf))%width != 0 {
			t.Errorf("chunk %d length %d is not a multiple of width %d", i, len(c.buf), width)
		}
	}
}

func chunksOf(a *FixedArena) []*byteChunk {
	var out []*byteChunk
	for c := a.head; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

func TestFixedArena_RejectsWrongLength(t *testing.T) {
	sz := newTestSizer(t, 4, 64, 17)
	a := NewFixedArena(3, sz, rounder.NewMultipleOfLen(3), nil, nil)
	if err := a.Append([]byte{1, 2}); !coreerr.Is(err, coreerr.BadArgument) {
		t.Errorf("expected bad-argument for wrong-length blob, got %v", err)
	}
}

func TestFixedArena_AppendAfterDrainIsMisuse(t *testing.T) {
	sz := newTestSizer(t, 4, 64, 17)
	a := NewFixedArena(3, sz, rounder.NewMultipleOfLen(3), nil, nil)
	_ = a.Append([]byte{1, 2, 3})
	a.Drain()
	if err := a.Append([]byte{4, 5, 6}); !coreerr.Is(err, coreerr.Misuse) {
		t.Errorf("expected misuse error appending after drain, got %v", err)
	}
}
