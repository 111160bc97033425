package arena

// byteChunk is one slab shared by FixedArena and VariableArena: a
// contiguous byte buffer, forward-linked to the next chunk once it fills.
//
// The source this package is modelled on used a ring (last.next pointing
// back to first) so a language without first-class tail pointers could
// still reach both ends in O(1). Go arenas already hold an explicit last
// *byteChunk field, so the ring has no purpose here; a plain forward list
// gives the same O(1) append with one fewer invariant to maintain. Drain
// still takes over the head and clears the arena's own pointers at
// construction, so the tail is not kept alive by the producer side.
type byteChunk struct {
	buf  []byte
	pos  int32
	next *byteChunk
}
