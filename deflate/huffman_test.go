package deflate

import "testing"

// TestBuildDecodeTableCanonical builds the table for the textbook canonical
// code A=0 (len 1), B=10 (len 2), C=110 (len 3), D=111 (len 3) and checks
// every one of the table's bit-reversed slots decodes to the right symbol
// and codeword length.
func TestBuildDecodeTableCanonical(t *testing.T) {
	lens := []uint8{1, 2, 3, 3} // symbols 0=A,1=B,2=C,3=D
	payload := make([]decodeEntry, len(lens))
	for sym := range lens {
		payload[sym] = newLiteralEntry(uint32(sym), 0)
	}

	table, err := buildDecodeTable(lens, payload, 3, 3)
	if err != nil {
		t.Fatalf("buildDecodeTable: %v", err)
	}

	want := map[uint64][2]int{ // word -> {symbol, consumed bits}
		0: {0, 1}, 2: {0, 1}, 4: {0, 1}, 6: {0, 1}, // A, reversed=0
		1: {1, 2}, 5: {1, 2}, // B, reversed=1
		3: {2, 3}, // C, reversed=3
		7: {3, 3}, // D, reversed=7
	}

	for word, wantSymLen := range want {
		entry, used := table.lookup(word)
		if !entry.isLiteral() {
			t.Fatalf("word %03b: entry not literal", word)
		}
		if int(entry.literal()) != wantSymLen[0] || used != wantSymLen[1] {
			t.Fatalf("word %03b: got sym=%d used=%d, want sym=%d used=%d",
				word, entry.literal(), used, wantSymLen[0], wantSymLen[1])
		}
	}
}

func TestBuildDecodeTableOverfull(t *testing.T) {
	// Two length-1 symbols is already a complete code; a third makes it
	// overfull.
	lens := []uint8{1, 1, 1}
	payload := make([]decodeEntry, len(lens))
	for sym := range lens {
		payload[sym] = newLiteralEntry(uint32(sym), 0)
	}

	if _, err := buildDecodeTable(lens, payload, 2, 2); err == nil {
		t.Fatal("expected overfull code to be rejected")
	}
}

func TestBuildDecodeTableSingleSymbol(t *testing.T) {
	// RFC 1951 allows a table with exactly one symbol at length 1 (e.g. an
	// offset table when a block has no matches at all beyond a single
	// possible distance); both halves of the table must decode to it.
	lens := []uint8{1, 0}
	payload := []decodeEntry{newLiteralEntry(0, 0), newLiteralEntry(1, 0)}

	table, err := buildDecodeTable(lens, payload, 2, 2)
	if err != nil {
		t.Fatalf("buildDecodeTable: %v", err)
	}

	for word := uint64(0); word < 4; word++ {
		entry, _ := table.lookup(word)
		if int(entry.literal()) != 0 {
			t.Fatalf("word %d: got sym=%d, want 0", word, entry.literal())
		}
	}
}

func TestBuildDecodeTableEmpty(t *testing.T) {
	lens := []uint8{0, 0, 0}
	payload := make([]decodeEntry, len(lens))

	table, err := buildDecodeTable(lens, payload, 2, 2)
	if err != nil {
		t.Fatalf("buildDecodeTable: %v", err)
	}
	entry, _ := table.lookup(0)
	if !entry.isInvalid() {
		t.Fatal("expected lookups against an empty code to be invalid")
	}
}

func TestBuildDecodeTableSubtable(t *testing.T) {
	// A complete code (count[2]=2, count[3]=2, count[4]=4) where the
	// length-4 codewords need a subtable once tableBits == 3.
	lens := []uint8{2, 2, 3, 3, 4, 4, 4, 4}
	payload := make([]decodeEntry, len(lens))
	for sym := range lens {
		payload[sym] = newLiteralEntry(uint32(sym), 0)
	}

	table, err := buildDecodeTable(lens, payload, 3, 4)
	if err != nil {
		t.Fatalf("buildDecodeTable: %v", err)
	}

	found := map[int]bool{}
	for word := uint64(0); word < 1<<4; word++ {
		entry, used := table.lookup(word)
		if entry.isInvalid() {
			t.Fatalf("word %04b: unexpected invalid entry", word)
		}
		if used <= 0 || used > 4 {
			t.Fatalf("word %04b: consumed %d bits, want 1-4", word, used)
		}
		found[int(entry.literal())] = true
	}
	for sym := range lens {
		if !found[sym] {
			t.Errorf("symbol %d never reached via any window", sym)
		}
	}
}
