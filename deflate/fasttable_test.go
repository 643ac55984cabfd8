package deflate

import "testing"

// TestFastTableLiteralFusion checks that two short literal codewords in a
// row get fused into a single fast-table entry, per MAX_LITERALS.
func TestFastTableLiteralFusion(t *testing.T) {
	ts := &tableSet{}
	// 'a' => codeword 0 (len 2), 'b' => codeword 1 (len 2), everything
	// else unused: a tiny complete 2-symbol-plus-padding code.
	ts.litlenLens['a'] = 2
	ts.litlenLens['b'] = 2
	ts.litlenLens[endOfBlockSymbol] = 2
	// Need a 4th length-2 codeword to complete the code (Kraft sum 1).
	ts.litlenLens['c'] = 2
	ts.offsetLens[0] = 1 // never exercised here, just needs to build

	if err := ts.buildTables(); err != nil {
		t.Fatalf("buildTables: %v", err)
	}

	// Window where the first 2 bits select 'a' (codeword 0, reversed 0)
	// and the next 2 bits (at bit offset 2) also select 'a'.
	window := uint64(0) // both slots reversed-zero => both decode 'a'
	e := ts.fast[window]
	if e.flags&fastExceptional != 0 {
		t.Fatalf("expected a resolved entry, got exceptional")
	}
	if e.flags&fastLiteral == 0 {
		t.Fatalf("expected a literal entry, flags=%#x", e.flags)
	}
	if byte(e.lit) != 'a' {
		t.Fatalf("first literal = %q, want 'a'", byte(e.lit))
	}
	if e.flags&fastTwoLiterals == 0 {
		t.Fatalf("expected two fused literals, flags=%#x", e.flags)
	}
	if byte(e.lit>>8) != 'a' {
		t.Fatalf("second literal = %q, want 'a'", byte(e.lit>>8))
	}
}

// TestFastTableMatchFusion checks that a length/offset pair whose codewords
// and extra bits all fit within fastTablebits gets fully resolved by a
// single fast-table lookup.
func TestFastTableMatchFusion(t *testing.T) {
	ts := &tableSet{}
	ts.litlenLens[0] = 2       // a literal, to complete the litlen code
	ts.litlenLens[endOfBlockSymbol] = 2
	ts.litlenLens[257] = 2 // length base 3, 0 extra bits
	ts.litlenLens[258] = 2 // length base 4, 0 extra bits

	ts.offsetLens[0] = 1 // offset base 1, 0 extra bits
	ts.offsetLens[1] = 1 // offset base 2, 0 extra bits

	if err := ts.buildTables(); err != nil {
		t.Fatalf("buildTables: %v", err)
	}

	// Find a window that resolves to a match and sanity-check its fields.
	foundMatch := false
	for w := uint32(0); w < fastTableSize; w++ {
		e := ts.fast[w]
		if e.flags&fastExceptional != 0 {
			continue
		}
		if e.flags&fastMatch != 0 {
			foundMatch = true
			if e.length < minMatchLen {
				t.Fatalf("fused match length %d below minimum", e.length)
			}
			if e.offset == 0 {
				t.Fatalf("fused match offset must not be zero")
			}
		}
	}
	if !foundMatch {
		t.Fatal("expected at least one window to fuse a full match")
	}
}
