package deflate

import "math/bits"

// decodeEntry is the packed 32-bit legacy decode-table entry,
// grounded on decompress_utils/decode_entry.rs. It's consulted directly by
// the fast-table composer and as the fallback path the main
// loop takes when a fast-table lookup reports it needs a
// subtable or couldn't fit extra bits inline.
type decodeEntry uint32

const (
	entryLiteral         = 0x8000_0000
	entryExceptional     = 0x0000_8000
	entrySubtablePointer = 0x0000_4000
	entryEndOfBlock      = 0x0000_2000
	entryInvalid         = 0x0000_1000
	entryResultShift     = 16
	entrySubtableBitsShift = 8
	entryLengthMask      = 0x3F
)

func newLiteralEntry(literal uint32, codeLen int) decodeEntry {
	return decodeEntry(entryLiteral | (literal << entryResultShift) | uint32(codeLen))
}

// newResultEntry builds a non-literal litlen (length) or offset-symbol
// entry: result is the caller-chosen payload (the symbol index: sym-257 for
// a length symbol, the symbol itself for offset and precode symbols, see
// block.go), codeLen is the Huffman codeword length.
func newResultEntry(result uint32, codeLen int) decodeEntry {
	return decodeEntry(entryExceptional | (result << entryResultShift) | uint32(codeLen))
}

func newEndOfBlockEntry(codeLen int) decodeEntry {
	return decodeEntry(entryExceptional | entryEndOfBlock | uint32(codeLen))
}

func newSubtablePointerEntry(subtableStart, subtableBits, codeLen int) decodeEntry {
	return decodeEntry(entryExceptional | entrySubtablePointer |
		(uint32(subtableStart) << entryResultShift) |
		(uint32(subtableBits) << entrySubtableBitsShift) |
		uint32(codeLen))
}

func (e decodeEntry) isLiteral() bool         { return e&entryLiteral != 0 }
func (e decodeEntry) isExceptional() bool     { return e&entryExceptional != 0 }
func (e decodeEntry) isSubtablePointer() bool { return e&entrySubtablePointer != 0 }
func (e decodeEntry) isEndOfBlock() bool      { return e&entryEndOfBlock != 0 }
func (e decodeEntry) isInvalid() bool         { return e&entryInvalid != 0 }
func (e decodeEntry) length() int             { return int(e & entryLengthMask) }
func (e decodeEntry) result() uint32          { return uint32(e) >> entryResultShift }
func (e decodeEntry) subtableBits() int       { return int((e >> entrySubtableBitsShift) & 0x3F) }

// literal extracts a literal entry's byte value. entryLiteral itself lives at
// bit 31, which result's >>16 shift lands at bit 15 of the result (0x8000) —
// the low-byte truncation here discards that the same way get_literal's
// `as u8` does in decode_entry.rs, rather than leaving it to leak into
// every caller that wants the plain byte.
func (e decodeEntry) literal() byte { return byte(e.result()) }

// decodeTable is a built two-level canonical Huffman decode table:
// main[0:1<<tableBits] is looked up directly, and any entry whose
// isSubtablePointer is set names a block inside sub, individually sized to
// whatever width that particular subtable actually needs (see
// buildDecodeTable) rather than one width shared by every subtable.
type decodeTable struct {
	main      []decodeEntry
	sub       []decodeEntry
	tableBits int
}

// lookup decodes the next symbol starting at the low bits of word (which
// must hold at least tableBits plus the widest subtable's bits valid bits),
// returning the resolved entry and the number of bits it consumed.
func (t *decodeTable) lookup(word uint64) (decodeEntry, int) {
	e := t.main[word&((1<<uint(t.tableBits))-1)]
	if !e.isSubtablePointer() {
		return e, e.length()
	}
	consumed := e.length()
	// e.result() holds the subtable's start as an absolute index into the
	// combined main+sub address space (see newSubtablePointerEntry); t.sub
	// itself is 0-based from the end of main, so that offset has to come out
	// before indexing into it.
	start := int(e.result()) - len(t.main)
	sub := t.sub[start+int((word>>uint(consumed))&((1<<uint(e.subtableBits()))-1))]
	return sub, consumed + sub.length()
}

// checkEnough verifies a built table's total slot count (main plus every
// subtable) never exceeds enough, the bound libdeflate's enough.c computes
// as the worst case for a correctly-formed code at this tableBits/maxLen —
// see the *Enough constants in constants.go. buildDecodeTable itself sizes
// t.sub incrementally rather than preallocating to this bound, so this is
// the check that actually holds callers to it.
func checkEnough(t *decodeTable, enough int, name string) error {
	if got := len(t.main) + len(t.sub); got > enough {
		return badData(name + " decode table exceeded its ENOUGH bound")
	}
	return nil
}

// buildDecodeTable is the canonical Huffman decode-table builder, a direct
// port of build_decode_table in decompress_utils.rs: counting sort by code
// length, overfull/incomplete validation, then one pass over the codewords
// in lexicographic (equivalently, increasing bit-reversed) order that
// incrementally doubles the main table as codeword length grows, and past
// tableBits lays out each subtable at exactly the width its own codewords
// need — growing past the first candidate width only as far as necessary
// to fit codewords of greater length sharing the same prefix, rather than
// every subtable paying for the single longest codeword anywhere in the
// code. Callers check the result against the relevant ENOUGH bound via
// checkEnough rather than this function preallocating to it.
//
// lens gives each symbol's codeword length (0 meaning unused). payload
// gives, per symbol, the entry bits to store (literal/result/end-of-block),
// without the codeword length baked in; buildDecodeTable ORs that in.
func buildDecodeTable(lens []uint8, payload []decodeEntry, tableBits, maxLen int) (*decodeTable, error) {
	lenCounts := make([]int, maxLen+1)
	for _, l := range lens {
		lenCounts[l]++
	}

	offsets := make([]int, maxLen+2)
	offsets[1] = lenCounts[0]
	codespaceUsed := 0
	for length := 1; length < maxLen; length++ {
		offsets[length+1] = offsets[length] + lenCounts[length]
		codespaceUsed = (codespaceUsed << 1) + lenCounts[length]
	}
	codespaceUsed = (codespaceUsed << 1) + lenCounts[maxLen]

	cursor := append([]int(nil), offsets...)
	sortedSyms := make([]int, len(lens))
	for sym, l := range lens {
		sortedSyms[cursor[l]] = sym
		cursor[l]++
	}
	sortedSyms = sortedSyms[cursor[0]:] // cursor[0] ended at the count of unused symbols

	t := &decodeTable{
		main:      make([]decodeEntry, 1<<uint(tableBits)),
		tableBits: tableBits,
	}

	if codespaceUsed > (1 << uint(maxLen)) {
		return nil, badData("overfull huffman code")
	}

	if codespaceUsed < (1 << uint(maxLen)) {
		var entry decodeEntry
		switch {
		case codespaceUsed == 0:
			// An empty code is allowed (e.g. an unused offset code), but it
			// must still fail any lookup rather than resolve to an arbitrary
			// symbol's payload.
			entry = decodeEntry(entryInvalid | 1)
		case codespaceUsed == (1<<uint(maxLen-1)) && lenCounts[1] == 1:
			entry = payload[sortedSyms[0]] | decodeEntry(1)
		default:
			return nil, badData("incomplete huffman code")
		}
		for i := range t.main {
			t.main[i] = entry
		}
		return t, nil
	}

	// Complete code: walk codewords in lexicographic order, which is
	// equivalently increasing order of their bit-reversed form. codeword is
	// kept already bit-reversed throughout, advanced by finding its highest
	// zero bit (by flipping and taking the top set bit) rather than
	// reversing afresh each time: set that bit, and keep every bit below it
	// (the plain "& (bit-1)" mask, not "&^") since only the bits above the
	// found one reset to zero on carry.
	symIdx := 0
	codeword := 0
	length := 1
	var count int
	for {
		count = lenCounts[length]
		if count != 0 {
			break
		}
		length++
	}
	curTableEnd := 1 << uint(length)

	for length <= tableBits {
		for count > 0 {
			entry := payload[sortedSyms[symIdx]] | decodeEntry(length)
			symIdx++
			t.main[codeword] = entry

			if codeword == curTableEnd-1 {
				for length < tableBits {
					copy(t.main[curTableEnd:curTableEnd*2], t.main[:curTableEnd])
					curTableEnd <<= 1
					length++
				}
				return t, nil
			}

			bit := 1 << uint(bits.Len32(uint32(codeword^(curTableEnd-1)))-1)
			codeword = (codeword & (bit - 1)) | bit
			count--
		}

		for {
			length++
			if length <= tableBits {
				copy(t.main[curTableEnd:curTableEnd*2], t.main[:curTableEnd])
				curTableEnd <<= 1
			}
			count = lenCounts[length]
			if count != 0 {
				break
			}
		}
	}

	// Codewords longer than tableBits need subtables, each sized to
	// whatever width its own prefix's codewords require.
	mainSize := 1 << uint(tableBits)
	curTableEnd = mainSize
	subtablePrefix := -1
	subtableStart := 0
	for {
		prefix := codeword & (mainSize - 1)
		if prefix != subtablePrefix {
			subtablePrefix = prefix
			subtableStart = curTableEnd

			subtableBits := length - tableBits
			used := count
			for used < (1 << uint(subtableBits)) {
				subtableBits++
				used = (used << 1) + lenCounts[tableBits+subtableBits]
			}
			curTableEnd = subtableStart + (1 << uint(subtableBits))

			if need := curTableEnd - mainSize; need > len(t.sub) {
				t.sub = append(t.sub, make([]decodeEntry, need-len(t.sub))...)
			}
			t.main[subtablePrefix] = newSubtablePointerEntry(subtableStart, subtableBits, tableBits)
		}

		entry := payload[sortedSyms[symIdx]] | decodeEntry(length-tableBits)
		symIdx++

		i := subtableStart + (codeword >> uint(tableBits))
		stride := 1 << uint(length-tableBits)
		for {
			t.sub[i-mainSize] = entry
			i += stride
			if i >= curTableEnd {
				break
			}
		}

		if codeword == (1<<uint(length))-1 {
			return t, nil
		}
		bit := 1 << uint(bits.Len32(uint32(codeword^((1<<uint(length))-1)))-1)
		codeword = (codeword & (bit - 1)) | bit
		count--
		for count == 0 {
			length++
			count = lenCounts[length]
		}
	}
}
