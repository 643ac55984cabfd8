package deflate

// fastEntry is the fused fast-path decode result, grounded on
// decompress_utils/fast_decode_entry.rs's packed record. Rather than byte-
// packing it into a 64-bit word (a C/Rust concern for cache-line layout that
// has no payoff in Go), it's kept as plain fields; the fast table itself is
// still exactly fastTableSize entries wide and still fuses a litlen lookup
// with the following offset lookup the same way.
type fastEntry struct {
	bits  uint8 // total input bits this entry accounts for
	flags uint8
	lit   uint16 // up to maxLiterals literal bytes, packed low-byte-first
	length uint16
	offset uint16
}

const (
	fastExceptional = 1 << 7 // couldn't be resolved here; fall back to the legacy two-step path
	fastEndOfBlock  = 1 << 6
	fastLiteral     = 1 << 0
	fastTwoLiterals = 1 << 1
	fastMatch       = 1 << 2
)

// reservedOffsetSymbol reports whether sym is one of the two offset codes
// RFC 1951 reserves and never assigns to an actual back-reference.
func reservedOffsetSymbol(sym uint32) bool { return sym >= 30 }

// buildFastTable composes litlen and offset decode tables into one
// fastTableSize-entry table indexed by the next fastTablebits bits of
// input. Each slot resolves as much as fits in that window: up to
// maxLiterals literals, an end-of-block marker, or a complete match
// (length, offset, and every extra bit) when the litlen codeword, its
// length extra bits, the offset codeword, and its extra bits all fit
// within fastTablebits. Anything that doesn't fit is marked exceptional,
// and decompress.go falls back to litlenTable/offsetTable directly.
func buildFastTable(litlenTable, offsetTable *decodeTable) []fastEntry {
	fast := make([]fastEntry, fastTableSize)

	for window := uint32(0); window < fastTableSize; window++ {
		fast[window] = composeFastEntry(window, litlenTable, offsetTable)
	}

	return fast
}

func composeFastEntry(window uint32, litlenTable, offsetTable *decodeTable) fastEntry {
	w := uint64(window)

	first := litlenTable.main[window&uint32(len(litlenTable.main)-1)]
	if first.isSubtablePointer() || first.isInvalid() {
		return fastEntry{flags: fastExceptional}
	}
	if first.isEndOfBlock() {
		return fastEntry{bits: uint8(first.length()), flags: fastEndOfBlock}
	}

	if first.isLiteral() {
		used := first.length()
		lit1 := uint16(first.literal())

		remBits := fastTablebits - used
		if remBits <= 0 {
			return fastEntry{bits: uint8(used), flags: fastLiteral, lit: lit1}
		}

		rem := uint32((w >> uint(used)) & ((1 << uint(remBits)) - 1))
		second := litlenTable.main[rem]
		if second.isLiteral() && second.length() > 0 && second.length() <= remBits {
			lit2 := uint16(second.literal())
			return fastEntry{
				bits:  uint8(used + second.length()),
				flags: fastLiteral | fastTwoLiterals,
				lit:   lit1 | (lit2 << 8),
			}
		}

		return fastEntry{bits: uint8(used), flags: fastLiteral, lit: lit1}
	}

	// A resolved, non-literal, non-end-of-block litlen entry names a length
	// symbol. Try to also resolve its extra bits and the following offset
	// symbol within the same window; fall back to the legacy path for
	// anything that needs bits beyond fastTablebits.
	used := first.length()
	lenIdx := first.result()
	lenBase, lenExtra := lengthBase[lenIdx], lengthExtraBits[lenIdx]

	extraAvail := fastTablebits - used
	if int(lenExtra) > extraAvail {
		return fastEntry{flags: fastExceptional}
	}
	lenExtraVal := uint32((w >> uint(used)) & ((1 << uint(lenExtra)) - 1))
	length := uint32(lenBase) + lenExtraVal
	afterLen := used + int(lenExtra)

	offsetAvail := fastTablebits - afterLen
	if offsetAvail <= 0 {
		return fastEntry{flags: fastExceptional}
	}
	offsetWindow := uint32((w >> uint(afterLen)) & ((1 << uint(offsetAvail)) - 1))
	offEntry := offsetTable.main[offsetWindow&uint32(len(offsetTable.main)-1)]
	if offEntry.isSubtablePointer() || offEntry.isInvalid() || offEntry.length() == 0 || offEntry.length() > offsetAvail {
		return fastEntry{flags: fastExceptional}
	}

	offSym := offEntry.result()
	if reservedOffsetSymbol(offSym) {
		return fastEntry{flags: fastExceptional}
	}
	offBase, offExtra := offsetBase[offSym], offsetExtraBits[offSym]

	offExtraAvail := offsetAvail - offEntry.length()
	if int(offExtra) > offExtraAvail {
		return fastEntry{flags: fastExceptional}
	}
	offExtraVal := uint32((w >> uint(afterLen+offEntry.length())) & ((1 << uint(offExtra)) - 1))
	offset := offBase + offExtraVal

	total := afterLen + offEntry.length() + int(offExtra)
	return fastEntry{
		bits:   uint8(total),
		flags:  fastMatch,
		length: uint16(length),
		offset: uint16(offset),
	}
}
