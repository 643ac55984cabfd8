package deflate

// tableSet holds one block's worth of built Huffman tables, grounded on the
// _DecStruct/LibdeflateDecodeTables shapes in decompress_deflate.rs/lib.rs:
// the raw code-length arrays (needed to rebuild tables) plus the legacy
// litlen/offset tables and the fused fast table derived from them.
type tableSet struct {
	litlenLens [numLitlenSyms]uint8
	offsetLens [numOffsetSyms]uint8

	litlenTable *decodeTable
	offsetTable *decodeTable
	fast        []fastEntry

	staticLoaded bool
}

func litlenPayloadEntries() []decodeEntry {
	p := make([]decodeEntry, numLitlenSyms)
	for sym := 0; sym < numLitlenSyms; sym++ {
		switch {
		case sym < endOfBlockSymbol:
			p[sym] = newLiteralEntry(uint32(sym), 0)
		case sym == endOfBlockSymbol:
			p[sym] = newEndOfBlockEntry(0)
		case sym-257 < len(lengthBase):
			p[sym] = newResultEntry(uint32(sym-257), 0)
		default:
			// Reserved length symbols 286-287: a stream that actually uses
			// these is corrupt. There's no base/extra-bits entry for them,
			// so mark them to fail decode if ever reached.
			p[sym] = decodeEntry(entryExceptional | entryInvalid)
		}
	}
	return p
}

func offsetPayloadEntries() []decodeEntry {
	p := make([]decodeEntry, numOffsetSyms)
	for sym := 0; sym < numOffsetSyms; sym++ {
		p[sym] = newResultEntry(uint32(sym), 0)
	}
	return p
}

func precodePayloadEntries() []decodeEntry {
	p := make([]decodeEntry, numPrecodeSyms)
	for sym := 0; sym < numPrecodeSyms; sym++ {
		p[sym] = newResultEntry(uint32(sym), 0)
	}
	return p
}

// buildTables rebuilds litlenTable, offsetTable, and fast from the current
// litlenLens/offsetLens, as the last step of loading any block's Huffman
// codes.
func (ts *tableSet) buildTables() error {
	litlenTable, err := buildDecodeTable(ts.litlenLens[:], litlenPayloadEntries(), litlenTablebits, 15)
	if err != nil {
		return err
	}
	if err := checkEnough(litlenTable, litlenEnough, "litlen"); err != nil {
		return err
	}
	offsetTable, err := buildDecodeTable(ts.offsetLens[:], offsetPayloadEntries(), offsetTablebits, 15)
	if err != nil {
		return err
	}
	if err := checkEnough(offsetTable, offsetEnough, "offset"); err != nil {
		return err
	}

	ts.litlenTable = litlenTable
	ts.offsetTable = offsetTable
	ts.fast = buildFastTable(litlenTable, offsetTable)
	return nil
}

// decodeBlockHeader reads BFINAL and BTYPE, grounded on
// decode_huffman_header in decode_blocks.rs.
func decodeBlockHeader(br *bitReader) (final bool, btype int) {
	br.ensureBits(3)
	final = br.peekBits(1) == 1
	br.removeBits(1)
	btype = int(br.peekBits(2))
	br.removeBits(2)
	return final, btype
}

// loadStaticHuffmanBlock installs the RFC 1951 3.2.6 fixed Huffman code
// lengths, memoized via staticLoaded exactly as decode_blocks.rs's
// load_static_huffman_block / lib.rs's static_codes_loaded.
func (ts *tableSet) loadStaticHuffmanBlock() error {
	if ts.staticLoaded {
		return nil
	}

	for i := 0; i < 144; i++ {
		ts.litlenLens[i] = 8
	}
	for i := 144; i < 256; i++ {
		ts.litlenLens[i] = 9
	}
	for i := 256; i < 280; i++ {
		ts.litlenLens[i] = 7
	}
	for i := 280; i < 288; i++ {
		ts.litlenLens[i] = 8
	}
	for i := range ts.offsetLens {
		ts.offsetLens[i] = 5
	}

	if err := ts.buildTables(); err != nil {
		return err
	}
	ts.staticLoaded = true
	return nil
}

// decodeDynamicHuffmanBlock reads HLIT/HDIST/HCLEN, the precode lengths,
// and the run-length-encoded litlen/offset lengths, grounded
// on decode_dynamic_huffman_block in decode_blocks.rs.
func (ts *tableSet) decodeDynamicHuffmanBlock(br *bitReader) error {
	br.ensureBits(14)
	hlit := int(br.peekBits(5))
	br.removeBits(5)
	hdist := int(br.peekBits(5))
	br.removeBits(5)
	hclen := int(br.peekBits(4))
	br.removeBits(4)

	numLitlen := hlit + 257
	numDist := hdist + 1
	numPrecode := hclen + 4

	var precodeLens [numPrecodeSyms]uint8
	for i := 0; i < numPrecode; i++ {
		br.ensureBits(3)
		precodeLens[precodeLensPermutation[i]] = uint8(br.peekBits(3))
		br.removeBits(3)
	}
	for i := numPrecode; i < numPrecodeSyms; i++ {
		precodeLens[precodeLensPermutation[i]] = 0
	}

	precodeTable, err := buildDecodeTable(precodeLens[:], precodePayloadEntries(), precodeTablebits, 7)
	if err != nil {
		return err
	}
	if err := checkEnough(precodeTable, precodeEnough, "precode"); err != nil {
		return err
	}

	total := numLitlen + numDist
	lens := make([]uint8, total)

	i := 0
	var prevLen uint8
	for i < total {
		br.ensureBits(maxEnsure)
		entry, used := precodeTable.lookup(br.bitbuf)
		if entry.isInvalid() {
			return badData("invalid precode symbol")
		}
		presym := entry.result()
		br.removeBits(used)

		switch {
		case presym < 16:
			lens[i] = uint8(presym)
			prevLen = uint8(presym)
			i++
		case presym == 16:
			if i == 0 {
				return badData("repeat code with no previous length")
			}
			n := 3 + int(br.peekBits(2))
			br.removeBits(2)
			for j := 0; j < n && i < total; j++ {
				lens[i] = prevLen
				i++
			}
		case presym == 17:
			n := 3 + int(br.peekBits(3))
			br.removeBits(3)
			for j := 0; j < n && i < total; j++ {
				lens[i] = 0
				i++
			}
			prevLen = 0
		default: // 18
			n := 11 + int(br.peekBits(7))
			br.removeBits(7)
			for j := 0; j < n && i < total; j++ {
				lens[i] = 0
				i++
			}
			prevLen = 0
		}
	}

	copy(ts.litlenLens[:], lens[:numLitlen])
	for j := numLitlen; j < numLitlenSyms; j++ {
		ts.litlenLens[j] = 0
	}
	copy(ts.offsetLens[:], lens[numLitlen:])
	for j := numDist; j < numOffsetSyms; j++ {
		ts.offsetLens[j] = 0
	}

	ts.staticLoaded = false
	return ts.buildTables()
}

// decodeUncompressedBlock handles a STORED block, grounded on
// decode_uncompressed_block in decode_blocks.rs: align to a byte boundary,
// read LEN/NLEN, validate them, and stream LEN raw bytes to the output.
func decodeUncompressedBlock(br *bitReader, in *input, out *output) error {
	br.align()

	var hdr [4]byte
	if err := in.readExactInto(hdr[:]); err != nil {
		return badData("truncated stored block header")
	}
	length := uint16(hdr[0]) | uint16(hdr[1])<<8
	nlen := uint16(hdr[2]) | uint16(hdr[3])<<8
	if length != ^nlen {
		return badData("stored block LEN/NLEN mismatch")
	}

	const chunk = 4096
	buf := make([]byte, chunk)
	for remaining := int(length); remaining > 0; {
		n := chunk
		if n > remaining {
			n = remaining
		}
		if err := in.readExactInto(buf[:n]); err != nil {
			return badData("truncated stored block data")
		}
		if err := out.writeBytes(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
