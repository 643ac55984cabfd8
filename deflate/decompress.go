package deflate

import "io"

// DefaultBufSize is used when a caller passes bufSize <= 0 to
// DecompressStream, NewReader, or Decompress, mirroring the buf_size
// parameter of decompress_file_buffered in lib.rs.
const DefaultBufSize = 1 << 16

// Decoder decompresses a single raw DEFLATE stream. It holds
// no state between calls to DecompressStream other than nothing at all:
// every call starts with a fresh tableSet, so one Decoder is safe to reuse
// sequentially and distinct Decoders never share mutable state, matching
// the independent-decoder concurrency model.
type Decoder struct{}

// NewDecoder returns a Decoder ready to decompress a DEFLATE stream.
func NewDecoder() *Decoder { return &Decoder{} }

// DecompressStream reads one complete DEFLATE stream (RFC 1951) from r,
// writing the decompressed bytes to w, and returns the total bytes written
// and their CRC-32 (IEEE polynomial) as it goes, matching the
// OutStreamResult the gzip trailer check needs. bufSize <= 0 selects
// DefaultBufSize.
//
// This constructs a private Reader over r and discards it once the stream
// ends, so any bytes it prefetched past the DEFLATE stream's end (a
// trailer, another concatenated stream) are unreachable afterward. Callers
// that need to keep reading from r once Decompress returns should build
// their own Reader with NewReader and call Decompress directly instead.
func (d *Decoder) DecompressStream(r io.Reader, w io.Writer, bufSize int) (written int64, crc uint32, err error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	return d.Decompress(NewReader(r, bufSize), w, bufSize)
}

// Decompress reads one complete DEFLATE stream from br, writing decompressed
// bytes to w, and returns the total bytes written and their CRC-32. Unlike
// DecompressStream it operates on an already-constructed Reader, so a
// caller framing DEFLATE inside something larger (GZIP's header/body/
// trailer) can keep using br for whatever follows the stream without
// losing bytes br had already buffered ahead of the stream's end.
func (d *Decoder) Decompress(br *Reader, w io.Writer, bufSize int) (written int64, crc uint32, err error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	in := br.in
	out := newOutput(w, bufSize)
	bitR := newBitReader(in)
	ts := &tableSet{}

	for {
		final, btype := decodeBlockHeader(bitR)

		switch btype {
		case blockTypeDynamic:
			if err := ts.decodeDynamicHuffmanBlock(bitR); err != nil {
				return 0, 0, err
			}
			if err := decodeBlockBody(bitR, out, ts); err != nil {
				return 0, 0, err
			}
		case blockTypeStatic:
			if err := ts.loadStaticHuffmanBlock(); err != nil {
				return 0, 0, err
			}
			if err := decodeBlockBody(bitR, out, ts); err != nil {
				return 0, 0, err
			}
		case blockTypeStored:
			if err := decodeUncompressedBlock(bitR, in, out); err != nil {
				return 0, 0, err
			}
		default:
			return 0, 0, badData("invalid block type")
		}

		if final {
			break
		}
	}

	if bitR.hasOverrun() {
		return 0, 0, badData("truncated deflate stream")
	}

	// The final block's end-of-block symbol almost never falls on a byte
	// boundary, but fill pulls whole words at a time regardless: bitbuf can
	// still hold several buffered-but-unconsumed whole bytes that br.in's
	// position has already been advanced past. align hands those back to
	// br.in so it's left sitting exactly at the byte immediately following
	// the compressed stream — load-bearing for br, since a caller (GZIP's
	// trailer, or the next concatenated member) keeps reading from the same
	// Reader afterward.
	bitR.align()

	return out.finalFlush()
}

// decodeBlockBody decodes symbols until end-of-block, trying the fused
// fast table first and falling back to the legacy
// litlen/offset tables whenever a slot is marked exceptional.
func decodeBlockBody(br *bitReader, out *output, ts *tableSet) error {
	for {
		br.ensureBits(maxEnsure)

		e := ts.fast[br.bitbuf&uint64(fastTableSize-1)]
		if e.flags&fastExceptional == 0 {
			br.removeBits(int(e.bits))

			switch {
			case e.flags&fastEndOfBlock != 0:
				return nil
			case e.flags&fastMatch != 0:
				if err := applyMatch(out, int(e.length), int(e.offset)); err != nil {
					return err
				}
			default:
				if err := out.writeLiteral(byte(e.lit)); err != nil {
					return err
				}
				if e.flags&fastTwoLiterals != 0 {
					if err := out.writeLiteral(byte(e.lit >> 8)); err != nil {
						return err
					}
				}
			}
			continue
		}

		end, err := decodeOneSymbolLegacy(br, out, ts)
		if err != nil {
			return err
		}
		if end {
			return nil
		}
	}
}

// decodeOneSymbolLegacy resolves one litlen symbol (and its following
// offset symbol, if any) the slow way, via the legacy two-step tables
// rather than the fused fast table, reporting whether it hit end-of-block.
// Grounded on decode_block_instruction in decompress_deflate.rs.
func decodeOneSymbolLegacy(br *bitReader, out *output, ts *tableSet) (bool, error) {
	br.ensureBits(maxEnsure)
	entry, used := ts.litlenTable.lookup(br.bitbuf)
	br.removeBits(used)

	if entry.isInvalid() {
		return false, badData("invalid literal/length symbol")
	}
	if entry.isEndOfBlock() {
		return true, nil
	}

	if entry.isLiteral() {
		return false, out.writeLiteral(entry.literal())
	}

	idx := entry.result()
	if int(idx) >= len(lengthBase) {
		return false, badData("invalid length symbol")
	}
	base, extra := lengthBase[idx], lengthExtraBits[idx]
	br.ensureBits(int(extra))
	length := uint32(base) + br.peekBits(int(extra))
	br.removeBits(int(extra))

	br.ensureBits(maxEnsure)
	offEntry, offUsed := ts.offsetTable.lookup(br.bitbuf)
	br.removeBits(offUsed)
	if offEntry.isInvalid() {
		return false, badData("invalid offset symbol")
	}

	offSym := offEntry.result()
	if reservedOffsetSymbol(offSym) {
		return false, badData("reserved offset symbol")
	}
	offBase, offExtra := offsetBase[offSym], offsetExtraBits[offSym]
	br.ensureBits(int(offExtra))
	offset := offBase + br.peekBits(int(offExtra))
	br.removeBits(int(offExtra))

	return false, applyMatch(out, int(length), int(offset))
}

// applyMatch validates a back-reference's offset against how much output
// has actually been produced before performing the copy.
func applyMatch(out *output, length, offset int) error {
	if offset <= 0 || offset > maxMatchOffset {
		return badData("match offset out of range")
	}
	if int64(offset) > out.total() {
		return badData("match reaches before start of stream")
	}
	if length < minMatchLen || length > maxMatchLen {
		return badData("match length out of range")
	}
	return out.copyMatch(length, offset)
}
