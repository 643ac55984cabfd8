package deflate

// bitbufBits and maxEnsure mirror BITBUF_NBITS/MAX_ENSURE from bitstream.rs:
// one bit of the 64-bit buffer is kept permanently empty so a single
// word-at-a-time refill can never overflow it, and maxEnsure is the most
// bits any single ensureBits call may request.
const (
	bitbufBits = 63
	maxEnsure  = bitbufBits - 7
)

// bitReader is the branchless word-at-a-time bit buffer, grounded on
// bitstream.rs. bitbuf holds bitsleft valid low-order bits;
// consumers always pull from the low end via bits/removeBits.
type bitReader struct {
	in       *input
	bitbuf   uint64
	bitsleft uint
}

func newBitReader(in *input) *bitReader {
	return &bitReader{in: in}
}

// fill absorbs one input word into bitbuf, advancing input by only the
// whole bytes actually consumed so unconsumed bytes stay available for a
// later align. Reading a word this way always pulls in up to wordBytes-1
// bytes beyond what's strictly needed; those may be overread zero padding
// near the end of the stream, which is harmless until bitsleft bits are
// actually handed out via removeBits — see hasOverrun.
func (br *bitReader) fill() {
	br.in.ensureWord()
	word := br.in.peekWord()
	br.bitbuf |= word << br.bitsleft

	empty := bitbufBits - br.bitsleft
	consumed := int(empty / 8)

	br.in.advance(consumed)
	br.bitsleft += uint(consumed) * 8
}

// ensureBits guarantees at least n bits are available, n <= maxEnsure. A
// single fill always suffices: even starting from bitsleft == 0 a fill
// deposits at least maxEnsure bits.
func (br *bitReader) ensureBits(n int) {
	if br.bitsleft < uint(n) {
		br.fill()
	}
}

// peekBits returns the low n bits of bitbuf without consuming them.
func (br *bitReader) peekBits(n int) uint32 {
	return uint32(br.bitbuf & ((uint64(1) << uint(n)) - 1))
}

func (br *bitReader) removeBits(n int) {
	br.bitbuf >>= uint(n)
	br.bitsleft -= uint(n)
}

// popBits ensures, peeks, and removes n bits in one call.
func (br *bitReader) popBits(n int) uint32 {
	br.ensureBits(n)
	v := br.peekBits(n)
	br.removeBits(n)
	return v
}

// align discards any partially-consumed byte, rewinding input to the next
// byte boundary. Used before a STORED block's LEN/NLEN fields, which are
// byte-aligned. Whatever whole bytes are still sitting unconsumed in
// bitbuf are handed back to input regardless of whether they were genuine
// or overread padding; align never has to know which.
func (br *bitReader) align() {
	wholeBytes := int(br.bitsleft / 8)
	br.in.advance(-wholeBytes)
	br.bitbuf = 0
	br.bitsleft = 0
}

// hasOverrun reports whether the bits actually handed out so far (bitsleft
// of which remain buffered but unconsumed) reach past the genuine end of
// the underlying reader, i.e. the stream was truncated and some decoded
// symbols were produced from fabricated padding. Grounded on
// bitstream.rs's overrun_count/has_overrun, computed here directly from
// input's position instead of incrementally.
func (br *bitReader) hasOverrun() bool {
	if !br.in.eof {
		return false
	}
	genuineEndBits := (br.in.base + int64(br.in.valid) - overreadBytes) * 8
	consumedBits := br.in.tell()*8 - int64(br.bitsleft)
	return consumedBits > genuineEndBits
}
