package deflate

import (
	"encoding/binary"
	"io"
)

// wordBytes is the width of the word-at-a-time bit-buffer refill and
// therefore also the amount of lookahead [input] must always be able to
// provide via peekWord.
const wordBytes = 8

// overreadBytes is how far past the real end of the underlying reader input
// may report valid-looking (zero) bytes. peekWord always reads a full word
// even when fewer than wordBytes genuine bytes remain. The bit reader takes
// padding bits in like any other bits; on a well-formed stream they are
// never consumed, and on a truncated one the bit reader's hasOverrun
// reports that they were.
const overreadBytes = 2 * wordBytes

// lookBackBytes is how many already-consumed bytes input keeps behind pos
// across a refill, so that align (used when a stored block follows a
// Huffman block) can rewind into bytes still resident in buf.
const lookBackBytes = wordBytes

// input is the chunked sliding-window source buffer, grounded
// on streams/deflate_chunked_buffer_input.rs. It wraps an io.Reader rather
// than a raw read callback, since that's the idiomatic Go shape for a pull
// source.
type input struct {
	r   io.Reader
	buf []byte // buf[0:valid] holds real bytes plus, once eof is true, overreadBytes of zero padding
	pos int    // next unconsumed byte
	valid int  // end of real-or-padding data currently in buf
	eof bool   // r returned io.EOF; padding has been appended
	err error  // sticky non-EOF read error

	base int64 // absolute stream offset of buf[0]
}

func newInput(r io.Reader, chunkSize int) *input {
	if chunkSize < lookBackBytes+overreadBytes {
		chunkSize = lookBackBytes + overreadBytes
	}
	in := &input{
		r:   r,
		buf: make([]byte, 0, chunkSize+lookBackBytes+overreadBytes),
	}
	in.refill()
	return in
}

// refill compacts buf, keeping up to lookBackBytes bytes before pos, then
// reads more real bytes from r. Once r is exhausted it appends overreadBytes
// of zero padding so peekWord can always read a full word.
func (in *input) refill() {
	if in.err != nil {
		return
	}

	keep := in.pos
	if keep > lookBackBytes {
		keep = lookBackBytes
	}
	start := in.pos - keep

	n := copy(in.buf[:cap(in.buf)], in.buf[start:in.valid])
	in.base += int64(start)
	in.pos -= start
	in.valid = n

	if in.eof {
		return
	}

	buf := in.buf[:cap(in.buf)]
	for in.valid < len(buf)-overreadBytes {
		m, err := in.r.Read(buf[in.valid:len(buf)-overreadBytes])
		in.valid += m
		if err != nil {
			if err != io.EOF {
				in.err = err
			}
			in.eof = true
			break
		}
		if m == 0 {
			break
		}
	}

	// Only once the source is genuinely exhausted do the overreadBytes past
	// the real data count as "valid": if the loop above stopped merely
	// because it filled the buffer, there may still be real bytes waiting
	// in r, and claiming the reserved tail as valid would let a caller
	// consume zero padding as if it were compressed data instead of calling
	// refill again for the rest.
	if in.eof {
		for i := in.valid; i < in.valid+overreadBytes && i < len(buf); i++ {
			buf[i] = 0
		}
		if in.valid+overreadBytes <= len(buf) {
			in.valid += overreadBytes
		} else {
			in.valid = len(buf)
		}
	}
	in.buf = buf
}

// remaining reports how many bytes (real or padding) are available from pos
// without another refill.
func (in *input) remaining() int { return in.valid - in.pos }

// peekWord returns the 8 bytes at pos, little-endian, without advancing.
// Callers must ensure remaining() >= wordBytes, refilling first if not.
func (in *input) peekWord() uint64 {
	return binary.LittleEndian.Uint64(in.buf[in.pos : in.pos+8])
}

func (in *input) advance(n int) { in.pos += n }

// tell returns the absolute byte offset of the next unconsumed byte.
func (in *input) tell() int64 { return in.base + int64(in.pos) }

// ensureWord refills when remaining() < wordBytes so that peekWord has a
// full word of genuine-or-padding bytes to read. It returns nothing.
func (in *input) ensureWord() {
	if in.remaining() < wordBytes {
		in.refill()
	}
}

// hasRealDataAt reports whether the absolute stream position off is still
// covered by genuine (non-padding) input, i.e. the stream has not been
// exhausted before that point.
func (in *input) hasRealDataAt(off int64) bool {
	if !in.eof {
		return true
	}
	// Once eof, the genuine data ends at base+valid-overreadBytes.
	realEnd := in.base + int64(in.valid) - overreadBytes
	return off < realEnd
}

// genuineRemaining reports how many bytes from pos to the real end of the
// underlying reader remain (i.e. excluding overread zero padding). Used by
// Reader.AtEOF to tell whether any genuine input is left.
func (in *input) genuineRemaining() int {
	if !in.eof {
		return in.remaining()
	}
	realEnd := in.base + int64(in.valid) - overreadBytes
	n := realEnd - in.tell()
	if n < 0 {
		return 0
	}
	return int(n)
}

// readByte consumes and returns one byte, refilling as needed. It backs
// Reader.ReadByte, which GZIP header parsing uses for its NUL-terminated
// fields.
func (in *input) readByte() (byte, error) {
	if in.remaining() < 1 {
		in.refill()
		if in.remaining() < 1 {
			return 0, io.ErrUnexpectedEOF
		}
	}
	b := in.buf[in.pos]
	in.pos++
	return b, nil
}

// readExactInto copies exactly len(dst) genuine bytes from the input into
// dst, refilling as necessary. Used for STORED blocks.
func (in *input) readExactInto(dst []byte) error {
	for len(dst) > 0 {
		if in.remaining() == 0 {
			in.refill()
			if in.remaining() == 0 {
				if in.err != nil {
					return in.err
				}
				return io.ErrUnexpectedEOF
			}
		}

		avail := in.remaining()
		// Don't hand out bytes past the genuine data once padding has
		// been appended.
		if in.eof {
			realAvail := int(in.base+int64(in.valid)-overreadBytes-in.tell())
			if realAvail < avail {
				avail = realAvail
			}
			if avail <= 0 {
				return io.ErrUnexpectedEOF
			}
		}

		n := copy(dst, in.buf[in.pos:in.pos+avail])
		in.pos += n
		dst = dst[n:]
	}
	return nil
}

// read hands out whatever genuine bytes are already buffered, refilling at
// most once if none are, and never blocks to fill all of p — the ordinary
// io.Reader contract, as opposed to readExactInto's loop-until-full one.
// This is what lets a Reader be handed to io.ReadFull/io.CopyN for framing
// bytes that sit around a DEFLATE stream without that framing code ever
// touching the raw source directly.
func (in *input) read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if in.remaining() == 0 {
		in.refill()
	}

	avail := in.remaining()
	if in.eof {
		realAvail := int(in.base + int64(in.valid) - overreadBytes - in.tell())
		if realAvail < avail {
			avail = realAvail
		}
	}
	if avail <= 0 {
		if in.err != nil {
			return 0, in.err
		}
		return 0, io.EOF
	}

	n := copy(p, in.buf[in.pos:in.pos+avail])
	in.pos += n
	return n, nil
}

// Reader is a chunked buffered source that can be shared across several
// logical reads against the same underlying io.Reader. GZIP framing needs
// exactly this: the header, the DEFLATE body, and the trailer all have to
// consume from one Reader, or bytes the DEFLATE decoder has prefetched past
// the end of its own stream are lost to whoever reads next. Grounded on
// decompress_gzip.rs, which threads a single DeflateChunkedBufferInput
// through in_stream.read_byte, libdeflate_deflate_decompress, and
// in_stream.read_le_u32 in turn.
type Reader struct {
	in *input
}

// NewReader wraps r in a chunked buffered Reader of roughly bufSize bytes.
// bufSize <= 0 selects DefaultBufSize.
func NewReader(r io.Reader, bufSize int) *Reader {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	return &Reader{in: newInput(r, bufSize)}
}

// ReadByte consumes and returns the next byte.
func (br *Reader) ReadByte() (byte, error) { return br.in.readByte() }

// Read implements io.Reader over the shared buffer.
func (br *Reader) Read(p []byte) (int, error) { return br.in.read(p) }

// AtEOF reports whether the underlying reader is exhausted with nothing
// left unconsumed — i.e. there is no further GZIP member to read. It may
// block briefly to refill the buffer if it's currently empty. A true result
// can mean either a clean io.EOF or a genuine read failure; callers must
// check Err afterward to tell the two apart.
func (br *Reader) AtEOF() bool {
	br.in.ensureWord()
	return br.in.genuineRemaining() == 0
}

// Err returns the sticky non-EOF error, if any, that caused the underlying
// reader to stop being readable. A caller that sees AtEOF return true must
// check this before treating the stream as cleanly finished.
func (br *Reader) Err() error { return br.in.err }
