package deflate

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// outputLookBack is the largest offset a DEFLATE back-reference can name;
// output never discards the trailing outputLookBack bytes of its window, so
// any in-range match always has its source resident in buf.
const outputLookBack = maxMatchOffset

// overwriteBytes is the slack past the exact match length output's
// word-at-a-time copyMatch is allowed to scribble into, grounded on the
// OVERWRITE/OVERWRITE_MAX constants of streams/deflate_chunked_buffer_output.rs.
const overwriteBytes = 16

// output is the chunked sliding-window destination buffer, grounded on
// streams/deflate_chunked_buffer_output.rs. It feeds flushed
// bytes both to the sink writer and to a running CRC-32, exactly as the
// Rust original's flush_buffer hashes before emitting.
type output struct {
	w       io.Writer
	crc     uint32
	buf     []byte
	pos     int
	written int64
}

func newOutput(w io.Writer, chunkSize int) *output {
	if chunkSize < outputLookBack+overwriteBytes {
		chunkSize = outputLookBack + overwriteBytes
	}
	return &output{
		w:   w,
		buf: make([]byte, outputLookBack+chunkSize+overwriteBytes),
	}
}

// ensureSpace guarantees at least n bytes (plus overwrite slack) can be
// written at pos without growing buf, flushing first if necessary.
func (o *output) ensureSpace(n int) error {
	if o.pos+n+overwriteBytes <= len(o.buf) {
		return nil
	}
	return o.flush()
}

// flush emits everything except the trailing outputLookBack bytes (which
// must stay resident for future back-references) to w, folding it into the
// running CRC-32 first.
func (o *output) flush() error {
	emit := o.pos - outputLookBack
	if emit <= 0 {
		if o.pos+overwriteBytes > len(o.buf) {
			return insufficientSpace()
		}
		return nil
	}

	o.crc = crc32.Update(o.crc, crc32.IEEETable, o.buf[:emit])
	if _, err := o.w.Write(o.buf[:emit]); err != nil {
		return sinkError(err)
	}
	o.written += int64(emit)

	copy(o.buf, o.buf[emit:o.pos])
	o.pos -= emit

	if o.pos+overwriteBytes > len(o.buf) {
		return insufficientSpace()
	}
	return nil
}

// writeBytes appends p verbatim, used for STORED blocks.
func (o *output) writeBytes(p []byte) error {
	for len(p) > 0 {
		n := len(p)
		if max := len(o.buf) - overwriteBytes - o.pos; n > max {
			n = max
		}
		if n <= 0 {
			if err := o.flush(); err != nil {
				return err
			}
			continue
		}
		copy(o.buf[o.pos:], p[:n])
		o.pos += n
		p = p[n:]
	}
	return nil
}

func (o *output) writeLiteral(b byte) error {
	if err := o.ensureSpace(1); err != nil {
		return err
	}
	o.buf[o.pos] = b
	o.pos++
	return nil
}

// copyMatch appends a DEFLATE back-reference: length bytes copied from
// offset bytes behind the current position. offset must already be known
// to be in [1, maxMatchOffset] and not reach before the start of the
// stream; callers check that before calling.
func (o *output) copyMatch(length, offset int) error {
	if err := o.ensureSpace(length); err != nil {
		return err
	}

	dst := o.pos
	src := dst - offset

	switch {
	case offset == 1:
		b := o.buf[src]
		for i := 0; i < length; i++ {
			o.buf[dst+i] = b
		}
	case offset < 8:
		// Small offsets overlap within the copy (classic RLE); each byte's
		// source either predates this call or was written earlier in this
		// same loop, so a plain forward byte copy is correct.
		for i := 0; i < length; i++ {
			o.buf[dst+i] = o.buf[src+i]
		}
	default:
		// offset >= 8 means a word read never reaches a byte this call
		// hasn't already produced, so words can be copied at a time.
		i := 0
		for ; i+8 <= length; i += 8 {
			w := binary.LittleEndian.Uint64(o.buf[src+i : src+i+8])
			binary.LittleEndian.PutUint64(o.buf[dst+i:dst+i+8], w)
		}
		for ; i < length; i++ {
			o.buf[dst+i] = o.buf[src+i]
		}
	}

	o.pos += length
	return nil
}

// total is the number of bytes committed to the sink plus those still
// resident in buf, i.e. the full logical length of the stream so far.
func (o *output) total() int64 { return o.written + int64(o.pos) }

// finalFlush emits everything remaining and returns the stream's length and
// CRC-32, matching the Rust OutStreamResult returned by final_flush.
func (o *output) finalFlush() (written int64, crc uint32, err error) {
	o.crc = crc32.Update(o.crc, crc32.IEEETable, o.buf[:o.pos])
	if _, err := o.w.Write(o.buf[:o.pos]); err != nil {
		return 0, 0, sinkError(err)
	}
	o.written += int64(o.pos)
	o.pos = 0
	return o.written, o.crc, nil
}
