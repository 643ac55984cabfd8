// Package gzip implements reading of RFC 1952 GZIP streams on top of the
// deflate package's streaming RFC 1951 decompressor.
package gzip

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jonjohnsonjr/gzipd/deflate"
)

const (
	magic1 = 0x1F
	magic2 = 0x8B
	cmDeflate = 8

	flgText    = 1 << 0
	flgHCRC    = 1 << 1
	flgExtra   = 1 << 2
	flgName    = 1 << 3
	flgComment = 1 << 4
	flgReserved = 0xE0
)

// Result reports what a single member decompressed to.
type Result struct {
	Written int64
	CRC32   uint32
}

// DecompressMember reads exactly one GZIP member (header, one DEFLATE
// stream, trailer) from r and writes its decompressed content to w,
// grounded on libdeflate_gzip_decompress in decompress_gzip.rs. It wraps r
// in its own deflate.Reader for the duration of the call; a caller reading
// several concatenated members off the same r should use Decompress
// instead, which keeps one deflate.Reader alive across all of them.
func DecompressMember(r io.Reader, w io.Writer, bufSize int) (Result, error) {
	return decompressMember(deflate.NewReader(r, bufSize), w, bufSize)
}

// decompressMember is DecompressMember's body, parameterized on an
// already-constructed *deflate.Reader so the header, the DEFLATE body, and
// the trailer all read through the same buffered source — never falling
// back to a second, independent read against the raw io.Reader once the
// DEFLATE decoder has run, which would lose whatever it had already
// buffered past the body's end.
func decompressMember(br *deflate.Reader, w io.Writer, bufSize int) (Result, error) {
	var hdr [10]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return Result{}, fmt.Errorf("gzip: reading header: %w", err)
	}
	if hdr[0] != magic1 || hdr[1] != magic2 {
		return Result{}, fmt.Errorf("gzip: %w: bad magic", deflate.ErrBadData)
	}
	if hdr[2] != cmDeflate {
		return Result{}, fmt.Errorf("gzip: %w: unsupported compression method %d", deflate.ErrBadData, hdr[2])
	}

	flg := hdr[3]
	if flg&flgReserved != 0 {
		return Result{}, fmt.Errorf("gzip: %w: reserved flag bits set", deflate.ErrBadData)
	}

	if flg&flgExtra != 0 {
		var xlenBuf [2]byte
		if _, err := io.ReadFull(br, xlenBuf[:]); err != nil {
			return Result{}, fmt.Errorf("gzip: reading FEXTRA length: %w", err)
		}
		xlen := binary.LittleEndian.Uint16(xlenBuf[:])
		if _, err := io.CopyN(io.Discard, br, int64(xlen)); err != nil {
			return Result{}, fmt.Errorf("gzip: reading FEXTRA: %w", err)
		}
	}
	if flg&flgName != 0 {
		if err := skipNulTerminated(br); err != nil {
			return Result{}, fmt.Errorf("gzip: reading FNAME: %w", err)
		}
	}
	if flg&flgComment != 0 {
		if err := skipNulTerminated(br); err != nil {
			return Result{}, fmt.Errorf("gzip: reading FCOMMENT: %w", err)
		}
	}
	if flg&flgHCRC != 0 {
		var b [2]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return Result{}, fmt.Errorf("gzip: reading FHCRC: %w", err)
		}
	}

	d := deflate.NewDecoder()
	written, crc, err := d.Decompress(br, w, bufSize)
	if err != nil {
		return Result{}, err
	}

	var trailer [8]byte
	if _, err := io.ReadFull(br, trailer[:]); err != nil {
		return Result{}, fmt.Errorf("gzip: reading trailer: %w", err)
	}
	wantCRC := binary.LittleEndian.Uint32(trailer[:4])
	wantSize := binary.LittleEndian.Uint32(trailer[4:])

	if crc != wantCRC {
		return Result{}, fmt.Errorf("gzip: %w: crc32 mismatch", deflate.ErrBadData)
	}
	if uint32(written) != wantSize {
		return Result{}, fmt.Errorf("gzip: %w: size mismatch (mod 2^32)", deflate.ErrBadData)
	}

	return Result{Written: written, CRC32: crc}, nil
}

func skipNulTerminated(br *deflate.Reader) error {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		if b == 0 {
			return nil
		}
	}
}

// Decompress drives decompression of a concatenated sequence of GZIP
// members, as a single logical stream — grounded on
// decompress_file_buffered's `while input_stream.has_valid_bytes_slow()`
// loop in lib.rs. It returns the total number of bytes written across all
// members.
func Decompress(r io.Reader, w io.Writer, bufSize int) (int64, error) {
	// One Reader lives for the whole call, not one per member: each member's
	// Reader prefetches ahead of its own logical boundary, and discarding it
	// between members (as a fresh bufio.Reader per DecompressMember call
	// would) throws those prefetched bytes away along with it.
	br := deflate.NewReader(r, bufSize)

	var total int64
	for {
		if br.AtEOF() {
			if err := br.Err(); err != nil {
				return total, fmt.Errorf("gzip: reading next member: %w", err)
			}
			return total, nil
		}

		res, err := decompressMember(br, w, bufSize)
		if err != nil {
			return total, err
		}
		total += res.Written
	}
}
