package gzip

import (
	"bytes"
	stdgzip "compress/gzip"
	"errors"
	"testing"

	"github.com/jonjohnsonjr/gzipd/deflate"
)

func compressMember(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := stdgzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestDecompressMemberRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("a gzip member round trips through our frame parser. "), 300)
	member := compressMember(t, data)

	var out bytes.Buffer
	res, err := DecompressMember(bytes.NewReader(member), &out, 0)
	if err != nil {
		t.Fatalf("DecompressMember: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatal("round trip mismatch")
	}
	if res.Written != int64(len(data)) {
		t.Fatalf("Written = %d, want %d", res.Written, len(data))
	}
}

func TestDecompressMemberBadMagic(t *testing.T) {
	member := compressMember(t, []byte("hello"))
	member[0] = 0x00

	var out bytes.Buffer
	if _, err := DecompressMember(bytes.NewReader(member), &out, 0); !errors.Is(err, deflate.ErrBadData) {
		t.Fatalf("got err %v, want ErrBadData", err)
	}
}

func TestDecompressMemberTrailerMismatch(t *testing.T) {
	member := compressMember(t, []byte("trailer gets corrupted"))
	// Flip every bit of the trailing CRC-32's low byte.
	member[len(member)-8] ^= 0xFF

	var out bytes.Buffer
	if _, err := DecompressMember(bytes.NewReader(member), &out, 0); !errors.Is(err, deflate.ErrBadData) {
		t.Fatalf("got err %v, want ErrBadData", err)
	}
}

func TestDecompressConcatenatedMembers(t *testing.T) {
	part1 := []byte("first member's content\n")
	part2 := bytes.Repeat([]byte("second member, repeated. "), 100)

	var concatenated bytes.Buffer
	concatenated.Write(compressMember(t, part1))
	concatenated.Write(compressMember(t, part2))

	var out bytes.Buffer
	n, err := Decompress(bytes.NewReader(concatenated.Bytes()), &out, 0)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	want := append(append([]byte{}, part1...), part2...)
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatal("concatenated round trip mismatch")
	}
	if n != int64(len(want)) {
		t.Fatalf("n = %d, want %d", n, len(want))
	}
}

func TestDecompressEmptyInput(t *testing.T) {
	var out bytes.Buffer
	n, err := Decompress(bytes.NewReader(nil), &out, 0)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if n != 0 || out.Len() != 0 {
		t.Fatal("expected no output for an empty input stream")
	}
}

func TestDecompressMemberWithExtraFields(t *testing.T) {
	// compress/gzip doesn't expose FEXTRA/FCOMMENT/FHCRC, so build a minimal
	// member by hand to exercise the optional-field skipping paths.
	var buf bytes.Buffer
	buf.Write([]byte{magic1, magic2, cmDeflate, flgExtra | flgName | flgComment | flgHCRC})
	buf.Write([]byte{0, 0, 0, 0}) // MTIME
	buf.Write([]byte{0})          // XFL
	buf.Write([]byte{0xFF})       // OS (unknown)

	buf.Write([]byte{3, 0})        // XLEN=3
	buf.Write([]byte{'a', 'b', 'c'}) // FEXTRA payload
	buf.Write([]byte("name.txt\x00")) // FNAME
	buf.Write([]byte("a comment\x00")) // FCOMMENT
	buf.Write([]byte{0, 0})        // FHCRC

	// An empty, final, stored DEFLATE block.
	buf.Write([]byte{0x01, 0x00, 0x00, 0xFF, 0xFF})
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0}) // CRC32=0, ISIZE=0 for empty data

	var out bytes.Buffer
	res, err := DecompressMember(bytes.NewReader(buf.Bytes()), &out, 0)
	if err != nil {
		t.Fatalf("DecompressMember: %v", err)
	}
	if res.Written != 0 || out.Len() != 0 {
		t.Fatal("expected no decompressed output")
	}
}
