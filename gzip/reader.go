package gzip

import "io"

// Reader adapts the push-style Decompress driver to the pull-style
// io.Reader interface, by running it in a goroutine that feeds an
// io.Pipe — a goroutine pump bridging sequential reads through a pipe,
// with no checkpoint/seek bookkeeping, since GZIP decompression is
// read-once and forward-only.
type Reader struct {
	pr *io.PipeReader
}

// NewReader returns an io.ReadCloser that yields the concatenated,
// decompressed content of every GZIP member in r.
func NewReader(r io.Reader) *Reader {
	pr, pw := io.Pipe()
	go func() {
		_, err := Decompress(r, pw, 0)
		pw.CloseWithError(err)
	}()
	return &Reader{pr: pr}
}

func (gr *Reader) Read(p []byte) (int, error) {
	return gr.pr.Read(p)
}

// Close abandons the underlying decompression goroutine, if still running.
func (gr *Reader) Close() error {
	return gr.pr.Close()
}
