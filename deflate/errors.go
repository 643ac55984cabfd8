package deflate

import "errors"

// ErrBadData is returned when the compressed stream violates RFC 1951: an
// invalid block type, an overfull or incomplete Huffman code, a stored-block
// length that doesn't match its one's complement, a back-reference whose
// offset reaches before the start of the stream, and so on.
var ErrBadData = errors.New("deflate: corrupt input")

// ErrInsufficientSpace is returned when output's own buffer bookkeeping
// can't make room for more bytes between flushes. It means exactly "the
// caller's chunk size is too small for this stream," never "the sink
// rejected a write" — a sink failure (closed pipe, full disk, a network
// write timing out) is a different problem a bigger buffer can't fix, so
// it's reported through sinkError instead, never through this sentinel.
var ErrInsufficientSpace = errors.New("deflate: insufficient output space")

func badData(why string) error {
	return &wrappedError{msg: why, err: ErrBadData}
}

func insufficientSpace() error {
	return &wrappedError{msg: "insufficient output space", err: ErrInsufficientSpace}
}

// sinkError reports a failed write to the caller-supplied io.Writer as
// itself, not as ErrInsufficientSpace: a caller that only checks
// errors.Is(err, ErrInsufficientSpace) to decide "grow the buffer and
// retry" must not see that signal for a fatal sink error a bigger buffer
// can never fix. cause is still reachable through errors.Is/errors.As via
// Unwrap.
func sinkError(cause error) error {
	return &wrappedError{msg: cause.Error(), err: cause}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string { return "deflate: " + e.msg }

func (e *wrappedError) Unwrap() error { return e.err }
