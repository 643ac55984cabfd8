package deflate

// RFC 1951 block types.
const (
	blockTypeStored = 0
	blockTypeStatic = 1
	blockTypeDynamic = 2
)

const (
	// numLitlenSyms and numOffsetSyms are the full alphabet sizes RFC 1951
	// assigns codeword lengths over, including the reserved symbols
	// (286-287, 30-31) that the static Huffman code still allocates space
	// for even though a compliant stream never actually uses them.
	numLitlenSyms  = 288
	numOffsetSyms  = 32
	numPrecodeSyms = 19

	endOfBlockSymbol = 256

	maxMatchLen = 258
	minMatchLen = 3

	maxMatchOffset = 32768
)

// precodeLensPermutation is the order HCLEN code-length symbols are
// transmitted in (RFC 1951 3.2.7).
var precodeLensPermutation = [numPrecodeSyms]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// lengthBase/lengthExtraBits give, for litlen symbol 257+i, the smallest
// length that symbol decodes to and how many extra bits follow it.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// offsetBase/offsetExtraBits give, for offset symbol i, the smallest
// offset it decodes to and how many extra bits follow it.
var offsetBase = [32]uint32{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
	8193, 12289, 16385, 24577, 32769, 49153,
}

var offsetExtraBits = [32]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13, 14, 14,
}

// Table-size constants for the canonical Huffman table builder and the
// fused fast-path table. The ENOUGH numbers are the maximum number of
// decode_table_entry slots a correctly-built table of the given TABLEBITS
// can require, derived from libdeflate's own enough.c computation;
// block.go checks each built table against its bound via checkEnough.
const (
	precodeTablebits = 7
	precodeEnough    = 128

	litlenTablebits = 10
	litlenEnough    = 1334

	offsetTablebits = 8
	offsetEnough    = 402

	fastTablebits = litlenTablebits
	fastTableSize = 1 << fastTablebits

	maxLiterals = 2
)
