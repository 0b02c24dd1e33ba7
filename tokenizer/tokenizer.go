// Package tokenizer provides the byte-pair encoder used to produce a
// reversible integer token sequence for chunking. It generalizes the
// teacher's textsplitter.TikTokenTokenizer, which only ever needed a token
// *count* (len(Encode(text))); the Chunk step needs the actual token ids so
// it can slice an exact [start, end) window and Decode it back to text.
package tokenizer

// Tokenizer is a stateless, swappable-by-name byte-pair encoder. A
// Tokenizer is safe for concurrent use after construction — it holds no
// mutable state, the same guarantee spec.md §5 requires of the process-wide
// encoder.
type Tokenizer interface {
	// Encode returns the ordered token ids for text.
	Encode(text string) []int
	// Decode reverses Encode for any contiguous or non-contiguous slice of
	// token ids produced by this Tokenizer.
	Decode(tokens []int) string
	// Name identifies the encoding, e.g. "cl100k_base".
	Name() string
}
