package tokenizer

// New resolves a Tokenizer by name, per spec.md §6's TOKENIZER_NAME control.
// A name containing a slash-free tiktoken encoding (e.g. "cl100k_base") is
// tried first as a raw encoding name; anything else is treated as a model
// family name (e.g. "gpt-4", "gpt-3.5-turbo").
func New(name string) (Tokenizer, error) {
	if name == "" {
		name = "gpt-4"
	}
	if enc, err := NewTikTokenEncoderByEncodingName(name); err == nil {
		return enc, nil
	}
	return NewTikTokenEncoder(name)
}
