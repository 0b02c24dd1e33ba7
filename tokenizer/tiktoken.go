package tokenizer

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TikTokenEncoder is a Tokenizer backed by github.com/pkoukk/tiktoken-go,
// the teacher's own BPE dependency (textsplitter.TikTokenTokenizer).
type TikTokenEncoder struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikTokenEncoder resolves an encoder for an OpenAI model family name
// (e.g. "gpt-4", "gpt-3.5-turbo"), defaulting to "gpt-4" to match spec.md's
// "GPT-4-family encoder" default.
func NewTikTokenEncoder(model string) (*TikTokenEncoder, error) {
	if model == "" {
		model = "gpt-4"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: resolve encoding for model %q: %w", model, err)
	}
	return &TikTokenEncoder{encoding: enc, name: model}, nil
}

// NewTikTokenEncoderByEncodingName resolves an encoder directly by
// tiktoken encoding name (e.g. "cl100k_base"), bypassing model-name lookup.
func NewTikTokenEncoderByEncodingName(encodingName string) (*TikTokenEncoder, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: resolve encoding %q: %w", encodingName, err)
	}
	return &TikTokenEncoder{encoding: enc, name: encodingName}, nil
}

func (t *TikTokenEncoder) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

func (t *TikTokenEncoder) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}

func (t *TikTokenEncoder) Name() string {
	return t.name
}
