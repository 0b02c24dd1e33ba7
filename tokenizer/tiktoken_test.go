package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TikTokenEncoderTestSuite struct {
	suite.Suite
	enc *TikTokenEncoder
}

func TestTikTokenEncoderTestSuite(t *testing.T) {
	suite.Run(t, new(TikTokenEncoderTestSuite))
}

func (s *TikTokenEncoderTestSuite) SetupSuite() {
	enc, err := NewTikTokenEncoder("gpt-4")
	s.Require().NoError(err)
	s.enc = enc
}

func (s *TikTokenEncoderTestSuite) TestEncodeDecodeRoundTrip() {
	text := "hello world"
	tokens := s.enc.Encode(text)
	s.NotEmpty(tokens)
	s.Equal(text, s.enc.Decode(tokens))
}

func (s *TikTokenEncoderTestSuite) TestEncodeIsDeterministic() {
	text := "the quick brown fox jumps over the lazy dog"
	a := s.enc.Encode(text)
	b := s.enc.Encode(text)
	s.Equal(a, b)
}

func (s *TikTokenEncoderTestSuite) TestEmptyString() {
	s.Empty(s.enc.Encode(""))
}

func (s *TikTokenEncoderTestSuite) TestDefaultsToGPT4WhenModelEmpty() {
	enc, err := NewTikTokenEncoder("")
	s.Require().NoError(err)
	s.NotNil(enc)
}

func TestRegistryResolvesByModelName(t *testing.T) {
	tok, err := New("gpt-4")
	if err != nil {
		t.Fatalf("New(gpt-4) failed: %v", err)
	}
	if tok == nil {
		t.Fatal("expected non-nil tokenizer")
	}
}

func TestRegistryDefaultsWhenEmpty(t *testing.T) {
	tok, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") failed: %v", err)
	}
	if tok.Name() == "" {
		t.Fatal("expected non-empty tokenizer name")
	}
}
