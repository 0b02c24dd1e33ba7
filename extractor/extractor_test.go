package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	reg *Registry
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.reg = NewRegistry()
}

func (s *RegistryTestSuite) TestResolveByMime() {
	e, err := s.reg.Resolve("text/plain", "")
	s.Require().NoError(err)
	s.IsType(&PlainTextExtractor{}, e)
}

func (s *RegistryTestSuite) TestResolveByExtensionFallback() {
	e, err := s.reg.Resolve("application/octet-stream", "csv")
	s.Require().NoError(err)
	s.IsType(&CSVExtractor{}, e)
}

func (s *RegistryTestSuite) TestResolveUnsupported() {
	_, err := s.reg.Resolve("application/x-made-up", "zzz")
	s.Require().Error(err)
}

type ExtractorTestSuite struct {
	suite.Suite
}

func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func (s *ExtractorTestSuite) TestPlainTextPassthrough() {
	e := NewPlainTextExtractor()
	text, err := e.Extract(strings.NewReader("hello\nworld"))
	s.Require().NoError(err)
	s.Equal("hello\nworld", text)
}

func (s *ExtractorTestSuite) TestPlainTextRejectsInvalidUTF8() {
	e := NewPlainTextExtractor()
	_, err := e.Extract(strings.NewReader(string([]byte{0xff, 0xfe, 0xfd})))
	s.Require().Error(err)
}

func (s *ExtractorTestSuite) TestCSVTabJoinsRows() {
	e := NewCSVExtractor()
	text, err := e.Extract(strings.NewReader("a,b,c\n1,2,3\n"))
	s.Require().NoError(err)
	s.Equal("a\tb\tc\n1\t2\t3", text)
}

func (s *ExtractorTestSuite) TestDetectMimeFallsBackToExtension() {
	mime, ext := DetectMime([]byte{}, "notes.csv")
	s.Equal("text/csv", mime)
	s.Equal("csv", ext)
}

func (s *ExtractorTestSuite) TestDetectMimeSniffsPlainText() {
	mime, _ := DetectMime([]byte("just some plain text content here"), "mystery")
	s.Equal("text/plain", mime)
}
