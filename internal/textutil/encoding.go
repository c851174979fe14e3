// Package textutil holds the low-level text helpers shared by the parsers and
// the site extractor: byte decoding, HTML cleaning and block-aware text rendering.
package textutil

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Candidate is an encoding tried by the normalizer
type Candidate struct {
	Name     string
	Encoding encoding.Encoding
}

// DefaultCandidates is the priority order used by Decode. The last entry is a
// single-byte charset, so the list as a whole always yields a result.
var DefaultCandidates = []Candidate{
	{Name: "UTF-8", Encoding: unicode.UTF8},
	{Name: "GBK", Encoding: simplifiedchinese.GBK},
	{Name: "GB18030", Encoding: simplifiedchinese.GB18030},
	{Name: "Big5", Encoding: traditionalchinese.Big5},
	{Name: "ISO-8859-1", Encoding: charmap.ISO8859_1},
}

// Decode turns a raw byte buffer into text using DefaultCandidates.
// It never fails; see DecodeWith.
func Decode(b []byte) string {
	text, _ := DecodeWith(b, DefaultCandidates)
	return text
}

// DecodeWith tries each candidate in order and accepts the first one whose
// decode/re-encode round trip reproduces b exactly. It returns the text and
// the accepted candidate's name. When nothing round-trips, b is forced to
// UTF-8 with invalid sequences replaced, and the name is empty.
func DecodeWith(b []byte, candidates []Candidate) (string, string) {
	for _, c := range candidates {
		if c.Encoding == nil {
			continue
		}
		if text, ok := roundTrip(b, c.Encoding); ok {
			return text, c.Name
		}
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), ""
}

func roundTrip(b []byte, enc encoding.Encoding) (string, bool) {
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	encoded, err := enc.NewEncoder().Bytes(decoded)
	if err != nil {
		return "", false
	}
	if !bytes.Equal(encoded, b) {
		return "", false
	}
	return string(decoded), true
}
