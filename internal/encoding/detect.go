// Package encoding normalises uploaded CSV files to UTF-8. Bank and
// spreadsheet exports are frequently Latin-1 or UTF-16.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLen = 4096

var boms = []struct {
	prefix []byte
	enc    xencoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, nil},
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// charsets maps chardet names to decoders. Anything unknown is read as
// Windows-1252, a superset of Latin-1 for printable text.
var charsets = map[string]xencoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"ISO-8859-2":   charmap.ISO8859_2,
}

// Detect reports the name of the charset the sample is most likely encoded
// in. It returns "UTF-8" for BOM-less valid UTF-8.
func Detect(sample []byte) string {
	switch {
	case bytes.HasPrefix(sample, boms[0].prefix), utf8.Valid(sample):
		return "UTF-8"
	case bytes.HasPrefix(sample, boms[1].prefix):
		return "UTF-16LE"
	case bytes.HasPrefix(sample, boms[2].prefix):
		return "UTF-16BE"
	}

	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return "windows-1252"
	}

	if _, ok := charsets[res.Charset]; !ok && res.Charset != "UTF-8" {
		return "windows-1252"
	}

	return res.Charset
}

// NewUTF8Reader returns a reader yielding the content of r as UTF-8, with
// any byte order mark removed.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	sample, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peeking input: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(sample, b.prefix) {
			continue
		}

		if b.enc == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, nil
		}

		return transform.NewReader(br, b.enc.NewDecoder()), nil
	}

	charset := Detect(sample)
	if charset == "UTF-8" {
		return br, nil
	}

	return transform.NewReader(br, charsets[charset].NewDecoder()), nil
}
