package Transformer

import (
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const DefaultCharset = "UTF-8"

// chardet reports a few names htmlindex does not know
var charsetAliases = map[string]string{
	"GB-18030":   "gb18030",
	"ISO-8859-1": "windows-1252",
	"UTF-16BE":   "utf-16be",
	"UTF-16LE":   "utf-16le",
}

// Charset resolves a .cpg code page name. Unknown names fall back to UTF-8.
func Charset(name string) encoding.Encoding {
	name = strings.TrimSpace(name)
	if alias, ok := charsetAliases[strings.ToUpper(name)]; ok {
		name = alias
	}
	if name == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return unicode.UTF8
	}
	return enc
}

// EncodeText converts a UTF-8 string to the given DBF code page.
// Characters the code page cannot hold are written unconverted.
func EncodeText(enc encoding.Encoding, s string) []byte {
	out, _, err := transform.String(enc.NewEncoder(), s)
	if err != nil {
		return []byte(s)
	}
	return []byte(out)
}

func DecodeText(enc encoding.Encoding, s string) string {
	out, _, err := transform.String(enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return out
}

// DetectCharset guesses the code page of raw DBF text when no .cpg exists.
func DetectCharset(data []byte) string {
	if len(data) == 0 {
		return DefaultCharset
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return DefaultCharset
	}
	return result.Charset
}
