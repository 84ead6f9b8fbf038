// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package formats

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Encoding names a text encoding, e.g. "utf-8" or "latin-1".
type Encoding string

const (
	UTF8   Encoding = "utf-8"
	Latin1 Encoding = "latin-1"
)

var aliases = map[string]encoding.Encoding{
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// IsUTF8 reports whether e names UTF-8.
func (e Encoding) IsUTF8() bool {
	switch strings.ToLower(string(e)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// resolve returns the x/text encoding for e. UTF-8 returns nil; it is
// validated rather than transcoded.
func (e Encoding) resolve() (encoding.Encoding, error) {
	if e.IsUTF8() {
		return nil, nil
	}
	name := strings.ToLower(string(e))
	if enc, ok := aliases[name]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, e)
	}
	return enc, nil
}

// Validate checks that e can be resolved.
func (e Encoding) Validate() error {
	_, err := e.resolve()
	return err
}

// Decode converts raw file bytes in encoding e to a Go string.
func Decode(data []byte, e Encoding) (string, error) {
	enc, err := e.resolve()
	if err != nil {
		return "", err
	}
	if enc == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, UTF8)
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidEncoding, e, err)
	}
	return string(out), nil
}

// DecodeWithFallback decodes data as UTF-8 when it is valid UTF-8 and with
// fallback otherwise. It returns the encoding actually used.
func DecodeWithFallback(data []byte, fallback Encoding) (string, Encoding, error) {
	if utf8.Valid(data) {
		return string(data), UTF8, nil
	}
	text, err := Decode(data, fallback)
	if err != nil {
		return "", fallback, err
	}
	return text, fallback, nil
}
