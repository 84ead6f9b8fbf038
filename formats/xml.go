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
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/docindex/core"
	"github.com/tmc/langchaingo/schema"
)

// XML loads a whole file as one document whose content is the character
// data of every element, one text run per line, in document order.
type XML struct{}

var _ FormatLoader = XML{}

func (XML) Name() string { return "xml" }

func (x XML) Parse(ctx context.Context, path string, enc Encoding) ([]core.Document, error) {
	data, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("decode xml %s: %w", path, err)
	}

	content, err := extractXMLText(text)
	if err != nil {
		return nil, fmt.Errorf("parse xml %s: %w", path, err)
	}
	doc := schema.Document{PageContent: content, Metadata: map[string]any{}}
	return fromSchema([]schema.Document{doc}, path, x.Name(), enc), nil
}

func extractXMLText(text string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	// Input is already decoded to UTF-8 whatever the prolog declares.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var runs []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if cd, ok := tok.(xml.CharData); ok {
			if s := strings.TrimSpace(string(cd)); s != "" {
				runs = append(runs, s)
			}
		}
	}
	return strings.Join(runs, "\n"), nil
}
