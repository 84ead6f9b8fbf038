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
	"fmt"
	"strings"

	"github.com/poiesic/docindex/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// CSV loads one document per data row. Each document's content is the row
// rendered as "header: value" lines.
type CSV struct {
	// Columns restricts the rendered columns. Empty means all.
	Columns []string

	// Strict disables the UTF-8-first fallback and always decodes with the
	// registry encoding.
	Strict bool
}

var _ FormatLoader = CSV{}

func (CSV) Name() string { return "csv" }

func (c CSV) Parse(ctx context.Context, path string, enc Encoding) ([]core.Document, error) {
	data, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}

	var text string
	used := enc
	if c.Strict {
		text, err = Decode(data, enc)
	} else {
		text, used, err = DecodeWithFallback(data, enc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode csv %s: %w", path, err)
	}

	loaded, err := documentloaders.NewCSV(strings.NewReader(text), c.Columns...).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	return fromSchema(loaded, path, c.Name(), used), nil
}
