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
	"maps"
	"os"

	"github.com/poiesic/docindex/core"
	"github.com/tmc/langchaingo/schema"
)

// FormatLoader parses one file into documents.
// Implementations must be safe for concurrent use.
type FormatLoader interface {
	// Name identifies the format in logs and metadata, e.g. "pdf".
	Name() string

	// Parse reads the file at path using encoding enc. Every returned
	// document carries the source, format and encoding metadata keys.
	Parse(ctx context.Context, path string, enc Encoding) ([]core.Document, error)
}

// readFile reads path after checking ctx.
func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// fromSchema converts langchaingo documents and stamps provenance metadata.
func fromSchema(docs []schema.Document, path, format string, enc Encoding) []core.Document {
	out := make([]core.Document, 0, len(docs))
	for _, d := range docs {
		md := make(map[string]any, len(d.Metadata)+3)
		maps.Copy(md, d.Metadata)
		md[core.MetaSource] = path
		md[core.MetaFormat] = format
		md[core.MetaEncoding] = string(enc)
		out = append(out, core.Document{Content: d.PageContent, Metadata: md})
	}
	return out
}
