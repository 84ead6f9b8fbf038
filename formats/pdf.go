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
	"os"

	"github.com/poiesic/docindex/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// PDF loads one document per page, in page order.
type PDF struct {
	// Password opens encrypted files. Empty means none.
	Password string
}

var _ FormatLoader = PDF{}

func (PDF) Name() string { return "pdf" }

// Parse extracts the plain text of every page. The encoding is recorded in
// metadata only; PDF text decoding is driven by the file's own fonts.
func (p PDF) Parse(ctx context.Context, path string, enc Encoding) (docs []core.Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var opts []documentloaders.PDFOptions
	if p.Password != "" {
		opts = append(opts, documentloaders.WithPassword(p.Password))
	}

	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("parse pdf %s: %v", path, r)
		}
	}()

	loaded, err := documentloaders.NewPDF(f, info.Size(), opts...).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse pdf %s: %w", path, err)
	}
	return fromSchema(loaded, path, p.Name(), enc), nil
}
