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

// Text loads a whole file as one document.
type Text struct{}

var _ FormatLoader = Text{}

func (Text) Name() string { return "text" }

func (t Text) Parse(ctx context.Context, path string, enc Encoding) ([]core.Document, error) {
	data, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("decode text %s: %w", path, err)
	}
	loaded, err := documentloaders.NewText(strings.NewReader(text)).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse text %s: %w", path, err)
	}
	return fromSchema(loaded, path, t.Name(), enc), nil
}
