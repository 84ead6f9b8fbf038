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


// Package formats maps file extensions to the parsers that turn a file into
// core.Document values.
//
// Each supported format is a FormatLoader. A Registry binds a lower-cased
// extension to a loader and the text encoding the loader must use. The
// default registry is static:
//
//	.pdf  PDF   utf-8    one document per page, page order
//	.xml  XML   utf-8    one document per file
//	.csv  CSV   latin-1  one document per data row
//	.txt  Text  utf-8    one document per file
//
// Extensions that are not registered are not an error; callers treat a
// failed Lookup as a filter.
//
// # Encodings
//
// Encoding names are resolved with golang.org/x/text. The utf-8 encoding is
// strict: a file containing invalid byte sequences fails to parse instead of
// being repaired with replacement characters. The CSV loader tries UTF-8
// first and falls back to the registry encoding when the bytes are not valid
// UTF-8, so exports in either encoding load without rewriting the file.
package formats
