/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package source reads documents for traversal from streams, files,
// a bbolt bucket, a WebSocket, or an MQTT topic.
//
// Decoded mappings are pick.Maps, so traversal follows document
// order.  JSON integers decode to int when they fit and float64
// otherwise.
package source

import (
	"context"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"
)

// Source is anything that can produce documents.
type Source interface {
	// Docs yields documents until the source is exhausted or ctx is
	// done.  An error is yielded once and ends the sequence.
	Docs(ctx context.Context) iter.Seq2[any, error]
}

// Collect gathers all of the documents from a Source.
func Collect(ctx context.Context, s Source) ([]any, error) {
	acc := make([]any, 0)
	for doc, err := range s.Docs(ctx) {
		if err != nil {
			return acc, err
		}
		acc = append(acc, doc)
	}
	return acc, nil
}

// FormatOf guesses the format of a file from its extension.  Anything
// that isn't YAML is JSON.
func FormatOf(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// ForFormat makes a Source that reads the given format ("json" or
// "yaml") from r.
func ForFormat(format string, r io.Reader) (Source, error) {
	switch strings.ToLower(format) {
	case "json", "ndjson", "jsonl":
		return NewJSON(r), nil
	case "yaml", "yml":
		return NewYAML(r), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
