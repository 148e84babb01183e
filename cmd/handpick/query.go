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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jsccast/yaml"

	"github.com/Comcast/handpick/interpreters"
	"github.com/Comcast/handpick/pick"
)

// Query says what to pick from each document.  A query can come from
// a YAML file, and command-line flags override it.
//
//	lang: pattern
//	predicate: {"type": "door"}
//	collections: false
type Query struct {
	// Lang is the name of the predicate language.
	Lang string `yaml:"lang"`

	// Predicate is the source for the language's compiler.  No
	// predicate means every node.
	Predicate interface{} `yaml:"predicate"`

	// Keys, if given, selects the values for these keys instead.
	Keys []string `yaml:"keys"`

	// Depth reports the maximum depth of each document instead.
	Depth bool `yaml:"depth"`

	Collections bool `yaml:"collections"`
	DictKeys    bool `yaml:"dict_keys"`
	Strings     bool `yaml:"strings"`
	Bytes       bool `yaml:"bytes"`

	// Strict reports all errors from the predicate rather than
	// treating the usual ones as false.
	Strict bool `yaml:"strict"`
}

func NewQuery() *Query {
	return &Query{
		Lang:        "pattern",
		Collections: true,
	}
}

// ReadQuery reads a Query from a YAML file.  Fields the file doesn't
// mention keep their defaults.
func ReadQuery(filename string) (*Query, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	q := NewQuery()
	if err = yaml.Unmarshal(bs, q); err != nil {
		return nil, fmt.Errorf("query %s: %w", filename, err)
	}
	return q, nil
}

// Options compiles the predicate (if any) and gives the traversal
// options.
func (q *Query) Options(ctx context.Context, cs interpreters.Compilers) ([]pick.Option, error) {
	opts := []pick.Option{
		pick.WithCollections(q.Collections),
		pick.WithDictKeys(q.DictKeys),
		pick.WithStrings(q.Strings),
		pick.WithBytesLike(q.Bytes),
	}
	if q.Predicate == nil {
		return opts, nil
	}
	p, err := cs.Compile(ctx, q.Lang, q.Predicate)
	if err != nil {
		return nil, err
	}
	if q.Strict {
		p = pick.Wrap(p.Func(), pick.WithSuppressed())
	}
	return append(opts, pick.Where(p)), nil
}

// Run applies the query to one document.
func (q *Query) Run(doc any, opts []pick.Option, emit func(any) error) error {
	switch {
	case q.Depth:
		return emit(pick.MaxDepth(doc, opts...))
	case 0 < len(q.Keys):
		keys := make([]any, len(q.Keys))
		for i, k := range q.Keys {
			keys[i] = k
		}
		for v := range pick.ValuesForKey(doc, keys...) {
			if err := emit(v); err != nil {
				return err
			}
		}
		return nil
	}
	for x, err := range pick.Pick(doc, opts...) {
		if err != nil {
			return err
		}
		if err = emit(x); err != nil {
			return err
		}
	}
	return nil
}
