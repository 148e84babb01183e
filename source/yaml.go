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

package source

import (
	"context"
	"io"
	"iter"

	"gopkg.in/yaml.v2"
)

// YAML is a Source for a stream of YAML documents separated by
// "---".
type YAML struct {
	r io.Reader
}

func NewYAML(r io.Reader) *YAML {
	return &YAML{
		r: r,
	}
}

func (s *YAML) Docs(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := yaml.NewDecoder(s.r)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			var doc document
			err := dec.Decode(&doc)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc.x, nil) {
				return
			}
		}
	}
}

// DecodeYAML parses a single YAML document.
func DecodeYAML(bs []byte) (any, error) {
	var doc document
	if err := yaml.Unmarshal(bs, &doc); err != nil {
		return nil, err
	}
	return doc.x, nil
}

// document decodes YAML with mappings as pick.Maps in document
// order.
type document struct {
	x any
}

func (d *document) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var probe interface{}
	if err := unmarshal(&probe); err != nil {
		return err
	}
	switch probe.(type) {
	case map[interface{}]interface{}:
		// Nested mappings inside a MapSlice are MapSlices too.
		var ms yaml.MapSlice
		if err := unmarshal(&ms); err != nil {
			return err
		}
		d.x = ordered(ms)
	case []interface{}:
		var ds []document
		if err := unmarshal(&ds); err != nil {
			return err
		}
		xs := make([]any, len(ds))
		for i, e := range ds {
			xs[i] = e.x
		}
		d.x = xs
	default:
		d.x = probe
	}
	return nil
}

func ordered(x interface{}) any {
	switch vv := x.(type) {
	case yaml.MapSlice:
		b := newMapping(len(vv))
		for _, item := range vv {
			b.set(ordered(item.Key), ordered(item.Value))
		}
		return b.m
	case []interface{}:
		xs := make([]any, len(vv))
		for i, e := range vv {
			xs[i] = ordered(e)
		}
		return xs
	}
	return x
}
