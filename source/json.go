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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/goccy/go-json"
)

// ErrTrailingData reports more input after a single JSON value.
var ErrTrailingData = errors.New("trailing data after JSON value")

// JSON is a Source for a stream of JSON values separated by
// whitespace (including newline-delimited JSON).
type JSON struct {
	r io.Reader
}

func NewJSON(r io.Reader) *JSON {
	return &JSON{
		r: r,
	}
}

func (s *JSON) Docs(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := newDecoder(s.r)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			doc, err := decode(dec)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// DecodeJSON parses exactly one JSON value.
func DecodeJSON(bs []byte) (any, error) {
	dec := newDecoder(bytes.NewReader(bs))
	doc, err := decode(dec)
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return doc, nil
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// decode reads the next value.  io.EOF means there wasn't one.
func decode(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return value(dec, tok)
}

func value(dec *json.Decoder, tok json.Token) (any, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return object(dec)
		case '[':
			return array(dec)
		}
		return nil, fmt.Errorf("unexpected %q", rune(v))
	case json.Number:
		return number(v)
	case string, bool, float64, nil:
		return v, nil
	}
	return nil, fmt.Errorf("unexpected JSON token %#v", tok)
}

func next(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func object(dec *json.Decoder) (any, error) {
	b := newMapping(0)
	for {
		tok, err := next(dec)
		if err != nil {
			return nil, err
		}
		if d, is := tok.(json.Delim); is && d == '}' {
			return b.m, nil
		}
		k, is := tok.(string)
		if !is {
			return nil, fmt.Errorf("object key %#v isn't a string", tok)
		}
		if tok, err = next(dec); err != nil {
			return nil, err
		}
		v, err := value(dec, tok)
		if err != nil {
			return nil, err
		}
		b.set(k, v)
	}
}

func array(dec *json.Decoder) (any, error) {
	xs := make([]any, 0)
	for {
		tok, err := next(dec)
		if err != nil {
			return nil, err
		}
		if d, is := tok.(json.Delim); is && d == ']' {
			return xs, nil
		}
		x, err := value(dec, tok)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
}

func number(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil && int64(int(i)) == i {
		return int(i), nil
	}
	return n.Float64()
}
