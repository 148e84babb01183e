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

package pick

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is a Mapping that remembers the order in which its keys were
// added.  Keys can be any value, including ones Go maps cannot hold.
//
// The JSON and YAML decoders in package source produce Maps so that
// traversal order follows document order.
type Map []Entry

// M makes a Map from alternating keys and values.
//
// M panics if given an odd number of arguments.
func M(kvs ...any) Map {
	if len(kvs)%2 != 0 {
		panic(fmt.Sprintf("pick.M: odd number of arguments (%d)", len(kvs)))
	}
	m := make(Map, 0, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		m = m.Set(kvs[i], kvs[i+1])
	}
	return m
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m)
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []any {
	acc := make([]any, len(m))
	for i, e := range m {
		acc[i] = e.Key
	}
	return acc
}

// Lookup finds the value of the first entry whose key is Equal to the
// given key.
func (m Map) Lookup(key any) (any, bool) {
	if i := m.index(key); 0 <= i {
		return m[i].Value, true
	}
	return nil, false
}

// Set returns a Map with the given key bound to the given value.  An
// existing entry keeps its position.  Otherwise the entry is
// appended.
func (m Map) Set(key, val any) Map {
	if i := m.index(key); 0 <= i {
		m[i].Value = val
		return m
	}
	return append(m, Entry{key, val})
}

func (m Map) index(key any) int {
	for i, e := range m {
		if Equal(e.Key, key) {
			return i
		}
	}
	return -1
}

// MarshalJSON writes the entries as a JSON object in order.  Keys
// that aren't strings are formatted with fmt.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if 0 < i {
			buf.WriteByte(',')
		}
		k, is := e.Key.(string)
		if !is {
			k = fmt.Sprint(e.Key)
		}
		js, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(js)
		buf.WriteByte(':')
		if js, err = json.Marshal(e.Value); err != nil {
			return nil, err
		}
		buf.Write(js)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain converts Maps (recursively) into map[string]interface{} and
// sequences into []interface{} for consumers that only understand
// generic JSON-ish data.
func Plain(x any) any {
	switch Classify(x) {
	case KindMapping:
		acc := make(map[string]interface{})
		eachEntry(x, func(k, v any) bool {
			s, is := k.(string)
			if !is {
				s = fmt.Sprint(k)
			}
			acc[s] = Plain(v)
			return true
		})
		return acc
	case KindSequence, KindSet:
		acc := make([]interface{}, 0)
		each(x, Classify(x), func(_, v any) bool {
			acc = append(acc, Plain(v))
			return true
		})
		return acc
	}
	return x
}
