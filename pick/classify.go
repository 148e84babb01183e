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
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sort"
	"unicode/utf8"
)

// Kind is the class of a node as far as traversal is concerned.
type Kind uint8

const (
	// KindScalar is anything that is never iterated.
	KindScalar Kind = iota

	// KindSequence is an ordered container: slices, arrays,
	// iter.Seq[any] and Sequence implementations.
	KindSequence

	// KindMapping is a key/value container. Traversal sees the
	// values (and optionally the keys).
	KindMapping

	// KindSet is a container of members without values, including
	// Go maps with struct{} elements.
	KindSet

	// KindText is a string.  Text is only iterated (by rune) when
	// asked for and when it is longer than one rune.
	KindText

	// KindBytes is a byte slice.  Bytes are only iterated (as ints)
	// when asked for.
	KindBytes
)

var kindNames = [...]string{
	KindScalar:   "scalar",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindSet:      "set",
	KindText:     "text",
	KindBytes:    "bytes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Sequence can be implemented by custom ordered containers.
type Sequence interface {
	Len() int
	Index(i int) any
}

// Mapping can be implemented by custom associative containers.
//
// Keys returns the keys in iteration order.
type Mapping interface {
	Keys() []any
	Lookup(key any) (any, bool)
}

// Set can be implemented by custom containers of members.
type Set interface {
	Members() []any
}

var emptyStruct = reflect.TypeOf(struct{}{})

// Classify determines the Kind of the given value.
//
// Common decoded-data types are handled without reflection.  Other
// slices, arrays, and maps are classified by their reflected kind.
// Everything else (including nil, numbers, structs, and pointers) is
// a scalar.
func Classify(v any) Kind {
	switch v.(type) {
	case nil:
		return KindScalar
	case string:
		return KindText
	case []byte:
		return KindBytes
	case []any:
		return KindSequence
	case map[string]any, Mapping:
		return KindMapping
	case Sequence, iter.Seq[any]:
		return KindSequence
	case Set:
		return KindSet
	case bool, int, int64, float64:
		return KindScalar
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return KindText
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindSequence
	case reflect.Array:
		return KindSequence
	case reflect.Map:
		if rv.Type().Elem() == emptyStruct {
			return KindSet
		}
		return KindMapping
	}
	return KindScalar
}

// IsCollection reports whether the walker would descend into v.
//
// Text is a collection only when text is true and v has more than
// one rune.  Bytes are a collection only when bytesLike is true.
func IsCollection(v any, text, bytesLike bool) bool {
	switch Classify(v) {
	case KindScalar:
		return false
	case KindText:
		return text && utf8.RuneCountInString(textOf(v)) > 1
	case KindBytes:
		return bytesLike
	default:
		return true
	}
}

// IsMapping reports whether v is a key/value container.
func IsMapping(v any) bool {
	return Classify(v) == KindMapping
}

// Entries yields the keys and values of a mapping in the order Pick
// visits them.  Anything else yields nothing.
func Entries(m any) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		if Classify(m) == KindMapping {
			eachEntry(m, yield)
		}
	}
}

// Elements yields the elements of a sequence or the members of a set
// in the order Pick visits them.  Anything else yields nothing.
func Elements(x any) iter.Seq[any] {
	return func(yield func(any) bool) {
		switch k := Classify(x); k {
		case KindSequence, KindSet:
			each(x, k, func(_, v any) bool {
				return yield(v)
			})
		}
	}
}

func textOf(v any) string {
	if s, is := v.(string); is {
		return s
	}
	return reflect.ValueOf(v).String()
}

func bytesOf(v any) []byte {
	if bs, is := v.([]byte); is {
		return bs
	}
	return reflect.ValueOf(v).Bytes()
}

// each calls fn for the elements of v, which has kind k, in
// iteration order.  For mappings, fn gets the key and its value.  For
// everything else, the key is nil.
//
// Returns false if fn returned false.
func each(v any, k Kind, fn func(key, val any) bool) bool {
	switch k {
	case KindText:
		s := textOf(v)
		for i := 0; i < len(s); {
			_, n := utf8.DecodeRuneInString(s[i:])
			if !fn(nil, s[i:i+n]) {
				return false
			}
			i += n
		}
	case KindBytes:
		for _, b := range bytesOf(v) {
			if !fn(nil, int(b)) {
				return false
			}
		}
	case KindSequence:
		return eachElement(v, fn)
	case KindMapping:
		return eachEntry(v, fn)
	case KindSet:
		for _, x := range members(v) {
			if !fn(nil, x) {
				return false
			}
		}
	}
	return true
}

func eachElement(v any, fn func(key, val any) bool) bool {
	switch vv := v.(type) {
	case []any:
		for _, x := range vv {
			if !fn(nil, x) {
				return false
			}
		}
	case Sequence:
		for i, n := 0, vv.Len(); i < n; i++ {
			if !fn(nil, vv.Index(i)) {
				return false
			}
		}
	case iter.Seq[any]:
		if vv == nil {
			return true
		}
		for x := range vv {
			if !fn(nil, x) {
				return false
			}
		}
	default:
		rv := reflect.ValueOf(v)
		for i, n := 0, rv.Len(); i < n; i++ {
			if !fn(nil, rv.Index(i).Interface()) {
				return false
			}
		}
	}
	return true
}

func eachEntry(v any, fn func(key, val any) bool) bool {
	switch vv := v.(type) {
	case Map:
		for _, e := range vv {
			if !fn(e.Key, e.Value) {
				return false
			}
		}
	case Mapping:
		for _, k := range vv.Keys() {
			x, _ := vv.Lookup(k)
			if !fn(k, x) {
				return false
			}
		}
	case map[string]any:
		ks := make([]string, 0, len(vv))
		for k := range vv {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		for _, k := range ks {
			if !fn(k, vv[k]) {
				return false
			}
		}
	default:
		rv := reflect.ValueOf(v)
		for _, k := range sortedKeys(rv) {
			if !fn(k.Interface(), rv.MapIndex(k).Interface()) {
				return false
			}
		}
	}
	return true
}

func members(v any) []any {
	if s, is := v.(Set); is {
		return s.Members()
	}
	ks := sortedKeys(reflect.ValueOf(v))
	acc := make([]any, len(ks))
	for i, k := range ks {
		acc[i] = k.Interface()
	}
	return acc
}

// sortedKeys gives a deterministic order to the keys of a Go map,
// which has none of its own.  Numbers sort numerically and before
// strings, strings sort lexically, and anything else sorts by its
// formatted value after both.
func sortedKeys(rv reflect.Value) []reflect.Value {
	ks := rv.MapKeys()
	slices.SortStableFunc(ks, func(a, b reflect.Value) int {
		return compareKeys(a.Interface(), b.Interface())
	})
	return ks
}

func keyRank(x any) int {
	if _, is := number(x); is {
		return 0
	}
	if Classify(x) == KindText {
		return 1
	}
	if _, is := x.(bool); is {
		return 2
	}
	return 3
}

func compareKeys(a, b any) int {
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 0:
		x, _ := number(a)
		y, _ := number(b)
		return cmp.Compare(x, y)
	case 1:
		return cmp.Compare(textOf(a), textOf(b))
	case 2:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// lookup finds the value for key in the mapping m.
func lookup(m any, key any) (any, bool) {
	switch mm := m.(type) {
	case Mapping:
		return mm.Lookup(key)
	case map[string]any:
		s, is := key.(string)
		if !is {
			return nil, false
		}
		x, have := mm[s]
		return x, have
	}

	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	kt := rv.Type().Key()
	kv := reflect.ValueOf(key)
	if !kv.IsValid() {
		// A nil key can only be found in a map with interface keys.
		if kt.Kind() != reflect.Interface {
			return nil, false
		}
		kv = reflect.Zero(kt)
	}
	if !kv.Type().Comparable() {
		return nil, false
	}
	if !kv.Type().AssignableTo(kt) {
		_, isNum := number(key)
		if !isNum || !kv.Type().ConvertibleTo(kt) {
			return nil, false
		}
		c := kv.Convert(kt)
		if !Equal(c.Interface(), key) {
			return nil, false
		}
		kv = c
	}
	x := rv.MapIndex(kv)
	if !x.IsValid() {
		return nil, false
	}
	return x.Interface(), true
}
