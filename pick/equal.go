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
	"reflect"
)

// number converts any Go number (but not bool) into a float64.
//
// Like match's old fudge, this is a blunt instrument: large integers
// lose precision.  Equal compares integers exactly when both sides
// are integers.
func number(x any) (float64, bool) {
	switch vv := x.(type) {
	case int:
		return float64(vv), true
	case float64:
		return vv, true
	case int64:
		return float64(vv), true
	case bool, string, nil:
		return 0, false
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// integer gives the value of a signed or unsigned Go integer that
// fits in an int64.
func integer(x any) (int64, bool) {
	if n, is := x.(int); is {
		return int64(n), true
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// Equal is the equality used when a plain value is given to Where.
//
// Numbers compare by value regardless of their Go types, so 1 equals
// 1.0 and int64(1).  Text compares by content, including named string
// types.  Mappings are equal when they have Equal values for the same
// keys, in any order.  Sequences are equal when they have Equal
// elements in the same order.  Everything else uses reflect.DeepEqual.
func Equal(x, y any) bool {
	if a, is := number(x); is {
		b, is := number(y)
		if !is {
			return false
		}
		if i, is := integer(x); is {
			if j, is := integer(y); is {
				return i == j
			}
		}
		return a == b
	}

	kx, ky := Classify(x), Classify(y)
	switch {
	case kx == KindText && ky == KindText:
		return textOf(x) == textOf(y)
	case kx == KindMapping && ky == KindMapping:
		return mappingsEqual(x, y)
	case kx == KindSequence && ky == KindSequence:
		return sequencesEqual(x, y)
	}
	return reflect.DeepEqual(x, y)
}

func elements(x any) []any {
	acc := make([]any, 0)
	eachElement(x, func(_, v any) bool {
		acc = append(acc, v)
		return true
	})
	return acc
}

func sequencesEqual(x, y any) bool {
	xs, ys := elements(x), elements(y)
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

func mappingsEqual(x, y any) bool {
	n := 0
	eachEntry(y, func(_, _ any) bool {
		n++
		return true
	})
	m := 0
	same := eachEntry(x, func(k, v any) bool {
		m++
		w, have := lookup(y, k)
		return have && Equal(v, w)
	})
	return same && m == n
}
