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
	"iter"
)

// ValuesForKey yields the values bound to any of the given keys in
// every mapping in data, data itself included.  Mappings are visited
// in Pick order, and for each mapping the keys are tried in the order
// given.
//
// Pass several keys to look for any of them.  A slice passed as a
// single key is a key, not a list of keys.
func ValuesForKey(data any, keys ...any) iter.Seq[any] {
	return func(yield func(any) bool) {
		for m := range Pick([]any{data}, Where(Mappings)) {
			for _, k := range keys {
				v, have := lookup(m, k)
				if have && !yield(v) {
					return
				}
			}
		}
	}
}

// Depths yields the depth of every collection in data: 0 for data
// itself, 1 for collections directly in data, and so on.  Only the
// text and bytes options matter here.  Mapping keys are not walked.
func Depths(data any, opts ...Option) iter.Seq[int] {
	o := NewOptions(opts...)
	return func(yield func(int) bool) {
		depths(data, 0, o, yield)
	}
}

func depths(x any, d int, o Options, yield func(int) bool) bool {
	if !o.IsCollection(x) {
		return true
	}
	if !yield(d) {
		return false
	}
	return each(x, Classify(x), func(_, v any) bool {
		return depths(v, d+1, o, yield)
	})
}

// MaxDepth returns the greatest depth of any collection in data.  If
// data isn't a collection, the result is 0.
func MaxDepth(data any, opts ...Option) int {
	deepest := 0
	for d := range Depths(data, opts...) {
		if deepest < d {
			deepest = d
		}
	}
	return deepest
}
