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
	"github.com/Comcast/handpick/pick"
)

// mapping builds a pick.Map for a decoder in time linear in the
// number of keys.  String keys are found through an index.  Other keys
// (only from YAML) are compared with pick.Equal against the other
// non-string keys.  The decoders never produce named string types, so
// a string key can only be Equal to the same string.
type mapping struct {
	m      pick.Map
	at     map[string]int
	others []int
}

func newMapping(n int) *mapping {
	return &mapping{
		m:  make(pick.Map, 0, n),
		at: make(map[string]int, n),
	}
}

// set binds key to val.  A repeated key keeps its first position and
// takes the last value.
func (b *mapping) set(key, val any) {
	if s, is := key.(string); is {
		if i, have := b.at[s]; have {
			b.m[i].Value = val
			return
		}
		b.at[s] = len(b.m)
		b.m = append(b.m, pick.Entry{Key: key, Value: val})
		return
	}
	for _, i := range b.others {
		if pick.Equal(b.m[i].Key, key) {
			b.m[i].Value = val
			return
		}
	}
	b.others = append(b.others, len(b.m))
	b.m = append(b.m, pick.Entry{Key: key, Value: val})
}
