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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Comcast/handpick/pick"
)

func TestMappingSet(t *testing.T) {
	b := newMapping(0)
	b.set("a", 1)
	b.set(2, "two")
	b.set("b", 3)
	b.set("a", 4)
	b.set(2.0, "deux")
	b.set("2", "string")
	assert.Equal(t, pick.M("a", 4, 2, "deux", "b", 3, "2", "string"), b.m)
}

func TestDecodeJSONManyKeys(t *testing.T) {
	const n = 50000

	var src strings.Builder
	src.WriteString("{")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&src, `"k%d":%d,`, n-i, i)
	}
	src.WriteString(`"k1":"last"}`)

	got, err := DecodeJSON([]byte(src.String()))
	require.NoError(t, err)
	m, is := got.(pick.Map)
	require.True(t, is)
	require.Len(t, m, n)
	assert.Equal(t, pick.Entry{Key: fmt.Sprintf("k%d", n), Value: 0}, m[0])
	assert.Equal(t, pick.Entry{Key: "k1", Value: "last"}, m[n-1])

	v, have := m.Lookup("k2")
	require.True(t, have)
	assert.Equal(t, n-2, v)
}

func TestDecodeYAMLMixedKeys(t *testing.T) {
	got, err := DecodeYAML([]byte("b: 1\n1: x\n2.5: y\na: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, pick.M("b", 1, 1, "x", 2.5, "y", "a", 2), got)
}
