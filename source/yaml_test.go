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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Comcast/handpick/pick"
)

func TestDecodeYAML(t *testing.T) {
	src := `
z: 1
a:
  - c: x
    b: [1, 2.5]
  - y
m: {q: true, 3: null}
`
	got, err := DecodeYAML([]byte(src))
	require.NoError(t, err)
	want := pick.M(
		"z", 1,
		"a", []any{pick.M("c", "x", "b", []any{1, 2.5}), "y"},
		"m", pick.M("q", true, 3, nil),
	)
	assert.Equal(t, want, got)

	got, err = DecodeYAML([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = DecodeYAML([]byte("a: [1"))
	assert.Error(t, err)
}

func TestYAMLStream(t *testing.T) {
	src := "a: 1\n---\n- 2\n- {b: 3}\n---\nfour\n"
	docs, err := Collect(context.Background(), NewYAML(strings.NewReader(src)))
	require.NoError(t, err)
	assert.Equal(t, []any{
		pick.M("a", 1),
		[]any{2, pick.M("b", 3)},
		"four",
	}, docs)
}

func TestYAMLStreamEmpty(t *testing.T) {
	docs, err := Collect(context.Background(), NewYAML(strings.NewReader("")))
	require.NoError(t, err)
	assert.Empty(t, docs)
}
