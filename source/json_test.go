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

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		js   string
		want any
	}{
		{"null", `null`, nil},
		{"string", `"hi"`, "hi"},
		{"int", `42`, 42},
		{"negative", `-3`, -3},
		{"float", `1.5`, 1.5},
		{"integral float", `1.0`, 1.0},
		{"exponent", `1e2`, 100.0},
		{"huge", `12345678901234567890`, 1.2345678901234567e19},
		{"empty array", `[]`, []any{}},
		{"empty object", `{}`, pick.M()},
		{"object order", `{"z":1,"a":2,"m":3}`, pick.M("z", 1, "a", 2, "m", 3)},
		{"nested", `{"a":[true,{"b":null}]}`, pick.M("a", []any{true, pick.M("b", nil)})},
		{"duplicate key", `{"a":1,"a":2}`, pick.M("a", 2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeJSON([]byte(tc.js))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	for _, js := range []string{``, `[1,`, `{"a"`, `1 2`, `{} x`, `]`} {
		_, err := DecodeJSON([]byte(js))
		assert.Error(t, err, js)
	}

	_, err := DecodeJSON([]byte(`1 2`))
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestJSONStream(t *testing.T) {
	in := "{\"a\":1}\n[2]\n\n\"three\" 4\n"
	docs, err := Collect(context.Background(), NewJSON(strings.NewReader(in)))
	require.NoError(t, err)
	assert.Equal(t, []any{pick.M("a", 1), []any{2}, "three", 4}, docs)
}

func TestJSONStreamError(t *testing.T) {
	docs, err := Collect(context.Background(), NewJSON(strings.NewReader(`1 [`)))
	assert.Error(t, err)
	assert.Equal(t, []any{1}, docs)
}

func TestJSONStreamEarlyStop(t *testing.T) {
	var got []any
	for doc, err := range NewJSON(strings.NewReader(`1 2 3`)).Docs(context.Background()) {
		require.NoError(t, err)
		got = append(got, doc)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []any{1, 2}, got)
}

func TestJSONStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collect(ctx, NewJSON(strings.NewReader(`1`)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForFormat(t *testing.T) {
	assert.Equal(t, "yaml", FormatOf("x/data.YML"))
	assert.Equal(t, "yaml", FormatOf("data.yaml"))
	assert.Equal(t, "json", FormatOf("data.ndjson"))
	assert.Equal(t, "json", FormatOf("data"))

	s, err := ForFormat("yaml", strings.NewReader("a: 1\n"))
	require.NoError(t, err)
	docs, err := Collect(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []any{pick.M("a", 1)}, docs)

	_, err = ForFormat("toml", strings.NewReader(""))
	assert.Error(t, err)
}
